package database

import (
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/database/connection"
)

func SetUpDatabase(cfg *config.Config) error {
	return connection.ConnectToDatabase(cfg)
}

type BaseModel interface {
	ParseModel() any
}
