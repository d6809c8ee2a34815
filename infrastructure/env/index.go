package env

import (
	"errors"
	"io/fs"

	"facevote.io/infrastructure/logger"
	"github.com/joho/godotenv"
)

// LoadEnv copies .env (or the given files) into the process environment.
// Variables already set win. A missing file is not an error: deployments set
// the environment directly.
func LoadEnv(files ...string) {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warning("error loading env variables", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}
