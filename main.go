package main

import (
	"facevote.io/infrastructure"
	"facevote.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
