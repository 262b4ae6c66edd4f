package main

import (
	"kofr/cmd"

	"github.com/joho/godotenv"
)

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	// A missing .env file is fine; KOFR_ variables may come from the shell.
	_ = godotenv.Load()

	cmd.SetVersion(version)
	cmd.Execute()
}
