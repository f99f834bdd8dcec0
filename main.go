package main

import (
	"github.com/joho/godotenv"

	"github.com/David-Botos/schema-recon/cmd"
)

func main() {
	// Optional .env for local runs; deployed environments set variables
	// directly.
	_ = godotenv.Load()

	cmd.Execute()
}
