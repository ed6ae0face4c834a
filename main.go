package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/antoniolg/agent-kit/cmd"
)

func init() {
	// Load .env file if it exists; real environment variables take precedence
	_ = godotenv.Load()
}

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
