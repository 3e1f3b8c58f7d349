package main

import (
	"os"

	"github.com/joho/godotenv"

	"planetd/internal/ops"
)

func main() {
	// .env provides PLANETCTL_* defaults before flags are parsed.
	_ = godotenv.Load()
	os.Exit(ops.MainWithArgs(os.Args[1:]))
}
