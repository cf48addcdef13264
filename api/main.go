package main

import (
	"github.com/joho/godotenv"

	"github.com/lookouthq/lookout/api/cmd/lookout"
)

func main() {
	_ = godotenv.Load()
	lookout.Execute()
}
