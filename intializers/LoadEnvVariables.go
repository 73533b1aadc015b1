package intializers

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnvVariables reads .env into the process environment. Variables that
// are already set win, and a missing file is fine outside development.
func LoadEnvVariables() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}
}
