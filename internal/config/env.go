package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; values already present in the process
// environment are never overridden.
var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads KEY=VALUE pairs from .env files in the working directory.
// It returns the files that were loaded. Missing files are not an error.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, path := range envFiles {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		slog.Debug("Loaded environment file", "path", path)
		loaded = append(loaded, path)
	}
	return loaded, nil
}
