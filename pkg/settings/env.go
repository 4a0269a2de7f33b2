package settings

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the first .env file found among the candidate paths.
// Missing files are not an error; explicit environment variables always win
// over .env contents (godotenv does not override existing vars).
func LoadEnvFile(paths ...string) (string, bool) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			return p, true
		}
	}
	return "", false
}
