package config

import (
	"strings"

	"github.com/sqlbridge/sqlbridge/pkg/settings"
)

// SubstituteTokens resolves the placeholder tokens of a connection-string
// template from settings. Tokens whose configured value is empty are left
// in place untouched, so a missing optional credential never silently
// produces a different-but-valid string.
func SubstituteTokens(template string, s *settings.Settings) string {
	tokens := map[string]string{
		"{host}":       s.DatabaseHost,
		"{port}":       s.DatabasePort,
		"{user}":       s.DatabaseUser,
		"{password}":   s.DatabasePassword,
		"{dbname}":     s.DatabaseName,
		"{dbfilepath}": s.DatabaseFilePath,
	}

	out := template
	for token, value := range tokens {
		if value == "" {
			continue
		}
		out = strings.ReplaceAll(out, token, value)
	}
	return out
}
