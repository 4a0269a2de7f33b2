package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlbridge/sqlbridge/pkg/settings"
)

func TestSubstituteTokens(t *testing.T) {
	s := &settings.Settings{
		DatabaseHost: "db.internal",
		DatabasePort: "3306",
		DatabaseUser: "svc",
		DatabaseName: "orders",
	}

	out := SubstituteTokens("{user}@tcp({host}:{port})/{dbname}", s)
	assert.Equal(t, "svc@tcp(db.internal:3306)/orders", out)
}

func TestSubstituteTokensSkipsEmptyValues(t *testing.T) {
	s := &settings.Settings{
		DatabaseName: "orders",
	}

	// unset values leave their token in place instead of producing a
	// silently different string
	out := SubstituteTokens("{user}:{password}@/{dbname}", s)
	assert.Equal(t, "{user}:{password}@/orders", out)
}

func TestSubstituteTokensFilePath(t *testing.T) {
	s := &settings.Settings{DatabaseFilePath: "/var/lib/app.duckdb"}
	assert.Equal(t, "/var/lib/app.duckdb", SubstituteTokens("{dbfilepath}", s))
}
