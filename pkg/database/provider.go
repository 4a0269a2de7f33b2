// Package database owns the provider factory: which database/sql drivers are
// available, how each provider's connection string is shaped, and how a pool
// is opened and tuned.
package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Provider describes one supported backend. ConnStringTemplate carries
// placeholder tokens ({host}, {port}, {user}, {password}, {dbname},
// {dbfilepath}) that the configuration registry substitutes from settings.
type Provider struct {
	Name               string
	Driver             string
	ConnStringTemplate string
}

var providers = map[string]Provider{
	"mysql": {
		Name:               "mysql",
		Driver:             "mysql",
		ConnStringTemplate: "{user}:{password}@tcp({host}:{port})/{dbname}?charset=utf8mb4&parseTime=True&loc=Local",
	},
	"postgres": {
		Name:               "postgres",
		Driver:             "pgx",
		ConnStringTemplate: "postgres://{user}:{password}@{host}:{port}/{dbname}",
	},
	"duckdb": {
		Name:               "duckdb",
		Driver:             "duckdb",
		ConnStringTemplate: "{dbfilepath}",
	},
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, bool) {
	p, ok := providers[name]
	return p, ok
}

// Open opens and pings a pool for the provider.
// MaxIdleConns matches MaxOpenConns so connections stay alive instead of
// being churned through ephemeral ports under load.
func Open(p Provider, dsn string) (*sql.DB, error) {
	db, err := sql.Open(p.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s pool: %w", p.Name, err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(100)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", p.Name, err)
	}

	return db, nil
}
