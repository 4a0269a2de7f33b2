package database

// Driver registration for every supported provider. Importing this package
// is enough to make all three available to sql.Open.
import (
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)
