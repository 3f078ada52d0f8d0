package sqladapter

import (
	"database/sql"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// OpenLibSQL opens dsn (a libsql:// or file: URL) through the libsql
// database/sql driver registered by this file's blank import. The
// returned *sql.DB satisfies DB, so it plugs directly into
// lock/locksql, semaphore/semsql, cache/cachesql, and breaker/breakersql
// with Question as their Dialect.
func OpenLibSQL(dsn string) (*sql.DB, error) {
	return sql.Open("libsql", dsn)
}
