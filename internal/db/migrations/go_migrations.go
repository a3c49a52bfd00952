// Package migrations contains dialect-aware Go database migrations. The DDL
// for generated keys, binary columns and timestamps differs per database, so
// every migration is written in Go rather than SQL.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

func execAll(exec func(string) error, stmts ...string) error {
	for _, stmt := range stmts {
		if err := exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
