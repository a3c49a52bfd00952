package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBookmarks, downCreateBookmarks)
}

// Deleting an account that still owns bookmarks is rejected by the foreign
// key; no cascade is defined.
func upCreateBookmarks(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE bookmarks (
    id          BIGSERIAL PRIMARY KEY,
    account_id  BIGINT NOT NULL REFERENCES accounts (id),
    uri         TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
)`
	case "mysql":
		ddl = `CREATE TABLE bookmarks (
    id          BIGINT AUTO_INCREMENT PRIMARY KEY,
    account_id  BIGINT NOT NULL,
    uri         TEXT NOT NULL,
    description TEXT NOT NULL,
    CONSTRAINT fk_bookmarks_account FOREIGN KEY (account_id) REFERENCES accounts (id)
)`
	default: // sqlite3
		ddl = `CREATE TABLE bookmarks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id  INTEGER NOT NULL REFERENCES accounts (id),
    uri         TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
)`
	}
	return execAll(func(stmt string) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	},
		ddl,
		`CREATE INDEX bookmarks_account_id_idx ON bookmarks (account_id)`,
	)
}

func downCreateBookmarks(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS bookmarks`)
	return err
}
