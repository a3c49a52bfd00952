package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAPITokens, downCreateAPITokens)
}

func upCreateAPITokens(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE api_tokens (
    id           TEXT PRIMARY KEY,
    account_id   BIGINT NOT NULL REFERENCES accounts (id),
    client_id    TEXT NOT NULL,
    scope        TEXT NOT NULL DEFAULT '',
    token_hash   TEXT NOT NULL UNIQUE,
    last_used_at TIMESTAMPTZ,
    expires_at   TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL,
    revoked_at   TIMESTAMPTZ
)`
	case "mysql":
		ddl = `CREATE TABLE api_tokens (
    id           CHAR(36) PRIMARY KEY,
    account_id   BIGINT NOT NULL,
    client_id    VARCHAR(255) NOT NULL,
    scope        VARCHAR(255) NOT NULL DEFAULT '',
    token_hash   CHAR(64) NOT NULL UNIQUE,
    last_used_at DATETIME(6) NULL,
    expires_at   DATETIME(6) NULL,
    created_at   DATETIME(6) NOT NULL,
    revoked_at   DATETIME(6) NULL,
    CONSTRAINT fk_api_tokens_account FOREIGN KEY (account_id) REFERENCES accounts (id)
)`
	default: // sqlite3
		ddl = `CREATE TABLE api_tokens (
    id           TEXT PRIMARY KEY,
    account_id   INTEGER NOT NULL REFERENCES accounts (id),
    client_id    TEXT NOT NULL,
    scope        TEXT NOT NULL DEFAULT '',
    token_hash   TEXT NOT NULL UNIQUE,
    last_used_at DATETIME,
    expires_at   DATETIME,
    created_at   DATETIME NOT NULL,
    revoked_at   DATETIME
)`
	}
	_, err := tx.ExecContext(ctx, ddl)
	return err
}

func downCreateAPITokens(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS api_tokens`)
	return err
}
