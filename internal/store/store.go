// Package store holds the account and bookmark repositories. No handler or
// service queries the database directly; all access goes through the
// repository interfaces defined here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when saving an account whose username is taken.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrNoAccount is returned when saving a bookmark without an owning account.
	ErrNoAccount = errors.New("bookmark must belong to an account")
)

// Page selects a window of rows for FindAll. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// AccountRepository exposes account persistence.
type AccountRepository interface {
	Save(ctx context.Context, a *Account) (*Account, error)
	FindOne(ctx context.Context, id int64) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindAll(ctx context.Context, page Page) ([]*Account, error)
	Count(ctx context.Context) (int, error)
}

// BookmarkRepository exposes bookmark persistence, including the one derived
// query: bookmarks by their owner's username.
type BookmarkRepository interface {
	Save(ctx context.Context, b *Bookmark) (*Bookmark, error)
	FindOne(ctx context.Context, id int64) (*Bookmark, error)
	FindByAccountUsername(ctx context.Context, username string) ([]*Bookmark, error)
	FindAll(ctx context.Context, page Page) ([]*Bookmark, error)
	Count(ctx context.Context) (int, error)
}

// insertReturningID runs an INSERT and returns the generated primary key.
// MySQL has no RETURNING clause, so it falls back to LastInsertId.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, args ...any) (int64, error) {
	if db.DriverName() == "mysql" {
		res, err := db.ExecContext(ctx, db.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// limitClause renders LIMIT/OFFSET for a page. Values are ints, so inlining
// them is safe and avoids dialect differences in binding LIMIT parameters.
func limitClause(p Page) string {
	if p.Limit <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.Itoa(p.Limit))
	if p.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(p.Offset))
	}
	return b.String()
}

// normalizeUsername is applied to every username on the way in, so saved and
// looked-up names compare equal.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
