package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Bookmark is a saved URI owned by exactly one account. The URI is opaque
// text; nothing here validates its format.
type Bookmark struct {
	ID          int64  `db:"id"`
	AccountID   int64  `db:"account_id"`
	URI         string `db:"uri"`
	Description string `db:"description"`

	// Account is populated on every read so callers can reach the owner's
	// username without a second query.
	Account *Account `db:"account"`
}

// bookmarkSelect joins the owning account; sqlx maps the dotted aliases onto
// Bookmark.Account.
const bookmarkSelect = `
	SELECT b.id, b.account_id, b.uri, b.description,
	       a.id AS "account.id", a.username AS "account.username", a.password AS "account.password"
	FROM bookmarks b
	JOIN accounts a ON a.id = b.account_id`

// BookmarkStore is the sqlx-backed BookmarkRepository.
type BookmarkStore struct {
	db *sqlx.DB
}

func NewBookmarkStore(db *sqlx.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// Save inserts a new bookmark for b.Account (or b.AccountID) and returns the
// stored row, owner included. Returns ErrNoAccount when no owner is given.
func (s *BookmarkStore) Save(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	accountID := b.AccountID
	if b.Account != nil {
		accountID = b.Account.ID
	}
	if accountID == 0 {
		return nil, ErrNoAccount
	}

	id, err := insertReturningID(ctx, s.db,
		`INSERT INTO bookmarks (account_id, uri, description) VALUES (?, ?, ?)`,
		accountID, b.URI, b.Description)
	if err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	return s.FindOne(ctx, id)
}

// FindOne returns the bookmark with the given ID, or ErrNotFound.
func (s *BookmarkStore) FindOne(ctx context.Context, id int64) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b, s.q(bookmarkSelect+` WHERE b.id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// FindByAccountUsername returns every bookmark owned by the account with the
// given username, in insertion (ID) order. An unknown username yields an
// empty slice, not an error.
func (s *BookmarkStore) FindByAccountUsername(ctx context.Context, username string) ([]*Bookmark, error) {
	bookmarks := []*Bookmark{}
	err := s.db.SelectContext(ctx, &bookmarks, s.q(bookmarkSelect+` WHERE a.username = ? ORDER BY b.id`), normalizeUsername(username))
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// FindAll returns bookmarks ordered by ID.
func (s *BookmarkStore) FindAll(ctx context.Context, page Page) ([]*Bookmark, error) {
	bookmarks := []*Bookmark{}
	err := s.db.SelectContext(ctx, &bookmarks, bookmarkSelect+` ORDER BY b.id`+limitClause(page))
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (s *BookmarkStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bookmarks`)
	return n, err
}
