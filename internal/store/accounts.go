package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Account is a person, identified externally only by Username.
// Password holds whatever the authentication layer stored (a bcrypt hash);
// this package never interprets it.
type Account struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
}

// AccountStore is the sqlx-backed AccountRepository.
type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) q(query string) string { return s.db.Rebind(query) }

// Save inserts a new account and returns it with its generated ID.
// Returns ErrDuplicateUsername if the username is already taken.
func (s *AccountStore) Save(ctx context.Context, a *Account) (*Account, error) {
	username := normalizeUsername(a.Username)
	if username == "" {
		return nil, fmt.Errorf("save account: username is required")
	}

	id, err := insertReturningID(ctx, s.db,
		`INSERT INTO accounts (username, password) VALUES (?, ?)`, username, a.Password)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("save account: %w", err)
	}
	return &Account{ID: id, Username: username, Password: a.Password}, nil
}

// FindOne returns the account with the given ID, or ErrNotFound.
func (s *AccountStore) FindOne(ctx context.Context, id int64) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a, s.q(`SELECT id, username, password FROM accounts WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindByUsername returns the account with the given username, or ErrNotFound.
// The username is normalized the same way Save normalizes it.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a, s.q(`SELECT id, username, password FROM accounts WHERE username = ?`), normalizeUsername(username))
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindAll returns accounts ordered by ID.
func (s *AccountStore) FindAll(ctx context.Context, page Page) ([]*Account, error) {
	accounts := []*Account{}
	err := s.db.SelectContext(ctx, &accounts,
		`SELECT id, username, password FROM accounts ORDER BY id`+limitClause(page))
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts`)
	return n, err
}
