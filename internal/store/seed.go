package store

import (
	"context"
	"errors"
	"fmt"
)

// SeedUsernames are the demo accounts created by Seed.
var SeedUsernames = []string{"kis", "skrb", "making"}

// SeedPassword is the password given to every demo account.
const SeedPassword = "password"

// Seed creates the demo accounts, each with two bookmarks at
// http://bookmark.com/{1,2}/<username>. Accounts that already exist are left
// untouched, so running it twice is harmless. hashPassword turns the demo
// password into whatever the authentication layer stores.
func Seed(ctx context.Context, accounts AccountRepository, bookmarks BookmarkRepository, hashPassword func(string) (string, error)) (created int, err error) {
	for _, username := range SeedUsernames {
		if _, err := accounts.FindByUsername(ctx, username); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("seed %s: %w", username, err)
		}

		hash, err := hashPassword(SeedPassword)
		if err != nil {
			return created, fmt.Errorf("seed %s: hash password: %w", username, err)
		}
		account, err := accounts.Save(ctx, &Account{Username: username, Password: hash})
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", username, err)
		}
		for i := 1; i <= 2; i++ {
			_, err := bookmarks.Save(ctx, &Bookmark{
				Account:     account,
				URI:         fmt.Sprintf("http://bookmark.com/%d/%s", i, username),
				Description: "A description",
			})
			if err != nil {
				return created, fmt.Errorf("seed %s: %w", username, err)
			}
		}
		created++
	}
	return created, nil
}
