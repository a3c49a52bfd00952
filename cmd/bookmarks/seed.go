package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts and their bookmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv()
			if err != nil {
				return err
			}
			defer env.close()
			return seed(cmd.Context(), env)
		},
	}
}

func seed(ctx context.Context, env *runtimeEnv) error {
	created, err := store.Seed(ctx, store.NewAccountStore(env.db), store.NewBookmarkStore(env.db), auth.HashPassword)
	if err != nil {
		return err
	}
	env.log.Info("seeded demo accounts", logger.Int("created", created))
	return nil
}
