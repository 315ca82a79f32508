package command

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub/internal/infrastructure/db/sqlite"
	"github.com/taskhub/taskhub/internal/pkg/config"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Long:      "Applies every pending migration (up, the default) or rolls every applied one back (down).",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			ops, err := config.LoadOps(cmd.Context())
			if err != nil {
				return err
			}
			log := opsLogger(ops.LogLevel)

			store, err := openStore(cmd.Context(), ops)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			if direction == "down" {
				err = store.MigrateDown()
			} else {
				err = store.Migrate()
			}
			if err != nil {
				return err
			}

			version, dirty, err := store.Version()
			if err != nil {
				return err
			}
			log.Info().
				Str("direction", direction).
				Uint("version", version).
				Bool("dirty", dirty).
				Str("database", ops.Database.Path).
				Msg("migrations applied")
			return nil
		},
	}
}

func openStore(ctx context.Context, ops *config.Ops) (*sqlite.Store, error) {
	return sqlite.Open(ctx, ops.Database.Path)
}
