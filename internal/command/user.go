package command

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/service"
	"github.com/taskhub/taskhub/internal/pkg/config"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create user",
		Long: "Creates a user directly in the database, bypassing the activation code. Use it\n" +
			"to bootstrap the first admin. The password is read from the interactive prompt\n" +
			"or from stdin (password, newline, confirmation).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			if !domain.ValidRole(role) {
				return domain.ErrInvalidRole
			}
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
			if err := store.Migrate(); err != nil {
				return err
			}

			password, err := newPassword()
			if err != nil {
				return err
			}

			// Provision issues no token, so no signing secret is needed here.
			auth := service.NewAuthService(store.Users(), service.NewTokens("", time.Hour), "", log)
			user, err := auth.Provision(cmd.Context(), args[0], password, role)
			if err != nil {
				return err
			}

			log.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("created user")
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", domain.RoleUser, "role for the new user: user or admin")
	return cmd
}
