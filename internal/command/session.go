package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub/pkg/client"
)

func loginCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient(opts)
			if err != nil {
				return err
			}
			password, err := prompt("password: ", true)
			if err != nil {
				return err
			}

			user, err := c.Login(cmd.Context(), args[0], string(password))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Email, user.Role)
			return err
		},
	}
}

func registerCommand(opts *clientOptions) *cobra.Command {
	var (
		role      string
		adminCode string
	)
	cmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient(opts)
			if err != nil {
				return err
			}
			password, err := newPassword()
			if err != nil {
				return err
			}

			user, err := c.Register(cmd.Context(), client.RegisterRequest{
				Email:           args[0],
				Password:        password,
				ConfirmPassword: password,
				Role:            role,
				AdminCode:       adminCode,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Email, user.Role)
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", "user", "requested role: user or admin")
	cmd.Flags().StringVar(&adminCode, "admin-code", "", "activation code, required for --role admin")
	return cmd
}

func logoutCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client.New(opts.server, client.NewFileStore(opts.sessionPath))
			if err := c.Logout(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func whoamiCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := authedClient(opts)
			if err != nil {
				return err
			}
			id, err := c.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, %s) at %s\n", id.Email, id.ID, id.Role, opts.server)
			return err
		},
	}
}
