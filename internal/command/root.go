// Package command contains the CLI command constructors.
package command

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taskhub/taskhub/pkg/client"
)

const defaultServer = "http://localhost:8080"

// clientOptions are the persistent flags shared by the API client commands.
type clientOptions struct {
	server      string
	sessionPath string
}

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	opts := &clientOptions{
		server:      defaultServer,
		sessionPath: client.DefaultSessionPath(),
	}
	if v, ok := os.LookupEnv("TASKHUB_SERVER"); ok && v != "" {
		opts.server = v
	}

	cmd := &cobra.Command{
		Use:          "taskhub [command] [flags]",
		Short:        "Projects, tasks and tags behind a token-authenticated API",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", opts.server,
		"API base URL (env TASKHUB_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.sessionPath, "session", opts.sessionPath,
		"path to the stored session")

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
		loginCommand(opts),
		registerCommand(opts),
		logoutCommand(opts),
		whoamiCommand(opts),
		projectsCommand(opts),
		tasksCommand(opts),
	)

	return cmd
}
