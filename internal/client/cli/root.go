package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the scrollr command tree around app. Every
// subcommand runs with the session already hydrated.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "scrollr",
		Short:         "Read and write the Scrollr feed from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return app.open()
		},
	}
	root.SetIn(app.in)
	root.SetOut(app.out)

	flags := root.PersistentFlags()
	flags.StringVar(&app.APIURL, "api", app.APIURL, "API base URL (env SCROLLR_API)")
	flags.StringVar(&app.SessionPath, "session", app.SessionPath, "session file (env SCROLLR_SESSION)")

	root.AddCommand(
		newSignupCommand(app),
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newFeedCommand(app),
		newPostCommand(app),
		newDeleteCommand(app),
	)
	return root
}

// Execute runs one command line and releases the session file afterwards,
// whether or not the command failed.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}
