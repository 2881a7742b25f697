package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/scrollr/scrollr/internal/client/views"
)

func newSignupCommand(app *App) *cobra.Command {
	form := &views.SignupForm{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.fill(&form.Username, "Username"); err != nil {
				return err
			}
			if err := app.fill(&form.Email, "Email"); err != nil {
				return err
			}
			if err := app.fillPassword(&form.Password); err != nil {
				return err
			}

			resp, err := form.Submit(cmd.Context(), app.api, app.session)
			if err != nil {
				return formFailure(err, form.Error)
			}
			app.printf("Welcome, %s! You are logged in.\n", resp.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Username, "username", "", "username (prompted when omitted)")
	cmd.Flags().StringVar(&form.Email, "email", "", "email (prompted when omitted)")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&form.Avatar, "avatar", "", "avatar image URL")
	return cmd
}

func newLoginCommand(app *App) *cobra.Command {
	form := &views.LoginForm{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.fill(&form.Email, "Email"); err != nil {
				return err
			}
			if err := app.fillPassword(&form.Password); err != nil {
				return err
			}

			resp, err := form.Submit(cmd.Context(), app.api, app.session)
			if err != nil {
				return formFailure(err, form.Error)
			}
			app.printf("Logged in as %s.\n", resp.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "email (prompted when omitted)")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if app.session.User() == nil {
				app.printf("Not logged in.\n")
				return nil
			}
			if err := app.session.Logout(); err != nil {
				return err
			}
			app.printf("Logged out.\n")
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}
			me, err := app.api.Me(cmd.Context())
			if err != nil {
				return app.apiFailure(cmd.Context(), err)
			}
			app.printf("%s <%s>\n", me.Username, me.Email)
			return nil
		},
	}
}

// fill prompts for *field when no flag set it.
func (a *App) fill(field *string, label string) error {
	if *field != "" {
		return nil
	}
	v, err := prompt(a.reader, a.out, label)
	if err != nil {
		return err
	}
	*field = v
	return nil
}

func (a *App) fillPassword(field *string) error {
	if *field != "" {
		return nil
	}
	v, err := promptPassword(a.in, a.reader, a.out)
	if err != nil {
		return err
	}
	*field = v
	return nil
}

func formFailure(err error, msg string) error {
	if errors.Is(err, views.ErrIncomplete) || msg == "" {
		return err
	}
	return errors.New(msg)
}
