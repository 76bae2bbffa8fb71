package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/DevN0mad/Workasana/internal/services"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := services.Credentials{Email: strings.TrimSpace(email), Password: password}
			if creds.Password == "" {
				secret, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				creds.Password = secret
			}

			if _, err := app.client.Guard.Login(cmd.Context(), creds); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedIn": true, "email": creds.Email}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (supply to avoid prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := services.SignupInput{
				Name:     strings.TrimSpace(name),
				Email:    strings.TrimSpace(email),
				Password: password,
			}
			if input.Password == "" {
				secret, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				input.Password = secret
			}

			sess, msg, err := app.client.Guard.Signup(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"loggedIn": sess != nil,
				"email":    input.Email,
				"message":  msg,
			}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (supply to avoid prompt)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.Guard.Logout(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedIn": false}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ok, err := app.client.Guard.Current(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"loggedIn":   ok,
				"apiBaseUrl": app.client.API.BaseURL(),
				"sessionDb":  app.cfg.Session.DBPath,
			}})
		},
	}
}
