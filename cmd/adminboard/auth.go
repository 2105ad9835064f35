package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/thesavant42/adminboard/internal/api"
	"github.com/thesavant42/adminboard/internal/models"
	"github.com/thesavant42/adminboard/internal/ui"
)

var errSessionRejected = errors.New("the saved session was rejected, run `adminboard login` again")

// profileSource answers /auth/me for the installed token.
type profileSource interface {
	CurrentUser(ctx context.Context) (*models.AuthUser, error)
}

// verifySession checks the saved token against the service. A 401 also
// fires the client's unauthorized hook, which clears the saved session.
func verifySession(ctx context.Context, src profileSource, username string) (string, error) {
	me, err := src.CurrentUser(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "", errSessionRejected
	case err != nil:
		return "unverified (" + api.Describe(err) + ")", nil
	case me.Username != username:
		return "", fmt.Errorf("saved session belongs to %q, not %q: %w", me.Username, username, errSessionRejected)
	}
	return "yes", nil
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: "Sign in and save the session. Without --username/--password the login form is shown.\n" +
			"The password may also come from ADMINBOARD_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if password == "" {
				password = os.Getenv("ADMINBOARD_PASSWORD")
			}
			if username == "" || password == "" {
				creds, err := ui.PromptForCredentials(username, "")
				if errors.Is(err, ui.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}
				username, password = creds.Username, creds.Password
			}

			var loginErr error
			err = spinner.New().
				Title("Signing in as " + username + "...").
				Action(func() {
					loginErr = a.sessions.Login(cmd.Context(), username, password)
				}).
				Run()
			if err != nil {
				return fmt.Errorf("spinner error: %w", err)
			}
			if loginErr != nil {
				return fmt.Errorf("login failed: %s", api.Describe(loginErr))
			}

			current, _ := a.sessions.Current()
			ui.PrintSuccess(fmt.Sprintf("Logged in as %s", current.User.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.sessions.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			ui.PrintSuccess("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and recent session history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}
			current, _ := a.sessions.Current()

			verified, err := verifySession(cmd.Context(), a.client, current.User.Username)
			if err != nil {
				return err
			}

			expires := "never"
			if !current.ExpiresAt.IsZero() {
				expires = current.ExpiresAt.Local().Format(time.RFC1123)
			}
			ui.PrintReport(cmd.OutOrStdout(), ui.Report{
				Title:   "Signed in",
				Headers: []string{"Field", "Value"},
				Rows: [][]string{
					{"Username", current.User.Username},
					{"Name", current.User.FirstName + " " + current.User.LastName},
					{"Email", current.User.Email},
					{"Since", current.CreatedAt.Local().Format(time.RFC1123)},
					{"Expires", expires},
					{"Verified", verified},
				},
			})

			if history <= 0 {
				return nil
			}
			events, err := a.database.RecentSessionEvents(history)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{e.OccurredAt.Local().Format(time.DateTime), e.Kind, e.Username})
			}
			ui.PrintReport(cmd.OutOrStdout(), ui.Report{
				Title:   "Recent sessions",
				Headers: []string{"When", "Event", "User"},
				Rows:    rows,
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&history, "history", 5, "number of session events to show (0 to hide)")
	return cmd
}
