package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the operator backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// Credentials is what the login form collects
type Credentials struct {
	Username string
	Password string
}

// PromptForCredentials shows the login form. errMsg, when set, is shown above
// the form (the previous attempt's failure). Returns ErrCancelled on esc/ctrl+c.
func PromptForCredentials(defaultUser, errMsg string) (Credentials, error) {
	creds := Credentials{Username: defaultUser}

	description := "Sign in to the admin dashboard"
	if errMsg != "" {
		description = RenderError(errMsg)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("adminboard").
				Description(description),
			huh.NewInput().
				Title("Username").
				Placeholder("emilys").
				Value(&creds.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("password")),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Credentials{}, ErrCancelled
		}
		return Credentials{}, fmt.Errorf("login form: %w", err)
	}

	creds.Username = strings.TrimSpace(sanitizeInput(creds.Username))
	creds.Password = sanitizeInput(creds.Password)
	return creds, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// ConfirmLogout asks before ending the session
func ConfirmLogout(name string) (bool, error) {
	var confirm bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Log out %s?", name)).
				Description("The saved session will be removed").
				Affirmative("Log out").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return confirm, nil
}

// PromptForPageSize offers the configured page sizes with current preselected
func PromptForPageSize(sizes []int, current int) (int, error) {
	selected := current
	options := make([]huh.Option[int], 0, len(sizes))
	for _, n := range sizes {
		options = append(options, huh.NewOption(strconv.Itoa(n)+" per page", n))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Page size").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return current, nil
		}
		return current, err
	}
	return selected, nil
}
