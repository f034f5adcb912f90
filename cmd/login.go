package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	huh "charm.land/huh/v2"
	"github.com/spf13/cobra"

	perrors "github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/session"
	"github.com/parleychat/parley/internal/ui"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Signs in against the Supabase auth backend and stores the session in
~/.parley/session.json. A running parley picks the new session up automatically.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address (prompted if empty)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin instead of prompting")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	if !d.auth.Configured() {
		return perrors.AuthNotConfigured("login")
	}

	email := loginEmail
	if email == "" {
		email = d.cfg.GetLastEmail()
	}

	var password string
	if loginPasswordStdin {
		if email == "" {
			return fmt.Errorf("--email is required with --password-stdin")
		}
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	} else {
		email, password, err = promptCredentials(email)
		if err != nil {
			return err
		}
	}

	s, err := d.auth.SignInWithPassword(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	d.cfg.SetLastEmail(email)
	if err := d.cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save preferences: %v\n", err)
	}

	view := session.Project(s)
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", view.User.DisplayName())
	return nil
}

// readPassword reads the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password on stdin")
	}
	return password, nil
}

func promptCredentials(email string) (string, string, error) {
	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&email).
				Validate(requireValue("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(requireValue("password")),
		),
	).WithTheme(ui.FormTheme()).
		WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
