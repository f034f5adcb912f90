package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/session"
)

var (
	whoamiJSON   bool
	whoamiVerify bool
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "Print the session view as JSON")
	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Check the access token against the auth backend")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	store := session.New(d.auth)
	store.Start(cmd.Context())
	defer store.Close()
	if err := store.WaitReady(cmd.Context()); err != nil {
		return err
	}
	if err := store.Err(); err != nil {
		return err
	}

	s := store.Session()
	if whoamiVerify && s != nil {
		if _, err := d.auth.GetUser(cmd.Context(), s.AccessToken); err != nil {
			return err
		}
	}
	view := session.Project(s)

	out := cmd.OutOrStdout()
	if whoamiJSON {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if !view.IsLoggedIn {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	renderUser(out, view.User, s, time.Now())
	return nil
}

func renderUser(w io.Writer, u *session.UserView, s *auth.Session, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.Append([]string{"Name", u.DisplayName()})
	table.Append([]string{"Email", deref(u.Email)})
	table.Append([]string{"User ID", u.ID})
	table.Append([]string{"Role", deref(u.AppRole)})
	table.Append([]string{"Created", relative(u.CreatedAt, now)})
	table.Append([]string{"Last sign-in", relative(u.LastSignInAt, now)})
	if exp := s.Expiry(); !exp.IsZero() {
		table.Append([]string{"Token expires", humanize.RelTime(exp, now, "ago", "from now")})
	}
	table.Render()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// relative formats an RFC 3339 timestamp relative to now, or returns it
// unchanged if it does not parse.
func relative(ts string, now time.Time) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
