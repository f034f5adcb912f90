package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	s, err := d.auth.GetSession(cmd.Context())
	if err != nil {
		// An unusable stored session is still removed below.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	if err := d.auth.SignOut(cmd.Context()); err != nil {
		return err
	}

	if s == nil && err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}
