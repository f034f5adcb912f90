package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/logger"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the stored session and the debug log",
	Long: `Deletes ~/.parley/session.json and the debug log. Preferences are kept.
It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	sessionPath, err := config.SessionPath()
	if err != nil {
		return err
	}
	return runCleanWithReader(cmd.InOrStdin(), cmd.OutOrStdout(), sessionPath, logger.DefaultLogPath)
}

// runCleanWithReader allows injecting input and paths for testing
func runCleanWithReader(input io.Reader, out io.Writer, sessionPath, logPath string) error {
	var targets []string
	for _, p := range []string{sessionPath, logPath} {
		if _, err := os.Stat(p); err == nil {
			targets = append(targets, p)
		}
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
		return nil
	}

	fmt.Fprintln(out, "This will remove:")
	for _, p := range targets {
		fmt.Fprintf(out, "  - %s\n", p)
	}

	if !skipConfirm {
		if !confirm(input, out, "Continue?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	removed := 0
	for _, p := range targets {
		if p == logger.DefaultLogPath {
			n, err := logger.ClearLogs()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
			}
			removed += n
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error removing %s: %v\n", p, err)
			continue
		}
		removed++
	}

	fmt.Fprintf(out, "Removed %d file(s).\n", removed)
	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
