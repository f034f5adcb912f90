package cmd

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/app"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/session"
	"github.com/parleychat/parley/internal/ui"
)

var (
	debugMode             bool
	quietMode             bool
	envFiles              []string
	themeName             string
	withSamples           bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal chat client",
	Long: `parley is a terminal chat client. It shows a composer and a scrolling list of
messages, keeps one WebSocket connection to the chat backend, and resolves the
signed-in user from a Supabase auth backend.

Endpoints come from the environment (WS_BASE_URL, SUPABASE_URL, SUPABASE_ANON_KEY)
or a .env file.`,
	PersistentPreRunE: validateFlags,
	RunE:              runTUI,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment from these files (default .env)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Color theme for this run (dusk, nord, dracula, gruvbox, light)")
	rootCmd.Flags().BoolVar(&withSamples, "samples", false, "Seed the message list with sample messages")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if themeName != "" && !ui.IsThemeName(themeName) {
		return fmt.Errorf("unknown theme %q (available: %v)", themeName, ui.ThemeNames())
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

func runTUI(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d.startAuthWorkers(ctx)

	store := session.New(d.auth)
	store.Start(ctx)
	defer store.Close()

	mgr := d.newManager()
	m := app.New(app.Options{
		Config:  d.cfg,
		Store:   store,
		Conn:    mgr,
		Samples: withSamples,
		Theme:   themeName,
	})
	defer m.Close()

	// Subscribed in app.New, so the first Connecting transition is seen.
	mgr.Start(ctx)
	defer mgr.Close()

	logger.WithComponent("cmd").Info("starting", "version", version, "ws_url", d.env.WSBaseURL, "auth", d.auth.Configured())

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
