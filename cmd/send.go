package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/chat"
	perrors "github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
)

var sendTimeout time.Duration

var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Send one message and exit",
	Long: `Connects to the chat backend, sends the arguments joined by spaces as a single
private message using the sender and receiver ids from preferences, and exits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "How long to wait for the connection to open")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")

	mgr := d.newManager()
	logger.WithComponent("send").Debug("connecting", "url", mgr.URL(), "timeout", sendTimeout)
	mgr.Start(cmd.Context())
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()
	if err := mgr.WaitOpen(ctx); err != nil {
		return err
	}

	id := d.cfg.Identity()
	if !chat.Submit(text, mgr, id) {
		return perrors.NotConnected(mgr.State().String())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent to %d.\n", id.ReceiverID)
	return nil
}
