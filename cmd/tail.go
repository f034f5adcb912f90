package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/realtime"
	"github.com/parleychat/parley/internal/ui"
)

var (
	tailRaw   bool
	tailCount int
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print inbound messages as they arrive",
	Long: `Connects to the chat backend and prints every inbound message until
interrupted. Connection state changes are printed to stderr.`,
	Args: cobra.NoArgs,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailRaw, "raw", false, "Print raw frames instead of formatted messages")
	tailCmd.Flags().IntVarP(&tailCount, "count", "n", 0, "Exit after this many messages (0 means no limit)")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	mgr := d.newManager()
	events, unsubscribe := mgr.Subscribe()
	defer unsubscribe()

	mgr.Start(ctx)
	defer mgr.Close()

	return tail(ctx, events, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// tail prints events until ctx is done, the channel closes, or tailCount
// messages have been printed.
func tail(ctx context.Context, events <-chan realtime.Event, out, status io.Writer) error {
	log := logger.WithComponent("tail")
	seen := make(map[int64]struct{})
	printed := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case realtime.EventState:
				fmt.Fprintf(status, "[%s]\n", ev.State)
				continue
			case realtime.EventGaveUp:
				return fmt.Errorf("gave up reconnecting")
			}

			if tailRaw {
				fmt.Fprintln(out, string(ev.Frame))
			} else {
				msg, ok, err := chat.DecodeFrame(ev.Frame, ev.At)
				if err != nil {
					log.Warn("dropping malformed frame", "conn_id", ev.ConnID, "error", err)
					continue
				}
				if !ok {
					continue
				}
				if _, dup := seen[msg.ID]; dup {
					continue
				}
				seen[msg.ID] = struct{}{}
				fmt.Fprintf(out, "%s  %s: %s\n", ui.FormatHourMinute(msg.CreatedAt), msg.SenderName, msg.Content)
			}

			printed++
			if tailCount > 0 && printed >= tailCount {
				return nil
			}
		}
	}
}
