package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/console"
	"github.com/mxa-live/mxa/internal/session"
	"github.com/mxa-live/mxa/routing"
)

var (
	artistOverrides     []string
	instrumentOverrides []string
	dryRun              bool
	saveToggles         bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Apply the session's routing to the console once",
	Long: `Synthesizes the full command set for the stored routing and live toggles
and sends it to the console, one UDP datagram per command.

Toggles can be overridden for this run:
  mxa send --artist 1=on --artist 3=off --instrument 2=on`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd, dryRun)
	},
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Print the frames send would emit, without sending",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{sendCmd, transcriptCmd} {
		c.Flags().StringArrayVar(&artistOverrides, "artist", nil, "Artist toggle override, index=on|off (repeatable)")
		c.Flags().StringArrayVar(&instrumentOverrides, "instrument", nil, "Instrument toggle override, index=on|off (repeatable)")
	}
	sendCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the transcript instead of sending")
	sendCmd.Flags().BoolVar(&saveToggles, "save", false, "Store the overridden toggles in the session after a successful send")
}

// runSend plans a batch from the session and either prints it (dry) or sends it.
func runSend(cmd *cobra.Command, dry bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	levels, err := loadLevels()
	if err != nil {
		return err
	}

	sess := store.Snapshot()
	live, err := overriddenToggles(sess)
	if err != nil {
		return err
	}
	rc := sess.Routing
	rc.Console = cfg.ResolveEndpoint(rc.Console)

	d := newDriver(levels)
	b, err := d.Plan(&rc, live)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dry {
		lines, bad := console.Transcript(b.Endpoint, b.Frames)
		for _, l := range lines {
			fmt.Fprintln(out, l.String())
		}
		for _, err := range bad {
			logger.Warn("frame did not decode", zap.Error(err))
		}
		fmt.Fprintf(out, "%d frames\n", len(b.Frames))
		return nil
	}

	rep, err := d.Send(b)
	if err != nil {
		if rep != nil {
			fmt.Fprintf(out, "sent %d of %d frames\n", rep.Sent, rep.Total)
		}
		return err
	}
	fmt.Fprintf(out, "sent %d frames to %s:%d (batch %s)\n", rep.Sent, b.Endpoint.Host, b.Endpoint.SendPort, rep.BatchID)

	if saveToggles {
		if err := store.SetToggles(live); err != nil {
			return fmt.Errorf("save toggles: %w", err)
		}
	}
	return nil
}

func overriddenToggles(sess session.Session) (routing.Toggles, error) {
	live := sess.Live.Resize(&sess.Routing)
	if err := applyOverrides(live.Artists, artistOverrides, "artist"); err != nil {
		return routing.Toggles{}, err
	}
	if err := applyOverrides(live.Instruments, instrumentOverrides, "instrument"); err != nil {
		return routing.Toggles{}, err
	}
	return live, nil
}
