package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/osc"
)

var (
	listenAddr    string
	matchPatterns []string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print OSC frames arriving on the receive port",
	Long: `Listens for OSC frames, by default on the console's receive port, and
prints those whose address matches one of the --match patterns. Useful as a
stand-in console: point send at the monitor's address.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&listenAddr, "listen", "", "UDP listen address (default :<console receive port>)")
	monitorCmd.Flags().StringArrayVar(&matchPatterns, "match", []string{
		"/sd/Input_Channels/*/*",
		"/sd/Input_Channels/*/Aux_Send/*/*",
	}, "OSC address pattern to print (repeatable)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	addr := listenAddr
	if addr == "" {
		if cfg.Console.ReceivePort == 0 {
			return errors.New("no --listen address and no console.receive_port configured")
		}
		addr = ":" + strconv.Itoa(cfg.Console.ReceivePort)
	}

	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return monitor(ctx, pc, cmd.OutOrStdout(), matchPatterns)
}

// monitor prints every frame arriving on pc whose address matches one of
// patterns, until ctx is done. It closes pc.
func monitor(ctx context.Context, pc net.PacketConn, out io.Writer, patterns []string) error {
	d := &osc.Dispatcher{}
	for _, p := range patterns {
		if err := d.AddMethodFunc(p, func(msg *osc.Message) {
			fmt.Fprintln(out, msg.String())
		}); err != nil {
			pc.Close()
			return fmt.Errorf("--match %q: %w", p, err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		pc.Close()
	}()

	srv := &osc.Server{
		Dispatcher: d,
		ErrorLog: func(err error, from net.Addr) {
			logger.Warn("dropped frame", zap.Stringer("from", from), zap.Error(err))
		},
	}
	logger.Info("monitoring", zap.String("addr", pc.LocalAddr().String()), zap.Strings("match", patterns))

	err := srv.Serve(pc)
	if ctx.Err() != nil {
		// Closed on cancellation above.
		return nil
	}
	return err
}
