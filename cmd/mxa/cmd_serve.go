package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mxa-live/mxa/internal/server"
	"github.com/mxa-live/mxa/internal/session"
)

var (
	httpAddr string
	noWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control API",
	Long: `Serves the session and the console driver over HTTP. The session file is
reloaded when it is edited outside mxa unless --no-watch is given.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the session file on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	levels, err := loadLevels()
	if err != nil {
		return err
	}

	addr := cfg.HTTP.Addr
	if httpAddr != "" {
		addr = httpAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, store, newDriver(levels), levels, logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx, addr)
	})

	if !noWatch {
		w, err := session.NewWatcher(store, session.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Close()
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			return w.Close()
		})
	}

	logger.Info("mxa serving",
		zap.String("addr", addr),
		zap.String("session", store.Path()),
		zap.Int("levels", levels.Len()))

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
