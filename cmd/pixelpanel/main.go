package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JamieOgun/PixelPanel/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pixelpanel",
	Short: "PixelPanel - comic creation service",
	Long: `PixelPanel turns sketches and prompts into comic panels.

It serves the signup and login pages, the comic generation and storage
APIs, narration and voiceover generation, and credit purchases.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app := NewApp(cfg, logger)

		if err := app.WithPersistence(ctx); err != nil {
			return err
		}

		if err := app.WithAnalytics(ctx); err != nil {
			return err
		}

		if err := app.WithHTTPServer(ctx); err != nil {
			return err
		}

		if err := app.WithAuth(ctx); err != nil {
			return err
		}

		if err := app.WithControllers(ctx); err != nil {
			return err
		}

		go func() {
			if err := app.srv.Serve(cfg.Server.Address()); err != nil {
				logger.Fatal("server stopped", zap.Error(err))
			}
		}()

		logger.Info("listening", zap.String("addr", cfg.Server.Address()))

		waitExitSignal()
		return app.srv.Shutdown(context.Background())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		app := NewApp(cfg, logger)
		if err := app.WithPersistence(cmd.Context()); err != nil {
			return err
		}

		logger.Info("migrations applied")
		return nil
	},
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
