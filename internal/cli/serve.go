package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/contextcraft/internal/pipeline"
	"github.com/ppiankov/contextcraft/internal/server"
)

var (
	serveAddr  string
	serveDebug bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transform HTTP API",
	Long: `Serve exposes the rewrite pipeline over HTTP:

  GET  /health      liveness probe
  POST /transform   {"markdown": "...", "profile": "startup", "strength": "moderate"}

Example:
  contextcraft serve
  contextcraft serve --addr 127.0.0.1:8080 --debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "0.0.0.0:4000", "listen address")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "include debug block in responses")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("debug") {
		cfg.Server.Debug = serveDebug
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Requests still fail per call with a clear error; this is an early hint
	if err := p.Probe(ctx); err != nil {
		logger.Warn("LLM provider not ready", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}

	fmt.Fprintf(os.Stderr, "API running on http://%s\n", cfg.Server.Addr)
	if err := server.New(p, cfg.Server, logger.Named("server")).ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

var _ server.Transformer = (*pipeline.Pipeline)(nil)
