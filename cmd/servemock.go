package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/logging"
	"github.com/similr/similr/internal/mockapi"
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run an in-memory backend for local play",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.MockAddr = addr
		}
		logger, err := logging.Console(cfg)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		opts := []mockapi.Option{mockapi.WithLogger(logger)}
		if n, _ := cmd.Flags().GetInt("milestone"); n > 0 {
			opts = append(opts, mockapi.WithMilestone(n))
		}
		if d, _ := cmd.Flags().GetDuration("latency"); d > 0 {
			opts = append(opts, mockapi.WithLatency(d))
		}

		srv := &http.Server{
			Addr:              cfg.MockAddr,
			Handler:           mockapi.New(opts...).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("mock backend listening", zap.String("addr", cfg.MockAddr))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down mock backend")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveMockCmd.Flags().String("addr", "", "Listen address (default $SIMILR_MOCK_ADDR)")
	serveMockCmd.Flags().Int("milestone", 0, "Answers needed to unlock the report")
	serveMockCmd.Flags().Duration("latency", 0, "Delay added to every response")
}
