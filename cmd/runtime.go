package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/app"
	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/config"
	"github.com/similr/similr/internal/feedback"
	"github.com/similr/similr/internal/history"
	"github.com/similr/similr/internal/logging"
	"github.com/similr/similr/internal/store"
)

// runtime is everything a command needs to talk to the backend.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *store.Store
	session *auth.Provider
	client  *api.Client
}

// openRuntime loads config, opens the store and restores the saved session.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	session, err := auth.NewProvider(cmd.Context(), st.SessionRepo(), logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	client, err := api.New(api.Config{BaseURL: cfg.BaseURL(), Timeout: cfg.HTTPTimeout}, session, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	logger.Debug("runtime ready", zap.String("db", dbPath), zap.String("backend", cfg.BaseURL()))
	return &runtime{cfg: cfg, logger: logger, store: st, session: session, client: client}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Sync()
	r.store.Close()
}

// options builds the screen dependencies. Answers go through the local
// history recorder before reaching the backend.
func (r *runtime) options() app.Options {
	answers := r.store.AnswerLog()
	return app.Options{
		Backend:       history.WithRecording(r.client, answers, r.logger),
		Authenticator: r.client,
		Session:       r.session,
		Settings:      r.store.SettingsRepo(),
		Templates:     api.NewTemplateCache(r.client, r.cfg.TemplateCacheTTL),
		Suggester:     r.client,
		Insights:      r.client,
		Feedback:      feedback.NewService(r.client, r.logger),
		History:       answers,
		Config:        r.cfg,
		Logger:        r.logger,
	}
}

// runApp opens the runtime and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	return app.Run(rt.options())
}
