package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/settings"
)

var (
	_ auth.Repo     = (*SessionRepo)(nil)
	_ settings.Repo = (*SettingsRepo)(nil)
)

// SessionRepo keeps the single logged-in session.
type SessionRepo struct {
	db *sql.DB
}

func (r *SessionRepo) Load(ctx context.Context) (auth.Session, error) {
	var (
		s       auth.Session
		isAdmin int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token, username, is_admin FROM session WHERE id = 1`,
	).Scan(&s.Token, &s.Username, &isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, nil
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("query session: %w", err)
	}
	s.IsAdmin = isAdmin != 0
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s auth.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session (id, token, username, is_admin, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			username = excluded.username,
			is_admin = excluded.is_admin,
			updated_at = excluded.updated_at`,
		s.Token, s.Username, boolToInt(s.IsAdmin),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SettingsRepo keeps the last used questionnaire settings.
type SettingsRepo struct {
	db *sql.DB
}

func (r *SettingsRepo) Load(ctx context.Context) (settings.Settings, error) {
	var (
		s      settings.Settings
		retain int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT retain_prompt_template, selected_prompt_template_id FROM settings WHERE id = 1`,
	).Scan(&retain, &s.SelectedPromptTemplateID)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Settings{}, nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	s.RetainPromptTemplate = retain != 0
	return s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s settings.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, retain_prompt_template, selected_prompt_template_id, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			retain_prompt_template = excluded.retain_prompt_template,
			selected_prompt_template_id = excluded.selected_prompt_template_id,
			updated_at = excluded.updated_at`,
		boolToInt(s.RetainPromptTemplate), s.SelectedPromptTemplateID,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
