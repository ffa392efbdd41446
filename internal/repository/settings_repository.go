package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const redFlagTermsKey = "red_flag_terms"

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// RedFlagTerms returns the configured term list stored as a JSON array.
func (r *settingsRepository) RedFlagTerms(ctx context.Context) ([]string, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT value FROM app_settings WHERE key = $1`, redFlagTermsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load red flag terms: %w", err)
	}

	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, fmt.Errorf("failed to decode red flag terms: %w", err)
	}
	return terms, nil
}
