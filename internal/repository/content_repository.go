package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/spinecheck/internal/models"
)

type contentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetTemplate(ctx context.Context, key string) (*models.MessageTemplate, error) {
	query := `
		SELECT key, channel, subject, shell_text, disclaimer_text, cta_url
		FROM message_templates
		WHERE key = $1`

	var t models.MessageTemplate
	err := r.db.GetContext(ctx, &t, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template %s: %w", key, err)
	}
	return &t, nil
}

func (r *contentRepository) GetInsert(ctx context.Context, diagnosisCode string, day models.Day, branch models.Branch) (*models.DiagnosisInsert, error) {
	query := `
		SELECT diagnosis_code, day, branch, insert_text
		FROM diagnosis_inserts
		WHERE diagnosis_code = $1 AND day = $2 AND branch = $3`

	var ins models.DiagnosisInsert
	err := r.db.GetContext(ctx, &ins, query, diagnosisCode, day, branch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnosis insert: %w", err)
	}
	return &ins, nil
}
