package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/spinecheck/internal/models"
)

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	query := `
		SELECT id, first_name, email, phone, sms_consent, diagnosis_code, guide_tier, delivered_at
		FROM assessments
		WHERE id = $1`

	var a models.Assessment
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return &a, nil
}
