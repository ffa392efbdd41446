package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/popeskul/spinecheck/internal/models"
)

type responseRepository struct {
	db *sqlx.DB
}

func NewResponseRepository(db *sqlx.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// Create appends a response and fills its ID and CreatedAt.
func (r *responseRepository) Create(ctx context.Context, resp *models.CheckInResponse) error {
	query := `
		INSERT INTO checkin_responses (assessment_id, day, branch, note, red_flags_matched)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	flags := resp.RedFlagsMatched
	if flags == nil {
		flags = pq.StringArray{}
	}
	err := r.db.QueryRowxContext(ctx, query, resp.AssessmentID, resp.Day, resp.Branch, resp.Note, flags).
		Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create check-in response: %w", err)
	}
	resp.RedFlagsMatched = flags
	return nil
}

func (r *responseRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.CheckInResponse, error) {
	query := `
		SELECT id, assessment_id, day, branch, note, red_flags_matched, created_at
		FROM checkin_responses
		WHERE assessment_id = $1
		ORDER BY created_at ASC, id ASC`

	var responses []*models.CheckInResponse
	if err := r.db.SelectContext(ctx, &responses, query, assessmentID); err != nil {
		return nil, fmt.Errorf("failed to list check-in responses: %w", err)
	}
	return responses, nil
}
