package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/spinecheck/internal/models"
)

const checkInColumns = `id, assessment_id, day, due_at, status, channel, attempts, last_error,
	provider_message_id, sent_at, created_at, updated_at`

// eligible selects due rows that a dispatch run may pick up.
const eligible = `due_at <= $1 AND (status = 'pending' OR (status = 'failed' AND attempts < $2))`

type checkInRepository struct {
	db *sqlx.DB
}

func NewCheckInRepository(db *sqlx.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Enqueue(ctx context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error) {
	query := `
		INSERT INTO checkin_events (assessment_id, day, due_at, status, channel, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
		ON CONFLICT (assessment_id, day) WHERE status <> 'skipped' DO NOTHING
		RETURNING ` + checkInColumns

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin enqueue transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var created []*models.CheckInEvent
	for _, ev := range events {
		var row models.CheckInEvent
		err := tx.QueryRowxContext(ctx, query,
			ev.AssessmentID, ev.Day, ev.DueAt, models.EventStatusPending, ev.Channel, now,
		).StructScan(&row)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue day %d: %w", ev.Day, err)
		}
		created = append(created, &row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit enqueue transaction: %w", err)
	}
	return created, nil
}

func (r *checkInRepository) Claim(ctx context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error) {
	// SKIP LOCKED lets concurrent runs claim disjoint sets; a row is returned to exactly
	// one caller.
	query := `
		UPDATE checkin_events
		SET status = 'sending', updated_at = $1
		WHERE id IN (
			SELECT id FROM checkin_events
			WHERE ` + eligible + `
			ORDER BY due_at ASC, id ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + checkInColumns

	var events []*models.CheckInEvent
	if err := r.db.SelectContext(ctx, &events, query, now, maxAttempts, limit); err != nil {
		return nil, fmt.Errorf("failed to claim due check-ins: %w", err)
	}
	sortByDue(events)
	return events, nil
}

func (r *checkInRepository) ListDue(ctx context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error) {
	query := `
		SELECT ` + checkInColumns + `
		FROM checkin_events
		WHERE ` + eligible + `
		ORDER BY due_at ASC, id ASC
		LIMIT $3`

	var events []*models.CheckInEvent
	if err := r.db.SelectContext(ctx, &events, query, now, maxAttempts, limit); err != nil {
		return nil, fmt.Errorf("failed to list due check-ins: %w", err)
	}
	return events, nil
}

func (r *checkInRepository) MarkSent(ctx context.Context, id int64, providerMessageID string, at time.Time) error {
	query := `
		UPDATE checkin_events
		SET status = 'sent', provider_message_id = $2, sent_at = $3, last_error = NULL, updated_at = $3
		WHERE id = $1 AND status = 'sending'`

	msgID := sql.NullString{String: providerMessageID, Valid: providerMessageID != ""}
	return r.stamp(ctx, "sent", query, id, msgID, at)
}

func (r *checkInRepository) MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error {
	query := `
		UPDATE checkin_events
		SET status = 'failed', attempts = attempts + 1, last_error = $2, updated_at = $3
		WHERE id = $1 AND status = 'sending'`

	return r.stamp(ctx, "failed", query, id, errMsg, at)
}

func (r *checkInRepository) MarkSkipped(ctx context.Context, id int64, reason string, at time.Time) error {
	query := `
		UPDATE checkin_events
		SET status = 'skipped', last_error = $2, updated_at = $3
		WHERE id = $1 AND status = 'sending'`

	return r.stamp(ctx, "skipped", query, id, reason, at)
}

func (r *checkInRepository) stamp(ctx context.Context, status, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark check-in %s: %w", status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark check-in %s: %w", status, err)
	}
	if n == 0 {
		return ErrNotClaimed
	}
	return nil
}

func (r *checkInRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]*models.CheckInEvent, error) {
	query := `
		SELECT ` + checkInColumns + `
		FROM checkin_events
		WHERE assessment_id = $1
		ORDER BY day ASC, id ASC`

	var events []*models.CheckInEvent
	if err := r.db.SelectContext(ctx, &events, query, assessmentID); err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return events, nil
}

// sortByDue restores claim order, which RETURNING does not preserve.
func sortByDue(events []*models.CheckInEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].DueAt.Equal(events[j].DueAt) {
			return events[i].DueAt.Before(events[j].DueAt)
		}
		return events[i].ID < events[j].ID
	})
}
