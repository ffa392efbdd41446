package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type optOutRepository struct {
	db *sqlx.DB
}

func NewOptOutRepository(db *sqlx.DB) OptOutRepository {
	return &optOutRepository{db: db}
}

func (r *optOutRepository) IsOptedOut(ctx context.Context, phone string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM sms_opt_outs WHERE phone = $1)`
	if err := r.db.GetContext(ctx, &exists, query, phone); err != nil {
		return false, fmt.Errorf("failed to check sms opt-out: %w", err)
	}
	return exists, nil
}

// OptOut records an opt-out. The first recorded source and time are kept.
func (r *optOutRepository) OptOut(ctx context.Context, phone, source string, at time.Time) error {
	query := `
		INSERT INTO sms_opt_outs (phone, opted_out_at, opt_out_source)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, phone, at, source); err != nil {
		return fmt.Errorf("failed to record sms opt-out: %w", err)
	}
	return nil
}

func (r *optOutRepository) IsEmailSuppressed(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM email_suppressions WHERE email = $1)`
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email suppression: %w", err)
	}
	return exists, nil
}
