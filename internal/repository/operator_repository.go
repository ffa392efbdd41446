package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/spinecheck/internal/models"
)

type operatorRepository struct {
	db *sqlx.DB
}

func NewOperatorRepository(db *sqlx.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

// GetByKeyHash returns the enabled operator owning the hex SHA-256 key hash.
func (r *operatorRepository) GetByKeyHash(ctx context.Context, keyHash string) (*models.Operator, error) {
	query := `
		SELECT id, name, role, api_key_hash, disabled_at, created_at
		FROM operators
		WHERE api_key_hash = $1 AND disabled_at IS NULL`

	var op models.Operator
	err := r.db.GetContext(ctx, &op, query, keyHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return &op, nil
}
