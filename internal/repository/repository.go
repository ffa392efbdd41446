package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// repositoryImpl is the concrete implementation of Repository interface.
type repositoryImpl struct {
	db         *sqlx.DB
	checkIn    CheckInRepository
	assessment AssessmentRepository
	content    ContentRepository
	response   ResponseRepository
	optOut     OptOutRepository
	settings   SettingsRepository
	operator   OperatorRepository
}

// NewRepository creates a new repository instance.
func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:         db,
		checkIn:    NewCheckInRepository(db),
		assessment: NewAssessmentRepository(db),
		content:    NewContentRepository(db),
		response:   NewResponseRepository(db),
		optOut:     NewOptOutRepository(db),
		settings:   NewSettingsRepository(db),
		operator:   NewOperatorRepository(db),
	}
}

func (r *repositoryImpl) CheckIn() CheckInRepository       { return r.checkIn }
func (r *repositoryImpl) Assessment() AssessmentRepository { return r.assessment }
func (r *repositoryImpl) Content() ContentRepository       { return r.content }
func (r *repositoryImpl) Response() ResponseRepository     { return r.response }
func (r *repositoryImpl) OptOut() OptOutRepository         { return r.optOut }
func (r *repositoryImpl) Settings() SettingsRepository     { return r.settings }
func (r *repositoryImpl) Operator() OperatorRepository     { return r.operator }

// Ping checks if the database connection is healthy.
func (r *repositoryImpl) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}
