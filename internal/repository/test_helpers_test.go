package repository_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/spinecheck/internal/models"
)

func insertTestAssessment(t *testing.T, db *sqlx.DB, id string, deliveredAt *time.Time) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO assessments (id, first_name, email, phone, sms_consent, diagnosis_code, guide_tier, delivered_at)
		VALUES ($1, 'Dana', $2, '+12068773590', TRUE, 'disc_herniation', 'basic', $3)`,
		id, fmt.Sprintf("%s@example.com", id), deliveredAt)
	require.NoError(t, err)
}

func insertTestEvent(t *testing.T, db *sqlx.DB, assessmentID string, day models.Day, dueAt time.Time, status models.EventStatus, attempts int) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO checkin_events (assessment_id, day, due_at, status, channel, attempts)
		VALUES ($1, $2, $3, $4, 'email', $5)
		RETURNING id`,
		assessmentID, day, dueAt, status, attempts).Scan(&id)
	require.NoError(t, err)
	return id
}

func eventStatus(t *testing.T, db *sqlx.DB, id int64) (models.EventStatus, int) {
	t.Helper()
	var row struct {
		Status   models.EventStatus `db:"status"`
		Attempts int                `db:"attempts"`
	}
	require.NoError(t, db.Get(&row, `SELECT status, attempts FROM checkin_events WHERE id = $1`, id))
	return row.Status, row.Attempts
}

func newEvents(assessmentID string, deliveredAt time.Time) []*models.CheckInEvent {
	events := make([]*models.CheckInEvent, 0, len(models.CheckInDays))
	for _, d := range models.CheckInDays {
		events = append(events, &models.CheckInEvent{
			AssessmentID: assessmentID,
			Day:          d,
			DueAt:        deliveredAt.Add(d.Offset()),
			Channel:      models.ChannelEmail,
		})
	}
	return events
}
