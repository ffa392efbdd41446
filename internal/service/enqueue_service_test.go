package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/repository"
	"github.com/popeskul/spinecheck/internal/repository/mocks"
	"github.com/popeskul/spinecheck/internal/service"
)

type enqueueMocks struct {
	repo        *mocks.MockRepository
	checkIns    *mocks.MockCheckInRepository
	assessments *mocks.MockAssessmentRepository
	responses   *mocks.MockResponseRepository
}

func newEnqueueService(t *testing.T) (service.EnqueueService, enqueueMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := enqueueMocks{
		repo:        mocks.NewMockRepository(ctrl),
		checkIns:    mocks.NewMockCheckInRepository(ctrl),
		assessments: mocks.NewMockAssessmentRepository(ctrl),
		responses:   mocks.NewMockResponseRepository(ctrl),
	}
	m.repo.EXPECT().CheckIn().Return(m.checkIns).AnyTimes()
	m.repo.EXPECT().Assessment().Return(m.assessments).AnyTimes()
	m.repo.EXPECT().Response().Return(m.responses).AnyTimes()
	return service.NewEnqueueService(m.repo, nil, zap.NewNop()), m
}

func TestEnqueueService_QueuesEveryCheckInDay(t *testing.T) {
	svc, m := newEnqueueService(t)
	a := emailAssessment("a-1")
	delivered := a.DeliveredAt.Time

	m.assessments.EXPECT().GetByID(gomock.Any(), "a-1").Return(a, nil)
	m.checkIns.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error) {
			require.Len(t, events, 3)
			for i, day := range []models.Day{models.Day3, models.Day7, models.Day14} {
				assert.Equal(t, "a-1", events[i].AssessmentID)
				assert.Equal(t, day, events[i].Day)
				assert.Equal(t, delivered.Add(time.Duration(day)*24*time.Hour), events[i].DueAt)
				assert.Equal(t, models.ChannelEmail, events[i].Channel)
				assert.Equal(t, models.EventStatusPending, events[i].Status)
			}
			return events, nil
		})

	result, err := svc.EnqueueForAssessment(context.Background(), " a-1 ")
	require.NoError(t, err)
	assert.Equal(t, &service.EnqueueResult{Queued: 3, Skipped: 0}, result)
}

func TestEnqueueService_ReportsExistingDaysAsSkipped(t *testing.T) {
	svc, m := newEnqueueService(t)
	m.assessments.EXPECT().GetByID(gomock.Any(), "a-1").Return(emailAssessment("a-1"), nil)
	m.checkIns.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error) {
			return events[2:], nil
		})

	result, err := svc.EnqueueForAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Queued)
	assert.Equal(t, 2, result.Skipped)
}

func TestEnqueueService_IdempotentAgainstRepository(t *testing.T) {
	repo := newMemRepo()
	repo.addAssessment(emailAssessment("a-1"))
	svc := service.NewEnqueueService(repo, nil, zap.NewNop())

	first, err := svc.EnqueueForAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, &service.EnqueueResult{Queued: 3}, first)

	second, err := svc.EnqueueForAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, &service.EnqueueResult{Queued: 0, Skipped: 3}, second)

	events, err := repo.CheckIn().ListByAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestEnqueueService_ChoosesSMSWhenNoEmail(t *testing.T) {
	svc, m := newEnqueueService(t)
	m.assessments.EXPECT().GetByID(gomock.Any(), "a-sms").Return(smsAssessment("a-sms", "+15551234567"), nil)
	m.checkIns.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error) {
			for _, ev := range events {
				assert.Equal(t, models.ChannelSMS, ev.Channel)
			}
			return events, nil
		})

	_, err := svc.EnqueueForAssessment(context.Background(), "a-sms")
	require.NoError(t, err)
}

func TestEnqueueService_Errors(t *testing.T) {
	noConsent := smsAssessment("a-2", "+15551234567")
	noConsent.SMSConsent = false
	undelivered := emailAssessment("a-3")
	undelivered.DeliveredAt = sql.NullTime{}

	tests := []struct {
		name       string
		id         string
		setupMocks func(m enqueueMocks)
		wantErr    error
	}{
		{
			name:       "empty id",
			id:         "  ",
			setupMocks: func(enqueueMocks) {},
			wantErr:    service.ErrInvalidRequest,
		},
		{
			name: "assessment not found",
			id:   "missing",
			setupMocks: func(m enqueueMocks) {
				m.assessments.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, repository.ErrNotFound)
			},
			wantErr: service.ErrAssessmentNotFound,
		},
		{
			name: "no reachable contact",
			id:   "a-2",
			setupMocks: func(m enqueueMocks) {
				m.assessments.EXPECT().GetByID(gomock.Any(), "a-2").Return(noConsent, nil)
			},
			wantErr: service.ErrNoContact,
		},
		{
			name: "guide not delivered",
			id:   "a-3",
			setupMocks: func(m enqueueMocks) {
				m.assessments.EXPECT().GetByID(gomock.Any(), "a-3").Return(undelivered, nil)
			},
			wantErr: service.ErrAssessmentNotDelivered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newEnqueueService(t)
			tt.setupMocks(m)

			result, err := svc.EnqueueForAssessment(context.Background(), tt.id)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnqueueService_PersistenceErrors(t *testing.T) {
	dbErr := errors.New("connection refused")

	t.Run("lookup", func(t *testing.T) {
		svc, m := newEnqueueService(t)
		m.assessments.EXPECT().GetByID(gomock.Any(), "a-1").Return(nil, dbErr)

		_, err := svc.EnqueueForAssessment(context.Background(), "a-1")
		var pe *service.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("enqueue", func(t *testing.T) {
		svc, m := newEnqueueService(t)
		m.assessments.EXPECT().GetByID(gomock.Any(), "a-1").Return(emailAssessment("a-1"), nil)
		m.checkIns.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil, dbErr)

		result, err := svc.EnqueueForAssessment(context.Background(), "a-1")
		assert.Nil(t, result)
		var pe *service.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "enqueue check-ins", pe.Op)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestEnqueueService_History(t *testing.T) {
	svc, m := newEnqueueService(t)
	events := []*models.CheckInEvent{{ID: 1, AssessmentID: "a-1", Day: models.Day3}}
	m.assessments.EXPECT().GetByID(gomock.Any(), "a-1").Return(emailAssessment("a-1"), nil)
	m.checkIns.EXPECT().ListByAssessment(gomock.Any(), "a-1").Return(events, nil)
	m.responses.EXPECT().ListByAssessment(gomock.Any(), "a-1").Return(nil, nil)

	history, err := svc.History(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", history.AssessmentID)
	assert.Equal(t, events, history.Events)
	assert.NotNil(t, history.Responses)
	assert.Empty(t, history.Responses)
}

func TestEnqueueService_HistoryUnknownAssessment(t *testing.T) {
	svc, m := newEnqueueService(t)
	m.assessments.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, repository.ErrNotFound)

	_, err := svc.History(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrAssessmentNotFound)
}
