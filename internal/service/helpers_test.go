package service_test

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/repository"
	"github.com/popeskul/spinecheck/internal/token"
)

const testBaseURL = "https://app.example.com"

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.SecretsFromStrings([]string{"test-secret"}))
	require.NoError(t, err)
	return codec
}

func newTestRenderer(t *testing.T, codec *token.Codec) *render.Renderer {
	t.Helper()
	return render.NewRenderer(render.Config{BaseURL: testBaseURL}, codec)
}

func emailAssessment(id string) *models.Assessment {
	return &models.Assessment{
		ID:            id,
		FirstName:     sql.NullString{String: "Dana", Valid: true},
		Email:         sql.NullString{String: id + "@example.com", Valid: true},
		DiagnosisCode: "disc",
		DeliveredAt:   sql.NullTime{Time: testNow.Add(-30 * 24 * time.Hour), Valid: true},
	}
}

func smsAssessment(id, phone string) *models.Assessment {
	return &models.Assessment{
		ID:            id,
		FirstName:     sql.NullString{String: "Sam", Valid: true},
		Phone:         sql.NullString{String: phone, Valid: true},
		SMSConsent:    true,
		DiagnosisCode: "disc",
		DeliveredAt:   sql.NullTime{Time: testNow.Add(-30 * 24 * time.Hour), Valid: true},
	}
}

// memRepo is an in-memory repository whose claim step follows the same eligibility and
// exclusivity rules as the Postgres one.
type memRepo struct {
	checkIns    *memCheckIns
	assessments *memAssessments
	content     *memContent
}

func newMemRepo() *memRepo {
	return &memRepo{
		checkIns:    &memCheckIns{rows: map[int64]*models.CheckInEvent{}},
		assessments: &memAssessments{rows: map[string]*models.Assessment{}},
		content: &memContent{
			templates: map[string]*models.MessageTemplate{},
			inserts:   map[string]*models.DiagnosisInsert{},
		},
	}
}

func (r *memRepo) Ping(context.Context) error                            { return nil }
func (r *memRepo) CheckIn() repository.CheckInRepository                 { return r.checkIns }
func (r *memRepo) Assessment() repository.AssessmentRepository           { return r.assessments }
func (r *memRepo) Content() repository.ContentRepository                 { return r.content }
func (r *memRepo) Response() repository.ResponseRepository               { return nil }
func (r *memRepo) OptOut() repository.OptOutRepository                   { return nil }
func (r *memRepo) Settings() repository.SettingsRepository               { return nil }
func (r *memRepo) Operator() repository.OperatorRepository               { return nil }
func (r *memRepo) addAssessment(a *models.Assessment)                    { r.assessments.rows[a.ID] = a }
func (r *memRepo) addTemplate(tmpl *models.MessageTemplate)              { r.content.templates[tmpl.Key] = tmpl }
func (r *memRepo) event(id int64) models.CheckInEvent                    { return r.checkIns.get(id) }
func (r *memRepo) addEvent(ev *models.CheckInEvent) *models.CheckInEvent { return r.checkIns.add(ev) }

type memCheckIns struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.CheckInEvent
}

func (m *memCheckIns) add(ev *models.CheckInEvent) *models.CheckInEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row := *ev
	row.ID = m.nextID
	if row.Status == "" {
		row.Status = models.EventStatusPending
	}
	m.rows[row.ID] = &row
	return &row
}

func (m *memCheckIns) get(id int64) models.CheckInEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memCheckIns) Enqueue(_ context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error) {
	var created []*models.CheckInEvent
	for _, ev := range events {
		if m.hasLive(ev.AssessmentID, ev.Day) {
			continue
		}
		created = append(created, m.add(ev))
	}
	return created, nil
}

func (m *memCheckIns) hasLive(assessmentID string, day models.Day) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.AssessmentID == assessmentID && row.Day == day && row.Status != models.EventStatusSkipped {
			return true
		}
	}
	return false
}

func (m *memCheckIns) due(now time.Time, limit, maxAttempts int) []*models.CheckInEvent {
	var due []*models.CheckInEvent
	for _, row := range m.rows {
		if row.DueAt.After(now) {
			continue
		}
		if row.Status == models.EventStatusPending ||
			(row.Status == models.EventStatusFailed && row.Attempts < maxAttempts) {
			due = append(due, row)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].ID < due[j].ID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

func (m *memCheckIns) Claim(_ context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var claimed []*models.CheckInEvent
	for _, row := range m.due(now, limit, maxAttempts) {
		row.Status = models.EventStatusSending
		cp := *row
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (m *memCheckIns) ListDue(_ context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CheckInEvent
	for _, row := range m.due(now, limit, maxAttempts) {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCheckIns) stamp(id int64, fn func(*models.CheckInEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != models.EventStatusSending {
		return repository.ErrNotClaimed
	}
	fn(row)
	return nil
}

func (m *memCheckIns) MarkSent(_ context.Context, id int64, providerMessageID string, at time.Time) error {
	return m.stamp(id, func(row *models.CheckInEvent) {
		row.Status = models.EventStatusSent
		row.ProviderMessageID = sql.NullString{String: providerMessageID, Valid: providerMessageID != ""}
		row.SentAt = sql.NullTime{Time: at, Valid: true}
	})
}

func (m *memCheckIns) MarkFailed(_ context.Context, id int64, errMsg string, _ time.Time) error {
	return m.stamp(id, func(row *models.CheckInEvent) {
		row.Status = models.EventStatusFailed
		row.Attempts++
		row.LastError = sql.NullString{String: errMsg, Valid: true}
	})
}

func (m *memCheckIns) MarkSkipped(_ context.Context, id int64, reason string, _ time.Time) error {
	return m.stamp(id, func(row *models.CheckInEvent) {
		row.Status = models.EventStatusSkipped
		row.LastError = sql.NullString{String: reason, Valid: true}
	})
}

func (m *memCheckIns) ListByAssessment(_ context.Context, assessmentID string) ([]*models.CheckInEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CheckInEvent
	for _, row := range m.rows {
		if row.AssessmentID == assessmentID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAssessments struct {
	rows map[string]*models.Assessment
}

func (m *memAssessments) GetByID(_ context.Context, id string) (*models.Assessment, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

type memContent struct {
	templates map[string]*models.MessageTemplate
	inserts   map[string]*models.DiagnosisInsert
}

func insertKey(code string, day models.Day, branch models.Branch) string {
	return code + "/" + strconv.Itoa(int(day)) + "/" + branch.String()
}

func (m *memContent) GetTemplate(_ context.Context, key string) (*models.MessageTemplate, error) {
	tmpl, ok := m.templates[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tmpl, nil
}

func (m *memContent) GetInsert(_ context.Context, code string, day models.Day, branch models.Branch) (*models.DiagnosisInsert, error) {
	ins, ok := m.inserts[insertKey(code, day, branch)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ins, nil
}

// fakeAdapter records deliveries. Suppression and send failures are configurable.
type fakeAdapter struct {
	ch         models.Channel
	mu         sync.Mutex
	sent       []channel.Message
	suppressed map[string]bool
	sendErr    error
	suppressFn func(ctx context.Context, to string) (bool, error)
}

func newFakeAdapter(ch models.Channel) *fakeAdapter {
	return &fakeAdapter{ch: ch, suppressed: map[string]bool{}}
}

func (f *fakeAdapter) Channel() models.Channel { return f.ch }

func (f *fakeAdapter) Suppressed(ctx context.Context, to string) (bool, error) {
	if f.suppressFn != nil {
		return f.suppressFn(ctx, to)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suppressed[to], nil
}

func (f *fakeAdapter) Send(_ context.Context, msg channel.Message) (*channel.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return &channel.Result{ProviderMessageID: "provider-" + msg.To}, nil
}

func (f *fakeAdapter) sends() []channel.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]channel.Message(nil), f.sent...)
}
