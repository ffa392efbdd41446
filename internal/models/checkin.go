// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Day is a check-in offset in days from guide delivery.
type Day int

const (
	Day3  Day = 3
	Day7  Day = 7
	Day14 Day = 14
)

// CheckInDays is the fixed check-in schedule.
var CheckInDays = []Day{Day3, Day7, Day14}

func (d Day) IsValid() bool {
	switch d {
	case Day3, Day7, Day14:
		return true
	}
	return false
}

// Offset returns the delay after delivery at which the check-in falls due.
func (d Day) Offset() time.Duration {
	return time.Duration(d) * 24 * time.Hour
}

// Branch is the trend a recipient reports for their symptoms.
type Branch string

const (
	BranchBetter Branch = "better"
	BranchSame   Branch = "same"
	BranchWorse  Branch = "worse"
)

// Branches lists every branch in display order.
var Branches = []Branch{BranchBetter, BranchSame, BranchWorse}

func (b Branch) String() string { return string(b) }

func (b Branch) IsValid() bool {
	switch b {
	case BranchBetter, BranchSame, BranchWorse:
		return true
	}
	return false
}

func ParseBranch(s string) (Branch, error) {
	b := Branch(strings.ToLower(strings.TrimSpace(s)))
	if !b.IsValid() {
		return "", fmt.Errorf("invalid branch %q", s)
	}
	return b, nil
}

// Channel is the delivery channel of a check-in.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// EventStatus is the lifecycle state of a queued check-in.
type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	// EventStatusSending marks a row claimed by a dispatch run.
	EventStatusSending EventStatus = "sending"
	EventStatusSent    EventStatus = "sent"
	EventStatusFailed  EventStatus = "failed"
	EventStatusSkipped EventStatus = "skipped"
)

func (s EventStatus) String() string { return string(s) }

// CheckInEvent is a queued follow-up message for an assessment.
type CheckInEvent struct {
	ID                int64          `db:"id" json:"id"`
	AssessmentID      string         `db:"assessment_id" json:"assessment_id"`
	Day               Day            `db:"day" json:"day"`
	DueAt             time.Time      `db:"due_at" json:"due_at"`
	Status            EventStatus    `db:"status" json:"status"`
	Channel           Channel        `db:"channel" json:"channel"`
	Attempts          int            `db:"attempts" json:"attempts"`
	LastError         sql.NullString `db:"last_error" json:"last_error,omitempty"`
	ProviderMessageID sql.NullString `db:"provider_message_id" json:"provider_message_id,omitempty"`
	SentAt            sql.NullTime   `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Assessment is the subset of a self-assessment the check-in flow reads.
type Assessment struct {
	ID            string         `db:"id"`
	FirstName     sql.NullString `db:"first_name"`
	Email         sql.NullString `db:"email"`
	Phone         sql.NullString `db:"phone"`
	SMSConsent    bool           `db:"sms_consent"`
	DiagnosisCode string         `db:"diagnosis_code"`
	GuideTier     string         `db:"guide_tier"`
	DeliveredAt   sql.NullTime   `db:"delivered_at"`
}

// MessageTemplate is an editable message shell.
type MessageTemplate struct {
	Key            string         `db:"key"`
	Channel        Channel        `db:"channel"`
	Subject        sql.NullString `db:"subject"`
	ShellText      string         `db:"shell_text"`
	DisclaimerText sql.NullString `db:"disclaimer_text"`
	CTAURL         sql.NullString `db:"cta_url"`
}

// TemplateKey returns the template key for a check-in day and channel.
func TemplateKey(day Day, channel Channel) string {
	return fmt.Sprintf("checkin_d%d_%s", day, channel)
}

// DiagnosisInsert is diagnosis-specific copy spliced into a template.
type DiagnosisInsert struct {
	DiagnosisCode string `db:"diagnosis_code"`
	Day           Day    `db:"day"`
	Branch        Branch `db:"branch"`
	InsertText    string `db:"insert_text"`
}

// CheckInResponse is a recipient's reply to a check-in. Rows are append-only.
type CheckInResponse struct {
	ID              int64          `db:"id" json:"id"`
	AssessmentID    string         `db:"assessment_id" json:"assessment_id"`
	Day             Day            `db:"day" json:"day"`
	Branch          Branch         `db:"branch" json:"branch"`
	Note            sql.NullString `db:"note" json:"note,omitempty"`
	RedFlagsMatched pq.StringArray `db:"red_flags_matched" json:"red_flags_matched"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// SMSOptOut records that a phone number must not receive SMS.
type SMSOptOut struct {
	Phone        string    `db:"phone"`
	OptedOutAt   time.Time `db:"opted_out_at"`
	OptOutSource string    `db:"opt_out_source"`
}
