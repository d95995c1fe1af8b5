package model

import (
	"database/sql"
	"time"
)

type CallStatus string

const (
	CallQueued     CallStatus = "queued"
	CallRinging    CallStatus = "ringing"
	CallInProgress CallStatus = "in_progress"
	CallCompleted  CallStatus = "completed"
	CallFailed     CallStatus = "failed"
)

func (s CallStatus) String() string { return string(s) }

// Terminal reports whether the status is final; terminal calls never
// transition again, regardless of later webhook deliveries.
func (s CallStatus) Terminal() bool {
	return s == CallCompleted || s == CallFailed
}

func (s CallStatus) Valid() bool {
	switch s {
	case CallQueued, CallRinging, CallInProgress, CallCompleted, CallFailed:
		return true
	}
	return false
}

// Call is the DB entity persisted in the calls table. Created when a call is
// started; mutated only by webhook ingestion.
type Call struct {
	ID             string         `db:"id"`
	TenantID       int64          `db:"tenant_id"`
	LeadID         int64          `db:"lead_id"`
	ProviderCallID string         `db:"provider_call_id"`
	Provider       string         `db:"provider"`
	FromNumber     sql.NullString `db:"from_number"`
	ToNumber       sql.NullString `db:"to_number"`
	Direction      sql.NullString `db:"direction"`
	Status         CallStatus     `db:"status"`
	DurationSec    sql.NullInt64  `db:"duration_sec"`
	RecordingURL   sql.NullString `db:"recording_url"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// CallEvent is one vendor webhook delivery mapped to canonical fields.
type CallEvent struct {
	ProviderCallID string
	Status         CallStatus
	DurationSec    int64
	RecordingURL   string
	From           string
	To             string
	Direction      string
}
