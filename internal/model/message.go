package model

import (
	"database/sql"
	"time"
)

type MessageStatus string

const (
	StatusQueued  MessageStatus = "queued"
	StatusSent    MessageStatus = "sent"
	StatusFailed  MessageStatus = "failed"
	StatusOpened  MessageStatus = "opened"
	StatusClicked MessageStatus = "clicked"
)

func (s MessageStatus) String() string {
	return string(s)
}

func (s MessageStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusSent, StatusFailed, StatusOpened, StatusClicked:
		return true
	}
	return false
}

// statusRank orders engagement progression so repeated tracking events
// never move a message backwards (clicked stays clicked on a later open).
var statusRank = map[MessageStatus]int{
	StatusQueued:  0,
	StatusFailed:  1,
	StatusSent:    2,
	StatusOpened:  3,
	StatusClicked: 4,
}

// Rank returns the engagement rank of the status; unknown statuses rank lowest.
func (s MessageStatus) Rank() int { return statusRank[s] }

// Message is the DB entity persisted in the messages table. Rows are created
// by the CRM collaborator; this service only flips status/tracking fields.
type Message struct {
	ID                string         `db:"id"`
	TenantID          int64          `db:"tenant_id"`
	Channel           Channel        `db:"channel"`
	ToAddr            string         `db:"to_addr"`
	FromAddr          sql.NullString `db:"from_addr"`
	Subject           sql.NullString `db:"subject"`
	Body              sql.NullString `db:"body"`
	Provider          sql.NullString `db:"provider"`
	ProviderMessageID sql.NullString `db:"provider_message_id"`
	Status            MessageStatus  `db:"status"`
	ErrorMessage      sql.NullString `db:"error_message"`
	Meta              sql.NullString `db:"meta"` // channel-specific JSON payload
	OpenedAt          sql.NullTime   `db:"opened_at"`
	ClickedAt         sql.NullTime   `db:"clicked_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
