package model

import "time"

type EventType string

const (
	EventOpen        EventType = "open"
	EventClick       EventType = "click"
	EventUnsubscribe EventType = "unsubscribe"
	EventDispatch    EventType = "dispatch"
)

func (t EventType) String() string { return string(t) }

func (t EventType) Valid() bool {
	switch t {
	case EventOpen, EventClick, EventUnsubscribe, EventDispatch:
		return true
	}
	return false
}

// EngagementEvent is an append-only analytics row (ClickHouse).
type EngagementEvent struct {
	ID        string    `db:"id"`
	TenantID  int64     `db:"tenant_id"`
	MessageID string    `db:"message_id"`
	Type      EventType `db:"type"`
	Channel   Channel   `db:"channel"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}
