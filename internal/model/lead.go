package model

import (
	"database/sql"
	"time"
)

// Lead is a CRM contact. The gateway touches leads only through verified
// portal tokens (unsubscribe) and telephony (click-to-call).
type Lead struct {
	ID             int64          `db:"id"`
	TenantID       int64          `db:"tenant_id"`
	Email          sql.NullString `db:"email"`
	Phone          sql.NullString `db:"phone"`
	Unsubscribed   bool           `db:"unsubscribed"`
	UnsubscribedAt sql.NullTime   `db:"unsubscribed_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
