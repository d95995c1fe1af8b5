package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// EventsRepository stores engagement events in ClickHouse for reporting.
type EventsRepository interface {
	Insert(ctx context.Context, ev model.EngagementEvent) error
	ListByTenant(ctx context.Context, tenantID int64, typ model.EventType, limit, offset int) ([]model.EngagementEvent, error)
}

type EventsRepositoryImpl struct {
	db *sqlx.DB
}

func NewEventsRepository(db *sqlx.DB) *EventsRepositoryImpl {
	return &EventsRepositoryImpl{db: db}
}

var _ EventsRepository = (*EventsRepositoryImpl)(nil)

func (r *EventsRepositoryImpl) Insert(ctx context.Context, ev model.EngagementEvent) error {
	const q = `
		INSERT INTO engagement_events
		    (id, tenant_id, message_id, type, channel, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, now())
	`
	_, err := r.db.ExecContext(ctx, q,
		ev.ID, ev.TenantID, ev.MessageID, ev.Type.String(), ev.Channel.String(), ev.URL,
	)
	return err
}

func (r *EventsRepositoryImpl) ListByTenant(ctx context.Context, tenantID int64, typ model.EventType, limit, offset int) ([]model.EngagementEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, tenant_id, message_id, type, channel, url, created_at
		  FROM engagement_events
		 WHERE tenant_id = ?
	`
	args := []any{tenantID}
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ.String())
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	events := make([]model.EngagementEvent, 0, limit)
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}
