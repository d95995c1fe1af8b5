package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// CallsRepository persists the calls table. Webhook status writes are
// upsert/compare-and-set: duplicate deliveries converge to one final state
// and terminal states never regress.
type CallsRepository interface {
	Insert(ctx context.Context, c model.Call) error
	GetByProviderCallID(ctx context.Context, providerCallID string) (*model.Call, error)
	ApplyEvent(ctx context.Context, ev model.CallEvent) error
}

type CallsRepositoryImpl struct {
	db *sqlx.DB
}

func NewCallsRepository(db *sqlx.DB) *CallsRepositoryImpl {
	return &CallsRepositoryImpl{db: db}
}

var _ CallsRepository = (*CallsRepositoryImpl)(nil)

func (r *CallsRepositoryImpl) Insert(ctx context.Context, c model.Call) error {
	const q = `
		INSERT INTO calls
		    (id, tenant_id, lead_id, provider_call_id, provider,
		     from_number, to_number, direction, status, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.TenantID, c.LeadID, c.ProviderCallID, c.Provider,
		c.FromNumber, c.ToNumber, c.Direction, c.Status.String(),
	)
	return err
}

func (r *CallsRepositoryImpl) GetByProviderCallID(ctx context.Context, providerCallID string) (*model.Call, error) {
	var c model.Call
	err := r.db.GetContext(ctx, &c, `
		SELECT id, tenant_id, lead_id, provider_call_id, provider,
		       from_number, to_number, direction, status, duration_sec,
		       recording_url, created_at, updated_at
		  FROM calls
		 WHERE provider_call_id = ? LIMIT 1
	`, providerCallID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyEvent updates the call row in place. The status guard keeps terminal
// rows untouched, so re-delivered terminal webhooks are no-ops.
func (r *CallsRepositoryImpl) ApplyEvent(ctx context.Context, ev model.CallEvent) error {
	const q = `
		UPDATE calls
		   SET status = IF(status IN ('completed','failed'), status, ?),
		       duration_sec = IF(? > 0, ?, duration_sec),
		       recording_url = IF(? <> '', ?, recording_url),
		       direction = IF(? <> '', ?, direction),
		       updated_at = NOW()
		 WHERE provider_call_id = ?
	`
	_, err := r.db.ExecContext(ctx, q,
		ev.Status.String(),
		ev.DurationSec, ev.DurationSec,
		ev.RecordingURL, ev.RecordingURL,
		ev.Direction, ev.Direction,
		ev.ProviderCallID,
	)
	return err
}
