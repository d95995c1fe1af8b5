package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

type LeadsRepository interface {
	Get(ctx context.Context, tenantID, id int64) (*model.Lead, error)
	MarkUnsubscribed(ctx context.Context, tenantID, id int64) error
}

type LeadsRepositoryImpl struct {
	db *sqlx.DB
}

func NewLeadsRepository(db *sqlx.DB) *LeadsRepositoryImpl {
	return &LeadsRepositoryImpl{db: db}
}

var _ LeadsRepository = (*LeadsRepositoryImpl)(nil)

func (r *LeadsRepositoryImpl) Get(ctx context.Context, tenantID, id int64) (*model.Lead, error) {
	var l model.Lead
	err := r.db.GetContext(ctx, &l, `
		SELECT id, tenant_id, email, phone, unsubscribed, unsubscribed_at,
		       created_at, updated_at
		  FROM leads
		 WHERE tenant_id = ? AND id = ? LIMIT 1
	`, tenantID, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkUnsubscribed is idempotent; the first unsubscribe pins the timestamp.
func (r *LeadsRepositoryImpl) MarkUnsubscribed(ctx context.Context, tenantID, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE leads
		   SET unsubscribed = TRUE,
		       unsubscribed_at = COALESCE(unsubscribed_at, NOW()),
		       updated_at = NOW()
		 WHERE tenant_id = ? AND id = ?
	`, tenantID, id)
	return err
}
