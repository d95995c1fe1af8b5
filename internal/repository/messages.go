package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// MessagesRepository persists delivery and engagement state on messages rows
// created by the CRM collaborator. Every lookup is tenant-filtered: an id
// alone never authorizes access.
type MessagesRepository interface {
	Get(ctx context.Context, tenantID int64, id string) (*model.Message, error)
	GetTracked(ctx context.Context, tenantID int64, id string, ch model.Channel) (*model.Message, error)
	MarkOpened(ctx context.Context, tenantID int64, id string) error
	MarkClicked(ctx context.Context, tenantID int64, id string) error
	ApplySendResult(ctx context.Context, tx *sqlx.Tx, id string, res model.SendResult) error
	BatchApplyStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.MessageStatus) error
}

type MessagesRepositoryImpl struct {
	db *sqlx.DB
}

func NewMessagesRepository(db *sqlx.DB) *MessagesRepositoryImpl {
	return &MessagesRepositoryImpl{db: db}
}

var _ MessagesRepository = (*MessagesRepositoryImpl)(nil)

func (r *MessagesRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

const messageColumns = `
	id, tenant_id, channel, to_addr, from_addr, subject, body,
	provider, provider_message_id, status, error_message, meta,
	opened_at, clicked_at, created_at, updated_at
`

func (r *MessagesRepositoryImpl) Get(ctx context.Context, tenantID int64, id string) (*model.Message, error) {
	var m model.Message
	err := r.db.GetContext(ctx, &m, `
		SELECT `+messageColumns+`
		  FROM messages
		 WHERE tenant_id = ? AND id = ? LIMIT 1
	`, tenantID, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetTracked resolves a message for public tracking: tenant AND channel must
// match, so a token holder cannot probe message ids across tenants or reuse
// an email token against another channel.
func (r *MessagesRepositoryImpl) GetTracked(ctx context.Context, tenantID int64, id string, ch model.Channel) (*model.Message, error) {
	var m model.Message
	err := r.db.GetContext(ctx, &m, `
		SELECT `+messageColumns+`
		  FROM messages
		 WHERE tenant_id = ? AND id = ? AND channel = ? LIMIT 1
	`, tenantID, id, ch.String())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkOpened records an open idempotently. The first open pins opened_at;
// the status only advances, so a later open never regresses a click.
func (r *MessagesRepositoryImpl) MarkOpened(ctx context.Context, tenantID int64, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages
		   SET opened_at = COALESCE(opened_at, NOW()),
		       status = IF(status = 'clicked', status, 'opened'),
		       updated_at = NOW()
		 WHERE tenant_id = ? AND id = ?
	`, tenantID, id)
	return err
}

// MarkClicked records a click idempotently; a click implies an open.
func (r *MessagesRepositoryImpl) MarkClicked(ctx context.Context, tenantID int64, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages
		   SET clicked_at = COALESCE(clicked_at, NOW()),
		       opened_at = COALESCE(opened_at, NOW()),
		       status = 'clicked',
		       updated_at = NOW()
		 WHERE tenant_id = ? AND id = ?
	`, tenantID, id)
	return err
}

// ApplySendResult writes the outcome of one dispatch attempt.
func (r *MessagesRepositoryImpl) ApplySendResult(ctx context.Context, tx *sqlx.Tx, id string, res model.SendResult) error {
	const q = `
		UPDATE messages
		   SET status = ?,
		       provider = ?,
		       provider_message_id = NULLIF(?, ''),
		       error_message = NULLIF(?, ''),
		       updated_at = NOW()
		 WHERE id = ?
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			res.Status.String(), res.Provider, res.ProviderMessageID, res.ErrorMessage, id,
		)
		return err
	})
}

// BatchApplyStatus updates status for many messages in a single statement.
func (r *MessagesRepositoryImpl) BatchApplyStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.MessageStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const base = `UPDATE messages SET status = ?, updated_at = NOW() WHERE id IN (?)`
	query, args, err := sqlx.In(base, status, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}
