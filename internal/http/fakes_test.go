package http

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// In-memory repository fakes mirroring the SQL idempotency semantics, so
// handler tests exercise the same convergence behavior as production.

type fakeMessages struct {
	msgs       map[string]*model.Message
	markOpens  int
	markClicks int
	applied    []model.SendResult
}

func newFakeMessages(msgs ...*model.Message) *fakeMessages {
	f := &fakeMessages{msgs: map[string]*model.Message{}}
	for _, m := range msgs {
		f.msgs[m.ID] = m
	}
	return f
}

func (f *fakeMessages) Get(_ context.Context, tenantID int64, id string) (*model.Message, error) {
	m, ok := f.msgs[id]
	if !ok || m.TenantID != tenantID {
		return nil, nil
	}
	return m, nil
}

func (f *fakeMessages) GetTracked(_ context.Context, tenantID int64, id string, ch model.Channel) (*model.Message, error) {
	m, ok := f.msgs[id]
	if !ok || m.TenantID != tenantID || m.Channel != ch {
		return nil, nil
	}
	return m, nil
}

func (f *fakeMessages) MarkOpened(_ context.Context, tenantID int64, id string) error {
	f.markOpens++
	m, ok := f.msgs[id]
	if !ok || m.TenantID != tenantID {
		return nil
	}
	if !m.OpenedAt.Valid {
		m.OpenedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	if m.Status != model.StatusClicked {
		m.Status = model.StatusOpened
	}
	return nil
}

func (f *fakeMessages) MarkClicked(_ context.Context, tenantID int64, id string) error {
	f.markClicks++
	m, ok := f.msgs[id]
	if !ok || m.TenantID != tenantID {
		return nil
	}
	if !m.ClickedAt.Valid {
		m.ClickedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	if !m.OpenedAt.Valid {
		m.OpenedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	m.Status = model.StatusClicked
	return nil
}

func (f *fakeMessages) ApplySendResult(_ context.Context, _ *sqlx.Tx, id string, res model.SendResult) error {
	f.applied = append(f.applied, res)
	if m, ok := f.msgs[id]; ok {
		m.Status = res.Status
		m.Provider = sql.NullString{String: res.Provider, Valid: res.Provider != ""}
		m.ProviderMessageID = sql.NullString{String: res.ProviderMessageID, Valid: res.ProviderMessageID != ""}
		m.ErrorMessage = sql.NullString{String: res.ErrorMessage, Valid: res.ErrorMessage != ""}
	}
	return nil
}

func (f *fakeMessages) BatchApplyStatus(_ context.Context, _ *sqlx.Tx, ids []string, status model.MessageStatus) error {
	for _, id := range ids {
		if m, ok := f.msgs[id]; ok {
			m.Status = status
		}
	}
	return nil
}

type fakeCalls struct {
	byProviderID map[string]*model.Call
	applied      []model.CallEvent
}

func newFakeCalls(calls ...*model.Call) *fakeCalls {
	f := &fakeCalls{byProviderID: map[string]*model.Call{}}
	for _, c := range calls {
		f.byProviderID[c.ProviderCallID] = c
	}
	return f
}

func (f *fakeCalls) Insert(_ context.Context, c model.Call) error {
	cp := c
	f.byProviderID[c.ProviderCallID] = &cp
	return nil
}

func (f *fakeCalls) GetByProviderCallID(_ context.Context, providerCallID string) (*model.Call, error) {
	return f.byProviderID[providerCallID], nil
}

func (f *fakeCalls) ApplyEvent(_ context.Context, ev model.CallEvent) error {
	f.applied = append(f.applied, ev)
	c, ok := f.byProviderID[ev.ProviderCallID]
	if !ok {
		return nil
	}
	// same guard as the SQL update: terminal states never regress
	if !c.Status.Terminal() {
		c.Status = ev.Status
	}
	if ev.DurationSec > 0 {
		c.DurationSec = sql.NullInt64{Int64: ev.DurationSec, Valid: true}
	}
	if ev.RecordingURL != "" {
		c.RecordingURL = sql.NullString{String: ev.RecordingURL, Valid: true}
	}
	return nil
}

type fakeLeads struct {
	leads map[int64]*model.Lead
}

func newFakeLeads(leads ...*model.Lead) *fakeLeads {
	f := &fakeLeads{leads: map[int64]*model.Lead{}}
	for _, l := range leads {
		f.leads[l.ID] = l
	}
	return f
}

func (f *fakeLeads) Get(_ context.Context, tenantID, id int64) (*model.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.TenantID != tenantID {
		return nil, nil
	}
	return l, nil
}

func (f *fakeLeads) MarkUnsubscribed(_ context.Context, tenantID, id int64) error {
	l, ok := f.leads[id]
	if !ok || l.TenantID != tenantID {
		return nil
	}
	l.Unsubscribed = true
	if !l.UnsubscribedAt.Valid {
		l.UnsubscribedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}

type fakeEvents struct {
	rows []model.EngagementEvent
}

func (f *fakeEvents) Insert(_ context.Context, ev model.EngagementEvent) error {
	f.rows = append(f.rows, ev)
	return nil
}

func (f *fakeEvents) ListByTenant(_ context.Context, tenantID int64, typ model.EventType, limit, offset int) ([]model.EngagementEvent, error) {
	out := make([]model.EngagementEvent, 0)
	for _, ev := range f.rows {
		if ev.TenantID != tenantID {
			continue
		}
		if typ != "" && ev.Type != typ {
			continue
		}
		out = append(out, ev)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeTenants struct {
	byKey map[string]*model.Tenant
}

func newFakeTenants(ts ...*model.Tenant) *fakeTenants {
	f := &fakeTenants{byKey: map[string]*model.Tenant{}}
	for _, t := range ts {
		f.byKey[t.APIKey] = t
	}
	return f
}

func (f *fakeTenants) GetByAPIKey(_ context.Context, apiKey string) (*model.Tenant, error) {
	return f.byKey[apiKey], nil
}
