package model

// DispatchEnvelope is the payload the CRM publishes to Kafka (via its outbox)
// for each queued delivery attempt.
type DispatchEnvelope struct {
	ID       string          `json:"id"` // message ULID
	TenantID int64           `json:"tenant_id"`
	Message  OutgoingMessage `json:"message"`
}
