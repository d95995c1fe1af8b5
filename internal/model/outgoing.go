package model

// OutgoingMessage is the immutable snapshot handed to a channel provider for
// one dispatch attempt. It is built once from the persisted Message row and
// never mutated by providers.
type OutgoingMessage struct {
	MessageID string           `json:"message_id"`
	TenantID  int64            `json:"tenant_id"`
	Channel   Channel          `json:"channel"`
	To        string           `json:"to"`
	From      string           `json:"from,omitempty"`
	Subject   string           `json:"subject,omitempty"`
	Body      string           `json:"body,omitempty"`
	Provider  string           `json:"provider,omitempty"`
	WhatsApp  *WhatsAppContent `json:"whatsapp,omitempty"` // set only for channel=whatsapp
}

// SendResult is the uniform outcome of one provider send attempt.
// Invariant: Accepted implies ErrorMessage == ""; !Accepted implies
// Status == StatusFailed.
type SendResult struct {
	Provider          string            `json:"provider"`
	Accepted          bool              `json:"accepted"`
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	Status            MessageStatus     `json:"status"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	Meta              map[string]string `json:"meta,omitempty"`
}

// SendOK builds an accepted result.
func SendOK(provider, providerMessageID string) SendResult {
	return SendResult{
		Provider:          provider,
		Accepted:          true,
		ProviderMessageID: providerMessageID,
		Status:            StatusSent,
	}
}

// SendFailed builds a rejected result. Providers must always surface delivery
// problems this way instead of returning an error from Send.
func SendFailed(provider, reason string) SendResult {
	return SendResult{
		Provider:     provider,
		Accepted:     false,
		Status:       StatusFailed,
		ErrorMessage: reason,
	}
}

// WithMeta attaches a diagnostic key/value (e.g. vendor HTTP status).
func (r SendResult) WithMeta(k, v string) SendResult {
	if r.Meta == nil {
		r.Meta = make(map[string]string, 1)
	}
	r.Meta[k] = v
	return r
}
