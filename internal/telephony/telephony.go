package telephony

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// ErrDisabled is returned by the null provider for operations that need a
// real vendor (client SDK credentials).
var ErrDisabled = errors.New("telephony is not configured")

// Driver keys recognized by New.
const (
	DriverNull   = "null"
	DriverTwilio = "twilio"
)

// StartCallRequest describes one user-triggered outbound call.
type StartCallRequest struct {
	TenantID int64
	LeadID   int64
	To       string
	From     string
}

// StartCallResult is the immediate outcome of starting a call. DeepLink is a
// tel: fallback the UI can offer when no vendor call was placed.
type StartCallResult struct {
	ProviderCallID string
	Status         model.CallStatus
	Direction      string
	DeepLink       string
}

// Provider is a vendor telephony integration.
//
// Unlike message providers, StartCall returns errors synchronously: call
// initiation is an interactive action and the caller expects an immediate
// answer rather than a retryable result object.
type Provider interface {
	Key() string
	StartCall(ctx context.Context, req StartCallRequest) (StartCallResult, error)
	IssueAccessToken(identity string, ttl time.Duration) (string, error)
	MapWebhookPayload(form url.Values) model.CallEvent
}

// New resolves the configured telephony driver. Empty means null (telephony
// off); unknown keys are configuration errors.
func New(cfg config.TelephonyConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverNull:
		return NewNull(), nil
	case DriverTwilio:
		return NewTwilioVoice(cfg)
	default:
		return nil, model.NewConfigurationError("telephony", "unsupported driver %q", cfg.Driver)
	}
}

// vendorStatusTable maps vendor call status strings to canonical states.
// Statuses absent from the table deliberately fall back to in_progress so an
// unexpected vendor state never loses track of an ongoing call.
var vendorStatusTable = map[string]model.CallStatus{
	"queued":      model.CallQueued,
	"initiated":   model.CallQueued,
	"ringing":     model.CallRinging,
	"in-progress": model.CallInProgress,
	"answered":    model.CallInProgress,
	"completed":   model.CallCompleted,
	"busy":        model.CallFailed,
	"no-answer":   model.CallFailed,
	"canceled":    model.CallFailed,
	"failed":      model.CallFailed,
}

// CanonicalStatus maps a vendor status string into the canonical state set.
func CanonicalStatus(vendor string) model.CallStatus {
	if st, ok := vendorStatusTable[strings.ToLower(strings.TrimSpace(vendor))]; ok {
		return st
	}
	return model.CallInProgress
}

// mapVoiceWebhook decodes the shared vendor webhook form shape.
func mapVoiceWebhook(form url.Values) model.CallEvent {
	duration, _ := strconv.ParseInt(strings.TrimSpace(form.Get("CallDuration")), 10, 64)
	return model.CallEvent{
		ProviderCallID: strings.TrimSpace(form.Get("CallSid")),
		Status:         CanonicalStatus(form.Get("CallStatus")),
		DurationSec:    duration,
		RecordingURL:   strings.TrimSpace(form.Get("RecordingUrl")),
		From:           strings.TrimSpace(form.Get("From")),
		To:             strings.TrimSpace(form.Get("To")),
		Direction:      strings.TrimSpace(form.Get("Direction")),
	}
}
