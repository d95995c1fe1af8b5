package telephony

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

func TestNewResolvesDrivers(t *testing.T) {
	p, err := New(config.TelephonyConfig{})
	if err != nil {
		t.Fatalf("New(empty): %v", err)
	}
	if p.Key() != DriverNull {
		t.Fatalf("Key() = %q", p.Key())
	}

	p, err = New(config.TelephonyConfig{Driver: "null"})
	if err != nil || p.Key() != DriverNull {
		t.Fatalf("New(null) = %v, %v", p, err)
	}

	_, err = New(config.TelephonyConfig{Driver: "asterisk"})
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, got %v", err)
	}

	// twilio without credentials fails construction
	_, err = New(config.TelephonyConfig{Driver: "twilio"})
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
}

func TestCanonicalStatusTable(t *testing.T) {
	cases := map[string]model.CallStatus{
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
		" Completed ": model.CallCompleted, // case/space insensitive
	}
	for vendor, want := range cases {
		if got := CanonicalStatus(vendor); got != want {
			t.Errorf("CanonicalStatus(%q) = %s, want %s", vendor, got, want)
		}
	}
}

// An unmapped vendor status must come back as in_progress, never drop the
// event or invent a terminal state.
func TestCanonicalStatusUnknownDefaultsToInProgress(t *testing.T) {
	for _, vendor := range []string{"", "warming-up", "transferring"} {
		if got := CanonicalStatus(vendor); got != model.CallInProgress {
			t.Fatalf("CanonicalStatus(%q) = %s, want in_progress", vendor, got)
		}
	}
}

func TestMapVoiceWebhook(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", " CA123 ")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "42")
	form.Set("RecordingUrl", "https://api.example.com/rec/1")
	form.Set("From", "+15550009999")
	form.Set("To", "+15550100001")
	form.Set("Direction", "outbound-api")

	ev := mapVoiceWebhook(form)
	if ev.ProviderCallID != "CA123" || ev.Status != model.CallCompleted || ev.DurationSec != 42 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.RecordingURL != "https://api.example.com/rec/1" || ev.Direction != "outbound-api" {
		t.Fatalf("event = %+v", ev)
	}

	// garbage duration parses to zero, not an error
	form.Set("CallDuration", "abc")
	if ev := mapVoiceWebhook(form); ev.DurationSec != 0 {
		t.Fatalf("duration = %d", ev.DurationSec)
	}
}

func TestNullStartCallUsablePhone(t *testing.T) {
	n := NewNull()
	res, err := n.StartCall(context.Background(), StartCallRequest{To: "(555) 010-0001"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if res.Status != model.CallQueued {
		t.Fatalf("status = %s", res.Status)
	}
	if res.DeepLink != "tel:5550100001" {
		t.Fatalf("deep link = %q", res.DeepLink)
	}
	if !strings.HasPrefix(res.ProviderCallID, "manual-") {
		t.Fatalf("provider call id = %q", res.ProviderCallID)
	}
}

func TestNullStartCallUnusablePhone(t *testing.T) {
	n := NewNull()
	res, err := n.StartCall(context.Background(), StartCallRequest{To: "not a number"})
	if err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if res.Status != model.CallFailed || res.DeepLink != "" {
		t.Fatalf("res = %+v", res)
	}
}

func TestNullAccessTokenDisabled(t *testing.T) {
	n := NewNull()
	_, err := n.IssueAccessToken("agent-1", 0)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}
