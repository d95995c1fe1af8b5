package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/secrets"
)

// ErrInvalid is the single outcome for every verification failure (bad
// signature, expired, malformed, missing fields). Callers must not learn
// which check failed.
var ErrInvalid = errors.New("invalid token")

const (
	ActionOpen  = "open"
	ActionClick = "click"

	defaultTrackingTTL = 60 * 24 * time.Hour
	defaultPortalTTL   = 180 * 24 * time.Hour
)

// TrackingPayload authorizes one narrow delivery-tracking action on one
// message of one tenant.
type TrackingPayload struct {
	TenantID  int64  `json:"tenant_id"`
	MessageID string `json:"message_id"`
	Action    string `json:"action"` // open | click
	URL       string `json:"url,omitempty"`
	Exp       int64  `json:"exp"`
}

// PortalPayload authorizes a lead-scoped portal intent (e.g. unsubscribe).
type PortalPayload struct {
	TenantID int64  `json:"tenant_id"`
	LeadID   int64  `json:"lead_id"`
	Intent   string `json:"intent"`
	Exp      int64  `json:"exp"`
}

// Signer mints and verifies compact HMAC-signed tokens:
// base64url(JSON payload) "." hex(HMAC-SHA256 over the first segment).
type Signer struct {
	secrets     secrets.Provider
	trackingTTL time.Duration
	portalTTL   time.Duration
	now         func() time.Time
}

type Option func(*Signer)

// WithTrackingTTL overrides the default 60-day tracking horizon.
func WithTrackingTTL(d time.Duration) Option {
	return func(s *Signer) {
		if d > 0 {
			s.trackingTTL = d
		}
	}
}

// WithPortalTTL overrides the default 180-day portal horizon.
func WithPortalTTL(d time.Duration) Option {
	return func(s *Signer) {
		if d > 0 {
			s.portalTTL = d
		}
	}
}

// WithClock overrides the clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSigner(sp secrets.Provider, opts ...Option) *Signer {
	s := &Signer{
		secrets:     sp,
		trackingTTL: defaultTrackingTTL,
		portalTTL:   defaultPortalTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MintTracking signs a delivery-tracking payload. Exp is filled from the
// default horizon when the caller left it zero.
func (s *Signer) MintTracking(p TrackingPayload) (string, error) {
	if p.Exp == 0 {
		p.Exp = s.now().Add(s.trackingTTL).Unix()
	}
	if err := validateTracking(p); err != nil {
		return "", err
	}
	return s.sign(p)
}

// MintPortal signs a portal payload.
func (s *Signer) MintPortal(p PortalPayload) (string, error) {
	if p.Exp == 0 {
		p.Exp = s.now().Add(s.portalTTL).Unix()
	}
	if err := validatePortal(p); err != nil {
		return "", err
	}
	return s.sign(p)
}

// VerifyTracking checks signature, expiry and required fields, returning the
// payload on success and ErrInvalid on any failure.
func (s *Signer) VerifyTracking(tok string) (TrackingPayload, error) {
	raw, err := s.open(tok)
	if err != nil {
		return TrackingPayload{}, ErrInvalid
	}
	var p TrackingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return TrackingPayload{}, ErrInvalid
	}
	if validateTracking(p) != nil || s.expired(p.Exp) {
		return TrackingPayload{}, ErrInvalid
	}
	return p, nil
}

// VerifyPortal is the portal-token counterpart of VerifyTracking.
func (s *Signer) VerifyPortal(tok string) (PortalPayload, error) {
	raw, err := s.open(tok)
	if err != nil {
		return PortalPayload{}, ErrInvalid
	}
	var p PortalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return PortalPayload{}, ErrInvalid
	}
	if validatePortal(p) != nil || s.expired(p.Exp) {
		return PortalPayload{}, ErrInvalid
	}
	return p, nil
}

func (s *Signer) sign(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	seg := base64.RawURLEncoding.EncodeToString(b)
	return seg + "." + s.mac(seg), nil
}

// open splits and authenticates a token, returning the raw JSON payload.
// The signature covers the whole encoded payload, so any tampered field
// invalidates the token.
func (s *Signer) open(tok string) ([]byte, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalid
	}

	want := s.mac(parts[0])
	// constant-time compare; the endpoint is publicly reachable
	if !hmac.Equal([]byte(want), []byte(parts[1])) {
		return nil, ErrInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalid
	}

	// payload must be a JSON object
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ErrInvalid
	}

	return raw, nil
}

func (s *Signer) mac(seg string) string {
	h := hmac.New(sha256.New, s.secrets.SigningKey())
	h.Write([]byte(seg))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Signer) expired(exp int64) bool {
	return exp <= 0 || s.now().Unix() > exp
}

func validateTracking(p TrackingPayload) error {
	if p.TenantID <= 0 || strings.TrimSpace(p.MessageID) == "" || p.Exp <= 0 {
		return ErrInvalid
	}
	switch p.Action {
	case ActionOpen:
		return nil
	case ActionClick:
		if strings.TrimSpace(p.URL) == "" {
			return ErrInvalid
		}
		return nil
	default:
		return ErrInvalid
	}
}

func validatePortal(p PortalPayload) error {
	if p.TenantID <= 0 || p.LeadID <= 0 || strings.TrimSpace(p.Intent) == "" || p.Exp <= 0 {
		return ErrInvalid
	}
	return nil
}
