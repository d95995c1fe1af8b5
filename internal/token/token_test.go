package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/secrets"
)

func newTestSigner(t *testing.T, opts ...Option) *Signer {
	t.Helper()
	sp, err := secrets.NewStatic("test-signing-secret")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	return NewSigner(sp, opts...)
}

func TestTrackingRoundTrip(t *testing.T) {
	s := newTestSigner(t)

	p := TrackingPayload{
		TenantID:  7,
		MessageID: "01J0000000000000000000MSG1",
		Action:    ActionClick,
		URL:       "https://example.com/offer?x=1&y=2",
	}
	tok, err := s.MintTracking(p)
	if err != nil {
		t.Fatalf("MintTracking: %v", err)
	}
	if !strings.Contains(tok, ".") {
		t.Fatalf("token missing separator: %q", tok)
	}

	got, err := s.VerifyTracking(tok)
	if err != nil {
		t.Fatalf("VerifyTracking: %v", err)
	}
	if got.TenantID != p.TenantID || got.MessageID != p.MessageID || got.Action != p.Action || got.URL != p.URL {
		t.Fatalf("payload mismatch: got %+v want %+v", got, p)
	}
	if got.Exp == 0 {
		t.Fatal("expected Exp to be filled from the default horizon")
	}
}

func TestPortalRoundTrip(t *testing.T) {
	s := newTestSigner(t)

	tok, err := s.MintPortal(PortalPayload{TenantID: 3, LeadID: 42, Intent: "unsubscribe"})
	if err != nil {
		t.Fatalf("MintPortal: %v", err)
	}
	got, err := s.VerifyPortal(tok)
	if err != nil {
		t.Fatalf("VerifyPortal: %v", err)
	}
	if got.TenantID != 3 || got.LeadID != 42 || got.Intent != "unsubscribe" {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

// Flipping any single character of the token must invalidate it, whether the
// flip lands in the payload segment or the signature segment.
func TestTamperedTokenRejected(t *testing.T) {
	s := newTestSigner(t)

	tok, err := s.MintTracking(TrackingPayload{
		TenantID:  1,
		MessageID: "msg-1",
		Action:    ActionOpen,
	})
	if err != nil {
		t.Fatalf("MintTracking: %v", err)
	}

	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		mutated := []byte(tok)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if _, err := s.VerifyTracking(string(mutated)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("tampered token at pos %d accepted", i)
		}
	}
}

func TestMalformedTokensRejected(t *testing.T) {
	s := newTestSigner(t)

	for _, tok := range []string{
		"",
		".",
		"abc",
		"abc.",
		".def",
		"a.b.c",
		"not-base64!!.deadbeef",
	} {
		if _, err := s.VerifyTracking(tok); !errors.Is(err, ErrInvalid) {
			t.Fatalf("token %q: want ErrInvalid, got %v", tok, err)
		}
	}
}

func TestExpiryBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestSigner(t, WithClock(func() time.Time { return now }))

	mint := func(exp int64) string {
		tok, err := s.MintTracking(TrackingPayload{
			TenantID:  1,
			MessageID: "msg-1",
			Action:    ActionOpen,
			Exp:       exp,
		})
		if err != nil {
			t.Fatalf("MintTracking exp=%d: %v", exp, err)
		}
		return tok
	}

	// exp == now is still valid; only exp < now is expired
	if _, err := s.VerifyTracking(mint(now.Unix())); err != nil {
		t.Fatalf("exp == now rejected: %v", err)
	}
	if _, err := s.VerifyTracking(mint(now.Unix() + 1)); err != nil {
		t.Fatalf("exp == now+1 rejected: %v", err)
	}

	tok := mint(now.Unix())
	now = now.Add(time.Second)
	if _, err := s.VerifyTracking(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expired token accepted, err=%v", err)
	}
}

func TestClickRequiresURL(t *testing.T) {
	s := newTestSigner(t)

	_, err := s.MintTracking(TrackingPayload{
		TenantID:  1,
		MessageID: "msg-1",
		Action:    ActionClick,
	})
	if err == nil {
		t.Fatal("click payload without URL minted")
	}
}

func TestUnknownActionRejected(t *testing.T) {
	s := newTestSigner(t)

	_, err := s.MintTracking(TrackingPayload{
		TenantID:  1,
		MessageID: "msg-1",
		Action:    "delete",
	})
	if err == nil {
		t.Fatal("unknown action minted")
	}
}

// A token minted under one key never verifies under another.
func TestKeyIsolation(t *testing.T) {
	spA, _ := secrets.NewStatic("key-a")
	spB, _ := secrets.NewStatic("key-b")
	a := NewSigner(spA)
	b := NewSigner(spB)

	tok, err := a.MintTracking(TrackingPayload{TenantID: 1, MessageID: "m", Action: ActionOpen})
	if err != nil {
		t.Fatalf("MintTracking: %v", err)
	}
	if _, err := b.VerifyTracking(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("cross-key token accepted, err=%v", err)
	}
}

// Tracking and portal tokens are not interchangeable even though they share
// the signing primitive; field validation tells them apart.
func TestTokenKindsNotInterchangeable(t *testing.T) {
	s := newTestSigner(t)

	portal, err := s.MintPortal(PortalPayload{TenantID: 1, LeadID: 5, Intent: "unsubscribe"})
	if err != nil {
		t.Fatalf("MintPortal: %v", err)
	}
	if _, err := s.VerifyTracking(portal); !errors.Is(err, ErrInvalid) {
		t.Fatalf("portal token verified as tracking, err=%v", err)
	}

	tracking, err := s.MintTracking(TrackingPayload{TenantID: 1, MessageID: "m", Action: ActionOpen})
	if err != nil {
		t.Fatalf("MintTracking: %v", err)
	}
	if _, err := s.VerifyPortal(tracking); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tracking token verified as portal, err=%v", err)
	}
}
