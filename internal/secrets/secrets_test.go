package secrets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/nexcrm/outreach-gateway/internal/model"
)

func TestStaticPlainSecret(t *testing.T) {
	s, err := NewStatic("  hunter2  ")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	if got := s.SigningKey(); !bytes.Equal(got, []byte("hunter2")) {
		t.Fatalf("SigningKey = %q, want %q", got, "hunter2")
	}
}

func TestStaticBase64Secret(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xfe, 0xff}
	s, err := NewStatic("base64:" + base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	if !bytes.Equal(s.SigningKey(), raw) {
		t.Fatalf("SigningKey = %x, want %x", s.SigningKey(), raw)
	}
}

func TestStaticRejectsBadInput(t *testing.T) {
	for _, secret := range []string{"", "   ", "base64:", "base64:!!!not-base64!!!"} {
		_, err := NewStatic(secret)
		if err == nil {
			t.Fatalf("secret %q accepted", secret)
		}
		var ce *model.ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("secret %q: want ConfigurationError, got %T", secret, err)
		}
	}
}
