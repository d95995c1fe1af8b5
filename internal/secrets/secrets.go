package secrets

import (
	"encoding/base64"
	"strings"

	"github.com/nexcrm/outreach-gateway/internal/model"
)

// Provider resolves the signing key shared by all token services.
type Provider interface {
	SigningKey() []byte
}

// Static holds a key resolved once from configuration. A "base64:" prefix
// marks an encoded secret and is decoded here, at construction, so callers
// always see raw key bytes.
type Static struct {
	key []byte
}

var _ Provider = (*Static)(nil)

func NewStatic(secret string) (*Static, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, model.NewConfigurationError("secrets", "signing secret is empty")
	}

	if enc, ok := strings.CutPrefix(secret, "base64:"); ok {
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, model.NewConfigurationError("secrets", "invalid base64 signing secret: %v", err)
		}
		if len(raw) == 0 {
			return nil, model.NewConfigurationError("secrets", "decoded signing secret is empty")
		}
		return &Static{key: raw}, nil
	}

	return &Static{key: []byte(secret)}, nil
}

func (s *Static) SigningKey() []byte { return s.key }
