package provider

import (
	"strings"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// Registry resolves the concrete provider backing each channel. Driver keys
// come from configuration; an unknown key is an operator mistake and fails
// construction instead of surfacing later as a delivery failure.
type Registry struct {
	byChannel map[model.Channel]Provider
}

func NewRegistry(cfg config.ChannelsConfig) (*Registry, error) {
	email, err := buildEmail(cfg.Email)
	if err != nil {
		return nil, err
	}
	sms, err := buildSMS(cfg.SMS)
	if err != nil {
		return nil, err
	}
	wa, err := buildWhatsApp(cfg.WhatsApp)
	if err != nil {
		return nil, err
	}

	return &Registry{
		byChannel: map[model.Channel]Provider{
			model.ChannelEmail:    email,
			model.ChannelSMS:      sms,
			model.ChannelWhatsApp: wa,
		},
	}, nil
}

// Resolve returns the provider for a channel. Unknown channels are a
// configuration error, not a delivery failure.
func (r *Registry) Resolve(ch model.Channel) (Provider, error) {
	p, ok := r.byChannel[ch]
	if !ok {
		return nil, model.NewConfigurationError("registry", "no provider for channel %q", ch)
	}
	return p, nil
}

func buildEmail(cfg config.EmailConfig) (Provider, error) {
	switch driver(cfg.Driver) {
	case DriverMock:
		return NewMock(model.ChannelEmail), nil
	case DriverSMTP:
		return NewSMTPEmail(cfg)
	default:
		return nil, model.NewConfigurationError("channels.email", "unsupported driver %q", cfg.Driver)
	}
}

func buildSMS(cfg config.SMSConfig) (Provider, error) {
	switch driver(cfg.Driver) {
	case DriverMock:
		return NewMock(model.ChannelSMS), nil
	case DriverTwilio:
		return NewTwilioSMS(cfg)
	default:
		return nil, model.NewConfigurationError("channels.sms", "unsupported driver %q", cfg.Driver)
	}
}

func buildWhatsApp(cfg config.WhatsAppConfig) (Provider, error) {
	switch driver(cfg.Driver) {
	case DriverMock:
		return NewMock(model.ChannelWhatsApp), nil
	case DriverMeta:
		return NewMetaWhatsApp(cfg)
	default:
		return nil, model.NewConfigurationError("channels.whatsapp", "unsupported driver %q", cfg.Driver)
	}
}

// driver normalizes a configured driver key. An empty key stays empty and
// fails the channel's switch: a blanked-out driver must not silently fall
// back to mock in production. defaults.yaml names mock explicitly.
func driver(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
