package provider

import (
	"context"

	"github.com/nexcrm/outreach-gateway/internal/model"
)

// Provider is one vendor integration for one message channel.
//
// Send never returns an error: every delivery problem (vendor rejection,
// transport failure, empty body) is reported as a SendResult with
// Accepted=false so callers treat all channel failures identically.
type Provider interface {
	Key() string
	Send(ctx context.Context, msg model.OutgoingMessage) model.SendResult
}

// Driver keys recognized by the registry.
const (
	DriverMock   = "mock"
	DriverSMTP   = "smtp"
	DriverTwilio = "twilio"
	DriverMeta   = "meta"
)
