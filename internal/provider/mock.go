package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

// Mock accepts every message without network I/O. It is contract-identical
// to the real providers so dev and test environments exercise the same
// dispatch path.
type Mock struct {
	channel model.Channel
}

var _ Provider = (*Mock)(nil)

func NewMock(ch model.Channel) *Mock {
	return &Mock{channel: ch}
}

func (m *Mock) Key() string { return DriverMock }

func (m *Mock) Send(_ context.Context, msg model.OutgoingMessage) model.SendResult {
	// fake vendor id shaped like a real one
	id := fmt.Sprintf("mock-%s-%s", m.channel, uuid.NewString())
	res := model.SendOK(DriverMock, id)
	res = res.WithMeta("channel", m.channel.String())
	if msg.MessageID != "" {
		res = res.WithMeta("message_id", msg.MessageID)
	}
	return res
}
