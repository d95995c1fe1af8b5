package dispatcher

import (
	"context"
	"fmt"

	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/provider"
)

// Dispatcher orchestrates one outbound delivery attempt: decorate (email
// only), resolve the channel provider, send, return a uniform result.
type Dispatcher struct {
	registry  *provider.Registry
	decorator *Decorator
}

func New(registry *provider.Registry, decorator *Decorator) *Dispatcher {
	return &Dispatcher{registry: registry, decorator: decorator}
}

// Dispatch performs one delivery attempt. It never panics or returns an
// error: an unsupported channel comes back as a failed result so callers
// treat it uniformly with any other delivery failure.
func (d *Dispatcher) Dispatch(ctx context.Context, msg model.OutgoingMessage) model.SendResult {
	if !msg.Channel.Valid() {
		res := model.SendFailed("dispatcher", fmt.Sprintf("unsupported channel %q", msg.Channel))
		metrics.DispatchesTotal.WithLabelValues("unknown", res.Status.String()).Inc()
		return res
	}

	if msg.Channel == model.ChannelEmail && d.decorator != nil {
		msg.Body = d.decorator.Decorate(msg)
	}

	p, err := d.registry.Resolve(msg.Channel)
	if err != nil {
		res := model.SendFailed("dispatcher", err.Error())
		metrics.DispatchesTotal.WithLabelValues(msg.Channel.String(), res.Status.String()).Inc()
		return res
	}

	res := p.Send(ctx, msg)
	metrics.DispatchesTotal.WithLabelValues(msg.Channel.String(), res.Status.String()).Inc()
	return res
}
