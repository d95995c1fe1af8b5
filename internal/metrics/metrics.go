package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_dispatches_total",
			Help: "Dispatch attempts by channel and resulting status",
		},
		[]string{"channel", "status"}, // email|sms|whatsapp|unknown , sent|failed
	)

	TrackingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_tracking_events_total",
			Help: "Public tracking events by type",
		},
		[]string{"type"}, // open|click|unsubscribe
	)

	VoiceWebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_voice_webhooks_total",
			Help: "Voice webhook deliveries by canonical status",
		},
		[]string{"status"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		DispatchesTotal,
		TrackingEventsTotal,
		VoiceWebhooksTotal,
	)
}
