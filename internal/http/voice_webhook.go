package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/telephony"
)

// voiceWebhookHandler turns asynchronous vendor call callbacks into canonical
// call state. Safe under duplicate delivery: the repository applies events as
// compare-and-set updates.
func voiceWebhookHandler(tel telephony.Provider, calls repository.CallsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		form, err := c.FormParams()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		ev := tel.MapWebhookPayload(form)
		if ev.ProviderCallID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing CallSid"})
		}

		call, err := calls.GetByProviderCallID(c.Request().Context(), ev.ProviderCallID)
		if err != nil {
			c.Logger().Errorf("voice webhook lookup failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		if call == nil {
			// a callback for a call this service never started
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		if err := calls.ApplyEvent(c.Request().Context(), ev); err != nil {
			c.Logger().Errorf("voice webhook apply failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		metrics.VoiceWebhooksTotal.WithLabelValues(ev.Status.String()).Inc()

		return c.NoContent(http.StatusNoContent)
	}
}
