package http

import (
	"net/http"
	"net/url"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/token"
	"github.com/nexcrm/outreach-gateway/internal/util"
)

// transparentGIF is a fixed 1x1 transparent image returned for every
// successful open, new or repeat.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// notFound is the single response for every token failure on the public
// surface; it never reveals which verification step failed.
func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
}

// trackOpenHandler consumes an open-tracking token and returns the pixel.
// Repeated opens are idempotent: same terminal state, same pixel.
func trackOpenHandler(signer *token.Signer, messages repository.MessagesRepository, events repository.EventsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := signer.VerifyTracking(c.Param("token"))
		if err != nil || p.Action != token.ActionOpen {
			return notFound(c)
		}

		// tenant scoping: the id alone never authorizes the lookup
		msg, err := messages.GetTracked(c.Request().Context(), p.TenantID, p.MessageID, model.ChannelEmail)
		if err != nil {
			c.Logger().Errorf("track open lookup failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		if msg == nil {
			return notFound(c)
		}

		if err := messages.MarkOpened(c.Request().Context(), p.TenantID, p.MessageID); err != nil {
			c.Logger().Errorf("mark opened failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		recordEvent(c, events, msg, model.EventOpen, "")
		metrics.TrackingEventsTotal.WithLabelValues(model.EventOpen.String()).Inc()

		c.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Response().Header().Set("Pragma", "no-cache")
		return c.Blob(http.StatusOK, "image/gif", transparentGIF)
	}
}

// trackClickHandler consumes a click-tracking token and redirects to the
// embedded target. The scheme check runs before any state mutation; it is
// the open-redirect guard for this public endpoint.
func trackClickHandler(signer *token.Signer, messages repository.MessagesRepository, events repository.EventsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := signer.VerifyTracking(c.Param("token"))
		if err != nil || p.Action != token.ActionClick {
			return notFound(c)
		}

		target, err := url.Parse(p.URL)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
			return notFound(c)
		}

		msg, err := messages.GetTracked(c.Request().Context(), p.TenantID, p.MessageID, model.ChannelEmail)
		if err != nil {
			c.Logger().Errorf("track click lookup failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		if msg == nil {
			return notFound(c)
		}

		if err := messages.MarkClicked(c.Request().Context(), p.TenantID, p.MessageID); err != nil {
			c.Logger().Errorf("mark clicked failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		recordEvent(c, events, msg, model.EventClick, p.URL)
		metrics.TrackingEventsTotal.WithLabelValues(model.EventClick.String()).Inc()

		return c.Redirect(http.StatusFound, p.URL)
	}
}

// recordEvent appends an analytics row; reporting failures never break the
// public response.
func recordEvent(c echo.Context, events repository.EventsRepository, msg *model.Message, typ model.EventType, eventURL string) {
	if events == nil {
		return
	}
	ev := model.EngagementEvent{
		ID:        util.New(),
		TenantID:  msg.TenantID,
		MessageID: msg.ID,
		Type:      typ,
		Channel:   msg.Channel,
		URL:       eventURL,
	}
	if err := events.Insert(c.Request().Context(), ev); err != nil {
		c.Logger().Errorf("insert engagement event failed: %v", err)
	}
}
