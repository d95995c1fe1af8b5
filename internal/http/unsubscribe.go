package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/metrics"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/token"
)

const unsubscribeConfirmPage = `<!DOCTYPE html>
<html>
<head><title>Unsubscribe</title></head>
<body>
  <h2>Unsubscribe from emails</h2>
  <p>Click the button below to stop receiving emails.</p>
  <form method="POST">
    <button type="submit">Unsubscribe</button>
  </form>
</body>
</html>`

const unsubscribeDonePage = `<!DOCTYPE html>
<html>
<head><title>Unsubscribed</title></head>
<body>
  <h2>You have been unsubscribed</h2>
  <p>You will no longer receive emails from this sender.</p>
</body>
</html>`

// unsubscribeFormHandler shows the confirmation page for a valid portal
// token without changing any state.
func unsubscribeFormHandler(signer *token.Signer, leads repository.LeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := signer.VerifyPortal(c.Param("token"))
		if err != nil || p.Intent != "unsubscribe" {
			return notFound(c)
		}

		lead, err := leads.Get(c.Request().Context(), p.TenantID, p.LeadID)
		if err != nil {
			c.Logger().Errorf("unsubscribe lookup failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		if lead == nil {
			return notFound(c)
		}

		if lead.Unsubscribed {
			return c.HTML(http.StatusOK, unsubscribeDonePage)
		}
		return c.HTML(http.StatusOK, unsubscribeConfirmPage)
	}
}

// unsubscribeHandler applies the unsubscribe. Idempotent: a second POST with
// the same token lands on the same final state.
func unsubscribeHandler(signer *token.Signer, leads repository.LeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := signer.VerifyPortal(c.Param("token"))
		if err != nil || p.Intent != "unsubscribe" {
			return notFound(c)
		}

		lead, err := leads.Get(c.Request().Context(), p.TenantID, p.LeadID)
		if err != nil {
			c.Logger().Errorf("unsubscribe lookup failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		if lead == nil {
			return notFound(c)
		}

		if err := leads.MarkUnsubscribed(c.Request().Context(), p.TenantID, p.LeadID); err != nil {
			c.Logger().Errorf("mark unsubscribed failed: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		metrics.TrackingEventsTotal.WithLabelValues(model.EventUnsubscribe.String()).Inc()

		return c.HTML(http.StatusOK, unsubscribeDonePage)
	}
}
