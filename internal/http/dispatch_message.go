package http

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/dispatcher"
	"github.com/nexcrm/outreach-gateway/internal/http/middleware"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
)

type dispatchReq struct {
	MessageID string `json:"message_id"`
}

// dispatchMessageHandler performs one synchronous delivery attempt for a
// persisted message owned by the authenticated tenant.
func dispatchMessageHandler(disp *dispatcher.Dispatcher, messages repository.MessagesRepository, events repository.EventsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req dispatchReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		req.MessageID = strings.TrimSpace(req.MessageID)
		if req.MessageID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "message_id is required"})
		}

		msg, err := messages.Get(c.Request().Context(), tenantID, req.MessageID)
		if err != nil {
			c.Logger().Errorf("dispatch lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if msg == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		res := disp.Dispatch(c.Request().Context(), model.NewOutgoing(msg))

		if err := messages.ApplySendResult(c.Request().Context(), nil, msg.ID, res); err != nil {
			c.Logger().Errorf("apply send result failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		recordEvent(c, events, msg, model.EventDispatch, "")

		return c.JSON(http.StatusOK, res)
	}
}
