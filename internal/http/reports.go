package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/http/middleware"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
)

func listEventsHandler(events repository.EventsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		limit := 100
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var typ model.EventType
		if raw := strings.TrimSpace(c.QueryParam("type")); raw != "" {
			tmp := model.EventType(raw)
			if tmp.Valid() {
				typ = tmp
			}
		}

		evs, err := events.ListByTenant(c.Request().Context(), tenantID, typ, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(evs),
			"results": evs,
		})
	}
}
