package http

import (
	"database/sql"
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/nexcrm/outreach-gateway/internal/http/middleware"
	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/repository"
	"github.com/nexcrm/outreach-gateway/internal/telephony"
	"github.com/nexcrm/outreach-gateway/internal/util"
)

type startCallReq struct {
	LeadID int64 `json:"lead_id"`
}

// startCallHandler starts an outbound call to a lead. Unlike message
// dispatch, initiation failures surface as errors: this is a user-triggered
// action expecting an immediate answer.
func startCallHandler(tel telephony.Provider, calls repository.CallsRepository, leads repository.LeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req startCallReq
		if err := c.Bind(&req); err != nil || req.LeadID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		lead, err := leads.Get(c.Request().Context(), tenantID, req.LeadID)
		if err != nil {
			c.Logger().Errorf("call lead lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if lead == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		res, err := tel.StartCall(c.Request().Context(), telephony.StartCallRequest{
			TenantID: tenantID,
			LeadID:   req.LeadID,
			To:       lead.Phone.String,
		})
		if err != nil {
			var cfgErr *model.ConfigurationError
			if errors.As(err, &cfgErr) {
				return c.JSON(http.StatusConflict, map[string]string{"error": cfgErr.Error()})
			}
			c.Logger().Errorf("start call failed: %v", err)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "call initiation failed"})
		}

		call := model.Call{
			ID:             util.New(),
			TenantID:       tenantID,
			LeadID:         req.LeadID,
			ProviderCallID: res.ProviderCallID,
			Provider:       tel.Key(),
			ToNumber:       sql.NullString{String: lead.Phone.String, Valid: lead.Phone.Valid},
			Direction:      sql.NullString{String: res.Direction, Valid: res.Direction != ""},
			Status:         res.Status,
		}
		if err := calls.Insert(c.Request().Context(), call); err != nil {
			c.Logger().Errorf("insert call failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		body := map[string]any{
			"call_id":          call.ID,
			"provider_call_id": res.ProviderCallID,
			"status":           res.Status.String(),
		}
		if res.DeepLink != "" {
			body["deep_link"] = res.DeepLink
		}
		return c.JSON(http.StatusCreated, body)
	}
}
