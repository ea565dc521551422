package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/gescall/dialer-console/internal/model"
	xhttp "github.com/gescall/dialer-console/pkg/http"
)

type RotationService interface {
	Select(ctx context.Context, campaignID, leadPhone, leadID string) model.Selection
	ListUsage(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error)
}

// RotationHandler serves the call-setup hot path. The select endpoint is
// hit once per outbound call and always answers 200: degradation is
// encoded in the result field, never in the HTTP status.
type RotationHandler struct {
	svc RotationService
}

func RegisterRotationRoutes(e *router.Group, h *RotationHandler) {
	e.GET("/rotation/select", h.SelectCallerID)
	e.GET("/usage-log", h.ListUsageLog)
}

func NewRotationHandler(rotationService RotationService) *RotationHandler {
	return &RotationHandler{
		svc: rotationService,
	}
}

type usageListResponse struct {
	Items []*model.UsageLogEntry `json:"items"`
	Total int64                  `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *RotationHandler) SelectCallerID(ctx *xhttp.RequestCtx) {
	campaignID := query(ctx, "campaign_id")
	if campaignID == "" {
		writeError(ctx, 400, "campaign_id is required")
		return
	}

	sel := h.svc.Select(ctx, campaignID, query(ctx, "phone"), query(ctx, "lead_id"))
	writeJSON(ctx, 200, sel)
}

func (h *RotationHandler) ListUsageLog(ctx *xhttp.RequestCtx) {
	var f model.UsageLogFilter

	if v := query(ctx, "pool_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.PoolID = &id
		}
	}
	if v := query(ctx, "campaign_id"); v != "" {
		f.CampaignID = &v
	}
	if v := query(ctx, "callerid"); v != "" {
		f.CallerID = &v
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	f.Desc = queryBool(ctx, "desc")

	items, total, err := h.svc.ListUsage(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, usageListResponse{Items: items, Total: total})
}
