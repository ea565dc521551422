package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/services"
	xhttp "github.com/gescall/dialer-console/pkg/http"
)

type PoolService interface {
	Create(ctx context.Context, req model.PoolCreateRequest) (*model.CallerIDPool, error)
	Get(ctx context.Context, id int64) (*model.CallerIDPool, error)
	List(ctx context.Context, f model.PoolFilter) ([]*model.CallerIDPool, int64, error)
	Update(ctx context.Context, id int64, req model.PoolUpdateRequest) (*model.CallerIDPool, error)
	Delete(ctx context.Context, id int64) error
	ImportNumbers(ctx context.Context, poolID int64, raw string) (*model.ImportResult, error)
	AddNumber(ctx context.Context, poolID int64, raw string) (*model.PoolNumber, error)
	ListNumbers(ctx context.Context, f model.PoolNumberFilter) ([]*model.PoolNumber, int64, error)
	DeleteNumber(ctx context.Context, poolID, numberID int64) error
	SetNumberActive(ctx context.Context, poolID, numberID int64, active bool) error
	AreaCodes(ctx context.Context, poolID int64) ([]*model.AreaCodeSummary, error)
	GetSettings(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error)
	UpsertSettings(ctx context.Context, req model.SettingsUpsertRequest) (*model.CampaignCallerIDSettings, error)
	DeleteSettings(ctx context.Context, campaignID string) error
	ListSettings(ctx context.Context) ([]*model.CampaignCallerIDSettings, error)
}

type PoolHandler struct {
	svc PoolService
}

func RegisterPoolRoutes(e *router.Group, h *PoolHandler) {
	e.POST("/pools", h.CreatePool)
	e.GET("/pools", h.ListPools)
	e.GET("/pools/{id}", h.GetPool)
	e.PUT("/pools/{id}", h.UpdatePool)
	e.DELETE("/pools/{id}", h.DeletePool)

	e.POST("/pools/{id}/numbers/import", h.ImportNumbers)
	e.POST("/pools/{id}/numbers", h.AddNumber)
	e.GET("/pools/{id}/numbers", h.ListNumbers)
	e.DELETE("/pools/{id}/numbers/{number_id}", h.DeleteNumber)
	e.PATCH("/pools/{id}/numbers/{number_id}", h.SetNumberActive)
	e.GET("/pools/{id}/area-codes", h.AreaCodes)

	e.GET("/callerid-settings", h.ListSettings)
	e.GET("/campaigns/{campaign_id}/callerid-settings", h.GetSettings)
	e.PUT("/campaigns/{campaign_id}/callerid-settings", h.UpsertSettings)
	e.DELETE("/campaigns/{campaign_id}/callerid-settings", h.DeleteSettings)
}

func NewPoolHandler(poolService PoolService) *PoolHandler {
	return &PoolHandler{
		svc: poolService,
	}
}

type createPoolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CountryCode string `json:"country_code"`
}

type updatePoolRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CountryCode *string `json:"country_code"`
	IsActive    *bool   `json:"is_active"`
}

type importNumbersRequest struct {
	Numbers string `json:"numbers"`
}

type addNumberRequest struct {
	Number string `json:"number"`
}

type setNumberActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type settingsRequest struct {
	RotationMode      string `json:"rotation_mode"`
	PoolID            *int64 `json:"pool_id"`
	MatchMode         string `json:"match_mode"`
	FixedAreaCode     string `json:"fixed_area_code"`
	FallbackCallerID  string `json:"fallback_callerid"`
	SelectionStrategy string `json:"selection_strategy"`
}

type poolListResponse struct {
	Items []*model.CallerIDPool `json:"items"`
	Total int64                 `json:"total"`
}

type numberListResponse struct {
	Items []*model.PoolNumber `json:"items"`
	Total int64               `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *PoolHandler) CreatePool(ctx *xhttp.RequestCtx) {
	var req createPoolRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	pool, err := h.svc.Create(ctx, model.PoolCreateRequest{
		Name:        req.Name,
		Description: req.Description,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, pool)
}

func (h *PoolHandler) ListPools(ctx *xhttp.RequestCtx) {
	var f model.PoolFilter
	f.Search = query(ctx, "search")
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

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, poolListResponse{Items: items, Total: total})
}

func (h *PoolHandler) GetPool(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	pool, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, pool)
}

func (h *PoolHandler) UpdatePool(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	var req updatePoolRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	pool, err := h.svc.Update(ctx, id, model.PoolUpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		CountryCode: req.CountryCode,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, pool)
}

func (h *PoolHandler) DeletePool(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *PoolHandler) ImportNumbers(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	var req importNumbersRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.ImportNumbers(ctx, id, req.Numbers)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *PoolHandler) AddNumber(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	var req addNumberRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	number, err := h.svc.AddNumber(ctx, id, req.Number)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, number)
}

func (h *PoolHandler) ListNumbers(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	f := model.PoolNumberFilter{PoolID: id, Search: query(ctx, "search")}
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

	items, total, err := h.svc.ListNumbers(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, numberListResponse{Items: items, Total: total})
}

func (h *PoolHandler) DeleteNumber(ctx *xhttp.RequestCtx) {
	poolID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}
	numberID, err := pathInt64(ctx, "number_id")
	if err != nil {
		writeError(ctx, 400, "invalid number id")
		return
	}

	if err := h.svc.DeleteNumber(ctx, poolID, numberID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *PoolHandler) SetNumberActive(ctx *xhttp.RequestCtx) {
	poolID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}
	numberID, err := pathInt64(ctx, "number_id")
	if err != nil {
		writeError(ctx, 400, "invalid number id")
		return
	}

	var req setNumberActiveRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.SetNumberActive(ctx, poolID, numberID, req.IsActive); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *PoolHandler) AreaCodes(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid pool id")
		return
	}

	summaries, err := h.svc.AreaCodes(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summaries)
}

func (h *PoolHandler) ListSettings(ctx *xhttp.RequestCtx) {
	settings, err := h.svc.ListSettings(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, settings)
}

func (h *PoolHandler) GetSettings(ctx *xhttp.RequestCtx) {
	campaignID := pathString(ctx, "campaign_id")
	if campaignID == "" {
		writeError(ctx, 400, "invalid campaign id")
		return
	}

	settings, err := h.svc.GetSettings(ctx, campaignID)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, settings)
}

func (h *PoolHandler) UpsertSettings(ctx *xhttp.RequestCtx) {
	campaignID := pathString(ctx, "campaign_id")
	if campaignID == "" {
		writeError(ctx, 400, "invalid campaign id")
		return
	}

	var req settingsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	settings, err := h.svc.UpsertSettings(ctx, model.SettingsUpsertRequest{
		CampaignID:        campaignID,
		RotationMode:      model.RotationMode(req.RotationMode),
		PoolID:            req.PoolID,
		MatchMode:         model.MatchMode(req.MatchMode),
		FixedAreaCode:     req.FixedAreaCode,
		FallbackCallerID:  req.FallbackCallerID,
		SelectionStrategy: model.SelectionStrategy(req.SelectionStrategy),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, settings)
}

func (h *PoolHandler) DeleteSettings(ctx *xhttp.RequestCtx) {
	campaignID := pathString(ctx, "campaign_id")
	if campaignID == "" {
		writeError(ctx, 400, "invalid campaign id")
		return
	}

	if err := h.svc.DeleteSettings(ctx, campaignID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, services.ErrScheduleExecuted),
		errors.Is(err, services.ErrDuplicateNumber):
		writeError(ctx, 409, err.Error())
	default:
		writeError(ctx, 400, err.Error())
	}
}

func pathString(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	return strconv.ParseInt(pathString(ctx, name), 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func queryBool(ctx *xhttp.RequestCtx, key string) bool {
	return strings.EqualFold(query(ctx, key), "true") || query(ctx, key) == "1"
}
