package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/gescall/dialer-console/internal/model"
	xhttp "github.com/gescall/dialer-console/pkg/http"
)

type ScheduleService interface {
	Create(ctx context.Context, req model.ScheduleCreateRequest) (*model.Schedule, error)
	Get(ctx context.Context, id int64) (*model.Schedule, error)
	Update(ctx context.Context, id int64, req model.ScheduleUpdateRequest) (*model.Schedule, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.ScheduleWindowFilter) ([]*model.Schedule, error)
	Upcoming(ctx context.Context) ([]*model.Schedule, error)
	Campaigns(ctx context.Context) ([]*model.Campaign, error)
	Lists(ctx context.Context, campaignID string) ([]*model.List, error)
}

type ScheduleHandler struct {
	svc ScheduleService
}

func RegisterScheduleRoutes(e *router.Group, h *ScheduleHandler) {
	e.POST("/schedules", h.CreateSchedule)
	e.GET("/schedules", h.ListSchedules)
	e.GET("/schedules/upcoming", h.UpcomingSchedules)
	e.GET("/schedules/{id}", h.GetSchedule)
	e.PUT("/schedules/{id}", h.UpdateSchedule)
	e.DELETE("/schedules/{id}", h.DeleteSchedule)

	e.GET("/targets/campaigns", h.ListCampaigns)
	e.GET("/targets/lists", h.ListLists)
}

func NewScheduleHandler(scheduleService ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		svc: scheduleService,
	}
}

type createScheduleRequest struct {
	ScheduleType string     `json:"schedule_type"`
	TargetID     string     `json:"target_id"`
	TargetName   string     `json:"target_name"`
	Action       string     `json:"action"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	EndAt        *time.Time `json:"end_at"`
	Recurring    string     `json:"recurring"`
	CreatedBy    string     `json:"created_by"`
}

type updateScheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	EndAt       *time.Time `json:"end_at"`
	ClearEndAt  bool       `json:"clear_end_at"`
	Action      *string    `json:"action"`
	Recurring   *string    `json:"recurring"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ScheduleHandler) CreateSchedule(ctx *xhttp.RequestCtx) {
	var req createScheduleRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	schedule, err := h.svc.Create(ctx, model.ScheduleCreateRequest{
		ScheduleType: model.ScheduleType(req.ScheduleType),
		TargetID:     req.TargetID,
		TargetName:   req.TargetName,
		Action:       model.ScheduleAction(req.Action),
		ScheduledAt:  req.ScheduledAt,
		EndAt:        req.EndAt,
		Recurring:    model.Recurrence(req.Recurring),
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, schedule)
}

func (h *ScheduleHandler) ListSchedules(ctx *xhttp.RequestCtx) {
	var f model.ScheduleWindowFilter
	if v := query(ctx, "start"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.Start = &t
		}
	}
	if v := query(ctx, "end"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.End = &t
		}
	}

	schedules, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, schedules)
}

func (h *ScheduleHandler) UpcomingSchedules(ctx *xhttp.RequestCtx) {
	schedules, err := h.svc.Upcoming(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, schedules)
}

func (h *ScheduleHandler) GetSchedule(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid schedule id")
		return
	}

	schedule, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, schedule)
}

func (h *ScheduleHandler) UpdateSchedule(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid schedule id")
		return
	}

	var req updateScheduleRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	update := model.ScheduleUpdateRequest{
		ScheduledAt: req.ScheduledAt,
		EndAt:       req.EndAt,
		ClearEndAt:  req.ClearEndAt,
	}
	if req.Action != nil {
		action := model.ScheduleAction(*req.Action)
		update.Action = &action
	}
	if req.Recurring != nil {
		recurring := model.Recurrence(*req.Recurring)
		update.Recurring = &recurring
	}

	schedule, err := h.svc.Update(ctx, id, update)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, schedule)
}

func (h *ScheduleHandler) DeleteSchedule(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid schedule id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ScheduleHandler) ListCampaigns(ctx *xhttp.RequestCtx) {
	campaigns, err := h.svc.Campaigns(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, campaigns)
}

func (h *ScheduleHandler) ListLists(ctx *xhttp.RequestCtx) {
	lists, err := h.svc.Lists(ctx, query(ctx, "campaign_id"))
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, lists)
}
