package services

import (
	"context"
	"errors"
	"time"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/pkg/logger"
)

var (
	ErrScheduleInPast   = errors.New("scheduled_at must be in the future")
	ErrScheduleExecuted = errors.New("schedule already executed")
	ErrUnknownTarget    = errors.New("target campaign or list does not exist")
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error)
	Get(ctx context.Context, id int64) (*model.Schedule, error)
	Update(ctx context.Context, id int64, req model.ScheduleUpdateRequest) (*model.Schedule, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.ScheduleWindowFilter) ([]*model.Schedule, error)
}

type TargetReader interface {
	GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*model.Campaign, error)
	GetList(ctx context.Context, listID string) (*model.List, error)
	ListLists(ctx context.Context, campaignID string) ([]*model.List, error)
}

type ScheduleService struct {
	scheduleRepo ScheduleRepository
	targetRepo   TargetReader
	now          func() time.Time
}

func NewScheduleService(scheduleRepo ScheduleRepository, targetRepo TargetReader) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		targetRepo:   targetRepo,
		now:          time.Now,
	}
}

func (s *ScheduleService) Create(ctx context.Context, req model.ScheduleCreateRequest) (*model.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, ErrScheduleInPast
	}

	name, err := s.resolveTargetName(ctx, req.ScheduleType, req.TargetID)
	if err != nil {
		return nil, err
	}
	if req.TargetName == "" {
		req.TargetName = name
	}

	recurring := req.Recurring
	if recurring == "" {
		recurring = model.RecurrenceNone
	}

	created, err := s.scheduleRepo.Create(ctx, &model.Schedule{
		ScheduleType: req.ScheduleType,
		TargetID:     req.TargetID,
		TargetName:   req.TargetName,
		Action:       req.Action,
		ScheduledAt:  req.ScheduledAt,
		EndAt:        req.EndAt,
		Recurring:    recurring,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Schedule created",
		"schedule_id", created.ID, "type", string(created.ScheduleType),
		"target_id", created.TargetID, "action", string(created.Action),
		"at", created.ScheduledAt)
	return created, nil
}

func (s *ScheduleService) resolveTargetName(ctx context.Context, st model.ScheduleType, targetID string) (string, error) {
	switch st {
	case model.ScheduleTypeCampaign:
		c, err := s.targetRepo.GetCampaign(ctx, targetID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownTarget
		}
		if err != nil {
			return "", err
		}
		return c.CampaignName, nil
	default:
		l, err := s.targetRepo.GetList(ctx, targetID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownTarget
		}
		if err != nil {
			return "", err
		}
		return l.ListName, nil
	}
}

func (s *ScheduleService) Get(ctx context.Context, id int64) (*model.Schedule, error) {
	schedule, err := s.scheduleRepo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return schedule, err
}

// Update reschedules a pending row. Executed schedules are history and
// stay as written.
func (s *ScheduleService) Update(ctx context.Context, id int64, req model.ScheduleUpdateRequest) (*model.Schedule, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Executed {
		return nil, ErrScheduleExecuted
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.After(s.now()) {
		return nil, ErrScheduleInPast
	}
	if req.EndAt != nil {
		at := existing.ScheduledAt
		if req.ScheduledAt != nil {
			at = *req.ScheduledAt
		}
		if !req.EndAt.After(at) {
			return nil, errors.New("end_at must be after scheduled_at")
		}
	}

	updated, err := s.scheduleRepo.Update(ctx, id, req)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrScheduleExecuted
	}
	return updated, err
}

func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if schedule.Executed {
		return ErrScheduleExecuted
	}

	err = s.scheduleRepo.Delete(ctx, id)
	if err == nil {
		logger.Info("Schedule deleted", "schedule_id", id)
	}
	return err
}

func (s *ScheduleService) List(ctx context.Context, f model.ScheduleWindowFilter) ([]*model.Schedule, error) {
	return s.scheduleRepo.List(ctx, f)
}

// Upcoming lists the next 7 days, the default calendar view.
func (s *ScheduleService) Upcoming(ctx context.Context) ([]*model.Schedule, error) {
	start := s.now()
	end := start.Add(7 * 24 * time.Hour)
	return s.scheduleRepo.List(ctx, model.ScheduleWindowFilter{Start: &start, End: &end})
}

func (s *ScheduleService) Campaigns(ctx context.Context) ([]*model.Campaign, error) {
	return s.targetRepo.ListCampaigns(ctx)
}

func (s *ScheduleService) Lists(ctx context.Context, campaignID string) ([]*model.List, error) {
	return s.targetRepo.ListLists(ctx, campaignID)
}
