package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	*pg.DB
}

func NewScheduleRepository(db *pg.DB) *ScheduleRepository {
	return &ScheduleRepository{
		db,
	}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error) {
	entity := toScheduleEntity(s)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toScheduleModel(entity), nil
}

func (r *ScheduleRepository) Get(ctx context.Context, id int64) (*model.Schedule, error) {
	var entity ScheduleEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toScheduleModel(&entity), nil
}

func (r *ScheduleRepository) Update(ctx context.Context, id int64, req model.ScheduleUpdateRequest) (*model.Schedule, error) {
	updates := map[string]interface{}{}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
	}
	if req.ClearEndAt {
		updates["end_at"] = nil
	} else if req.EndAt != nil {
		updates["end_at"] = *req.EndAt
	}
	if req.Action != nil {
		updates["action"] = string(*req.Action)
	}
	if req.Recurring != nil {
		updates["recurring"] = string(*req.Recurring)
	}

	if len(updates) > 0 {
		res := r.Write(ctx).WithContext(ctx).Model(&ScheduleEntity{}).
			Where("id = ? AND executed = ?", id, false).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return r.Get(ctx, id)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).WithContext(ctx).Delete(&ScheduleEntity{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns schedules whose scheduled_at falls in the window, newest
// first when no window is given.
func (r *ScheduleRepository) List(ctx context.Context, f model.ScheduleWindowFilter) ([]*model.Schedule, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ScheduleEntity{})

	if f.Start != nil {
		q = q.Where("scheduled_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("scheduled_at < ?", *f.End)
	}

	var entities []*ScheduleEntity
	if err := q.Order("scheduled_at ASC, id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toScheduleModels(entities), nil
}

// DuePending returns unexecuted schedules whose trigger time has passed,
// oldest first so backlog drains in order.
func (r *ScheduleRepository) DuePending(ctx context.Context, now time.Time) ([]*model.Schedule, error) {
	var entities []*ScheduleEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("executed = ? AND scheduled_at <= ?", false, now).
		Order("scheduled_at ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toScheduleModels(entities), nil
}

// DueEnded returns executed activate schedules whose end window has
// closed. The rows themselves are never rewritten by the end pass, so the
// same rows come back every tick; the executor decides per target whether
// anything is left to reverse.
func (r *ScheduleRepository) DueEnded(ctx context.Context, now time.Time) ([]*model.Schedule, error) {
	var entities []*ScheduleEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("executed = ? AND action = ? AND end_at IS NOT NULL AND end_at <= ?",
			true, string(model.ActionActivate), now).
		Order("end_at ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toScheduleModels(entities), nil
}

// MarkExecuted flips a schedule to executed. The flag is monotonic: the
// update only matches unexecuted rows, and the returned bool reports
// whether this caller did the flip.
func (r *ScheduleRepository) MarkExecuted(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.Write(ctx).WithContext(ctx).Model(&ScheduleEntity{}).
		Where("id = ? AND executed = ?", id, false).
		Updates(map[string]interface{}{
			"executed":    true,
			"executed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
