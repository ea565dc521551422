package repository

import (
	"time"

	"github.com/gescall/dialer-console/internal/model"
)

type ScheduleEntity struct {
	ID           int64      `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	ScheduleType string     `db:"schedule_type" gorm:"column:schedule_type;not null;index:idx_type_target"`
	TargetID     string     `db:"target_id"     gorm:"column:target_id;not null;index:idx_type_target"`
	TargetName   string     `db:"target_name"   gorm:"column:target_name"`
	Action       string     `db:"action"        gorm:"column:action;not null"`
	ScheduledAt  time.Time  `db:"scheduled_at"  gorm:"column:scheduled_at;not null;index"`
	EndAt        *time.Time `db:"end_at"        gorm:"column:end_at"`
	Executed     bool       `db:"executed"      gorm:"column:executed;not null;default:false;index"`
	ExecutedAt   *time.Time `db:"executed_at"   gorm:"column:executed_at"`
	Recurring    string     `db:"recurring"     gorm:"column:recurring;not null;default:none"`
	CreatedBy    string     `db:"created_by"    gorm:"column:created_by"`
	CreatedAt    time.Time  `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (ScheduleEntity) TableName() string {
	return "schedules"
}

func toScheduleEntity(m *model.Schedule) *ScheduleEntity {
	if m == nil {
		return nil
	}
	return &ScheduleEntity{
		ID:           m.ID,
		ScheduleType: string(m.ScheduleType),
		TargetID:     m.TargetID,
		TargetName:   m.TargetName,
		Action:       string(m.Action),
		ScheduledAt:  m.ScheduledAt,
		EndAt:        m.EndAt,
		Executed:     m.Executed,
		ExecutedAt:   m.ExecutedAt,
		Recurring:    string(m.Recurring),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

func toScheduleModel(e *ScheduleEntity) *model.Schedule {
	if e == nil {
		return nil
	}
	return &model.Schedule{
		ID:           e.ID,
		ScheduleType: model.ScheduleType(e.ScheduleType),
		TargetID:     e.TargetID,
		TargetName:   e.TargetName,
		Action:       model.ScheduleAction(e.Action),
		ScheduledAt:  e.ScheduledAt,
		EndAt:        e.EndAt,
		Executed:     e.Executed,
		ExecutedAt:   e.ExecutedAt,
		Recurring:    model.Recurrence(e.Recurring),
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}

func toScheduleModels(entities []*ScheduleEntity) []*model.Schedule {
	if entities == nil {
		return nil
	}
	models := make([]*model.Schedule, len(entities))
	for i, e := range entities {
		models[i] = toScheduleModel(e)
	}
	return models
}
