package model

import (
	"errors"
	"time"
)

type ScheduleType string

const (
	ScheduleTypeCampaign ScheduleType = "campaign"
	ScheduleTypeList     ScheduleType = "list"
)

type ScheduleAction string

const (
	ActionActivate   ScheduleAction = "activate"
	ActionDeactivate ScheduleAction = "deactivate"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Shift returns t moved forward by one recurrence period. Monthly uses
// calendar months, so Jan 31 + monthly normalizes per time.AddDate.
func (r Recurrence) Shift(t time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t
	}
}

// Schedule is one time-triggered activation/deactivation of a campaign or
// list. Executed is monotonic: it only ever flips false to true. A
// recurring schedule is materialized as a brand new row on execution; the
// original row is never rewritten to represent the next run.
type Schedule struct {
	ID           int64          `json:"id"            db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	ScheduleType ScheduleType   `json:"schedule_type" db:"schedule_type" gorm:"column:schedule_type;not null;index:idx_type_target"`
	TargetID     string         `json:"target_id"     db:"target_id"     gorm:"column:target_id;not null;index:idx_type_target"`
	TargetName   string         `json:"target_name"   db:"target_name"   gorm:"column:target_name"`
	Action       ScheduleAction `json:"action"        db:"action"        gorm:"column:action;not null"`
	ScheduledAt  time.Time      `json:"scheduled_at"  db:"scheduled_at"  gorm:"column:scheduled_at;not null;index"`
	EndAt        *time.Time     `json:"end_at"        db:"end_at"        gorm:"column:end_at"`
	Executed     bool           `json:"executed"      db:"executed"      gorm:"column:executed;not null;default:false;index"`
	ExecutedAt   *time.Time     `json:"executed_at"   db:"executed_at"   gorm:"column:executed_at"`
	Recurring    Recurrence     `json:"recurring"     db:"recurring"     gorm:"column:recurring;not null;default:none"`
	CreatedBy    string         `json:"created_by"    db:"created_by"    gorm:"column:created_by"`
	CreatedAt    time.Time      `json:"created_at"    db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (Schedule) TableName() string { return "schedules" }

// NextOccurrence builds the child row created when a recurring schedule
// executes: scheduled_at shifted one period, end_at shifted by the same
// delta when present.
func (s Schedule) NextOccurrence() Schedule {
	next := Schedule{
		ScheduleType: s.ScheduleType,
		TargetID:     s.TargetID,
		TargetName:   s.TargetName,
		Action:       s.Action,
		ScheduledAt:  s.Recurring.Shift(s.ScheduledAt),
		Recurring:    s.Recurring,
		CreatedBy:    s.CreatedBy,
	}
	if s.EndAt != nil {
		delta := next.ScheduledAt.Sub(s.ScheduledAt)
		shifted := s.EndAt.Add(delta)
		next.EndAt = &shifted
	}
	return next
}

type ScheduleCreateRequest struct {
	ScheduleType ScheduleType
	TargetID     string
	TargetName   string
	Action       ScheduleAction
	ScheduledAt  time.Time
	EndAt        *time.Time
	Recurring    Recurrence
	CreatedBy    string
}

func (r ScheduleCreateRequest) Validate() error {
	switch r.ScheduleType {
	case ScheduleTypeCampaign, ScheduleTypeList:
	default:
		return errors.New("schedule_type must be campaign or list")
	}
	if r.TargetID == "" {
		return errors.New("target_id is required")
	}
	switch r.Action {
	case ActionActivate, ActionDeactivate:
	default:
		return errors.New("action must be activate or deactivate")
	}
	if r.ScheduledAt.IsZero() {
		return errors.New("scheduled_at is required")
	}
	if r.EndAt != nil && r.Action != ActionActivate {
		return errors.New("end_at is only meaningful for activate schedules")
	}
	if r.EndAt != nil && !r.EndAt.After(r.ScheduledAt) {
		return errors.New("end_at must be after scheduled_at")
	}
	switch r.Recurring {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, "":
	default:
		return errors.New("recurring must be none, daily, weekly or monthly")
	}
	return nil
}

// ScheduleUpdateRequest carries partial updates; nil fields are left
// untouched. ClearEndAt removes end_at explicitly since a nil EndAt alone
// cannot distinguish "unset" from "leave as is".
type ScheduleUpdateRequest struct {
	ScheduledAt *time.Time
	EndAt       *time.Time
	ClearEndAt  bool
	Action      *ScheduleAction
	Recurring   *Recurrence
}

// ScheduleWindowFilter selects schedules overlapping a calendar window.
type ScheduleWindowFilter struct {
	Start *time.Time
	End   *time.Time
}
