// Package scheduler drives the time-based activation of campaigns and
// lists: a cron tick scans the schedule table and applies due actions
// through the telephony API, with the database as fallback.
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/gescall/dialer-console/pkg/prom"
)

type TelephonyGateway interface {
	SetCampaignActive(ctx context.Context, campaignID, active string) error
	SetListActive(ctx context.Context, listID, active string) error
}

type ScheduleStore interface {
	DuePending(ctx context.Context, now time.Time) ([]*model.Schedule, error)
	DueEnded(ctx context.Context, now time.Time) ([]*model.Schedule, error)
	MarkExecuted(ctx context.Context, id int64, at time.Time) (bool, error)
	Create(ctx context.Context, s *model.Schedule) (*model.Schedule, error)
}

type TargetStore interface {
	GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error)
	GetList(ctx context.Context, listID string) (*model.List, error)
	SetCampaignActive(ctx context.Context, campaignID, active string) error
	SetListActive(ctx context.Context, listID, active string) error
}

// Executor runs one scan per tick. Ticks never overlap: a tick that
// outlives the cron interval makes the next one bow out, so a slow
// telephony API cannot stack up concurrent scans. Failed tasks stay
// pending and are retried on the next tick, which makes execution
// at-least-once; the monotonic executed flag keeps it from doubling up.
type Executor struct {
	schedules ScheduleStore
	targets   TargetStore
	gateway   TelephonyGateway

	tickTimeout time.Duration
	running     atomic.Bool
	now         func() time.Time
}

func NewExecutor(schedules ScheduleStore, targets TargetStore, gateway TelephonyGateway) *Executor {
	return &Executor{
		schedules:   schedules,
		targets:     targets,
		gateway:     gateway,
		tickTimeout: 50 * time.Second,
		now:         time.Now,
	}
}

func (e *Executor) Tick() {
	if !e.running.CompareAndSwap(false, true) {
		prom.IncCounter(prom.SystemScheduler, prom.MetricSchedulerTicksOverlapped)
		logger.Warn("Scheduler tick still running, skipping this one")
		return
	}
	defer e.running.Store(false)

	start := e.now()
	prom.IncCounter(prom.SystemScheduler, prom.MetricSchedulerTicks)

	ctx, cancel := context.WithTimeout(context.Background(), e.tickTimeout)
	defer cancel()

	// End windows close before new activations fire: a campaign whose
	// slot ended this minute must not stay dialing while the backlog
	// drains.
	e.runEndPass(ctx, start)
	e.runDuePass(ctx, start)

	prom.AddHistogram(prom.SystemScheduler, prom.MetricSchedulerTickDuration, time.Since(start).Seconds())
}

func (e *Executor) runEndPass(ctx context.Context, now time.Time) {
	ended, err := e.schedules.DueEnded(ctx, now)
	if err != nil {
		logger.Error("End-window scan failed", "error", err)
		return
	}

	for _, s := range ended {
		active, err := e.targetActive(ctx, s.ScheduleType, s.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			continue // target removed since the schedule ran
		}
		if err != nil {
			logger.Error("End-window target check failed", "schedule_id", s.ID, "error", err)
			continue
		}
		if active != model.ActiveYes {
			continue
		}

		if err := e.applyActive(ctx, s.ScheduleType, s.TargetID, model.ActiveNo); err != nil {
			logger.Error("End-window deactivation failed",
				"schedule_id", s.ID, "target_id", s.TargetID, "error", err)
			continue
		}

		prom.IncCounter(prom.SystemScheduler, prom.MetricSchedulerEndReversals)
		logger.Info("End window closed, target deactivated",
			"schedule_id", s.ID, "type", string(s.ScheduleType), "target_id", s.TargetID, "end_at", s.EndAt)
	}
}

func (e *Executor) runDuePass(ctx context.Context, now time.Time) {
	due, err := e.schedules.DuePending(ctx, now)
	if err != nil {
		logger.Error("Due-schedule scan failed", "error", err)
		return
	}

	for _, s := range due {
		if err := e.execute(ctx, s); err != nil {
			prom.IncCounterVec(prom.SystemScheduler, prom.MetricSchedulerTasksFailed,
				string(s.ScheduleType), string(s.Action))
			logger.Error("Schedule execution failed, will retry next tick",
				"schedule_id", s.ID, "target_id", s.TargetID, "error", err)
		}
	}
}

func (e *Executor) execute(ctx context.Context, s *model.Schedule) error {
	active := model.ActiveYes
	if s.Action == model.ActionDeactivate {
		active = model.ActiveNo
	}

	if err := e.applyActive(ctx, s.ScheduleType, s.TargetID, active); err != nil {
		return err
	}

	done, err := e.schedules.MarkExecuted(ctx, s.ID, e.now())
	if err != nil {
		return err
	}
	if !done {
		// Another instance got there first; it owns the recurrence too.
		return nil
	}

	prom.IncCounterVec(prom.SystemScheduler, prom.MetricSchedulerTasksExecuted,
		string(s.ScheduleType), string(s.Action))
	logger.Info("Schedule executed",
		"schedule_id", s.ID, "type", string(s.ScheduleType),
		"target_id", s.TargetID, "action", string(s.Action))

	if s.Recurring != model.RecurrenceNone && s.Recurring != "" {
		next := s.NextOccurrence()
		if _, err := e.schedules.Create(ctx, &next); err != nil {
			// The executed parent stays executed; the missing child is
			// an operator-visible gap, not a retry loop.
			logger.Error("Recurrence row creation failed",
				"schedule_id", s.ID, "next_at", next.ScheduledAt, "error", err)
			return nil
		}
		prom.IncCounter(prom.SystemScheduler, prom.MetricSchedulerRecurrenceRows)
		logger.Info("Recurrence scheduled", "schedule_id", s.ID, "next_at", next.ScheduledAt)
	}

	return nil
}

func (e *Executor) targetActive(ctx context.Context, st model.ScheduleType, targetID string) (string, error) {
	if st == model.ScheduleTypeCampaign {
		c, err := e.targets.GetCampaign(ctx, targetID)
		if err != nil {
			return "", err
		}
		return c.Active, nil
	}
	l, err := e.targets.GetList(ctx, targetID)
	if err != nil {
		return "", err
	}
	return l.Active, nil
}

// applyActive goes through the telephony API so the dialer reloads its
// hopper; a direct table write is the fallback when the API is down.
func (e *Executor) applyActive(ctx context.Context, st model.ScheduleType, targetID, active string) error {
	if e.gateway != nil {
		var err error
		if st == model.ScheduleTypeCampaign {
			err = e.gateway.SetCampaignActive(ctx, targetID, active)
		} else {
			err = e.gateway.SetListActive(ctx, targetID, active)
		}
		if err == nil {
			return nil
		}
		logger.Warn("Telephony API unavailable, writing flag directly",
			"type", string(st), "target_id", targetID, "error", err)
	}

	if st == model.ScheduleTypeCampaign {
		return e.targets.SetCampaignActive(ctx, targetID, active)
	}
	return e.targets.SetListActive(ctx, targetID, active)
}
