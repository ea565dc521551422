package scheduler

import (
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Runner wires the executor onto a cron spec, one tick per minute in the
// default deployment.
type Runner struct {
	cron     *cron.Cron
	executor *Executor
}

func NewRunner(executor *Executor, spec string) (*Runner, error) {
	r := &Runner{
		cron:     cron.New(),
		executor: executor,
	}
	if _, err := r.cron.AddFunc(spec, executor.Tick); err != nil {
		return nil, err
	}

	logger.Info("Scheduler runner configured", "spec", spec)
	return r, nil
}

func (r *Runner) Start() {
	logger.Info("Scheduler runner starting")
	r.cron.Start()
}

// Stop halts future ticks; a tick already in flight finishes on its own.
func (r *Runner) Stop() {
	logger.Info("Scheduler runner stopping")
	r.cron.Stop()
}
