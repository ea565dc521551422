package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gescall/dialer-console/internal/config"
	gateway "github.com/gescall/dialer-console/internal/gateways"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/internal/scheduler"
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/gescall/dialer-console/pkg/pg"
	"github.com/gescall/dialer-console/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	// Without a telephony endpoint the executor still runs and writes
	// activation flags straight to the dialer database.
	var client *gateway.Client
	if config.Get().TelephonyAPIURL != "" {
		client, err = gateway.NewClient(&gateway.Config{
			BaseURL:    config.Get().TelephonyAPIURL,
			User:       config.Get().TelephonyAPIUser,
			Pass:       config.Get().TelephonyAPIPass,
			Source:     config.Get().TelephonyAPISource,
			Timeout:    config.Get().TelephonyAPITimeout,
			MaxRetries: 3,
		})
		if err != nil {
			logger.Error("failed to create telephony client", "error", err)
			return
		}
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	targetRepo := repository.NewTargetRepository(db)

	executor := scheduler.NewExecutor(scheduleRepo, targetRepo, executorGateway(client))

	runner, err := scheduler.NewRunner(executor, config.Get().SchedulerTickSpec)
	if err != nil {
		logger.Error("failed to create runner", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServe(":9101", "/metrics")
	}()

	runner.Start()
	logger.Info("schedule executor started", "tick", config.Get().SchedulerTickSpec)

	select {
	case <-c:
		runner.Stop()
	}
}

// executorGateway keeps the executor's gateway strictly nil when no
// endpoint is configured; a typed nil *Client inside the interface would
// defeat the nil check.
func executorGateway(client *gateway.Client) scheduler.TelephonyGateway {
	if client == nil {
		return nil
	}
	return client
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
