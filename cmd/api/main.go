package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gescall/dialer-console/internal/config"
	"github.com/gescall/dialer-console/internal/handlers"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/internal/services"
	xhttp "github.com/gescall/dialer-console/pkg/http"
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/gescall/dialer-console/pkg/pg"
	"github.com/gescall/dialer-console/pkg/prom"
	"github.com/gescall/dialer-console/pkg/redis"
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

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if config.Get().AppDebugMetricsAddr != "" {
		err = prom.Create(config.Get().AppName, config.Get().AppEnv, config.Get().PromNamespace)
		if err != nil {
			logger.Error("failed creating metrics", "error", err)
			return
		}
		go prom.ListenAndServe(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	poolRepo := repository.NewPoolRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	rotationRepo := repository.NewRotationRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	targetRepo := repository.NewTargetRepository(db)

	// services
	poolService := services.NewPoolService(poolRepo, settingsRepo)
	rotationService := services.NewRotationService(settingsRepo, poolRepo, rotationRepo, usageRepo, redisAdap, services.RotationOptions{
		SelectTimeout:  config.Get().RotationSelectTimeout,
		LockTTL:        config.Get().RotationLockTTL,
		LockRetryDelay: config.Get().RotationLockRetryDelay,
	})
	scheduleService := services.NewScheduleService(scheduleRepo, targetRepo)

	// v1 handlers
	poolHandler := handlers.NewPoolHandler(poolService)
	rotationHandler := handlers.NewRotationHandler(rotationService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	healthHandler := handlers.NewHealthHandler()

	g := s.Router.Group("/api/v1")
	handlers.RegisterPoolRoutes(g, poolHandler)
	handlers.RegisterRotationRoutes(g, rotationHandler)
	handlers.RegisterScheduleRoutes(g, scheduleHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
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
