package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every environment-driven value used by the console
// binaries. Only this struct may be used to read configuration; no direct
// env/ini access anywhere else.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"dialer_console"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// Telephony control API (dialer admin interface)
	TelephonyAPIURL     string        `env:"TELEPHONY_API_URL"`
	TelephonyAPIUser    string        `env:"TELEPHONY_API_USER"`
	TelephonyAPIPass    string        `env:"TELEPHONY_API_PASS"`
	TelephonyAPISource  string        `env:"TELEPHONY_API_SOURCE" default:"dialer_console"`
	TelephonyAPITimeout time.Duration `env:"TELEPHONY_API_TIMEOUT" default:"30s"`

	// Schedule executor
	SchedulerTickSpec string `env:"SCHEDULER_TICK_SPEC" default:"* * * * *"`

	// Rotation selector
	RotationSelectTimeout  time.Duration `env:"ROTATION_SELECT_TIMEOUT" default:"800ms"`
	RotationLockTTL        time.Duration `env:"ROTATION_LOCK_TTL" default:"2s"`
	RotationLockRetryDelay time.Duration `env:"ROTATION_LOCK_RETRY_DELAY" default:"5ms"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
