package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Password PasswordConfig
	Alerts   AlertsConfig
	Export   ExportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MILLTRACK_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"MILLTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MILLTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Path is the sqlite database file; the store is local to the device
	// and shared by every component through a single connection.
	Path        string        `envconfig:"MILLTRACK_DB_PATH" default:"milltrack.db"`
	BusyTimeout time.Duration `envconfig:"MILLTRACK_DB_BUSY_TIMEOUT" default:"5s"`
	AutoMigrate bool          `envconfig:"MILLTRACK_AUTO_MIGRATE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MILLTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MILLTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MILLTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MILLTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MILLTRACK_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"MILLTRACK_PASSWORD_MIN_LENGTH" default:"6"`
	TempLength       int `envconfig:"MILLTRACK_TEMP_PASSWORD_LENGTH" default:"8"`
}

// AlertsConfig carries the advisory production thresholds. They gate
// notifications only; no operation rejects an entry because of them.
type AlertsConfig struct {
	MinOilYieldPercent    float64 `envconfig:"MILLTRACK_ALERT_MIN_OIL_YIELD" default:"38.0"`
	MaxProcessLossPercent float64 `envconfig:"MILLTRACK_ALERT_MAX_PROCESS_LOSS" default:"7.0"`
	MaxBreakdownMinutes   int     `envconfig:"MILLTRACK_ALERT_MAX_BREAKDOWN_MINUTES" default:"45"`
	MinRuntimeMinutes     int     `envconfig:"MILLTRACK_ALERT_MIN_RUNTIME_MINUTES" default:"300"`
}

type ExportConfig struct {
	OutputDir string `envconfig:"MILLTRACK_EXPORT_DIR" default:"."`
}
