package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lg/fitness-metrics-go-api/internal/biometrics"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

type Config struct {
	Host string
	Port int
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// persistence
	DBDriver   string `toml:"db_driver"`
	DBURL      string `toml:"db_url"`
	SQLitePath string `toml:"sqlite_path"`
	// metrics engine defaults, overridable per profile
	BMRFormula     string `toml:"bmr_formula"`
	BodyFatFormula string `toml:"body_fat_formula"`
	// FIT inbox: files dropped into FitInboxDir are imported for FitInboxUserID
	FitInboxDir      string `toml:"fit_inbox_dir"`
	FitInboxUserID   int    `toml:"fit_inbox_user_id"`
	FitInboxSchedule string `toml:"fit_inbox_schedule"`
	// calorie suggestions
	OpenAIBaseURL string `toml:"openai_base_url"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load decodes the TOML file, picks the section for env, applies environment
// overrides and validates the result.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in %s", env, path)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DB_URL"); ok && v != "" {
		c.DBURL = v
	}
	if v, ok := lookup("DB_DRIVER"); ok && v != "" {
		c.DBDriver = v
	}
	if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
		c.SQLitePath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("OPENAI_BASE_URL"); ok && v != "" {
		c.OpenAIBaseURL = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = "https://api.openai.com"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DBURL
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBURL == "" {
			err = multierr.Append(err, fmt.Errorf("db_url is required for the postgres driver"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			err = multierr.Append(err, fmt.Errorf("sqlite_path is required for the sqlite driver"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("db_driver must be postgres or sqlite, got %q", c.DBDriver))
	}
	if _, perr := biometrics.ParseBMRFormula(c.BMRFormula); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := biometrics.ParseBodyFatFormula(c.BodyFatFormula); perr != nil {
		err = multierr.Append(err, perr)
	}
	if c.FitInboxDir != "" {
		if c.FitInboxSchedule == "" {
			err = multierr.Append(err, fmt.Errorf("fit_inbox_schedule is required when fit_inbox_dir is set"))
		} else if _, perr := cron.ParseStandard(c.FitInboxSchedule); perr != nil {
			err = multierr.Append(err, fmt.Errorf("fit_inbox_schedule: %w", perr))
		}
		if c.FitInboxUserID <= 0 {
			err = multierr.Append(err, fmt.Errorf("fit_inbox_user_id is required when fit_inbox_dir is set"))
		}
	}
	return err
}

// Formulas returns the configured default metric variants.
func (c *Config) Formulas() biometrics.Formulas {
	bmr, _ := biometrics.ParseBMRFormula(c.BMRFormula)
	bf, _ := biometrics.ParseBodyFatFormula(c.BodyFatFormula)
	return biometrics.Formulas{BMR: bmr, BodyFat: bf}
}
