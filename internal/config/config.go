package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	User      UserConfig      `yaml:"user" mapstructure:"user"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Plan      PlanConfig      `yaml:"plan" mapstructure:"plan"`
	Poll      PollConfig      `yaml:"poll" mapstructure:"poll"`
	Notify    NotifyConfig    `yaml:"notify" mapstructure:"notify"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// UserConfig identifies the local profile and its plan inputs.
type UserConfig struct {
	ID            string   `yaml:"id" mapstructure:"id"`
	Weight        float64  `yaml:"weight" mapstructure:"weight"`
	Height        float64  `yaml:"height" mapstructure:"height"`
	Age           int      `yaml:"age" mapstructure:"age"`
	Gender        string   `yaml:"gender" mapstructure:"gender"`
	ActivityLevel string   `yaml:"activity_level" mapstructure:"activity_level"`
	Goal          string   `yaml:"goal" mapstructure:"goal"`
	Preference    string   `yaml:"preference" mapstructure:"preference"`
	Allergies     []string `yaml:"allergies" mapstructure:"allergies"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	ExtractModel      string `yaml:"extract_model" mapstructure:"extract_model"`
	PlanModel         string `yaml:"plan_model" mapstructure:"plan_model"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// PlanConfig configures diet plan generation.
type PlanConfig struct {
	Language    string `yaml:"language" mapstructure:"language"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PollConfig configures job status polling.
type PollConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
}

// NotifyConfig configures plan-event notifications.
type NotifyConfig struct {
	Language string `yaml:"language" mapstructure:"language"`
	Desktop  bool   `yaml:"desktop" mapstructure:"desktop"`
}

// ExportConfig configures workbook export.
type ExportConfig struct {
	Language string `yaml:"language" mapstructure:"language"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BIOTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("user.id", "local")
	v.SetDefault("user.weight", 70.0)
	v.SetDefault("user.height", 170.0)
	v.SetDefault("user.age", 30)
	v.SetDefault("user.gender", "male")
	v.SetDefault("user.activity_level", "moderate")
	v.SetDefault("user.goal", "maintenance")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "biotrack.db")
	v.SetDefault("anthropic.extract_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.plan_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.requests_per_minute", 20)
	v.SetDefault("plan.language", "en")
	v.SetDefault("plan.timeout_secs", 300)
	v.SetDefault("poll.interval_secs", 3)
	v.SetDefault("notify.language", "en")
	v.SetDefault("notify.desktop", true)
	v.SetDefault("export.language", "en")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields a command mode depends on are set.
// Modes: "local" (store only), "analyze"/"plan" (store + Anthropic key),
// "serve" (everything the API server needs).
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				missing = append(missing, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required for the postgres driver")
			}
		default:
			missing = append(missing, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
		}
	}
	checkAnthropic := func() {
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
		if c.Anthropic.RequestsPerMinute < 0 {
			missing = append(missing, "anthropic.requests_per_minute must be >= 0")
		}
	}

	switch mode {
	case "local":
		checkStore()
	case "analyze", "plan":
		checkStore()
		checkAnthropic()
	case "serve":
		checkStore()
		checkAnthropic()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Plan.TimeoutSecs <= 0 {
		missing = append(missing, "plan.timeout_secs must be > 0")
	}
	if c.Poll.IntervalSecs <= 0 {
		missing = append(missing, "poll.interval_secs must be > 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
