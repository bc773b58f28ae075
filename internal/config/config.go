// Package config loads strategy-gate configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Environment variable names for overrides.
const (
	EnvStorageBackend = "STRATEGYGATE_STORAGE_BACKEND"
	EnvPostgresDSN    = "STRATEGYGATE_POSTGRES_DSN"
	EnvClickhouseDSN  = "STRATEGYGATE_CLICKHOUSE_DSN"
	EnvRedisAddr      = "STRATEGYGATE_REDIS_ADDR"
	EnvRedisPassword  = "STRATEGYGATE_REDIS_PASSWORD"
	EnvKafkaBrokers   = "STRATEGYGATE_KAFKA_BROKERS"
	EnvKafkaTopic     = "STRATEGYGATE_KAFKA_TOPIC"
	EnvServerAddr     = "STRATEGYGATE_SERVER_ADDR"
	EnvLogLevel       = "STRATEGYGATE_LOG_LEVEL"
	EnvLogFormat      = "STRATEGYGATE_LOG_FORMAT"
	EnvSplits         = "STRATEGYGATE_SPLITS"
	EnvEmbargoPct     = "STRATEGYGATE_EMBARGO_PCT"
	EnvGateThreshold  = "STRATEGYGATE_GATE_THRESHOLD"
)

// Config is the top-level configuration.
type Config struct {
	Log        Log        `yaml:"log"`
	Validation Validation `yaml:"validation"`
	Gate       Gate       `yaml:"gate"`
	TCA        TCA        `yaml:"tca"`
	Storage    Storage    `yaml:"storage"`
	Kafka      Kafka      `yaml:"kafka"`
	Server     Server     `yaml:"server"`
}

// Log configures the zerolog logger.
type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
}

// Validation configures the purged k-fold walk-forward run.
type Validation struct {
	Splits         int     `yaml:"splits" default:"5" validate:"gte=2"`
	EmbargoPct     float64 `yaml:"embargo_pct" default:"0.01" validate:"gte=0,lt=0.5"`
	EmbargoMode    string  `yaml:"embargo_mode" default:"time" validate:"oneof=time count"`
	PeriodsPerYear float64 `yaml:"periods_per_year" default:"252" validate:"gte=0"`
	Workers        int     `yaml:"workers" default:"4" validate:"gte=1"`
}

// Gate configures the promotion gate.
type Gate struct {
	Threshold  float64 `yaml:"threshold"`
	Confidence float64 `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
	Estimator  string  `yaml:"estimator" default:"normal" validate:"oneof=normal hoeffding"`
	Delta      float64 `yaml:"delta" default:"0.05" validate:"gt=0,lt=1"`
}

// TCA configures the fill simulator.
type TCA struct {
	FillProb         float64 `yaml:"fill_prob" default:"1" validate:"gte=0,lte=1"`
	AdverseSelection float64 `yaml:"adverse_selection"`
	LatencyMs        float64 `yaml:"latency_ms" validate:"gte=0"`
	Depth            float64 `yaml:"depth" default:"1" validate:"gt=0"`
	CalibrationLog   string  `yaml:"calibration_log"`
	Venue            string  `yaml:"venue" default:"default" validate:"required"`
}

// Storage selects persistence backends.
type Storage struct {
	Backend        string        `yaml:"backend" default:"memory" validate:"oneof=memory postgres"`
	PostgresDSN    string        `yaml:"postgres_dsn" validate:"required_if=Backend postgres"`
	ClickhouseDSN  string        `yaml:"clickhouse_dsn"`
	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db" validate:"gte=0"`
	CalibrationTTL time.Duration `yaml:"calibration_ttl" default:"10m" validate:"gte=0"`
}

// Kafka configures decision event publishing. Empty Brokers disables it.
type Kafka struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"strategy-gate.decisions"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"required"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"30s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s" validate:"gt=0"`
	RateLimit       float64       `yaml:"rate_limit" default:"50" validate:"gte=0"` // requests/sec, 0 disables
	RateBurst       int           `yaml:"rate_burst" default:"100" validate:"gte=1"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" default:"10485760" validate:"gt=0"`
}

var validate = validator.New()

// Default returns a config populated with defaults only.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// Tags are static; failure here is a programming error.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML config file, applies env overrides and validates.
// An empty path yields defaults plus env overrides.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Defaults are applied first so explicit zeros in YAML survive.
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		EnvStorageBackend: &c.Storage.Backend,
		EnvPostgresDSN:    &c.Storage.PostgresDSN,
		EnvClickhouseDSN:  &c.Storage.ClickhouseDSN,
		EnvRedisAddr:      &c.Storage.RedisAddr,
		EnvRedisPassword:  &c.Storage.RedisPassword,
		EnvKafkaTopic:     &c.Kafka.Topic,
		EnvServerAddr:     &c.Server.Addr,
		EnvLogLevel:       &c.Log.Level,
		EnvLogFormat:      &c.Log.Format,
	}
	for name, dst := range str {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if v := getenv(EnvKafkaBrokers); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv(EnvSplits); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvSplits, err)
		}
		c.Validation.Splits = n
	}
	if v := getenv(EnvEmbargoPct); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvEmbargoPct, err)
		}
		c.Validation.EmbargoPct = f
	}
	if v := getenv(EnvGateThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvGateThreshold, err)
		}
		c.Gate.Threshold = f
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks struct constraints. The error names every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Drop the leading "Config." from the namespace.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
