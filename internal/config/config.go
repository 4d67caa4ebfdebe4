package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv       string     `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev prod"`
	LogLevelName string     `envconfig:"LOG_LEVEL" default:"info"`
	LogLevel     slog.Level `ignored:"true"`

	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"5s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	Gzip              bool          `envconfig:"HTTP_GZIP" default:"true"`

	// Driver is the database/sql driver name; only the sqlite3 driver is linked in.
	Driver string `envconfig:"DB_DRIVER" default:"sqlite3" validate:"oneof=sqlite3"`
	// DSN overrides Path when set and is passed to the driver untouched.
	DSN             string        `envconfig:"DB_DSN"`
	Path            string        `envconfig:"SQLITE_PATH" default:"Resources/hawaii.sqlite" validate:"required_without=DSN"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"4" validate:"gte=0"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"4" validate:"gte=0"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"0s" validate:"gte=0"`
	LogSQL          bool          `envconfig:"DB_LOG_SQL" default:"false"`
}

// LoadFromEnv reads a .env file if present, then the process environment.
// Variables already set in the environment win over the .env file. A blank
// variable is treated as unset so its default applies.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			if err := os.Unsetenv(key); err != nil {
				return Config{}, fmt.Errorf("unset %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	cfg.AppEnv = strings.TrimSpace(cfg.AppEnv)
	cfg.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Path = strings.TrimSpace(cfg.Path)

	level, err := parseLogLevel(cfg.LogLevelName)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s %q (rule %s)", envKey(fe.StructField()), fmt.Sprint(fe.Value()), ruleText(fe)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func ruleText(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL",
	"HTTP_ADDR", "HTTP_READ_HEADER_TIMEOUT", "HTTP_SHUTDOWN_TIMEOUT", "HTTP_GZIP",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
}

func envKey(field string) string {
	t, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	if k := t.Tag.Get("envconfig"); k != "" {
		return k
	}
	return field
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
