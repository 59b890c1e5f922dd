package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/vet-tarapaca/booking-api/internal/model"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Scheduling   SchedulingConfig   `mapstructure:"scheduling"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	SessionStore SessionStoreConfig `mapstructure:"session_store"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SchedulingConfig struct {
	Timezone          string                   `mapstructure:"timezone"`
	ConsultationTypes []ConsultationTypeConfig `mapstructure:"consultation_types"`
	Week              map[string]DayConfig     `mapstructure:"week"`
}

type ConsultationTypeConfig struct {
	Key             string `mapstructure:"key"`
	Label           string `mapstructure:"label"`
	DurationMinutes int    `mapstructure:"duration_minutes"`
	Description     string `mapstructure:"description"`
}

type DayConfig struct {
	Open   string        `mapstructure:"open"`
	Close  string        `mapstructure:"close"`
	Breaks []BreakConfig `mapstructure:"breaks"`
}

type BreakConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type RemoteConfig struct {
	ScriptURL      string `mapstructure:"script_url"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

type SessionStoreConfig struct {
	Backend      string `mapstructure:"backend"`
	TTLMinutes   int    `mapstructure:"ttl_minutes"`
	RedisURL     string `mapstructure:"redis_url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	ClinicCopy string `mapstructure:"clinic_copy"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Secrets are the deploy-time values that never belong in the yaml file.
// They override whatever the file says.
type Secrets struct {
	ScriptURL    string `envconfig:"SCRIPT_URL"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	RedisURL     string `envconfig:"REDIS_URL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("booking", &secrets); err != nil {
		return nil, fmt.Errorf("failed to read environment secrets: %w", err)
	}
	if secrets.ScriptURL != "" {
		config.Remote.ScriptURL = secrets.ScriptURL
	}
	if secrets.SMTPPassword != "" {
		config.SMTP.Password = secrets.SMTPPassword
	}
	if secrets.RedisURL != "" {
		config.SessionStore.RedisURL = secrets.RedisURL
	}

	return &config, nil
}

func (c SchedulingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c SchedulingConfig) Catalog() (model.Catalog, error) {
	if len(c.ConsultationTypes) == 0 {
		return nil, fmt.Errorf("scheduling.consultation_types must not be empty")
	}
	catalog := make(model.Catalog, len(c.ConsultationTypes))
	for _, t := range c.ConsultationTypes {
		if t.Key == "" || t.DurationMinutes <= 0 {
			return nil, fmt.Errorf("consultation type %q needs a key and a positive duration", t.Key)
		}
		catalog[t.Key] = model.ConsultationType{
			Key:             t.Key,
			Label:           t.Label,
			DurationMinutes: t.DurationMinutes,
			Description:     t.Description,
		}
	}
	return catalog, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeeklySchedule parses the per-day opening hours. Days absent from the
// config are closed.
func (c SchedulingConfig) WeeklySchedule() (model.WeeklySchedule, error) {
	week := make(model.WeeklySchedule, len(c.Week))
	for name, day := range c.Week {
		weekday, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in scheduling.week", name)
		}
		open, err := model.ParseTimeSlot(day.Open)
		if err != nil {
			return nil, fmt.Errorf("invalid open time for %s: %w", name, err)
		}
		close, err := model.ParseTimeSlot(day.Close)
		if err != nil {
			return nil, fmt.Errorf("invalid close time for %s: %w", name, err)
		}
		if !open.Before(close) {
			return nil, fmt.Errorf("%s: open %s must be before close %s", name, open, close)
		}
		hours := model.DayHours{Open: open, Close: close}
		for _, b := range day.Breaks {
			start, err := model.ParseTimeSlot(b.Start)
			if err != nil {
				return nil, fmt.Errorf("invalid break start for %s: %w", name, err)
			}
			end, err := model.ParseTimeSlot(b.End)
			if err != nil {
				return nil, fmt.Errorf("invalid break end for %s: %w", name, err)
			}
			hours.Breaks = append(hours.Breaks, model.BreakWindow{Start: start, End: end})
		}
		week[weekday] = hours
	}
	return week, nil
}
