package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Availability AvailabilityConfig
	Gateway      GatewayConfig
	Kafka        KafkaConfig
	Tracing      TracingConfig
}

type AppConfig struct {
	Port            string
	Env             string
	LogLevel        string
	Timezone        string
	Locale          string
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig validates bearer tokens issued by the identity provider
type JWTConfig struct {
	Secret string
	Issuer string
}

// AvailabilityConfig holds the booking constants owned by the caller of the calculator
type AvailabilityConfig struct {
	SlotDuration     time.Duration
	AdvanceNotice    time.Duration
	MaxRangeDays     int
	ScheduleCacheTTL time.Duration
	SlotHoldTTL      time.Duration
}

// GatewayConfig configures the WhatsApp gateway (Evolution API) and its polling guard
type GatewayConfig struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	PollMinInterval time.Duration
	PollWindow      time.Duration
	PollMaxRequests int
	PollCooldown    time.Duration
}

// KafkaConfig configures the appointment event outbox publisher
type KafkaConfig struct {
	Brokers      string
	PollInterval time.Duration
	BatchSize    int
}

// TracingConfig configures OpenTelemetry export over OTLP/gRPC
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRatio float64
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	setDefaults(v)

	// .env is optional; the process environment is enough in containers
	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	config := &Config{
		App: AppConfig{
			Port:            v.GetString("APP_PORT"),
			Env:             v.GetString("APP_ENV"),
			LogLevel:        v.GetString("APP_LOG_LEVEL"),
			Timezone:        v.GetString("APP_TIMEZONE"),
			Locale:          v.GetString("APP_LOCALE"),
			ShutdownTimeout: parseDuration(v, "APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Availability: AvailabilityConfig{
			SlotDuration:     parseMinutes(v, "AVAILABILITY_SLOT_DURATION", 30*time.Minute),
			AdvanceNotice:    parseDuration(v, "AVAILABILITY_ADVANCE_NOTICE", 24*time.Hour),
			MaxRangeDays:     v.GetInt("AVAILABILITY_MAX_RANGE_DAYS"),
			ScheduleCacheTTL: parseDuration(v, "AVAILABILITY_SCHEDULE_CACHE_TTL", 5*time.Minute),
			SlotHoldTTL:      parseDuration(v, "AVAILABILITY_SLOT_HOLD_TTL", 15*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL:         v.GetString("GATEWAY_BASE_URL"),
			APIKey:          v.GetString("GATEWAY_API_KEY"),
			Timeout:         parseDuration(v, "GATEWAY_TIMEOUT", 10*time.Second),
			PollMinInterval: parseDuration(v, "GATEWAY_POLL_MIN_INTERVAL", 3*time.Second),
			PollWindow:      parseDuration(v, "GATEWAY_POLL_WINDOW", time.Minute),
			PollMaxRequests: v.GetInt("GATEWAY_POLL_MAX_REQUESTS"),
			PollCooldown:    parseDuration(v, "GATEWAY_POLL_COOLDOWN", 2*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:      v.GetString("KAFKA_BROKERS"),
			PollInterval: parseDuration(v, "OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
	}

	if r := config.Tracing.SampleRatio; r < 0 || r > 1 {
		config.Tracing.SampleRatio = 1
	}

	if _, err := config.App.Location(); err != nil {
		return nil, err
	}
	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("APP_LOCALE", "en")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("AVAILABILITY_MAX_RANGE_DAYS", 90)
	v.SetDefault("GATEWAY_POLL_MAX_REQUESTS", 10)
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "medbook")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
}

// parseDuration falls back to def when the key is unset or malformed
func parseDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// parseMinutes is parseDuration restricted to whole minutes
func parseMinutes(v *viper.Viper, key string, def time.Duration) time.Duration {
	d := parseDuration(v, key, def)
	if d%time.Minute != 0 {
		return def
	}
	return d
}

// Location resolves the default timezone used when an organization has none
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN builds the gorm/pgx connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrationURL builds the golang-migrate pgx/v5 URL
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}
