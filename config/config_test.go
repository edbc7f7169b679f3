package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.App.Port)
	}
	if cfg.Availability.SlotDuration != 30*time.Minute {
		t.Errorf("expected 30m slots, got %v", cfg.Availability.SlotDuration)
	}
	if cfg.Availability.AdvanceNotice != 24*time.Hour {
		t.Errorf("expected 24h notice, got %v", cfg.Availability.AdvanceNotice)
	}
	if cfg.Availability.MaxRangeDays != 90 {
		t.Errorf("expected 90 max range days, got %d", cfg.Availability.MaxRangeDays)
	}
	if cfg.Gateway.PollMaxRequests != 10 {
		t.Errorf("expected 10 poll requests, got %d", cfg.Gateway.PollMaxRequests)
	}
	if !cfg.DB.AutoMigrate {
		t.Errorf("expected auto migrate enabled by default")
	}
	if cfg.Kafka.BatchSize != 50 || cfg.Kafka.PollInterval != 2*time.Second {
		t.Errorf("unexpected outbox defaults %+v", cfg.Kafka)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.SampleRatio != 1 {
		t.Errorf("unexpected tracing defaults %+v", cfg.Tracing)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("AVAILABILITY_SLOT_DURATION", "15m")
	t.Setenv("AVAILABILITY_ADVANCE_NOTICE", "not-a-duration")
	t.Setenv("GATEWAY_POLL_COOLDOWN", "30s")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Availability.SlotDuration != 15*time.Minute {
		t.Errorf("expected 15m slots, got %v", cfg.Availability.SlotDuration)
	}
	if cfg.Availability.AdvanceNotice != 24*time.Hour {
		t.Errorf("expected fallback 24h notice, got %v", cfg.Availability.AdvanceNotice)
	}
	if cfg.Gateway.PollCooldown != 30*time.Second {
		t.Errorf("expected 30s cooldown, got %v", cfg.Gateway.PollCooldown)
	}
	if cfg.DB.AutoMigrate {
		t.Errorf("expected auto migrate disabled")
	}
}

func TestLoadConfig_SlotDurationWholeMinutes(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "90s", want: 30 * time.Minute},
		{value: "30s", want: 30 * time.Minute},
		{value: "1h", want: time.Hour},
		{value: "20m", want: 20 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv("AVAILABILITY_SLOT_DURATION", tt.value)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Availability.SlotDuration != tt.want {
				t.Errorf("expected %v, got %v", tt.want, cfg.Availability.SlotDuration)
			}
		})
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestDBConfig_URLs(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "medbook", SSLMode: "disable"}
	if got := c.MigrationURL(); got != "pgx5://u:p@db:5432/medbook?sslmode=disable" {
		t.Errorf("unexpected migration url %s", got)
	}
	if got := c.DSN(); got != "host=db user=u password=p dbname=medbook port=5432 sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}
