package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "app", DBName: "insights", SSLMode: "disable"},
		JWT:      JWTConfig{AccessSecret: strings.Repeat("s", 32)},
		Places:   PlacesConfig{Timeout: 5 * time.Second, Concurrency: 4},
		Profiles: ProfilesConfig{RetentionDays: 90, AdHocTTLDays: 30},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "database host"},
		{name: "short secret", mutate: func(c *Config) { c.JWT.AccessSecret = "short" }, wantErr: "at least 32"},
		{name: "zero timeout", mutate: func(c *Config) { c.Places.Timeout = 0 }, wantErr: "timeout"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Places.Concurrency = 0 }, wantErr: "concurrency"},
		{name: "zero retention", mutate: func(c *Config) { c.Profiles.RetentionDays = 0 }, wantErr: "retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDSNAndDurations(t *testing.T) {
	cfg := validConfig()
	dsn := cfg.Database.GetDSN()
	if !strings.Contains(dsn, "host=localhost") || !strings.Contains(dsn, "dbname=insights") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if got := cfg.Profiles.Retention(); got != 90*24*time.Hour {
		t.Fatalf("retention = %v", got)
	}
	if got := cfg.Profiles.AdHocTTL(); got != 30*24*time.Hour {
		t.Fatalf("ad-hoc ttl = %v", got)
	}
}
