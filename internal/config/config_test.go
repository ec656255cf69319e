package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "associacao-api" {
		t.Errorf("app name = %q", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("sslmode = %q", cfg.Database.SSLMode)
	}
}

func TestLoadRejectsMissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadRejectsWeakProductionConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_SSLMODE", "disable")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"JWT_SECRET", "DB_SSLMODE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, Name: "associacao",
		User: "svc", Password: "pw", SSLMode: "require",
	}
	got := d.DSN()
	for _, want := range []string{"host=db", "dbname=associacao", "sslmode=require", "TimeZone=UTC"} {
		if !strings.Contains(got, want) {
			t.Errorf("DSN missing %q: %s", want, got)
		}
	}
}
