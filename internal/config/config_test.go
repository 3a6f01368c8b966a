package config

import (
	"reflect"
	"strings"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseInt64Env проверяет разбор больших целых значений.
func TestParseInt64Env(t *testing.T) {
	t.Setenv("IMPORT_MAX_UPLOAD_BYTES", "10485760")

	got, err := parseInt64Env("IMPORT_MAX_UPLOAD_BYTES", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 10485760 {
		t.Fatalf("expected 10485760, got %d", got)
	}

	t.Setenv("IMPORT_MAX_UPLOAD_BYTES", "-1")
	if _, err := parseInt64Env("IMPORT_MAX_UPLOAD_BYTES", 1); err == nil {
		t.Fatal("expected error for negative value")
	}
}

// TestDSN проверяет сборку строки подключения.
func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		User:     "finance",
		Password: "p@ss",
		Name:     "household_finance",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "postgres://finance:") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	if !strings.Contains(dsn, "db.local:5433/household_finance") {
		t.Fatalf("expected host and db in dsn, got %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("expected sslmode in dsn, got %s", dsn)
	}
}
