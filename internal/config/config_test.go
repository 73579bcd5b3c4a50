package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("backend = %s", cfg.DataBackend)
	}
	if cfg.ExportBatchSize != 10 {
		t.Errorf("batch size = %d", cfg.ExportBatchSize)
	}
	if cfg.ExportInterval != 30*time.Second {
		t.Errorf("interval = %v", cfg.ExportInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", t.TempDir()+"/x.db")
	t.Setenv("EXPORT_INTERVAL", "2m")

	cfg := Load()
	if cfg.Port != "9090" || cfg.DataBackend != "sqlite" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.ExportInterval != 2*time.Minute {
		t.Errorf("interval = %v", cfg.ExportInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "notaport"
	cfg.DataBackend = "redis"
	cfg.ExportBatchSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid port", "invalid data backend", "invalid export batch size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateAMQPURL(t *testing.T) {
	cfg := Load()
	cfg.AMQPURL = "http://localhost:5672/"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "AMQP URL scheme") {
		t.Errorf("got %v", err)
	}
}

func TestValidateSheetExport(t *testing.T) {
	cfg := Load()
	cfg.GoogleSpreadsheetID = "sheet-id"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_CREDENTIALS") {
		t.Errorf("got %v", err)
	}

	cfg.GoogleSheetName = "Transactions"
	cfg.GoogleCredentialsJSON = `{"type":"service_account"}`
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
	if !cfg.ExportConfigured() {
		t.Error("export should be configured")
	}
}
