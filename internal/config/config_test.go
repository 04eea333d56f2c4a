package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Errorf("default port = %d", cfg.App.Port)
	}
	if cfg.Memory.Namespace != "rolechat" {
		t.Errorf("default namespace = %q", cfg.Memory.Namespace)
	}
	if cfg.LLM.MaxContextMessage != 20 {
		t.Errorf("default max context = %d", cfg.LLM.MaxContextMessage)
	}
	if cfg.RabbitMQ.MemoryIngestQueue != "memory.ingest" {
		t.Errorf("default queue = %q", cfg.RabbitMQ.MemoryIngestQueue)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[app]\nport = 9000\n\n[memory]\nnamespace = \"fromfile\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SUPERMEMORY_NAMESPACE", "fromenv")
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 9100 {
		t.Errorf("env must beat file, port = %d", cfg.App.Port)
	}
	if cfg.Memory.Namespace != "fromenv" {
		t.Errorf("env must beat file, namespace = %q", cfg.Memory.Namespace)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "u"
	cfg.MySQL.Password = "p"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "rolechat"
	cfg.MySQL.Params = "parseTime=true"

	if got, want := cfg.MySQLDSN(), "u:p@tcp(db:3307)/rolechat?parseTime=true"; got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
