package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestLoad(t *testing.T) {
	content := `
server:
  listen_addr: ":9090"

database:
  path: "/tmp/test-app.db"

activity:
  path: "/tmp/test-activity.db"

auth:
  session_ttl: 1h

logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("Server.ListenAddr = %v, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "/tmp/test-app.db" {
		t.Errorf("Database.Path = %v, want /tmp/test-app.db", cfg.Database.Path)
	}
	if cfg.Activity.Path != "/tmp/test-activity.db" {
		t.Errorf("Activity.Path = %v, want /tmp/test-activity.db", cfg.Activity.Path)
	}
	if cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 1h", cfg.Auth.SessionTTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want debug", cfg.Logging.Level)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":8090" {
		t.Errorf("default ListenAddr = %v, want :8090", cfg.Server.ListenAddr)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("default SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default Logging.Format = %v, want json", cfg.Logging.Format)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "tls enabled without cert",
			content: `
server:
  tls:
    enabled: true
`,
		},
		{
			name: "same database and activity path",
			content: `
database:
  path: "/tmp/same.db"
activity:
  path: "/tmp/same.db"
`,
		},
		{
			name: "bad logging format",
			content: `
logging:
  format: "xml"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}
