package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileConfig(t *testing.T) {
	content := `workers: 12
chunk_size: 32MB
retries: 5
timeout: 45s
user_agent: custom-agent/2.0
headers:
  - "X-Token: abc"
keep_parts: true
`
	path := filepath.Join(t.TempDir(), "hanzo.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := ReadFileConfig(path)
	if err != nil {
		t.Fatalf("ReadFileConfig: %v", err)
	}
	if cfg.Workers != 12 || cfg.ChunkSize != "32MB" || cfg.Retries != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != "45s" || cfg.UserAgent != "custom-agent/2.0" || !cfg.KeepParts {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Headers) != 1 || cfg.Headers[0] != "X-Token: abc" {
		t.Errorf("headers = %v", cfg.Headers)
	}
}

func TestReadFileConfigErrors(t *testing.T) {
	if _, err := ReadFileConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadFileConfig(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}
