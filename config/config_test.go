package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func contentDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to canonicalize temp dir: %v", err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := contentDir(t)
	cfg, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Directory != dir {
		t.Errorf("Expected directory %s, got %s", dir, cfg.Directory)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.KeepAlive != 2 {
		t.Errorf("Expected default keep-alive 2, got %d", cfg.KeepAlive)
	}
	if cfg.MaxHeaders != 512 {
		t.Errorf("Expected default max-headers 512, got %d", cfg.MaxHeaders)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected default workers 4, got %d", cfg.Workers)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("Expected default log dir, got %s", cfg.LogDir)
	}
	if cfg.KeepAliveTimeout() != 2*time.Second {
		t.Errorf("Unexpected keep-alive duration %v", cfg.KeepAliveTimeout())
	}
}

func TestLoadFlags(t *testing.T) {
	dir := contentDir(t)
	cfg, err := Load([]string{
		"-port", "9000",
		"-keep-alive", "5",
		"-max-headers", "128",
		"-workers", "8",
		"-log-dir", "/tmp/sh-logs",
		dir,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9000 || cfg.KeepAlive != 5 || cfg.MaxHeaders != 128 || cfg.Workers != 8 {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.LogDir != "/tmp/sh-logs" {
		t.Errorf("Expected log dir /tmp/sh-logs, got %s", cfg.LogDir)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := contentDir(t)
	file := filepath.Join(t.TempDir(), "server.yaml")
	body := "directory: " + dir + "\nport: 9100\nkeep_alive: 7\nworkers: 3\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load([]string{"-config", file})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Directory != dir {
		t.Errorf("Expected directory %s from file, got %s", dir, cfg.Directory)
	}
	if cfg.Port != 9100 || cfg.KeepAlive != 7 || cfg.Workers != 3 {
		t.Errorf("File values not applied: %+v", cfg)
	}
	// Fields the file omits keep their defaults.
	if cfg.MaxHeaders != 512 {
		t.Errorf("Expected default max-headers, got %d", cfg.MaxHeaders)
	}
}

func TestLoadFlagBeatsFile(t *testing.T) {
	dir := contentDir(t)
	file := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(file, []byte("port: 9100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load([]string{"-config", file, "-port", "9200", dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("Explicit flag should win over file, got %d", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := contentDir(t)

	cases := []struct {
		name string
		args []string
	}{
		{"no directory", nil},
		{"missing directory", []string{filepath.Join(dir, "nope")}},
		{"bad port", []string{"-port", "70000", dir}},
		{"zero keep-alive", []string{"-keep-alive", "0", dir}},
		{"zero workers", []string{"-workers", "0", dir}},
		{"missing config file", []string{"-config", filepath.Join(dir, "nope.yaml"), dir}},
	}
	for _, tc := range cases {
		if _, err := Load(tc.args); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}
