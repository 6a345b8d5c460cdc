package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	Cfg = Settings{}
	Load()
	if Cfg.ListenAddr != ":8000" {
		t.Errorf("ListenAddr = %q", Cfg.ListenAddr)
	}
	if Cfg.ConnectTimeout != "25s" {
		t.Errorf("ConnectTimeout = %q", Cfg.ConnectTimeout)
	}
	if !Cfg.SchedulerEnabled {
		t.Error("scheduler disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	Cfg = Settings{}
	t.Setenv("PANEL_LISTEN_ADDR", ":9999")
	t.Setenv("PANEL_SCHEDULER_ENABLED", "false")
	Load()
	if Cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", Cfg.ListenAddr)
	}
	if Cfg.SchedulerEnabled {
		t.Error("env override ignored")
	}
}

func TestLoadConfigFile(t *testing.T) {
	Cfg = Settings{}
	path := filepath.Join(t.TempDir(), "panel.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":7000\"\nlog_path: /tmp/test-panel.log\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PANEL_CONFIG_FILE", path)
	Load()
	if Cfg.ListenAddr != ":7000" {
		t.Errorf("ListenAddr = %q", Cfg.ListenAddr)
	}
	if Cfg.LogPath != "/tmp/test-panel.log" {
		t.Errorf("LogPath = %q", Cfg.LogPath)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	Cfg = Settings{}
	path := filepath.Join(t.TempDir(), "panel.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":7000\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PANEL_CONFIG_FILE", path)
	t.Setenv("PANEL_LISTEN_ADDR", ":8080")
	Load()
	if Cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, env must win", Cfg.ListenAddr)
	}
}
