// Package config holds process configuration. Values are layered: built-in
// defaults, then an optional YAML file named by PANEL_CONFIG_FILE, then
// PANEL_* environment variables, later layers winning.
package config

import (
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" yaml:"listen_addr"`
	DataPath   string `envconfig:"DATA_PATH" yaml:"data_path"`

	DatabasePath string `envconfig:"DATABASE_PATH" yaml:"database_path"`
	LogPath      string `envconfig:"LOG_PATH" yaml:"log_path"`

	// SSH session settings
	ConnectTimeout     string `envconfig:"CONNECT_TIMEOUT" yaml:"connect_timeout"`
	SessionIdleTimeout string `envconfig:"SESSION_IDLE_TIMEOUT" yaml:"session_idle_timeout"`

	// Scheduled backup settings
	SchedulerEnabled bool `envconfig:"SCHEDULER_ENABLED" yaml:"scheduler_enabled"`
}

var Cfg Settings

func defaults() Settings {
	return Settings{
		ListenAddr:         ":8000",
		DataPath:           "/app/data",
		DatabasePath:       "/app/data/panel.db",
		LogPath:            "/app/data/panel.log",
		ConnectTimeout:     "25s",
		SessionIdleTimeout: "2h",
		SchedulerEnabled:   true,
	}
}

// Load populates Cfg. Environment variables take precedence over file
// values, which take precedence over the defaults.
func Load() {
	Cfg = defaults()

	if path := os.Getenv("PANEL_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, &Cfg); err != nil {
			log.Fatalf("failed to parse config file %s: %v", path, err)
		}
	}

	// No default tags here: absent variables leave the current value alone.
	if err := envconfig.Process("PANEL", &Cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}
