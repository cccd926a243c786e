// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Engine EngineConfig `toml:"engine"`
	Write  WriteConfig  `toml:"write"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	Watch  WatchConfig  `toml:"watch"`
}

// EngineConfig maps intervention scheduler settings.
type EngineConfig struct {
	Cooldown *Duration `toml:"cooldown"`
	Seed     *int64    `toml:"seed"`
}

// WriteConfig maps writing-session settings.
type WriteConfig struct {
	BaselineMinChars *int      `toml:"baseline-min-chars"`
	AnalyzeEvery     *int      `toml:"analyze-every"`
	Debounce         *Duration `toml:"debounce"`
}

// ServerConfig maps HTTP host settings.
type ServerConfig struct {
	Addr        *string  `toml:"addr"`
	CORS        []string `toml:"cors"`
	MaxSessions *int     `toml:"max-sessions"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// WatchConfig maps file-watch settings.
type WatchConfig struct {
	Debounce    *Duration `toml:"debounce"`
	MetricsAddr *string   `toml:"metrics-addr"`
}

// Duration decodes TOML strings such as "30s" or "750ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must be >= 0", string(text))
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written by `tlai config` when no config file exists yet.
const Template = `# tlai configuration

[engine]
# Minimum time between two reflective prompts.
# cooldown = "30s"
# Fixed seed for prompt selection (0 = time based).
# seed = 0

[write]
# baseline-min-chars = 200
# analyze-every = 10
# debounce = "750ms"

[server]
# addr = ":3001"
# cors = ["http://localhost:3000"]
# max-sessions = 256

[log]
# level = "info"   # debug, info, warn, error
# format = "text"  # text, json

[watch]
# debounce = "500ms"
# metrics-addr = ""
`
