package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNoConfig = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape for tfcprobe.
type FileConfig struct {
	Engine       *string `yaml:"engine"`
	PathEngine   *string `yaml:"path_engine"`
	MaxLineBytes *int    `yaml:"max_line_bytes"`
	MaxCaptures  *int    `yaml:"max_captures"`
	MatchTimeout *string `yaml:"match_timeout"`
	Threads      *int    `yaml:"threads"`

	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`
	NoColor   *bool   `yaml:"no_color"`

	// Objects lists glob patterns (doublestar syntax) of object definition
	// files evaluated by `scan` when no -o flag is given.
	Objects  []string `yaml:"objects"`
	Baseline *string  `yaml:"baseline"`
	// Audit is the path of the JSONL audit log; empty disables it.
	Audit *string `yaml:"audit"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches dir for .tfcprobe.yml/.yaml or tfcprobe.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	for _, name := range []string{".tfcprobe.yml", ".tfcprobe.yaml", "tfcprobe.yml", "tfcprobe.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNoConfig
}

// GlobalPath returns $XDG_CONFIG_HOME/tfcprobe/config.yml, falling back to
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", ErrNoConfig
	}
	return filepath.Join(base, "tfcprobe", "config.yml"), nil
}

// LoadGlobal loads the per-user config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNoConfig
	}
	return LoadFile(p)
}
