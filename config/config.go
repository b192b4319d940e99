package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure
type Config struct {
	// Host is where the LiveOSC remote script runs.
	Host string `yaml:"host"`
	// SendPort is the port the remote script listens on.
	SendPort int `yaml:"sendPort"`
	// ListenPort is the local port notifications arrive on.
	ListenPort int `yaml:"listenPort"`
	// ReadyWait is how long a refresh waits before declaring the mirror
	// ready.
	ReadyWait time.Duration `yaml:"readyWait"`
	// LogPath enables debug logging to a file when set.
	LogPath string `yaml:"logPath,omitempty"`
	// MIDIPort is the input port the control-surface bridge opens.
	MIDIPort string `yaml:"midiPort,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Host:       "127.0.0.1",
		SendPort:   9000,
		ListenPort: 9001,
		ReadyWait:  400 * time.Millisecond,
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-liveosc"), nil
}

// Path returns the full path to config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location, or returns defaults if
// not found
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from path, or returns defaults if not found
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
