package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server ServerSettings `json:"server"`
	Scores ScoresSettings `json:"scores"`
	Cache  CacheSettings  `json:"cache"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ScoresSettings configures the score resolution pipeline.
type ScoresSettings struct {
	// PlatformHint biases matching and platform-variant selection when the
	// caller does not supply a platform.
	PlatformHint  string `json:"platformHint"`
	CacheTTLHours int    `json:"cacheTtlHours"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Scores: ScoresSettings{
			PlatformHint:  "PC",
			CacheTTLHours: 24,
		},
		Cache: CacheSettings{
			Directory: "cache",
		},
		Log: LogConfig{
			MaxSize:    10,
			MaxAge:     14,
			MaxBackups: 3,
		},
	}
}

// Manager loads and persists the settings file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing. Zero-valued
// fields in an existing file are backfilled with defaults so older files keep
// working after new sections are added.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	defaults := DefaultSettings()
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = defaults.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = defaults.Server.Port
	}
	if strings.TrimSpace(s.Scores.PlatformHint) == "" {
		s.Scores.PlatformHint = defaults.Scores.PlatformHint
	}
	if s.Scores.CacheTTLHours <= 0 {
		s.Scores.CacheTTLHours = defaults.Scores.CacheTTLHours
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = defaults.Cache.Directory
	}
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
