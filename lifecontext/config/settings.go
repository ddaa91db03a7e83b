package config

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted runtime configuration surface. The capture
// pipeline only ever reads it; writes happen through the settings API.
type Settings struct {
	APIHost              string `yaml:"api_host" json:"API_HOST"`
	APIPort              string `yaml:"api_port" json:"API_PORT"`
	FrontendHost         string `yaml:"frontend_host" json:"FRONTEND_HOST"`
	FrontendPort         string `yaml:"frontend_port" json:"FRONTEND_PORT"`
	CrawlEnabled         bool   `yaml:"crawl_enabled" json:"crawlEnabled"`
	NotificationsEnabled bool   `yaml:"notifications_enabled" json:"notificationsEnabled"`
	FloatingChatEnabled  bool   `yaml:"floating_chat_enabled" json:"floatingChatEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		APIHost:              "localhost",
		APIPort:              "8000",
		FrontendHost:         "localhost",
		FrontendPort:         "3000",
		CrawlEnabled:         true,
		NotificationsEnabled: true,
		FloatingChatEnabled:  true,
	}
}

// SettingsStore is a YAML-file backed key-value store for Settings.
type SettingsStore struct {
	path string

	mu  sync.RWMutex
	cur Settings
}

// LoadSettings reads the settings file, falling back to defaults when it
// does not exist yet.
func LoadSettings(path string) (*SettingsStore, error) {
	s := &SettingsStore{path: path, cur: DefaultSettings()}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &s.cur); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update replaces the settings and persists them to disk.
func (s *SettingsStore) Update(next Settings) error {
	data, err := yaml.Marshal(next)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}
	s.cur = next
	return nil
}
