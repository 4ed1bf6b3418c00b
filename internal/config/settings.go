package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in config.yaml and by --backend.
const (
	BackendHTTP   = "http"
	BackendGoogle = "google"
	BackendMemory = "memory"
)

const (
	// DefaultServerURL is where the http backend looks for `optitask serve`.
	DefaultServerURL = "http://127.0.0.1:8787"

	// DefaultGoogleList is the Google Tasks list used by the google backend.
	DefaultGoogleList = "@default"

	// ServerURLEnv overrides server_url.
	ServerURLEnv = "OPTITASK_SERVER_URL"
)

// Settings is the content of config.yaml.
type Settings struct {
	Backend     string `yaml:"backend"`
	ServerURL   string `yaml:"server_url"`
	GoogleList  string `yaml:"google_list"`
	NewestFirst *bool  `yaml:"newest_first"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

// LoadSettings reads a YAML settings file. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Settings{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv(ServerURLEnv); v != "" {
		s.ServerURL = v
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// NormalizeBackend folds a backend name to the form Validate accepts.
func NormalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Settings) applyDefaults() {
	s.Backend = NormalizeBackend(s.Backend)
	if s.Backend == "" {
		s.Backend = BackendHTTP
	}
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}
	s.ServerURL = strings.TrimRight(s.ServerURL, "/")
	if s.GoogleList == "" {
		s.GoogleList = DefaultGoogleList
	}
	if s.NewestFirst == nil {
		newest := true
		s.NewestFirst = &newest
	}
}

// Validate checks the backend name.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendHTTP, BackendGoogle, BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
}

// ShowNewestFirst reports the display order for task lists.
func (s Settings) ShowNewestFirst() bool {
	return s.NewestFirst == nil || *s.NewestFirst
}
