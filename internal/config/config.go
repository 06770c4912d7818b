// Package config handles the .sesiones directory every project the
// operator runs the client from gets: the yaml config file, the
// downloads directory and the action-log mirror.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SesionesDir is the dot-directory created in the working directory.
	SesionesDir = ".sesiones"

	defaultServiceURL     = "http://127.0.0.1:5000"
	defaultTimeoutSeconds = 60
)

const defaultConfigYAML = `# sesiones client configuration
version: 1

service:
  # Base URL of the document-generation service.
  base_url: http://127.0.0.1:5000
  timeout_seconds: 60

save:
  # Automatic downloads land here when no interactive save happens.
  downloads_dir: descargas
`

// ServiceConfig points the client at the generation service.
type ServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SaveConfig controls the automatic-download tier.
type SaveConfig struct {
	DownloadsDir string `yaml:"downloads_dir"`
}

// ProjectConfig models .sesiones/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Service ServiceConfig `yaml:"service"`
	Save    SaveConfig    `yaml:"save"`
}

// Config holds the runtime configuration for the client.
type Config struct {
	// ProjectDir is the directory the operator ran the client from.
	ProjectDir string

	// SesionesProjectDir is ProjectDir/.sesiones.
	SesionesProjectDir string

	Project ProjectConfig
}

// InitDir creates the .sesiones structure in the given directory.
func InitDir(projectDir string) error {
	base := filepath.Join(projectDir, SesionesDir)
	for _, dir := range []string{
		filepath.Join(base, "logs"),
		filepath.Join(base, "descargas"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(base, "config.yaml"))
}

// NewConfig loads project settings, applying environment overrides:
// SESIONES_SERVICE_URL, SESIONES_DOWNLOADS_DIR, SESIONES_TIMEOUT_SECONDS.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		SesionesProjectDir: filepath.Join(projectDir, SesionesDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ServiceURL returns the generation service base URL.
func (c *Config) ServiceURL() string {
	return c.Project.Service.BaseURL
}

// Timeout returns the generation request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Project.Service.TimeoutSeconds) * time.Second
}

// DownloadsDir returns the absolute automatic-download directory.
func (c *Config) DownloadsDir() string {
	return resolvePath(c.SesionesProjectDir, c.Project.Save.DownloadsDir)
}

// LogMirrorPath returns where the action log is mirrored.
func (c *Config) LogMirrorPath() string {
	return filepath.Join(c.SesionesProjectDir, "logs", "acciones.log")
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.SesionesProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("SESIONES_SERVICE_URL")); v != "" {
		c.Project.Service.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SESIONES_DOWNLOADS_DIR")); v != "" {
		c.Project.Save.DownloadsDir = v
	}
	if v := strings.TrimSpace(os.Getenv("SESIONES_TIMEOUT_SECONDS")); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.Project.Service.TimeoutSeconds = seconds
		}
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Service: ServiceConfig{
			BaseURL:        defaultServiceURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Save: SaveConfig{DownloadsDir: "descargas"},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.Service.BaseURL = strings.TrimSpace(pc.Service.BaseURL)
	if pc.Service.BaseURL == "" {
		pc.Service.BaseURL = defaultServiceURL
	}
	if pc.Service.TimeoutSeconds <= 0 {
		pc.Service.TimeoutSeconds = defaultTimeoutSeconds
	}
	pc.Save.DownloadsDir = strings.TrimSpace(pc.Save.DownloadsDir)
	if pc.Save.DownloadsDir == "" {
		pc.Save.DownloadsDir = "descargas"
	}
}

func (pc ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.Service.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("service.base_url %q is not an absolute URL", pc.Service.BaseURL)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	if filepath.IsAbs(candidate) {
		return filepath.Clean(candidate)
	}
	return filepath.Clean(filepath.Join(base, candidate))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
