package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/dropzone/internal/errors"
	"github.com/vango-dev/dropzone/pkg/upload"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dropzone.json"

	// DefaultInspectorHost is the default inspector bind host.
	DefaultInspectorHost = "localhost"

	// DefaultInspectorPort is the default inspector port.
	DefaultInspectorPort = 7070

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the complete dropzone.json configuration.
type Config struct {
	// Name is an optional label for the widget, used in logs.
	Name string `json:"name,omitempty"`

	// Upload contains the widget settings.
	Upload UploadConfig `json:"upload"`

	// Inspector contains the inspector server settings.
	Inspector InspectorConfig `json:"inspector"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// UploadConfig contains the widget settings. Zero values select the
// widget defaults.
type UploadConfig struct {
	// MaxSizeMB is the largest accepted file in megabytes.
	MaxSizeMB int `json:"maxSizeMB,omitempty"`

	// AcceptedMimeTypes lists the MIME types the widget accepts.
	AcceptedMimeTypes []string `json:"acceptedMimeTypes,omitempty"`

	// Accept is the file picker filter.
	Accept string `json:"accept,omitempty"`

	// ProgressIntervalMs is the time between progress steps.
	ProgressIntervalMs int `json:"progressIntervalMs,omitempty"`

	// ProgressStep is the percentage added per step.
	ProgressStep int `json:"progressStep,omitempty"`

	// CompleteDelayMs is the pause between reaching 100% and completion.
	// A negative value completes immediately.
	CompleteDelayMs int `json:"completeDelayMs,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on. Zero picks a free port.
	Port int `json:"port,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	def := upload.DefaultConfig()
	return &Config{
		Upload: UploadConfig{
			MaxSizeMB:          def.MaxSizeMB,
			AcceptedMimeTypes:  def.AcceptedMimeTypes,
			Accept:             def.Accept,
			ProgressIntervalMs: int(def.ProgressInterval / time.Millisecond),
			ProgressStep:       def.ProgressStep,
			CompleteDelayMs:    int(def.CompleteDelay / time.Millisecond),
		},
		Inspector: InspectorConfig{
			Host: DefaultInspectorHost,
			Port: DefaultInspectorPort,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from the specified directory.
// It looks for dropzone.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("D201").
				WithPath(path).
				WithDetail("No dropzone.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("D202").WithPath(path).Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("D202").
			WithPath(path).
			WithDetail("Failed to parse dropzone.json: " + err.Error()).
			WithSuggestion("Check that dropzone.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("D207").WithPath(path).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("D207").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()

	if c.Upload.MaxSizeMB == 0 {
		c.Upload.MaxSizeMB = def.Upload.MaxSizeMB
	}
	if len(c.Upload.AcceptedMimeTypes) == 0 {
		c.Upload.AcceptedMimeTypes = def.Upload.AcceptedMimeTypes
	}
	if c.Upload.Accept == "" {
		c.Upload.Accept = def.Upload.Accept
	}
	if c.Upload.ProgressIntervalMs == 0 {
		c.Upload.ProgressIntervalMs = def.Upload.ProgressIntervalMs
	}
	if c.Upload.ProgressStep == 0 {
		c.Upload.ProgressStep = def.Upload.ProgressStep
	}
	if c.Upload.CompleteDelayMs == 0 {
		c.Upload.CompleteDelayMs = def.Upload.CompleteDelayMs
	}

	if c.Inspector.Host == "" {
		c.Inspector.Host = def.Inspector.Host
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u := c.Upload
	if u.MaxSizeMB <= 0 {
		return errors.New("D203").WithPath(c.configPath)
	}
	for _, mt := range u.AcceptedMimeTypes {
		if _, _, err := mime.ParseMediaType(mt); err != nil || !strings.Contains(mt, "/") {
			return errors.New("D204").
				WithPath(c.configPath).
				WithDetail(fmt.Sprintf("%q is not a MIME type", mt))
		}
	}
	if u.ProgressStep < 1 || u.ProgressStep > 100 || u.ProgressIntervalMs < 0 {
		return errors.New("D205").WithPath(c.configPath)
	}
	if c.Inspector.Port < 0 || c.Inspector.Port > 65535 {
		return errors.New("D206").WithPath(c.configPath)
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.New("D208").WithPath(c.configPath).Wrap(err)
	}
	return nil
}

// WidgetConfig converts the upload section into a widget configuration.
func (c *Config) WidgetConfig() upload.Config {
	u := c.Upload
	cfg := upload.Config{
		MaxSizeMB:         u.MaxSizeMB,
		AcceptedMimeTypes: append([]string(nil), u.AcceptedMimeTypes...),
		Accept:            u.Accept,
		ProgressInterval:  time.Duration(u.ProgressIntervalMs) * time.Millisecond,
		ProgressStep:      u.ProgressStep,
		CompleteDelay:     time.Duration(u.CompleteDelayMs) * time.Millisecond,
	}
	if u.CompleteDelayMs < 0 {
		cfg.CompleteDelay = -1
	}
	return cfg
}

// InspectorAddress returns the host:port address for the inspector.
func (c *Config) InspectorAddress() string {
	return net.JoinHostPort(c.Inspector.Host, strconv.Itoa(c.Inspector.Port))
}

// SlogLevel parses LogLevel. An empty level is info.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest directory
// containing dropzone.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("D201").WithPath(startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent containing dropzone.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
