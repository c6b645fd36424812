package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	_ "embed"
)

var configOnce sync.Once

var globalConfig *Config

var customConfigPath string // Custom config path set via --config flag

//go:embed config.sample.yaml
var sampleConfig []byte

const (
	CONFIG_DIR_PATH  = "kidsync"
	CONFIG_FILE_PATH = "config.yaml"
	CONFIG_DIR_PERM  = 0755
	CONFIG_FILE_PERM = 0644
)

// SyncConfig holds sync pipeline settings
type SyncConfig struct {
	Enabled bool `yaml:"enabled"`

	// IntervalMinutes is the staleness threshold for background pulls;
	// 0 means never stale (always trust the local cache).
	IntervalMinutes int `yaml:"interval_minutes" validate:"gte=0"`

	// RequirePushSuccess gates manual pulls on a clean preceding push
	RequirePushSuccess bool `yaml:"require_push_success"`
}

// RemoteConfig holds the remote backend settings
type RemoteConfig struct {
	URL string `yaml:"url" validate:"required,url"`
}

// Config represents the application configuration
type Config struct {
	Remote RemoteConfig `yaml:"remote"`
	Sync   SyncConfig   `yaml:"sync"`

	// DBPath overrides the XDG-default local database location
	DBPath string `yaml:"db_path,omitempty"`
}

// Validate checks the configuration for structural errors
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// SetCustomConfigPath sets a custom config path to use instead of the
// default user config directory. If path is a directory, it looks for
// config.yaml inside it. Must be called before the first GetConfig().
func SetCustomConfigPath(path string) {
	if path == "" || path == "." {
		customConfigPath = filepath.Join(".", CONFIG_DIR_PATH, CONFIG_FILE_PATH)
	} else {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			customConfigPath = filepath.Join(path, CONFIG_FILE_PATH)
		} else {
			customConfigPath = path
		}
	}
}

// GetConfig returns the global configuration, loading it on first use
func GetConfig() *Config {
	configOnce.Do(func() {
		config, err := loadUserOrSampleConfig()
		if err != nil {
			log.Fatal(err)
		}
		globalConfig = config
	})
	return globalConfig
}

func loadUserOrSampleConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	configData, err := configDataFromPath(configPath)
	if err != nil {
		return nil, err
	}
	return ParseConfig(configData, configPath)
}

// GetConfigPath returns the path the config is read from
func GetConfigPath() (string, error) {
	if customConfigPath != "" {
		return customConfigPath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, CONFIG_DIR_PATH, CONFIG_FILE_PATH), nil
}

// configDataFromPath reads the config file, seeding it from the
// embedded sample when missing.
func configDataFromPath(configPath string) ([]byte, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return createConfigFromSample(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return data, nil
}

func createConfigFromSample(configPath string) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), CONFIG_DIR_PERM); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, sampleConfig, CONFIG_FILE_PERM); err != nil {
		return nil, fmt.Errorf("failed to write sample config: %w", err)
	}
	return sampleConfig, nil
}

// ParseConfig parses and validates raw YAML config data
func ParseConfig(configData []byte, configPath string) (*Config, error) {
	var configObj Config
	if err := yaml.Unmarshal(configData, &configObj); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file %s: %w", configPath, err)
	}

	if err := configObj.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s failed validation: %w", configPath, err)
	}

	return &configObj, nil
}
