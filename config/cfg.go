package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// FontsConfig describes where mirrored font files live on disk and how
	// they are addressed publicly.
	FontsConfig struct {
		RootDir    string `yaml:"root_dir" sanitize:"path_clean" validate:"required"`
		PublicBase string `yaml:"public_base" validate:"required"`
		CachePath  string `yaml:"cache_path" sanitize:"path_clean" validate:"required"`
	}

	// RemoteProviderConfig describes one font API endpoint.
	RemoteProviderConfig struct {
		Name        string       `yaml:"name" validate:"required"`
		BaseURL     string       `yaml:"base_url" validate:"required,url"`
		APIKey      SecretString `yaml:"api_key,omitempty"`
		CSSTTL      int          `yaml:"css_ttl" validate:"gte=0"`      // seconds, 0 means provider default
		NegativeTTL int          `yaml:"negative_ttl" validate:"gte=0"` // seconds, 0 means provider default
	}

	ProvidersConfig struct {
		Remote []RemoteProviderConfig `yaml:"remote" validate:"dive"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Fonts     FontsConfig     `yaml:"fonts"`
		Providers ProvidersConfig `yaml:"providers"`
		Logging   LoggingConfig   `yaml:"logging"`
	}
)

// CSSTTLDuration returns the configured stylesheet cache TTL.
func (c RemoteProviderConfig) CSSTTLDuration() time.Duration {
	return time.Duration(c.CSSTTL) * time.Second
}

// NegativeTTLDuration returns the configured negative cache TTL.
func (c RemoteProviderConfig) NegativeTTLDuration() time.Duration {
	return time.Duration(c.NegativeTTL) * time.Second
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
