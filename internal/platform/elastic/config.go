package elastic

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Config struct {
	URL      string
	Index    string
	Username string
	Password string
}

type ConfigErrorCode string

const (
	ConfigErrorMissingURL   ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL   ConfigErrorCode = "invalid_url"
	ConfigErrorMissingIndex ConfigErrorCode = "missing_index"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid elasticsearch config"
	}
	switch e.Code {
	case ConfigErrorMissingURL:
		return "ELASTIC_URL is required"
	case ConfigErrorInvalidURL:
		return fmt.Sprintf(
			"invalid ELASTIC_URL=%q; expected absolute URL like http://elasticsearch:9200",
			e.Value,
		)
	case ConfigErrorMissingIndex:
		return "ELASTIC_INDEX is required"
	default:
		return "invalid elasticsearch config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		URL:      strings.TrimSpace(os.Getenv("ELASTIC_URL")),
		Index:    strings.TrimSpace(os.Getenv("ELASTIC_INDEX")),
		Username: strings.TrimSpace(os.Getenv("ELASTIC_USERNAME")),
		Password: os.Getenv("ELASTIC_PASSWORD"),
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:9200"
	}
	if cfg.Index == "" {
		cfg.Index = "products"
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if cfg.URL == "" {
		return &ConfigError{Code: ConfigErrorMissingURL}
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return &ConfigError{
			Code:  ConfigErrorInvalidURL,
			Value: cfg.URL,
			Cause: err,
		}
	}
	if strings.TrimSpace(cfg.Index) == "" {
		return &ConfigError{Code: ConfigErrorMissingIndex}
	}
	return nil
}
