// Package config loads the settings of the formflow binaries. Values come
// from an optional YAML file, then from the environment (an optional .env
// file is loaded first), then from the defaults declared on the struct tags.
//
// The file path is taken from the -config flag or CONFIG_PATH. Without a file
// the environment and defaults alone are used.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvVarPath names the environment variable holding the config file path.
const EnvVarPath = "CONFIG_PATH"

// Environments understood by the logger.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config is the root configuration.
type Config struct {
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`

	Remote  Remote  `yaml:"remote"`
	Session Session `yaml:"session"`
	Form    Form    `yaml:"form"`
}

// HTTPServer holds the listener settings of the web application.
type HTTPServer struct {
	Addr         string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"45s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Remote points at the form service. The base URL defaults to the hosted
// service, remote.DefaultBaseURL; point it at formflow-devserver for local
// runs.
type Remote struct {
	BaseURL            string        `yaml:"base_url" env:"REMOTE_BASE_URL" env-default:"https://dynamic-form-generator-9rl7.onrender.com"`
	Timeout            time.Duration `yaml:"timeout" env:"REMOTE_TIMEOUT" env-default:"30s"`
	CreateIdentityPath string        `yaml:"create_identity_path" env:"REMOTE_CREATE_IDENTITY_PATH" env-default:"/create-user"`
	FetchFormPath      string        `yaml:"fetch_form_path" env:"REMOTE_FETCH_FORM_PATH" env-default:"/get-form"`
	SubmitFormPath     string        `yaml:"submit_form_path" env:"REMOTE_SUBMIT_FORM_PATH" env-default:"/submit-form"`
	// ContractPath optionally replaces the embedded OpenAPI contract.
	ContractPath string `yaml:"contract_path" env:"REMOTE_CONTRACT_PATH"`
}

// Session configures the identity cookie.
type Session struct {
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"formflow_session"`
	Secret     string `yaml:"secret" env:"SESSION_SECRET"`
	Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
}

// Form tunes the form flow.
type Form struct {
	TransitionDelay time.Duration `yaml:"transition_delay" env:"FORM_TRANSITION_DELAY" env-default:"300ms"`
	// IdleTimeout evicts the form session of a browser that stopped sending
	// requests.
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"FORM_IDLE_TIMEOUT" env-default:"2h"`
}

// Load reads the configuration. path may be empty, in which case CONFIG_PATH
// is consulted, and then the environment alone.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvVarPath)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that exits the process on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	if c.Remote.BaseURL == "" {
		return errors.New("config: remote.base_url is required")
	}
	if c.Env != EnvDev && len(c.Session.Secret) < 16 {
		return errors.New("config: session.secret must be at least 16 bytes outside dev")
	}
	if c.Form.TransitionDelay < 0 {
		return errors.New("config: form.transition_delay must not be negative")
	}
	if c.Form.IdleTimeout < 0 {
		return errors.New("config: form.idle_timeout must not be negative")
	}
	return nil
}
