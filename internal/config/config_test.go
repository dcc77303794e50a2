package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/remote"
)

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `env: staging
http_server:
  address: ":9000"
remote:
  base_url: "http://forms.internal"
  timeout: 5s
session:
  secret: "0123456789abcdef-staging"
  secure: true
form:
  transition_delay: 150ms
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REMOTE_SUBMIT_FORM_PATH", "/v2/submit")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		Env: EnvStaging,
		HTTPServer: HTTPServer{
			Addr:         ":9000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 45 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Remote: Remote{
			BaseURL:            "http://forms.internal",
			Timeout:            5 * time.Second,
			CreateIdentityPath: "/create-user",
			FetchFormPath:      "/get-form",
			SubmitFormPath:     "/v2/submit",
		},
		Session: Session{
			CookieName: "formflow_session",
			Secret:     "0123456789abcdef-staging",
			Secure:     true,
		},
		Form: Form{TransitionDelay: 150 * time.Millisecond, IdleTimeout: 2 * time.Hour},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv(EnvVarPath, "")
	t.Setenv("REMOTE_BASE_URL", "http://127.0.0.1:5001")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != EnvDev {
		t.Fatalf("expected dev default, got %q", cfg.Env)
	}
	if cfg.Remote.BaseURL != "http://127.0.0.1:5001" {
		t.Fatalf("expected env base url, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Form.TransitionDelay != 300*time.Millisecond {
		t.Fatalf("expected default transition delay, got %s", cfg.Form.TransitionDelay)
	}
}

func TestLoadDefaultsTargetHostedService(t *testing.T) {
	t.Setenv(EnvVarPath, "")
	t.Setenv("REMOTE_BASE_URL", "")
	if err := os.Unsetenv("REMOTE_BASE_URL"); err != nil {
		t.Fatalf("unset env: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Remote.BaseURL != remote.DefaultBaseURL {
		t.Fatalf("expected default base url %q, got %q", remote.DefaultBaseURL, cfg.Remote.BaseURL)
	}
	if cfg.Form.IdleTimeout != 2*time.Hour {
		t.Fatalf("expected default idle timeout, got %s", cfg.Form.IdleTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env:     EnvDev,
			Remote:  Remote{BaseURL: "http://localhost:5000"},
			Session: Session{Secret: "0123456789abcdef"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "dev without secret", mutate: func(c *Config) { c.Session.Secret = "" }},
		{name: "prod without secret", mutate: func(c *Config) { c.Env = EnvProd; c.Session.Secret = "" }, wantErr: true},
		{name: "prod with secret", mutate: func(c *Config) { c.Env = EnvProd }},
		{name: "unknown env", mutate: func(c *Config) { c.Env = "qa" }, wantErr: true},
		{name: "missing base url", mutate: func(c *Config) { c.Remote.BaseURL = "" }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.Form.TransitionDelay = -time.Second }, wantErr: true},
		{name: "negative idle timeout", mutate: func(c *Config) { c.Form.IdleTimeout = -time.Minute }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
