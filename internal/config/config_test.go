package config

import (
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("read timeout = %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("write timeout = %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("shutdown timeout = %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Vault.Root != "vault" {
		t.Errorf("vault root = %q", cfg.Vault.Root)
	}
	if cfg.ASR.Engine != "stub" || cfg.ASR.Scope != "full" {
		t.Errorf("asr = %+v", cfg.ASR)
	}
	if cfg.ASR.TagWindowSec != 20 {
		t.Errorf("tag window = %d", cfg.ASR.TagWindowSec)
	}
	if cfg.ASR.Language != "zh" {
		t.Errorf("language = %q", cfg.ASR.Language)
	}
	if cfg.ASR.ReviewThreshold != 0.75 {
		t.Errorf("review threshold = %g", cfg.ASR.ReviewThreshold)
	}
	if cfg.ASR.OpenAI.Model != "whisper-1" {
		t.Errorf("model = %q", cfg.ASR.OpenAI.Model)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.HTTP.WriteTimeoutSec = 30
	cfg.ASR.Engine = "openai"
	cfg.ASR.ReviewThreshold = 0.9
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("write timeout = %d, want 30", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.ASR.Engine != "openai" {
		t.Errorf("engine = %q", cfg.ASR.Engine)
	}
	if cfg.ASR.ReviewThreshold != 0.9 {
		t.Errorf("review threshold = %g", cfg.ASR.ReviewThreshold)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.HTTP.Port = 8080
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown engine", func(c *Config) { c.ASR.Engine = "whisperx" }, "asr.engine"},
		{"unknown scope", func(c *Config) { c.ASR.Scope = "tail" }, "asr.scope"},
		{"openai without key", func(c *Config) { c.ASR.Engine = "openai" }, "api_key"},
		{"threshold above one", func(c *Config) { c.ASR.ReviewThreshold = 1.5 }, "review_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_OpenAIWithKey(t *testing.T) {
	var cfg Config
	cfg.HTTP.Port = 8080
	cfg.ASR.Engine = "openai"
	cfg.ASR.OpenAI.APIKey = "sk-test"
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RV_TEST_PORT", "9090")
	t.Setenv("RV_TEST_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"port: ${RV_TEST_PORT}", "port: 9090"},
		{"port: ${RV_TEST_MISSING:-8080}", "port: 8080"},
		{"port: ${RV_TEST_EMPTY:-8080}", "port: 8080"},
		{"port: ${RV_TEST_PORT:-8080}", "port: 9090"},
		{"port: ${RV_TEST_MISSING}", "port: "},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
