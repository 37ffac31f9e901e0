package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the recitevault API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Vault   VaultConfig   `yaml:"vault"`
	ASR     ASRConfig     `yaml:"asr"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// VaultConfig holds the on-disk archive location.
type VaultConfig struct {
	Root string `yaml:"root"`
}

// ASRConfig holds transcription settings.
type ASRConfig struct {
	Engine          string       `yaml:"engine"` // openai, stub (default: stub)
	Scope           string       `yaml:"scope"`  // full, head, hybrid (default: full)
	TagWindowSec    int          `yaml:"tag_window_sec"`
	Language        string       `yaml:"language"`
	ReviewThreshold float64      `yaml:"review_threshold"`
	OpenAI          OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds the OpenAI transcription client settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// ASR requests hold the connection for the whole transcription.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Vault.Root == "" {
		c.Vault.Root = "vault"
	}
	if c.ASR.Engine == "" {
		c.ASR.Engine = "stub"
	}
	if c.ASR.Scope == "" {
		c.ASR.Scope = "full"
	}
	if c.ASR.TagWindowSec < 1 {
		c.ASR.TagWindowSec = 20
	}
	if c.ASR.Language == "" {
		c.ASR.Language = "zh"
	}
	if c.ASR.ReviewThreshold <= 0 {
		c.ASR.ReviewThreshold = 0.75
	}
	if c.ASR.OpenAI.Model == "" {
		c.ASR.OpenAI.Model = "whisper-1"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.ASR.Engine {
	case "openai", "stub":
		// ok
	default:
		return fmt.Errorf("asr.engine must be \"openai\" or \"stub\", got %q", c.ASR.Engine)
	}
	switch c.ASR.Scope {
	case "full", "head", "hybrid":
		// ok
	default:
		return fmt.Errorf("asr.scope must be \"full\", \"head\" or \"hybrid\", got %q", c.ASR.Scope)
	}
	if c.ASR.Engine == "openai" && c.ASR.OpenAI.APIKey == "" {
		return fmt.Errorf("asr.openai.api_key is required when asr.engine is \"openai\"")
	}
	if c.ASR.ReviewThreshold > 1 {
		return fmt.Errorf("asr.review_threshold must be at most 1, got %g", c.ASR.ReviewThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
