package analyzer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-5-mini"
	defaultTimeout     = 5 * time.Minute
	defaultLogLevel    = "info"
	defaultOutputPath  = "stock_image.png"
	defaultMemoryLimit = "4g"

	envBaseURL    = "ANALYZER_BASE_URL"
	envModel      = "ANALYZER_MODEL"
	envTimeout    = "ANALYZER_TIMEOUT"
	envMaxRetries = "ANALYZER_MAX_RETRIES"
	envOutputPath = "ANALYZER_OUTPUT"
)

// Config holds runtime settings for the analysis client. Credentials are
// deliberately not part of it; they are resolved from the environment and
// passed in explicitly.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"-"`
	MaxRetries int           `yaml:"max_retries"`
	LogLevel   string        `yaml:"log_level"`

	// OutputPath is the local file chart artifacts are written to.
	OutputPath string `yaml:"output_path"`

	// Charts enables the code-execution sandbox used for chart rendering.
	Charts bool `yaml:"charts"`
	// MemoryLimit bounds the sandbox container, e.g. "4g".
	MemoryLimit string `yaml:"memory_limit"`

	timeoutRaw string
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	cfg := &Config{Charts: true}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	cfg.Timeout = defaultTimeout
	if raw := strings.TrimSpace(cfg.timeoutRaw); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open analyzer config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		BaseURL     string `yaml:"base_url"`
		Model       string `yaml:"model"`
		Timeout     string `yaml:"timeout"`
		MaxRetries  int    `yaml:"max_retries"`
		LogLevel    string `yaml:"log_level"`
		OutputPath  string `yaml:"output_path"`
		Charts      *bool  `yaml:"charts"`
		MemoryLimit string `yaml:"memory_limit"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read analyzer config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal analyzer config: %w", err)
	}

	cfg := &Config{
		BaseURL:     raw.BaseURL,
		Model:       raw.Model,
		MaxRetries:  raw.MaxRetries,
		LogLevel:    raw.LogLevel,
		OutputPath:  raw.OutputPath,
		Charts:      true,
		MemoryLimit: raw.MemoryLimit,
		timeoutRaw:  raw.Timeout,
	}
	if raw.Charts != nil {
		cfg.Charts = *raw.Charts
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("analyzer config: base_url is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("analyzer config: model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("analyzer config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("analyzer config: max_retries cannot be negative")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("analyzer config: output_path is required")
	}
	if c.Charts && strings.TrimSpace(c.MemoryLimit) == "" {
		return errors.New("analyzer config: memory_limit is required when charts are enabled")
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = defaultModel
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		c.OutputPath = defaultOutputPath
	}
	if strings.TrimSpace(c.MemoryLimit) == "" {
		c.MemoryLimit = defaultMemoryLimit
	}
}

func (c *Config) applyEnvOverrides() {
	c.BaseURL = expandAndOverride(c.BaseURL, envBaseURL)
	c.Model = expandAndOverride(c.Model, envModel)
	c.OutputPath = expandAndOverride(c.OutputPath, envOutputPath)

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}

	if raw := os.Getenv(envMaxRetries); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			c.MaxRetries = v
		}
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = defaultTimeout
		return nil
	}

	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("analyzer config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("analyzer config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}

func expandAndOverride(current, envKey string) string {
	current = os.ExpandEnv(current)
	if envVal := os.Getenv(envKey); envVal != "" {
		return envVal
	}
	return current
}
