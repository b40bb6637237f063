package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"

	"stockanalyzer/pkg/analyzer"
	"stockanalyzer/pkg/envkit"
)

// Config is the application-level configuration. The analyzer section may
// live inline or in its own file next to the main config.
type Config struct {
	// Env indicates the running environment: test | dev | prod.
	Env string `json:",default=dev"`

	Analyzer AnalyzerSection `json:",optional"`

	mainPath string
	baseDir  string
}

// AnalyzerSection points at the analyzer configuration file. When File is
// empty the defaults are used.
type AnalyzerSection struct {
	File  string           `json:",optional"`
	Value *analyzer.Config `json:"-"`
}

// MustLoad loads the config at path or panics.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the application config. A missing file is not an error: the
// defaults stand in so the tool works with nothing but environment
// variables set.
func Load(path string) (*Config, error) {
	envkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if _, statErr := os.Stat(absPath); statErr == nil {
		if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", absPath, err)
		}
	} else {
		cfg.Env = "dev"
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalises and checks the top-level fields.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "":
		c.Env = "dev"
	case "test", "dev", "prod":
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return nil
}

func (c *Config) hydrate() error {
	if c.Analyzer.File == "" {
		c.Analyzer.Value = analyzer.DefaultConfig()
		return nil
	}

	path := os.ExpandEnv(c.Analyzer.File)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, path)
	}
	value, err := analyzer.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load analyzer config: %w", err)
	}
	c.Analyzer.File, c.Analyzer.Value = path, value
	return nil
}

// MainPath returns the absolute path the config was loaded from.
func (c *Config) MainPath() string {
	return c.mainPath
}

// BaseDir returns the directory of the main config file.
func (c *Config) BaseDir() string {
	return c.baseDir
}
