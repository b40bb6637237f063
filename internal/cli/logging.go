package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"stockanalyzer/internal/config"
	"stockanalyzer/pkg/analyzer"
	"stockanalyzer/pkg/envkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// app config. Secrets are reported by presence only.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		analyzerLine(cfg.Analyzer),
	}

	if a := cfg.Analyzer.Value; a != nil {
		lines = append(lines,
			fmt.Sprintf("Model: %s", a.Model),
			fmt.Sprintf("Output path: %s", a.OutputPath),
			fmt.Sprintf("Charts: %v (memory limit %s)", a.Charts, a.MemoryLimit),
			fmt.Sprintf("Timeout: %s, retries: %d", a.Timeout, a.MaxRetries),
		)
	}

	for _, name := range []string{analyzer.EnvOpenAIAPIKey, analyzer.EnvAuthorization, analyzer.EnvServerURL} {
		lines = append(lines, fmt.Sprintf("%s: %s", name, presence(name)))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(envName string) string {
	if _, ok := envkit.Lookup(envName); ok {
		return "set"
	}
	return "not set"
}

func analyzerLine(section config.AnalyzerSection) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("Analyzer config: %s", section.File)
	case section.Value != nil:
		return "Analyzer config: defaults"
	default:
		return "Analyzer config: not configured"
	}
}
