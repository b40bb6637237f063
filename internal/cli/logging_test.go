package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stockanalyzer/internal/config"
	"stockanalyzer/pkg/analyzer"
)

func TestConfigSummaryLines(t *testing.T) {
	t.Setenv(analyzer.EnvOpenAIAPIKey, "sk-test")
	t.Setenv(analyzer.EnvAuthorization, "")
	t.Setenv(analyzer.EnvServerURL, "")

	cfg := &config.Config{
		Env: "dev",
		Analyzer: config.AnalyzerSection{
			Value: analyzer.DefaultConfig(),
		},
	}

	lines := ConfigSummaryLines(cfg)
	joined := strings.Join(lines, "\n")

	require.Contains(t, joined, "Environment: dev")
	require.Contains(t, joined, "Analyzer config: defaults")
	require.Contains(t, joined, "Model: gpt-5-mini")
	require.Contains(t, joined, "Output path: stock_image.png")
	require.Contains(t, joined, "Charts: true (memory limit 4g)")
	require.Contains(t, joined, "Timeout: 5m0s, retries: 0")
	require.Contains(t, joined, "OPENAI_API_KEY: set")
	require.Contains(t, joined, "AUTHORIZATION: not set")
	require.Contains(t, joined, "SERVER_URL: not set")
	require.NotContains(t, joined, "sk-test")
}

func TestConfigSummaryLinesWithFile(t *testing.T) {
	cfg := &config.Config{
		Env: "prod",
		Analyzer: config.AnalyzerSection{
			File: "/etc/analyzer.yaml",
		},
	}

	lines := ConfigSummaryLines(cfg)
	require.Contains(t, strings.Join(lines, "\n"), "Analyzer config: /etc/analyzer.yaml")
}

func TestConfigSummaryLinesUnconfigured(t *testing.T) {
	lines := ConfigSummaryLines(&config.Config{Env: "dev"})
	require.Contains(t, strings.Join(lines, "\n"), "Analyzer config: not configured")
}

func TestConfigSummaryLinesNil(t *testing.T) {
	require.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))
}
