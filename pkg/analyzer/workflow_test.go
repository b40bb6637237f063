package analyzer

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func analysisTestServer(t *testing.T, chartPayload []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successResponseBody))
	})
	mux.HandleFunc("/containers/cntr_42/files/cfile_42/content", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chartPayload)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestWorkflowRunSuccess(t *testing.T) {
	chart := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	server := analysisTestServer(t, chart)

	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")
	creds := testCredentials()

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, creds,
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	outcome := wf.Run(context.Background())
	require.True(t, outcome.OK())
	require.Equal(t, FailureNone, outcome.Kind)
	require.NoError(t, outcome.Err)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	require.Equal(t, chart, data)

	out := buf.String()
	require.Contains(t, out, "🤖 OPENAI RESPONSES API CALL")
	require.Contains(t, out, "Model: gpt-5-mini")
	require.Contains(t, out, "MCP Server: AlphaVantage")
	require.Contains(t, out, "Please analyze the AAPL stock for the last 3 months using monthly data")
	require.Contains(t, out, "📥 OPENAI RESPONSES API - COMPLETE RESPONSE")
	require.Contains(t, out, "📊 FINAL OUTPUT")
	require.Contains(t, out, "McpListTools(")
	require.Contains(t, out, "server_label='AlphaVantage'")
	require.Contains(t, out, "type='mcp_call'")
	require.Contains(t, out, "role='assistant'")
	require.Contains(t, out, "type='output_text'")
	require.Contains(t, out, "AAPL trended up over the last 3 months.")
	require.Contains(t, out, "💾 SAVING VISUALIZATIONS")
	require.Contains(t, out, "✓ Saved visualization to: "+cfg.OutputPath)
	require.NotContains(t, out, "❌")
}

func TestWorkflowRunCustomParams(t *testing.T) {
	server := analysisTestServer(t, []byte("chart"))

	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, testCredentials(),
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
		WithParams(AnalysisParams{Symbol: "TSLA", Months: 6, Interval: "weekly"}),
	)
	require.NoError(t, err)
	require.Equal(t, "TSLA", wf.Params().Symbol)

	outcome := wf.Run(context.Background())
	require.True(t, outcome.OK())
	require.Contains(t, buf.String(), "TSLA stock for the last 6 months using weekly data")
}

func TestWorkflowRunAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, testCredentials(),
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	outcome := wf.Run(context.Background())
	require.False(t, outcome.OK())
	require.Equal(t, FailureAuthentication, outcome.Kind)
	require.Equal(t, http.StatusUnauthorized, outcome.StatusCode)

	require.Contains(t, buf.String(), "❌ AUTHENTICATION ERROR:")
	require.NoFileExists(t, cfg.OutputPath)
}

func TestWorkflowRunAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "You exceeded your current quota"}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, testCredentials(),
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	outcome := wf.Run(context.Background())
	require.Equal(t, FailureAPI, outcome.Kind)
	require.Equal(t, http.StatusTooManyRequests, outcome.StatusCode)

	out := buf.String()
	require.Contains(t, out, "❌ API ERROR:")
	require.Contains(t, out, "Status Code: 429")
}

func TestWorkflowRunArtifactDownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successResponseBody))
	})
	mux.HandleFunc("/containers/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"message": "No such file"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, testCredentials(),
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	outcome := wf.Run(context.Background())
	require.Equal(t, FailureAPI, outcome.Kind)
	require.Equal(t, http.StatusNotFound, outcome.StatusCode)
	require.NoFileExists(t, cfg.OutputPath)
}

func TestNewWorkflowRejectsInvalidParams(t *testing.T) {
	cfg := testConfig("https://api.example.com")
	_, err := NewWorkflow(cfg, testCredentials(),
		WithParams(AnalysisParams{Symbol: "AAPL", Months: 3, Interval: "hourly"}),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported interval")
}

func TestNewWorkflowCustomTemplate(t *testing.T) {
	tmpl, err := NewPromptTemplate("short", "Summarize {{.Symbol}}.")
	require.NoError(t, err)

	server := analysisTestServer(t, []byte("chart"))
	cfg := testConfig(server.URL)
	cfg.OutputPath = filepath.Join(t.TempDir(), "stock_image.png")

	var buf bytes.Buffer
	wf, err := NewWorkflow(cfg, testCredentials(),
		WithOutput(&buf),
		WithWorkflowHTTPClient(server.Client()),
		WithPromptTemplate(tmpl),
	)
	require.NoError(t, err)

	outcome := wf.Run(context.Background())
	require.True(t, outcome.OK())
	require.Contains(t, buf.String(), "User Prompt:\nSummarize AAPL.")
	require.False(t, strings.Contains(buf.String(), "Please analyze the AAPL stock"))
}
