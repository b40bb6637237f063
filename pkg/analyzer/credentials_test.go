package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setCredEnv(t *testing.T, apiKey, auth, serverURL string) {
	t.Helper()
	t.Setenv(EnvOpenAIAPIKey, apiKey)
	t.Setenv(EnvAuthorization, auth)
	t.Setenv(EnvServerURL, serverURL)
}

func TestResolveCredentials(t *testing.T) {
	setCredEnv(t, "sk-test-1234567890", "av-key", "https://mcp.example.com")

	creds, missing := ResolveCredentials()
	require.Nil(t, missing)
	require.Equal(t, "sk-test-1234567890", creds.APIKey)
	require.Equal(t, "av-key", creds.Authorization)
	require.Equal(t, "https://mcp.example.com", creds.ServerURL)
}

func TestResolveCredentialsMissing(t *testing.T) {
	cases := []struct {
		name    string
		apiKey  string
		auth    string
		server  string
		missing []string
	}{
		{"no api key", "", "av", "url", []string{EnvOpenAIAPIKey}},
		{"no authorization", "sk", "", "url", []string{EnvAuthorization}},
		{"no server url", "sk", "av", "", []string{EnvServerURL}},
		{"api key blank", "   ", "av", "url", []string{EnvOpenAIAPIKey}},
		{"two missing", "", "av", "", []string{EnvOpenAIAPIKey, EnvServerURL}},
		{"all missing", "", "", "", []string{EnvOpenAIAPIKey, EnvAuthorization, EnvServerURL}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCredEnv(t, tc.apiKey, tc.auth, tc.server)

			creds, missing := ResolveCredentials()
			require.Nil(t, creds)
			require.NotNil(t, missing)
			require.Equal(t, tc.missing, missing.Names)

			// The diagnostic names every missing variable and its remediation.
			diag := missing.Diagnostic()
			for _, name := range tc.missing {
				require.Contains(t, diag, name+" environment variable is not set")
			}
		})
	}
}

func TestMissingEnvErrorDiagnosticRemediation(t *testing.T) {
	err := &MissingEnvError{Names: []string{EnvAuthorization}}
	diag := err.Diagnostic()
	require.Contains(t, diag, "Alpha Vantage API key")
	require.NotContains(t, diag, EnvOpenAIAPIKey)
}

func TestMaskKey(t *testing.T) {
	require.Equal(t, "sk-proj-ab...", MaskKey("sk-proj-abcdef123456"))
	require.Equal(t, "short...", MaskKey("short"))
}

func TestCredentialsSummaryMasksKey(t *testing.T) {
	creds := &Credentials{
		APIKey:        "sk-proj-abcdef123456",
		Authorization: "av-key",
		ServerURL:     "https://mcp.example.com",
	}
	lines := creds.Summary()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "sk-proj-ab...")
	require.NotContains(t, lines[0], "abcdef123456")
}
