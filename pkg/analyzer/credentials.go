package analyzer

import (
	"fmt"
	"strings"

	"stockanalyzer/pkg/envkit"
)

// Environment variable names carrying the credentials triple.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvAuthorization = "AUTHORIZATION"
	EnvServerURL     = "SERVER_URL"
)

// Credentials is the validated triple required for one invocation: the
// model-service key, the Alpha Vantage key (reused as the MCP bearer
// token), and the MCP tool-server endpoint.
type Credentials struct {
	APIKey        string
	Authorization string
	ServerURL     string
}

// MissingEnvError reports which required environment variables are absent.
// It is a sentinel failure: callers print the diagnostic and exit cleanly
// instead of propagating a fault.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing environment variables: %s", strings.Join(e.Names, ", "))
}

var envRemediation = map[string]string{
	EnvOpenAIAPIKey:  "Please check your .env file or environment variables.",
	EnvAuthorization: "Please add your Alpha Vantage API key to the .env file.",
	EnvServerURL:     "Please add your MCP server URL to the .env file.",
}

// Diagnostic renders the human-readable report, one block per missing
// variable, naming the variable and the remediation.
func (e *MissingEnvError) Diagnostic() string {
	var b strings.Builder
	for _, name := range e.Names {
		fmt.Fprintf(&b, "❌ ERROR: %s environment variable is not set!\n", name)
		fmt.Fprintf(&b, "   %s\n", envRemediation[name])
	}
	return b.String()
}

// ResolveCredentials reads the credentials triple from the environment.
// All three values are checked so the diagnostic names every missing
// variable, not just the first.
func ResolveCredentials() (*Credentials, *MissingEnvError) {
	if missing := envkit.Missing(EnvOpenAIAPIKey, EnvAuthorization, EnvServerURL); missing != nil {
		return nil, &MissingEnvError{Names: missing}
	}

	apiKey, _ := envkit.Lookup(EnvOpenAIAPIKey)
	auth, _ := envkit.Lookup(EnvAuthorization)
	serverURL, _ := envkit.Lookup(EnvServerURL)

	return &Credentials{
		APIKey:        apiKey,
		Authorization: auth,
		ServerURL:     serverURL,
	}, nil
}

// Summary returns confirmation lines suitable for console output. Secrets
// are masked.
func (c *Credentials) Summary() []string {
	return []string{
		fmt.Sprintf("✓ OpenAI API Key found (first 10 characters): %s", MaskKey(c.APIKey)),
		"✓ Alpha Vantage API Key found",
		"✓ MCP Server URL found",
	}
}

// MaskKey keeps the first ten characters of a secret and elides the rest.
func MaskKey(key string) string {
	const visible = 10
	if len(key) <= visible {
		return key + "..."
	}
	return key[:visible] + "..."
}
