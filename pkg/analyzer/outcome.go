package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
)

// FailureKind tags the outcome of one invocation. Failures are values, not
// panics: every kind is terminal for the invocation but the process still
// exits normally after reporting.
type FailureKind int

const (
	// FailureNone marks a successful invocation.
	FailureNone FailureKind = iota
	// FailureAuthentication means the service rejected the credential.
	FailureAuthentication
	// FailureAPI means the service reported a structured error.
	FailureAPI
	// FailureClient covers transport and client-library failures.
	FailureClient
	// FailureUnclassified covers everything else.
	FailureUnclassified
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureAuthentication:
		return "authentication"
	case FailureAPI:
		return "api"
	case FailureClient:
		return "client"
	default:
		return "unclassified"
	}
}

// Outcome is the tagged result of a workflow run.
type Outcome struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool {
	return o.Kind == FailureNone
}

// Classify maps an error into the failure taxonomy.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Kind: FailureNone}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Outcome{Kind: FailureAuthentication, StatusCode: apiErr.StatusCode, Err: err}
		default:
			return Outcome{Kind: FailureAPI, StatusCode: apiErr.StatusCode, Err: err}
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &urlErr),
		errors.As(err, &netErr):
		return Outcome{Kind: FailureClient, Err: err}
	}

	return Outcome{Kind: FailureUnclassified, Err: err}
}

// Diagnostic renders the human-readable report for the outcome. Each
// failure kind keeps the template of the original tooling.
func (o Outcome) Diagnostic() string {
	var b strings.Builder
	switch o.Kind {
	case FailureNone:
		return ""
	case FailureAuthentication:
		b.WriteString("\n❌ AUTHENTICATION ERROR:\n")
		b.WriteString("   The API key is invalid or expired!\n")
		fmt.Fprintf(&b, "   Details: %v\n", o.Err)
		b.WriteString("\n   Solutions:\n")
		b.WriteString("   1. Check if the API key is correct\n")
		b.WriteString("   2. Generate a new API key at: https://platform.openai.com/api-keys\n")
		b.WriteString("   3. Verify that your OpenAI account is still active\n")
	case FailureAPI:
		b.WriteString("\n❌ API ERROR:\n")
		if o.StatusCode > 0 {
			fmt.Fprintf(&b, "   Status Code: %d\n", o.StatusCode)
		} else {
			b.WriteString("   Status Code: Unknown\n")
		}
		fmt.Fprintf(&b, "   Details: %v\n", o.Err)
		b.WriteString("\n   Possible causes:\n")
		b.WriteString("   - Quota exceeded (no credits remaining)\n")
		b.WriteString("   - Temporary issues at OpenAI\n")
		b.WriteString("   - Invalid request format\n")
	case FailureClient:
		b.WriteString("\n❌ CLIENT ERROR:\n")
		fmt.Fprintf(&b, "   Details: %v\n", o.Err)
		b.WriteString("\n   Please check:\n")
		b.WriteString("   - API key validity\n")
		b.WriteString("   - Network connection\n")
		b.WriteString("   - OpenAI service status: https://status.openai.com/\n")
	default:
		b.WriteString("\n❌ UNEXPECTED ERROR:\n")
		fmt.Fprintf(&b, "   Type: %T\n", o.Err)
		fmt.Fprintf(&b, "   Details: %v\n", o.Err)
		b.WriteString("\n   Please contact support with this error message.\n")
	}
	return b.String()
}
