package analyzer

import (
	"fmt"
	"strings"
)

// Recognized Alpha Vantage time-series functions a tool call may name.
var recognizedFunctions = []string{
	"TIME_SERIES_DAILY",
	"TIME_SERIES_WEEKLY",
	"TIME_SERIES_MONTHLY",
}

// VerifyResponse checks an accepted response against the acceptance
// properties: a tool-discovery event precedes any tool invocation, which
// precedes the final assistant message; labels match the registered MCP
// server; the tool call references the requested symbol and a recognized
// time-series function; and the final message is a completed assistant
// message with at least one output_text entry. It returns one line per
// violated property, nil when the response is acceptable.
func VerifyResponse(resp *Response, symbol string) []string {
	var problems []string
	if resp == nil {
		return []string{"response is nil"}
	}

	discovery, call, message := -1, -1, -1
	for i, item := range resp.Output {
		switch item.Kind {
		case ItemToolDiscovery:
			if discovery < 0 {
				discovery = i
			}
		case ItemToolCall:
			if call < 0 {
				call = i
			}
		case ItemMessage:
			message = i
		}
	}

	if discovery < 0 {
		problems = append(problems, "no tool-discovery event in output")
	} else if resp.Output[discovery].ServerLabel != ServerLabel {
		problems = append(problems, fmt.Sprintf("tool-discovery server label is %q, want %q",
			resp.Output[discovery].ServerLabel, ServerLabel))
	}

	if call < 0 {
		problems = append(problems, "no tool-invocation event in output")
	} else {
		item := resp.Output[call]
		if item.ServerLabel != ServerLabel {
			problems = append(problems, fmt.Sprintf("tool-invocation server label is %q, want %q",
				item.ServerLabel, ServerLabel))
		}
		if symbol != "" && !strings.Contains(item.Arguments, symbol) {
			problems = append(problems, fmt.Sprintf("tool-invocation arguments do not reference %q", symbol))
		}
		if !namesRecognizedFunction(item) {
			problems = append(problems, "tool-invocation does not name a recognized time-series function")
		}
	}

	if message < 0 {
		problems = append(problems, "no assistant message in output")
	} else {
		problems = append(problems, verifyMessage(resp.Output[message])...)
	}

	if discovery >= 0 && call >= 0 && discovery > call {
		problems = append(problems, "tool-discovery event appears after a tool invocation")
	}
	if call >= 0 && message >= 0 && call > message {
		problems = append(problems, "tool invocation appears after the final assistant message")
	}

	return problems
}

func verifyMessage(item OutputItem) []string {
	var problems []string
	if item.Role != "assistant" {
		problems = append(problems, fmt.Sprintf("final message role is %q, want assistant", item.Role))
	}
	if item.Status != "completed" {
		problems = append(problems, fmt.Sprintf("final message status is %q, want completed", item.Status))
	}
	hasText := false
	for _, part := range item.Content {
		if part.Kind == "output_text" {
			hasText = true
			break
		}
	}
	if !hasText {
		problems = append(problems, "final message has no output_text content")
	}
	return problems
}

func namesRecognizedFunction(item OutputItem) bool {
	for _, fn := range recognizedFunctions {
		if strings.Contains(item.Name, fn) || strings.Contains(item.Arguments, fn) {
			return true
		}
	}
	return false
}
