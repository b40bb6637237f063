package analyzer

import (
	"encoding/json"
	"errors"
)

// ServerLabel is the label the Alpha Vantage MCP tool server is registered
// under. Downstream verification matches on it, so it is fixed.
const ServerLabel = "AlphaVantage"

const serverDescription = "Alpha Vantage MCP Server for financial market data"

// Request describes a single analysis invocation. It is built once and
// never mutated.
type Request struct {
	Model  string     `json:"model"`
	Prompt string     `json:"input"`
	Tools  []ToolSpec `json:"tools"`
}

// ToolSpec is a tagged variant: exactly one of the fields is non-nil.
type ToolSpec struct {
	MCP     *MCPToolSpec
	Sandbox *SandboxSpec
}

// MCPToolSpec declares a remote MCP tool server the model may invoke.
type MCPToolSpec struct {
	ServerLabel       string `json:"server_label"`
	ServerDescription string `json:"server_description,omitempty"`
	ServerURL         string `json:"server_url"`
	Authorization     string `json:"authorization,omitempty"`
	RequireApproval   string `json:"require_approval,omitempty"`
}

// SandboxSpec declares a sandboxed code-execution container.
type SandboxSpec struct {
	ContainerType string `json:"type"`
	MemoryLimit   string `json:"memory_limit,omitempty"`
}

// MarshalJSON renders the wire shape expected by the Responses API:
// {"type":"mcp", ...} or {"type":"code_interpreter","container":{...}}.
func (t ToolSpec) MarshalJSON() ([]byte, error) {
	switch {
	case t.MCP != nil && t.Sandbox != nil:
		return nil, errors.New("analyzer: tool spec has both variants set")
	case t.MCP != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*MCPToolSpec
		}{Type: "mcp", MCPToolSpec: t.MCP})
	case t.Sandbox != nil:
		return json.Marshal(struct {
			Type      string      `json:"type"`
			Container SandboxSpec `json:"container"`
		}{Type: "code_interpreter", Container: *t.Sandbox})
	default:
		return nil, errors.New("analyzer: empty tool spec")
	}
}

// ItemKind tags a response output item.
type ItemKind string

const (
	// ItemToolDiscovery records that the server's tools were enumerated.
	ItemToolDiscovery ItemKind = "mcp_list_tools"
	// ItemToolCall records a single remote tool invocation.
	ItemToolCall ItemKind = "mcp_call"
	// ItemMessage is an assistant message.
	ItemMessage ItemKind = "message"
)

// Response is the structured result of one analysis invocation.
type Response struct {
	ID         string       `json:"id"`
	Model      string       `json:"model"`
	Status     string       `json:"status"`
	Output     []OutputItem `json:"output"`
	OutputText string       `json:"output_text"`
	Usage      Usage        `json:"usage"`
	RawJSON    string       `json:"-"`
}

// OutputItem is one entry of the response output sequence. Which fields are
// populated depends on Kind.
type OutputItem struct {
	Kind   ItemKind `json:"type"`
	ID     string   `json:"id"`
	Status string   `json:"status,omitempty"`

	// mcp_list_tools
	ServerLabel string     `json:"server_label,omitempty"`
	Tools       []ToolInfo `json:"tools,omitempty"`

	// mcp_call
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`

	// message
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
}

// ToolInfo names a tool advertised by the MCP server.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ContentPart is one content entry of an assistant message.
type ContentPart struct {
	Kind        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a reference attached to message content. Container file
// citations carry the identifiers needed to fetch a generated file.
type Annotation struct {
	Kind        string `json:"type"`
	ContainerID string `json:"container_id,omitempty"`
	FileID      string `json:"file_id,omitempty"`
}

// Artifact identifies a binary file produced inside an execution container.
type Artifact struct {
	ContainerID string
	FileID      string
}

// Usage summarises token accounting for a response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Messages returns the assistant message items of the output sequence in
// order.
func (r *Response) Messages() []OutputItem {
	var msgs []OutputItem
	for _, item := range r.Output {
		if item.Kind == ItemMessage {
			msgs = append(msgs, item)
		}
	}
	return msgs
}
