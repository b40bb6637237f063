package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Renderer writes the human-readable views of a run: the request banner,
// the complete structured dump, the raw output sequence, and the flattened
// text. The output sequence is formatted the way the upstream client
// library prints it (McpListTools(...), McpCall(...),
// ResponseOutputMessage(...)) because existing verification tooling
// pattern-matches those substrings.
type Renderer struct {
	w io.Writer
}

// NewRenderer writes views to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

const ruleWidth = 80

func (r *Renderer) rule(ch string) {
	fmt.Fprintln(r.w, strings.Repeat(ch, ruleWidth))
}

func (r *Renderer) header(title string) {
	fmt.Fprintln(r.w)
	r.rule("=")
	fmt.Fprintln(r.w, title)
	r.rule("=")
}

// CredentialSummary prints the masked credential confirmation lines.
func (r *Renderer) CredentialSummary(creds *Credentials) {
	for _, line := range creds.Summary() {
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w)
}

// RequestInfo prints the request banner before the call is issued.
func (r *Renderer) RequestInfo(req *Request, serverURL string) {
	r.header("🤖 OPENAI RESPONSES API CALL")
	fmt.Fprintf(r.w, "Model: %s\n", req.Model)
	fmt.Fprintf(r.w, "MCP Server: %s\n", ServerLabel)
	fmt.Fprintf(r.w, "MCP URL: %s\n", serverURL)
	fmt.Fprintf(r.w, "User Prompt:\n%s\n", req.Prompt)
	r.rule("-")
}

// ResponseDump prints the complete structured response for auditability.
func (r *Renderer) ResponseDump(resp *Response) {
	r.header("📥 OPENAI RESPONSES API - COMPLETE RESPONSE")
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(resp.RawJSON), "", "  "); err != nil {
		fmt.Fprintln(r.w, resp.RawJSON)
	} else {
		fmt.Fprintln(r.w, pretty.String())
	}
	r.rule("=")
	fmt.Fprintln(r.w)
}

// FinalOutput prints the raw output sequence followed by the flattened
// text view.
func (r *Renderer) FinalOutput(resp *Response) {
	r.header("📊 FINAL OUTPUT")
	fmt.Fprintln(r.w, formatOutputSequence(resp.Output))
	r.rule("=")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, resp.OutputText)
}

// SavingHeader opens the artifact-saving section.
func (r *Renderer) SavingHeader() {
	r.header("💾 SAVING VISUALIZATIONS")
}

// SectionEnd closes a section.
func (r *Renderer) SectionEnd() {
	r.rule("=")
	fmt.Fprintln(r.w)
}

func formatOutputSequence(items []OutputItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, formatItem(item))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatItem renders one output item in the repr form the verification
// harness matches on. Field order matters: the harness captures up to the
// first closing parenthesis, so plain fields come before any nested value
// that may contain one.
func formatItem(item OutputItem) string {
	switch item.Kind {
	case ItemToolDiscovery:
		names := make([]string, 0, len(item.Tools))
		for _, tool := range item.Tools {
			names = append(names, pyStr(tool.Name))
		}
		return fmt.Sprintf("McpListTools(id=%s, server_label=%s, type=%s, tools=[%s])",
			pyStr(item.ID), pyStr(item.ServerLabel), pyStr(string(item.Kind)),
			strings.Join(names, ", "))
	case ItemToolCall:
		return fmt.Sprintf("McpCall(id=%s, type=%s, name=%s, server_label=%s, status=%s, arguments=%s, error=%s, output=%s)",
			pyStr(item.ID), pyStr(string(item.Kind)), pyStr(item.Name),
			pyStr(item.ServerLabel), pyStr(item.Status), pyStr(item.Arguments),
			pyOptStr(item.Error), pyOptStr(item.Output))
	case ItemMessage:
		contents := make([]string, 0, len(item.Content))
		for _, part := range item.Content {
			contents = append(contents, formatContent(part))
		}
		return fmt.Sprintf("ResponseOutputMessage(id=%s, role=%s, status=%s, type=%s, content=[%s])",
			pyStr(item.ID), pyStr(item.Role), pyStr(item.Status),
			pyStr(string(item.Kind)), strings.Join(contents, ", "))
	default:
		return fmt.Sprintf("ResponseItem(id=%s, type=%s)", pyStr(item.ID), pyStr(string(item.Kind)))
	}
}

func formatContent(part ContentPart) string {
	anns := make([]string, 0, len(part.Annotations))
	for _, ann := range part.Annotations {
		anns = append(anns, formatAnnotation(ann))
	}
	return fmt.Sprintf("ResponseOutputText(type=%s, annotations=[%s], text=%s)",
		pyStr(part.Kind), strings.Join(anns, ", "), pyStr(part.Text))
}

func formatAnnotation(ann Annotation) string {
	return fmt.Sprintf("AnnotationContainerFileCitation(type=%s, container_id=%s, file_id=%s)",
		pyStr(ann.Kind), pyStr(ann.ContainerID), pyStr(ann.FileID))
}

// pyStr quotes a string the way Python repr does.
func pyStr(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return "'" + replacer.Replace(s) + "'"
}

// pyOptStr renders empty strings as None, matching optional repr fields.
func pyOptStr(s string) string {
	if s == "" {
		return "None"
	}
	return pyStr(s)
}
