package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// Client issues analysis requests against the Responses API. The request
// body is posted as raw JSON because the sandbox memory limit is not
// modeled in the SDK param types; responses are decoded through the SDK
// types and converted into the domain model.
type Client struct {
	config     *Config
	creds      Credentials
	logger     Logger
	retry      *RetryPolicy
	httpClient *http.Client
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     Logger
	retry      *RetryPolicy
	httpClient *http.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRetryPolicy injects a custom retry policy.
func WithRetryPolicy(policy *RetryPolicy) ClientOption {
	return func(opts *clientOptions) {
		opts.retry = policy
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// NewClient constructs a client from validated configuration and
// credentials.
func NewClient(cfg *Config, creds *Credentials, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("analyzer: config cannot be nil")
	}
	if creds == nil {
		return nil, errors.New("analyzer: credentials cannot be nil")
	}

	clientCfg := cfg.Clone()
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}

	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	logger := optState.logger
	if logger == nil {
		logger = NewLogger(clientCfg.LogLevel)
	}

	retry := optState.retry
	if retry == nil {
		retry = NewRetryPolicy(clientCfg.MaxRetries)
	}

	httpClient := optState.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: clientCfg.Timeout}
	}

	return &Client{
		config:     clientCfg,
		creds:      *creds,
		logger:     logger,
		retry:      retry,
		httpClient: httpClient,
	}, nil
}

// NewAnalysisRequest assembles the immutable request for one invocation:
// the MCP data-provider tool (approval fixed to "never") and, when chart
// rendering is enabled, a bounded code-execution sandbox.
func NewAnalysisRequest(cfg *Config, creds *Credentials, prompt string) *Request {
	tools := []ToolSpec{
		{MCP: &MCPToolSpec{
			ServerLabel:       ServerLabel,
			ServerDescription: serverDescription,
			ServerURL:         creds.ServerURL,
			Authorization:     creds.Authorization,
			RequireApproval:   "never",
		}},
	}
	if cfg.Charts {
		tools = append(tools, ToolSpec{Sandbox: &SandboxSpec{
			ContainerType: "auto",
			MemoryLimit:   cfg.MemoryLimit,
		}})
	}
	return &Request{
		Model:  cfg.Model,
		Prompt: prompt,
		Tools:  tools,
	}
}

// Analyze performs the single blocking call of the workflow.
func (c *Client) Analyze(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("analyzer: request cannot be nil")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer: encode request: %w", err)
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + "/responses"

	c.logger.Info(ctx, "analysis request", Fields{
		"model": req.Model,
		"tools": len(req.Tools),
	})
	start := time.Now()

	var parsed responses.Response
	var raw []byte
	err = c.retry.Do(ctx, func() error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.creds.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, callErr := c.httpClient.Do(httpReq)
		if callErr != nil {
			return callErr
		}
		defer resp.Body.Close()

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("analyzer: read response body: %w", readErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newAPIError(httpReq, resp, b)
		}

		var r responses.Response
		if decErr := json.Unmarshal(b, &r); decErr != nil {
			return fmt.Errorf("analyzer: decode response: %w", decErr)
		}
		parsed, raw = r, b
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("analysis request failed: %w", err), Fields{
			"model": req.Model,
		})
		return nil, err
	}

	result := convertResponse(&parsed, raw)
	c.logger.Info(ctx, "analysis response", Fields{
		"id":           result.ID,
		"status":       result.Status,
		"output_items": len(result.Output),
		"duration_ms":  time.Since(start).Milliseconds(),
		"total_tokens": result.Usage.TotalTokens,
	})
	return result, nil
}

// DownloadArtifact fetches the raw bytes of a container file.
func (c *Client) DownloadArtifact(ctx context.Context, art Artifact) ([]byte, error) {
	if art.ContainerID == "" || art.FileID == "" {
		return nil, errors.New("analyzer: artifact is missing identifiers")
	}
	url := fmt.Sprintf("%s/containers/%s/files/%s/content",
		strings.TrimRight(c.config.BaseURL, "/"), art.ContainerID, art.FileID)

	var data []byte
	err := c.retry.Do(ctx, func() error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return reqErr
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.creds.APIKey)

		resp, callErr := c.httpClient.Do(httpReq)
		if callErr != nil {
			return callErr
		}
		defer resp.Body.Close()

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("analyzer: read file content: %w", readErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newAPIError(httpReq, resp, b)
		}
		data = b
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("artifact download failed: %w", err), Fields{
			"container_id": art.ContainerID,
			"file_id":      art.FileID,
		})
		return nil, err
	}
	return data, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() *Config {
	return c.config.Clone()
}

// Close releases idle transport resources.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// newAPIError wraps a non-2xx response as an *openai.Error so the retry
// policy and the failure taxonomy can classify it by status code. Request
// and Response are populated so Error() can format safely; the body is
// restored because it has already been consumed.
func newAPIError(req *http.Request, resp *http.Response, body []byte) error {
	resp.Body = io.NopCloser(bytes.NewReader(body))
	apiErr := &openai.Error{
		StatusCode: resp.StatusCode,
		Request:    req,
		Response:   resp,
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		apiErr.Message = payload.Error.Message
	}
	return apiErr
}

func convertResponse(r *responses.Response, raw []byte) *Response {
	if r == nil {
		return nil
	}

	result := &Response{
		ID:         r.ID,
		Model:      string(r.Model),
		Status:     string(r.Status),
		OutputText: r.OutputText(),
		Usage: Usage{
			InputTokens:  int(r.Usage.InputTokens),
			OutputTokens: int(r.Usage.OutputTokens),
			TotalTokens:  int(r.Usage.TotalTokens),
		},
		RawJSON: string(raw),
	}

	for _, item := range r.Output {
		conv := OutputItem{
			Kind:   ItemKind(item.Type),
			ID:     item.ID,
			Status: string(item.Status),
		}
		switch conv.Kind {
		case ItemToolDiscovery:
			conv.ServerLabel = item.ServerLabel
			for _, tool := range item.Tools {
				conv.Tools = append(conv.Tools, ToolInfo{
					Name:        tool.Name,
					Description: tool.Description,
				})
			}
		case ItemToolCall:
			conv.ServerLabel = item.ServerLabel
			conv.Name = item.Name
			conv.Arguments = item.Arguments
			conv.Output = item.Output
			conv.Error = item.Error
		case ItemMessage:
			conv.Role = string(item.Role)
			for _, part := range item.Content {
				cp := ContentPart{
					Kind: string(part.Type),
					Text: part.Text,
				}
				for _, ann := range part.Annotations {
					cp.Annotations = append(cp.Annotations, Annotation{
						Kind:        string(ann.Type),
						ContainerID: ann.ContainerID,
						FileID:      ann.FileID,
					})
				}
				conv.Content = append(conv.Content, cp)
			}
		}
		result.Output = append(result.Output, conv)
	}
	return result
}
