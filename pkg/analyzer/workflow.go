package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Workflow runs one end-to-end invocation: build the request, issue the
// blocking analysis call, render the response views, and persist any chart
// artifacts. All failures surface as a tagged Outcome; nothing panics and
// nothing is retried beyond the configured policy.
type Workflow struct {
	cfg      *Config
	creds    *Credentials
	client   *Client
	renderer *Renderer
	logger   Logger
	out      io.Writer
	params   AnalysisParams
	prompt   string
}

// WorkflowOption configures optional workflow behaviour.
type WorkflowOption func(*workflowOptions)

type workflowOptions struct {
	out        io.Writer
	httpClient *http.Client
	logger     Logger
	params     *AnalysisParams
	template   *PromptTemplate
}

// WithOutput redirects console output, primarily for tests.
func WithOutput(w io.Writer) WorkflowOption {
	return func(opts *workflowOptions) {
		opts.out = w
	}
}

// WithWorkflowHTTPClient replaces the HTTP client used for both network
// calls.
func WithWorkflowHTTPClient(client *http.Client) WorkflowOption {
	return func(opts *workflowOptions) {
		opts.httpClient = client
	}
}

// WithWorkflowLogger injects a custom logger.
func WithWorkflowLogger(logger Logger) WorkflowOption {
	return func(opts *workflowOptions) {
		opts.logger = logger
	}
}

// WithParams overrides the default analysis parameters.
func WithParams(params AnalysisParams) WorkflowOption {
	return func(opts *workflowOptions) {
		opts.params = &params
	}
}

// WithPromptTemplate overrides the built-in prompt template.
func WithPromptTemplate(tmpl *PromptTemplate) WorkflowOption {
	return func(opts *workflowOptions) {
		opts.template = tmpl
	}
}

// NewWorkflow wires a workflow from validated configuration and
// credentials.
func NewWorkflow(cfg *Config, creds *Credentials, opts ...WorkflowOption) (*Workflow, error) {
	optState := workflowOptions{}
	for _, opt := range opts {
		opt(&optState)
	}

	out := optState.out
	if out == nil {
		out = os.Stdout
	}
	logger := optState.logger
	if logger == nil {
		logger = NewLogger(cfg.LogLevel)
	}

	params := DefaultAnalysisParams()
	if optState.params != nil {
		params = *optState.params
	}
	tmpl := optState.template
	if tmpl == nil {
		tmpl = DefaultPromptTemplate()
	}
	prompt, err := tmpl.Render(params)
	if err != nil {
		return nil, err
	}

	clientOpts := []ClientOption{WithLogger(logger)}
	if optState.httpClient != nil {
		clientOpts = append(clientOpts, WithHTTPClient(optState.httpClient))
	}
	client, err := NewClient(cfg, creds, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Workflow{
		cfg:      client.Config(),
		creds:    creds,
		client:   client,
		renderer: NewRenderer(out),
		logger:   logger,
		out:      out,
		params:   params,
		prompt:   prompt,
	}, nil
}

// Params returns the analysis parameters in effect.
func (w *Workflow) Params() AnalysisParams {
	return w.params
}

// Run performs one invocation. The returned Outcome tags success or one of
// the four failure categories; its diagnostic has already been written to
// the output when it is not OK.
func (w *Workflow) Run(ctx context.Context) Outcome {
	req := NewAnalysisRequest(w.cfg, w.creds, w.prompt)
	w.renderer.RequestInfo(req, w.creds.ServerURL)

	resp, err := w.client.Analyze(ctx, req)
	if err != nil {
		return w.report(Classify(err))
	}

	w.renderer.ResponseDump(resp)
	w.renderer.FinalOutput(resp)

	if problems := VerifyResponse(resp, w.params.Symbol); problems != nil {
		w.logger.Info(ctx, "response verification", Fields{
			"problems": fmt.Sprintf("%v", problems),
		})
	}

	w.renderer.SavingHeader()
	extractor := NewExtractor(w.client, w.cfg.OutputPath, w.out)
	if err := extractor.Save(ctx, resp); err != nil {
		w.renderer.SectionEnd()
		return w.report(Classify(err))
	}
	w.renderer.SectionEnd()

	return Outcome{Kind: FailureNone}
}

func (w *Workflow) report(outcome Outcome) Outcome {
	fmt.Fprint(w.out, outcome.Diagnostic())
	w.logger.Error(context.Background(), outcome.Err, Fields{
		"failure": outcome.Kind.String(),
		"status":  outcome.StatusCode,
	})
	return outcome
}
