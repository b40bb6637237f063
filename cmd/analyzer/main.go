package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"stockanalyzer/internal/cli"
	"stockanalyzer/internal/config"
	"stockanalyzer/pkg/analyzer"
)

func main() {
	var (
		configFile = flag.String("f", "etc/app.yaml", "the config file")
		symbol     = flag.String("symbol", "", "stock symbol to analyze (default AAPL)")
		months     = flag.Int("months", 0, "analysis window in months")
		interval   = flag.String("interval", "", "data granularity: daily|weekly|monthly")
		promptPath = flag.String("prompt", "", "prompt template file overriding the built-in one")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("load config: %v", err)
		os.Exit(1)
	}
	cli.LogConfigSummary(cfg)

	// Missing credentials are a precondition failure: report and exit
	// cleanly without attempting any network call.
	creds, missing := analyzer.ResolveCredentials()
	if missing != nil {
		fmt.Print(missing.Diagnostic())
		return
	}
	for _, line := range creds.Summary() {
		fmt.Println(line)
	}
	fmt.Println()

	params := analyzer.DefaultAnalysisParams()
	if *symbol != "" {
		params.Symbol = strings.ToUpper(strings.TrimSpace(*symbol))
	}
	if *months > 0 {
		params.Months = *months
	}
	if *interval != "" {
		params.Interval = *interval
	}

	opts := []analyzer.WorkflowOption{analyzer.WithParams(params)}
	if *promptPath != "" {
		tmpl, tmplErr := analyzer.LoadPromptTemplate(*promptPath)
		if tmplErr != nil {
			logx.Errorf("load prompt template: %v", tmplErr)
			os.Exit(1)
		}
		opts = append(opts, analyzer.WithPromptTemplate(tmpl))
	}

	fmt.Println("→ Initializing OpenAI client...")
	wf, err := analyzer.NewWorkflow(cfg.Analyzer.Value, creds, opts...)
	if err != nil {
		logx.Errorf("initialise workflow: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Failures are reported by the workflow itself; the process still
	// terminates normally.
	if outcome := wf.Run(ctx); !outcome.OK() {
		logx.Errorf("analysis failed (%s): %v", outcome.Kind, outcome.Err)
	}
}
