package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sellerchat/sellerchat/internal/api"
	"github.com/sellerchat/sellerchat/internal/classify"
	"github.com/sellerchat/sellerchat/internal/config"
	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/extract"
	"github.com/sellerchat/sellerchat/internal/handler"
	"github.com/sellerchat/sellerchat/internal/llm"
	"github.com/sellerchat/sellerchat/internal/mcp"
	"github.com/sellerchat/sellerchat/internal/pipeline"
	"github.com/sellerchat/sellerchat/internal/store"
	"github.com/sellerchat/sellerchat/internal/validate"
)

const version = "0.1.0-dev"

const defaultModel = "openai/gpt-4o-mini"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "resolve":
		if err := runResolve(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("sellerchat %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

type cliOpts struct {
	configPath string
	llmFlag    string
	dbPath     string
	addr       string
	anchor     string
	asJSON     bool
	rest       []string
}

func parseArgs(args []string) (cliOpts, error) {
	var opts cliOpts
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}
		var err error
		switch arg {
		case "--config":
			opts.configPath, err = next()
		case "--llm":
			opts.llmFlag, err = next()
		case "--db":
			opts.dbPath, err = next()
		case "--addr":
			opts.addr, err = next()
		case "--date":
			opts.anchor, err = next()
		case "--json":
			opts.asJSON = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			opts.rest = append(opts.rest, arg)
		}
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func resolveConfig(opts cliOpts) (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath: opts.configPath,
		CLILLM:     opts.llmFlag,
		CLIDBPath:  opts.dbPath,
		CLIAddr:    opts.addr,
	})
}

// buildProvider creates an LLM client for one pipeline purpose, layering
// the resolved API key onto the parsed provider flag.
func buildProvider(cfg config.ResolvedConfig, purpose string) (llm.Provider, error) {
	model := cfg.EffectiveLLMModel(purpose, defaultModel)
	c, err := llm.ParseFlag(model.Value)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", purpose, err)
	}
	if c.APIKey == "" {
		if key := cfg.APIKeyForProvider(model.Value); key.Value != "" {
			c.APIKey = key.Value
		}
	}
	client, err := llm.NewClient(c)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", purpose, err)
	}
	return client, nil
}

func buildEngine(cfg config.ResolvedConfig, nowFn func() time.Time) (*pipeline.Engine, error) {
	extractProvider, err := buildProvider(cfg, "extract")
	if err != nil {
		return nil, err
	}
	validateProvider, err := buildProvider(cfg, "validate")
	if err != nil {
		return nil, err
	}
	classifyProvider, err := buildProvider(cfg, "classify")
	if err != nil {
		return nil, err
	}
	return pipeline.NewEngine(
		extract.NewExtractor(extractProvider),
		validate.NewValidator(validateProvider),
		classify.NewClassifier(classifyProvider),
		nowFn,
	), nil
}

func runServe(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, nil)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.DBPath.Value)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	srv, err := api.NewServer(engine, handler.DefaultRegistry(), st, cfg.APIToken.Value)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("sellerchat %s listening on %s\n", version, cfg.HTTPAddr.Value)
		errCh <- srv.ListenAndServe(cfg.HTTPAddr.Value)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Printf("received %s, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func runMCP(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, nil)
	if err != nil {
		return err
	}

	s := mcp.NewServer(mcp.ServerConfig{Engine: engine, Version: version})
	return mcpserver.ServeStdio(s)
}

func runResolve(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.rest) == 0 {
		return fmt.Errorf("usage: sellerchat resolve <question> [--date YYYY-MM-DD] [--llm provider/model] [--json]")
	}
	question := strings.Join(opts.rest, " ")

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	nowFn := func() time.Time { return time.Now().UTC() }
	if opts.anchor != "" {
		anchor, err := time.Parse(dates.ISO, opts.anchor)
		if err != nil {
			return fmt.Errorf("--date %q is not YYYY-MM-DD", opts.anchor)
		}
		nowFn = func() time.Time { return anchor }
	}

	engine, err := buildEngine(cfg, nowFn)
	if err != nil {
		return err
	}

	res, err := engine.Resolve(context.Background(), pipeline.Request{Message: question})
	if err != nil {
		return err
	}

	if opts.asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("category:  %s\n", res.Category)
	fmt.Printf("period:    %s .. %s\n", res.Primary.Start, res.Primary.End)
	if res.Compare != nil {
		fmt.Printf("compare:   %s .. %s\n", res.Compare.Start, res.Compare.End)
	}
	if res.ASIN != "" {
		fmt.Printf("asin:      %s\n", res.ASIN)
	}
	fmt.Printf("outcome:   %s (%d retries)\n", res.Outcome, res.RetryCount)
	if res.Feedback != "" {
		fmt.Printf("feedback:  %s\n", res.Feedback)
	}
	return nil
}

func runConfig(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printUsage() {
	fmt.Println(`sellerchat - seller analytics chat resolution service

Usage:
  sellerchat serve   [--config path] [--llm provider/model] [--db path] [--addr :8080]
  sellerchat mcp     [--config path] [--llm provider/model]
  sellerchat resolve <question> [--date YYYY-MM-DD] [--llm provider/model] [--json]
  sellerchat config  [--config path]
  sellerchat version

Commands:
  serve    Run the HTTP API (POST /v1/chat, GET /healthz, GET /metrics)
  mcp      Run the Model Context Protocol server on stdio
  resolve  Resolve one question from the command line
  config   Print the effective configuration and where each value came from
  version  Print the version`)
}
