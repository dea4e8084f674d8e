package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lalithlochan/nimbus-agent/internal/agent"
	"github.com/lalithlochan/nimbus-agent/internal/config"
	"github.com/lalithlochan/nimbus-agent/internal/history"
	"github.com/lalithlochan/nimbus-agent/internal/llm"
	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
	"github.com/lalithlochan/nimbus-agent/internal/tools"
	"github.com/lalithlochan/nimbus-agent/pkg/log"
)

const defaultRequest = "Send an email to alice@example.com with subject 'Hello' and body 'Test message'"

func main() {
	request := flag.String("request", defaultRequest, "Natural language request for the agent")
	nimbusURL := flag.String("nimbus-url", "", "Nimbus API base URL (overrides NIMBUS_BASE_URL)")
	maxIterations := flag.Int("max-iterations", 0, "Max tool-calling iterations (overrides AGENT_MAX_ITERATIONS)")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv(
		config.WithNimbusBaseURL(*nimbusURL),
		config.WithMaxIterations(*maxIterations),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Nimbus agent")
	fmt.Printf("  Nimbus URL: %s\n", cfg.Nimbus.BaseURL)
	fmt.Printf("  Request: %s\n\n", *request)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Fprintln(os.Stderr, "\ninterrupted, aborting run")
		cancel()
	}()

	nimbusClient := nimbus.NewClient(cfg.Nimbus.BaseURL, time.Duration(cfg.Nimbus.Timeout)*time.Second)

	// Preflight: an unreachable gateway is a hard stop, a failing health
	// check only a warning (the gateway may still accept writes).
	if err := probeNimbus(ctx, nimbusClient); err != nil {
		fmt.Fprintf(os.Stderr, "Nimbus is not running at %s: %v\n", cfg.Nimbus.BaseURL, err)
		fmt.Fprintln(os.Stderr, "Start it with: go run cmd/gateway/main.go, then retry.")
		os.Exit(1)
	}

	registry, err := tools.NewNimbusRegistry(nimbusClient)
	if err != nil {
		log.Fatal("Failed to build tool registry: %v", err)
	}

	a, err := agent.NewLLMAgent(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, registry, cfg.Agent.MaxIterations)
	if err != nil {
		log.Fatal("Failed to create agent: %v", err)
	}
	defer a.Close()

	result, err := a.Execute(ctx, agent.Request{UserMessage: *request})
	if err != nil {
		log.Fatal("Run failed: %v", err)
	}

	recordRun(ctx, cfg.Agent.HistoryDB, *request, result)

	fmt.Println("\n" + strings.Repeat("=", 60))
	if result.Exhausted {
		fmt.Println("Run stopped at the iteration bound:")
	} else {
		fmt.Println("Final response:")
	}
	fmt.Println(result.Answer)
	fmt.Println(strings.Repeat("=", 60))
}

// probeNimbus distinguishes "unreachable" (fatal) from "unhealthy" (warn).
func probeNimbus(ctx context.Context, client *nimbus.Client) error {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := client.Health(probeCtx)
	if err == nil {
		return nil
	}

	var apiErr *nimbus.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "Warning: Nimbus health check failed (status %d). Is it healthy?\n\n", apiErr.HTTPStatus)
		return nil
	}
	return err
}

// recordRun persists the finished run when history is configured.
// History failures never fail the run itself.
func recordRun(ctx context.Context, dbPath, request string, result *agent.Result) {
	if dbPath == "" {
		return
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		log.Warn("Run history disabled: %v", err)
		return
	}
	defer store.Close()

	transcript, err := json.Marshal(result.Transcript)
	if err != nil {
		log.Warn("Failed to encode transcript: %v", err)
		transcript = []byte("[]")
	}

	if err := store.SaveRun(ctx, history.RunRecord{
		ID:         result.RunID,
		Request:    request,
		Answer:     result.Answer,
		Exhausted:  result.Exhausted,
		Iterations: result.Iterations,
		ToolCalls:  len(result.ToolCalls),
		Transcript: string(transcript),
	}); err != nil {
		log.Warn("Failed to record run: %v", err)
	}
}
