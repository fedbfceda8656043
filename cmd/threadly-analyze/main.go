// Command threadly-analyze runs one conversation through the analysis
// pipeline and prints the normalized result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/threadlyhq/threadly-core/coach"
	"github.com/threadlyhq/threadly-core/telemetry"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	history, err := readHistory(cfg.InPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	opts := []coach.ServiceOption{coach.WithCooldown(0)}
	if cfg.TelemetryDB != "" {
		rec, err := telemetry.NewSQLiteRecorder(cfg.TelemetryDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer rec.Close()
		opts = append(opts, coach.WithRecorder(rec))
	}

	svc := coach.NewAnalysisService(coach.EnvCredentialStore{}, opts...)
	svc.Logf = func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	result, aerr := svc.GenerateAnalysis(ctx, coach.AnalysisRequest{
		History:     history,
		Scenario:    coach.ScenarioType(cfg.Scenario),
		Tone:        cfg.Tone,
		UserContext: cfg.UserContext,
		Provider:    coach.Provider(cfg.Provider),
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		UserID:      cfg.UserID,
	})
	if aerr != nil {
		fmt.Fprintln(os.Stderr, aerr.Message)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if coach.IsDegraded(result) {
		fmt.Fprintln(os.Stderr, "warning: model output could not be fully parsed, result contains fallback content")
	}

	// Telemetry ships on a background goroutine; give it a beat to land
	// before a short-lived process exits.
	if cfg.TelemetryDB != "" {
		time.Sleep(100 * time.Millisecond)
	}
}

func readHistory(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Conversation history file, or - for stdin")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "Conversation scenario (Professional, Personal, Romantic, Family, Conflict, Sales)")
	fs.IntVar(&cfg.Tone, "tone", cfg.Tone, "Tone slider 0-100 (casual to formal)")
	fs.StringVar(&cfg.UserContext, "context", "", "Optional extra context about the conversation")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "LLM provider (gemini, openai, claude, openrouter, huggingface)")
	fs.StringVar(&cfg.Model, "model", "", "Model override (default: provider default)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (default: THREADLY_API_KEY_<PROVIDER> env var)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Overall request timeout")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the JSON result")
	fs.StringVar(&cfg.TelemetryDB, "telemetry-db", "", "Optional SQLite path for recording prompt telemetry")
	fs.StringVar(&cfg.UserID, "user", "", "Optional user id attached to telemetry")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}
