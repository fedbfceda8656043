// Command provider-check verifies that a provider endpoint and API key work
// by sending a trivial test prompt and checking the echo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/threadlyhq/threadly-core/coach"
)

const testPrompt = `Say "Threadly API test successful" in exactly those words.`

type Config struct {
	Provider string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

func (c Config) Validate() error {
	if c.Provider == "" {
		return errors.New("missing -provider")
	}
	if c.Provider != "all" {
		if _, err := coach.Endpoint(coach.Provider(c.Provider)); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Provider: string(coach.DefaultProvider),
		Timeout:  30 * time.Second,
	}
}

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

	d := coach.NewDispatcher("You are a connectivity test endpoint. Follow the user's instruction literally.")

	targets := []coach.Provider{coach.Provider(cfg.Provider)}
	if cfg.Provider == "all" {
		targets = coach.Providers()
	}

	failed := false
	for _, p := range targets {
		credential := cfg.APIKey
		if credential == "" {
			credential, err = coach.EnvCredentialStore{}.Credential(p)
			if err != nil {
				if cfg.Provider == "all" {
					fmt.Printf("%s skipped: %s\n", p, err)
					continue
				}
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(2)
			}
		}
		if !checkOne(d, p, credential, cfg.Model, cfg.Timeout) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func checkOne(d *coach.Dispatcher, p coach.Provider, credential, model string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	raw, aerr := d.Dispatch(ctx, testPrompt, coach.DispatchConfig{
		Provider:   p,
		Credential: credential,
		Model:      model,
	})
	if aerr != nil {
		fmt.Fprintf(os.Stderr, "%s check failed: %s\n", p, aerr.Message)
		return false
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if strings.Contains(raw, "Threadly API test successful") {
		fmt.Printf("%s ok (%s)\n", p, elapsed)
	} else {
		fmt.Printf("%s reachable but gave an unexpected reply (%s): %s\n", p, elapsed, firstLine(raw))
	}
	return true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "Provider to check (gemini, openai, claude, openrouter, huggingface, or all)")
	fs.StringVar(&cfg.Model, "model", "", "Model override (default: provider default)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (default: THREADLY_API_KEY_<PROVIDER> env var)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}
