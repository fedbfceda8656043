package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/threadlyhq/threadly-core/coach"
)

type Config struct {
	InPath      string
	Scenario    string
	Tone        int
	UserContext string
	Provider    string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Pretty      bool
	TelemetryDB string
	UserID      string
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in (file path, or - for stdin)")
	}
	if !coach.ValidScenario(coach.ScenarioType(c.Scenario)) {
		return fmt.Errorf("unknown scenario %q (one of %v)", c.Scenario, coach.Scenarios)
	}
	if c.Tone < 0 || c.Tone > 100 {
		return errors.New("tone must be in [0,100]")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Scenario: string(coach.ScenarioProfessional),
		Tone:     50,
		Provider: string(coach.DefaultProvider),
		Timeout:  60 * time.Second,
	}
}
