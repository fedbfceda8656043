package coach

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/threadlyhq/threadly-core/telemetry"
)

const (
	// MinHistoryLen and MaxHistoryLen bound the trimmed conversation history.
	MinHistoryLen = 10
	MaxHistoryLen = 5000
	// MaxContextLen bounds the optional user-supplied context note.
	MaxContextLen = 1000

	// DefaultCooldown is the minimum gap between successful request starts.
	DefaultCooldown = 2 * time.Second

	// PlaceholderAPIKey is a sentinel some configs ship before the user sets
	// a real key. It is rejected the same as an empty credential.
	PlaceholderAPIKey = "PLACEHOLDER_API_KEY"

	networkRetries   = 2
	networkRetryWait = 2 * time.Second
)

// CredentialStore resolves API keys per provider.
type CredentialStore interface {
	Credential(p Provider) (string, error)
}

// EnvCredentialStore reads keys from THREADLY_API_KEY_<PROVIDER> environment
// variables, e.g. THREADLY_API_KEY_GEMINI.
type EnvCredentialStore struct{}

func (EnvCredentialStore) Credential(p Provider) (string, error) {
	name := "THREADLY_API_KEY_" + strings.ToUpper(string(p))
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return v, nil
}

// StaticCredentialStore serves one fixed key for every provider.
type StaticCredentialStore string

func (s StaticCredentialStore) Credential(Provider) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no API key configured")
	}
	return string(s), nil
}

// AnalysisRequest is one conversation to analyze. Provider, APIKey, and Model
// are optional; the service falls back to its defaults and credential store.
type AnalysisRequest struct {
	History     string
	Scenario    ScenarioType
	Tone        int
	UserContext string
	Provider    Provider
	APIKey      string
	Model       string
	UserID      string
}

// AnalysisService orchestrates the full request lifecycle: validation,
// cooldown, cache, dispatch with retry, normalization, and telemetry.
type AnalysisService struct {
	dispatcher *Dispatcher
	cache      *ResponseCache
	creds      CredentialStore
	recorder   telemetry.Recorder
	cooldown   time.Duration

	// Logf receives diagnostics about salvaged responses and telemetry
	// failures. Nil means silent.
	Logf func(format string, args ...any)

	mu          sync.Mutex
	lastRequest time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// ServiceOption customizes an AnalysisService.
type ServiceOption func(*AnalysisService)

func WithCache(c *ResponseCache) ServiceOption {
	return func(s *AnalysisService) { s.cache = c }
}

func WithRecorder(r telemetry.Recorder) ServiceOption {
	return func(s *AnalysisService) { s.recorder = r }
}

func WithCooldown(d time.Duration) ServiceOption {
	return func(s *AnalysisService) { s.cooldown = d }
}

func WithDispatcher(d *Dispatcher) ServiceOption {
	return func(s *AnalysisService) { s.dispatcher = d }
}

func NewAnalysisService(creds CredentialStore, opts ...ServiceOption) *AnalysisService {
	s := &AnalysisService{
		dispatcher: NewDispatcher(SystemInstruction),
		cache:      NewResponseCache(DefaultCacheTTL),
		creds:      creds,
		recorder:   telemetry.Discard{},
		cooldown:   DefaultCooldown,
		now:        time.Now,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAnalysis runs one request end to end. The returned error is always
// a *AnalysisError so callers can branch on Kind and show Message directly.
func (s *AnalysisService) GenerateAnalysis(ctx context.Context, req AnalysisRequest) (ThreadlyResponse, *AnalysisError) {
	start := s.now()

	p := req.Provider
	if p == "" {
		p = DefaultProvider
	}
	if _, err := Endpoint(p); err != nil {
		return ThreadlyResponse{}, &AnalysisError{
			Kind:     ErrKindValidation,
			Provider: p,
			Message:  fmt.Sprintf("Unknown provider %q.", p),
		}
	}

	credential := req.APIKey
	if credential == "" || credential == PlaceholderAPIKey {
		resolved, err := s.creds.Credential(p)
		if err != nil {
			return ThreadlyResponse{}, &AnalysisError{
				Kind:     ErrKindAuth,
				Provider: p,
				Message:  fmt.Sprintf("Invalid %s API key. Please check your Settings.", p),
				cause:    err,
			}
		}
		credential = resolved
	}

	history := strings.TrimSpace(req.History)
	if verr := validateRequest(history, req.Scenario, req.UserContext); verr != nil {
		return ThreadlyResponse{}, verr
	}

	if wait := s.checkCooldown(); wait > 0 {
		return ThreadlyResponse{}, newCooldownError(wait)
	}

	key := Fingerprint(history, req.Scenario, req.Tone, req.UserContext, p)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	prompt := BuildPrompt(history, req.Scenario, req.Tone, req.UserContext)
	cfg := DispatchConfig{Provider: p, Credential: credential, Model: req.Model}

	raw, derr := s.dispatchWithRetry(ctx, prompt, cfg)
	if derr != nil {
		s.recordPromptAsync(req, p, false, derr, s.now().Sub(start))
		return ThreadlyResponse{}, derr
	}

	result := s.normalize(raw)
	s.cache.Put(key, result)

	s.recordPromptAsync(req, p, IsDegraded(result), nil, s.now().Sub(start))
	return result, nil
}

func validateRequest(history string, scenario ScenarioType, userContext string) *AnalysisError {
	if !ValidScenario(scenario) {
		return newValidationError(fmt.Sprintf("Unknown scenario %q.", scenario))
	}
	if len(history) < MinHistoryLen {
		return newValidationError("Conversation history is too short to analyze. Paste at least a couple of messages.")
	}
	if len(history) > MaxHistoryLen {
		return newValidationError(fmt.Sprintf("Conversation history is too long. Trim it to %d characters or fewer.", MaxHistoryLen))
	}
	if len(userContext) > MaxContextLen {
		return newValidationError(fmt.Sprintf("Context note is too long. Trim it to %d characters or fewer.", MaxContextLen))
	}
	return nil
}

// checkCooldown enforces the minimum gap between requests. The last-request
// stamp only advances when the gate passes, so hammering the button does not
// extend the wait.
func (s *AnalysisService) checkCooldown() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if elapsed := now.Sub(s.lastRequest); elapsed < s.cooldown {
		return s.cooldown - elapsed
	}
	s.lastRequest = now
	return 0
}

// dispatchWithRetry retries transient network failures a fixed number of
// times. Auth, quota, and timeout errors surface immediately.
func (s *AnalysisService) dispatchWithRetry(ctx context.Context, prompt string, cfg DispatchConfig) (string, *AnalysisError) {
	var lastErr *AnalysisError
	for attempt := 0; attempt <= networkRetries; attempt++ {
		if attempt > 0 {
			s.sleep(networkRetryWait)
		}
		raw, err := s.dispatcher.Dispatch(ctx, prompt, cfg)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !err.Retryable() {
			return "", err
		}
	}
	return "", lastErr
}

// normalize decodes raw model output and repairs it into a valid result,
// logging structural problems on the way through.
func (s *AnalysisService) normalize(raw string) ThreadlyResponse {
	v, err := Decode(raw)
	if err != nil {
		s.logf("model output was not JSON, using safe defaults: %v", err)
		return Normalize(nil)
	}
	if issue := StructureIssue(v); issue != "" {
		s.logf("model output repaired: %s", issue)
	}
	return Normalize(v)
}

// recordPromptAsync ships telemetry without blocking the caller. A panicking
// or failing recorder must never take the analysis down with it.
func (s *AnalysisService) recordPromptAsync(req AnalysisRequest, p Provider, degraded bool, failure *AnalysisError, latency time.Duration) {
	rec := telemetry.PromptRecord{
		UserID:      req.UserID,
		Provider:    string(p),
		Model:       req.Model,
		Scenario:    string(req.Scenario),
		Tone:        req.Tone,
		History:     req.History,
		UserContext: req.UserContext,
		Degraded:    degraded,
		LatencyMS:   latency.Milliseconds(),
	}
	if failure != nil {
		rec.ErrorKind = string(failure.Kind)
		rec.ErrorMsg = failure.Message
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logf("telemetry recorder panicked: %v", r)
			}
		}()
		if err := s.recorder.RecordPrompt(rec); err != nil {
			s.logf("telemetry record failed: %v", err)
		}
	}()
}

// SubmitFeedback stores a user's verdict on a strategy they actually used.
func (s *AnalysisService) SubmitFeedback(rec telemetry.FeedbackRecord) error {
	return s.recorder.RecordFeedback(rec)
}

// ClearCache drops all cached analyses.
func (s *AnalysisService) ClearCache() {
	s.cache.Clear()
}

// CacheSize reports the number of cached analyses.
func (s *AnalysisService) CacheSize() int {
	return s.cache.Len()
}

func (s *AnalysisService) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
