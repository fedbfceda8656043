package coach

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/threadlyhq/threadly-core/coach/provider"
)

type fakeCaller struct {
	text  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeCaller) Call(ctx context.Context, prompt, credential, model string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestDispatcher(p Provider, c provider.Caller, budget time.Duration) *Dispatcher {
	return NewDispatcherWithCallers(map[Provider]provider.Caller{p: c}, budget)
}

func TestDispatch_Success(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{text: `{"ok":true}`}
	d := newTestDispatcher(ProviderGemini, fake, time.Second)
	got, err := d.Dispatch(context.Background(), "prompt", DispatchConfig{Provider: ProviderGemini, Credential: "k"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("got %q", got)
	}
	if fake.calls.Load() != 1 {
		t.Fatalf("calls=%d, want 1", fake.calls.Load())
	}
}

func TestDispatch_TimeoutRace(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{text: "late", delay: 500 * time.Millisecond}
	d := newTestDispatcher(ProviderOpenAI, fake, 50*time.Millisecond)
	start := time.Now()
	_, err := d.Dispatch(context.Background(), "prompt", DispatchConfig{Provider: ProviderOpenAI, Credential: "k"})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if err.Kind != ErrKindTimeout {
		t.Fatalf("Kind=%s, want %s", err.Kind, ErrKindTimeout)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("Dispatch waited %s for the slow call instead of racing", elapsed)
	}
}

func TestDispatch_ClassifiesProviderError(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{err: &provider.Error{Backend: "claude", Message: "HTTP 401: invalid api key"}}
	d := newTestDispatcher(ProviderClaude, fake, time.Second)
	_, err := d.Dispatch(context.Background(), "prompt", DispatchConfig{Provider: ProviderClaude, Credential: "bad"})
	if err == nil || err.Kind != ErrKindAuth {
		t.Fatalf("err=%+v, want auth kind", err)
	}
	if err.Provider != ProviderClaude {
		t.Fatalf("Provider=%s, want %s", err.Provider, ProviderClaude)
	}
}

func TestDispatch_UnknownProvider(t *testing.T) {
	t.Parallel()

	d := NewDispatcherWithCallers(map[Provider]provider.Caller{}, time.Second)
	_, err := d.Dispatch(context.Background(), "prompt", DispatchConfig{Provider: "grok"})
	if err == nil || err.Kind != ErrKindProvider {
		t.Fatalf("err=%+v, want provider kind", err)
	}
}

func TestDispatch_ParentContextCancel(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{text: "never", delay: time.Second}
	d := newTestDispatcher(ProviderGemini, fake, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := d.Dispatch(ctx, "prompt", DispatchConfig{Provider: ProviderGemini, Credential: "k"})
	if err == nil {
		t.Fatalf("expected error after cancel")
	}
}

func TestDispatch_NetworkErrorClassified(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{err: errors.New("dial tcp 1.2.3.4:443: connection refused")}
	d := newTestDispatcher(ProviderHuggingFace, fake, time.Second)
	_, err := d.Dispatch(context.Background(), "prompt", DispatchConfig{Provider: ProviderHuggingFace, Credential: "k"})
	if err == nil || err.Kind != ErrKindNetwork {
		t.Fatalf("err=%+v, want network kind", err)
	}
	if !err.Retryable() {
		t.Fatalf("network dispatch error not retryable")
	}
}
