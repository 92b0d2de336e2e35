package swarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rdszhao/cadkg/logging"
	"github.com/rdszhao/cadkg/model"
)

// SpecialistOptions configures optional specialist behavior.
type SpecialistOptions struct {
	// Logger receives per-invocation events. Defaults to NoOpLogger.
	Logger logging.Logger
	// TransportRetries is how many times a transport failure is retried at
	// the call site before it surfaces as a SpecialistError.
	TransportRetries int
	// RetryBackoff is the base delay between transport retries.
	RetryBackoff time.Duration
}

// Specialist wraps one fixed role (instructions plus a declared output
// shape) around a completion client bound to the specialist model tier.
// Invocations are cache-checked and recorded on the shared monitor; a cache
// hit is recorded as a distinct zero-duration event so the final metrics can
// tell hits from real invocations. A Specialist has no mutable state of its
// own and is safe for concurrent use.
type Specialist struct {
	name         string
	instructions string
	client       model.Client
	cache        *Cache
	monitor      *Monitor
	logger       logging.Logger
	retries      int
	backoff      time.Duration
}

// NewSpecialist constructs a specialist with the given identity and fixed
// instructions. Cache and monitor are required; both are owned by the
// enclosing coordinator.
func NewSpecialist(
	name, instructions string,
	client model.Client,
	cache *Cache,
	monitor *Monitor,
	optFns ...func(o *SpecialistOptions),
) *Specialist {
	opts := SpecialistOptions{
		Logger:           logging.NoOpLogger{},
		TransportRetries: 2,
		RetryBackoff:     200 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Specialist{
		name:         name,
		instructions: instructions,
		client:       client,
		cache:        cache,
		monitor:      monitor,
		logger:       opts.Logger,
		retries:      opts.TransportRetries,
		backoff:      opts.RetryBackoff,
	}
}

// Name returns the specialist's identity used for caching and metrics.
func (s *Specialist) Name() string { return s.name }

// Invoke sends the task prompt plus serialized payload to the completion
// backend and returns the raw text output. The payload addresses the cache;
// identical payloads never trigger duplicate model calls, including
// concurrently (single-flight). Transport failures are retried a small fixed
// number of times, then surfaced as *SpecialistError. Invoke never mutates
// caller state.
func (s *Specialist) Invoke(ctx context.Context, task string, payload any) (string, error) {
	text, cached, err := s.cache.GetOrCompute(ctx, s.name, payload, func(ctx context.Context) (string, error) {
		return s.complete(ctx, task, payload)
	})
	if err != nil {
		s.logger.Warn("specialist.invoke.failed", "specialist", s.name, "error", err.Error())
		return "", &SpecialistError{Specialist: s.name, Err: err}
	}
	if cached {
		s.logger.Debug("specialist.invoke.cached", "specialist", s.name)
	}
	return text, nil
}

// complete performs the real model call with bounded retries on transport
// failures and records the timed invocation on the monitor.
func (s *Specialist) complete(ctx context.Context, task string, payload any) (string, error) {
	prompt, err := renderPrompt(task, payload)
	if err != nil {
		return "", err
	}

	req := model.Request{
		Instructions: s.instructions,
		Messages:     []model.Message{model.UserMessage(prompt)},
	}

	start := time.Now()
	var resp *model.Response
	for attempt := 0; ; attempt++ {
		resp, err = s.client.Complete(ctx, req)
		if err == nil {
			break
		}
		if !isTransport(err) || attempt >= s.retries {
			return "", err
		}
		s.logger.Warn("specialist.invoke.retry",
			"specialist", s.name,
			"attempt", attempt+1,
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
	dur := time.Since(start)

	s.monitor.RecordCall(s.name, dur)
	s.logger.Info("specialist.invoke.done",
		"specialist", s.name,
		"duration_ms", dur.Milliseconds(),
	)
	return resp.Text, nil
}

// renderPrompt joins the task text with the indented JSON form of the
// payload, mirroring what the cache canonicalizes over.
func renderPrompt(task string, payload any) (string, error) {
	if payload == nil {
		return task, nil
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize payload: %w", err)
	}
	return task + "\n" + string(data), nil
}

func isTransport(err error) bool {
	var te *model.TransportError
	return errors.As(err, &te)
}
