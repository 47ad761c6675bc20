// Package generate turns a conversation into a renderable scene unit: it asks the model,
// retries timed-out attempts, extracts the code block and falls back to a canned scene when
// nothing usable comes back.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scene-studio/internal/fallback"
	"scene-studio/internal/llm"
	"scene-studio/internal/metrics"
	"scene-studio/internal/primitives"
	"scene-studio/internal/script"
)

var (
	// ErrNetwork covers transport failures and non-2xx replies.
	ErrNetwork = errors.New("generation request failed")
	// ErrTimeout means every attempt ran out of time.
	ErrTimeout = errors.New("generation timed out")
	// ErrMalformed means a reply arrived but held nothing usable.
	ErrMalformed = errors.New("generation reply malformed")
)

// Defaults for a Client built without the matching options.
const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultAttemptTimeout bounds each request to the model.
	DefaultAttemptTimeout = 20 * time.Second
	// DefaultBaseDelay is multiplied by the retry number to get the backoff.
	DefaultBaseDelay = time.Second
)

// Result is always renderable: either the model's scene or a fallback entry.
type Result struct {
	Explanation string
	Unit        script.Unit
	// Fallback is set when Unit came from the fallback library.
	Fallback bool
	// Attempts is the number of remote attempts made.
	Attempts int
	// Cause is why the fallback was used. Nil when Fallback is false.
	Cause error
}

// Code returns the serialized unit, or "" when the unit has no source form.
func (r Result) Code() string {
	src, _ := script.Source(r.Unit)
	return src
}

// Client produces scene units from conversations.
type Client struct {
	llm            llm.Client
	mu             sync.Mutex
	params         llm.Params
	fallbacks      *fallback.Library
	prompt         string
	log            *zap.Logger
	metrics        *metrics.Metrics
	maxRetries     int
	attemptTimeout time.Duration
	baseDelay      time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithParams sets the sampling parameters sent with every attempt.
func WithParams(p llm.Params) Option { return func(c *Client) { c.params = p } }

// WithFallbacks replaces fallback.Default().
func WithFallbacks(l *fallback.Library) Option {
	return func(c *Client) {
		if l != nil {
			c.fallbacks = l
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records attempts and results.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithRetries sets how many timed-out attempts are retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithAttemptTimeout bounds each attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithBaseDelay sets the backoff unit: retry n waits n times this.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithCatalogue describes cat's shapes in the system prompt.
func WithCatalogue(cat *primitives.Catalogue) Option {
	return func(c *Client) { c.prompt = SystemPrompt(cat) }
}

// New returns a Client that asks model.
func New(model llm.Client, opts ...Option) *Client {
	c := &Client{
		llm:            model,
		fallbacks:      fallback.Default(),
		log:            zap.NewNop(),
		maxRetries:     DefaultMaxRetries,
		attemptTimeout: DefaultAttemptTimeout,
		baseDelay:      DefaultBaseDelay,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prompt == "" {
		c.prompt = SystemPrompt(nil)
	}
	return c
}

// SetModel changes the model named in later requests.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	c.params.Model = model
	c.mu.Unlock()
}

// Model returns the model named in requests, "" meaning the provider default.
func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Model
}

// Generate asks for a scene for turns, oldest first. It never fails: any error, timeout or
// unusable reply yields a fallback result.
func (c *Client) Generate(ctx context.Context, turns []llm.Message) (res Result) {
	start := time.Now()
	log := c.log.With(zap.String("request_id", uuid.NewString()))
	attempts := 0
	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", zap.Any("panic", r))
			res = c.fallback(attempts, fmt.Errorf("%w: %v", ErrMalformed, r))
		}
		c.metrics.Result(res.Fallback, time.Since(start).Seconds())
		log.Info("generation finished",
			zap.Bool("fallback", res.Fallback),
			zap.Int("attempts", res.Attempts),
			zap.Duration("elapsed", time.Since(start)))
	}()

	if c.llm == nil {
		return c.fallback(0, fmt.Errorf("%w: no model configured", ErrNetwork))
	}
	msgs := make([]llm.Message, 0, len(turns)+1)
	msgs = append(msgs, llm.System(c.prompt))
	msgs = append(msgs, turns...)

	reply, n, err := c.request(ctx, log, msgs)
	attempts = n
	if err != nil {
		log.Warn("generation failed, using fallback", zap.Error(err))
		return c.fallback(attempts, err)
	}
	if strings.TrimSpace(reply) == "" {
		log.Warn("empty reply, using fallback")
		return c.fallback(attempts, fmt.Errorf("%w: empty reply", ErrMalformed))
	}

	explanation, code, found := Extract(reply)
	var payload any
	if found {
		payload = code
	} else {
		log.Debug("reply has no code block, using the default scene")
	}
	unit, nerr := script.NormalizeErr(payload)
	if nerr != nil {
		log.Debug("scene script rejected, using the default scene", zap.Error(nerr))
	}
	return Result{Explanation: explanation, Unit: unit, Attempts: attempts}
}

// request runs the attempt loop. Only timeouts are retried.
func (c *Client) request(ctx context.Context, log *zap.Logger, msgs []llm.Message) (string, int, error) {
	c.mu.Lock()
	req := llm.Request{Messages: msgs, Params: c.params}
	c.mu.Unlock()
	total := c.maxRetries + 1
	for attempt := 1; ; attempt++ {
		actx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		reply, err := c.llm.Complete(actx, req)
		timedOut := err != nil && ctx.Err() == nil &&
			(errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded))
		cancel()

		switch {
		case err == nil:
			c.metrics.Attempt("ok")
			return reply, attempt, nil
		case !timedOut:
			c.metrics.Attempt("error")
			return "", attempt, classify(ctx, err)
		}
		c.metrics.Attempt("timeout")
		log.Warn("attempt timed out", zap.Int("attempt", attempt), zap.Int("of", total))
		if attempt >= total {
			return "", attempt, fmt.Errorf("%w after %d attempts", ErrTimeout, attempt)
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.baseDelay); err != nil {
			return "", attempt, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, llm.ErrBadResponse):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func (c *Client) fallback(attempts int, cause error) Result {
	e := c.fallbacks.Pick()
	return Result{
		Explanation: e.Explanation,
		Unit:        e.Unit,
		Fallback:    true,
		Attempts:    attempts,
		Cause:       cause,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
