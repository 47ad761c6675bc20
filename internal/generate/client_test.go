package generate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/fallback"
	"scene-studio/internal/llm"
	"scene-studio/internal/metrics"
	"scene-studio/internal/script"
)

// scriptedLLM replies from a list, one entry per call; the last entry repeats.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []func(ctx context.Context) (string, error)
	reqs    []llm.Request
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	i := len(s.reqs)
	s.reqs = append(s.reqs, req)
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	fn := s.replies[i]
	s.mu.Unlock()
	return fn(ctx)
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func reply(text string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return text, nil }
}

func fail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

// hang blocks until the attempt context ends, like a request that never answers.
func hang(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func firstFallback(t *testing.T) *fallback.Library {
	t.Helper()
	return fallback.Default().With(func(int) int { return 0 })
}

func TestGenerateExtractsExplanationAndCode(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){
		reply("Here is a red box.\n```scene\nadd box box color=red\nlight sun directional\n```\nEnjoy!"),
	}}
	c := New(model)
	res := c.Generate(context.Background(), []llm.Message{llm.User("a red box")})

	assert.False(t, res.Fallback)
	assert.NoError(t, res.Cause)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Here is a red box.", res.Explanation)
	assert.Equal(t, "function sceneSetup(engine, scene, camera, renderer) {\nadd box box color=red\nlight sun directional\n}", res.Code())

	require.Equal(t, 1, model.calls())
	msgs := model.reqs[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.User("a red box"), msgs[1])
}

func TestGenerateKeepsTurnOrder(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){reply("ok")}}
	turns := []llm.Message{llm.User("one"), llm.Assistant("two"), llm.User("three")}
	New(model).Generate(context.Background(), turns)
	assert.Equal(t, turns, model.reqs[0].Messages[1:])
}

func TestGenerateWithoutCodeBlockUsesDefaultUnit(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){reply("  I can't draw that, sorry.  ")}}
	res := New(model).Generate(context.Background(), nil)
	assert.False(t, res.Fallback)
	assert.Equal(t, "I can't draw that, sorry.", res.Explanation)
	assert.Same(t, script.Default(), res.Unit)
}

func TestGenerateBadScriptUsesDefaultUnit(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){
		reply("Sure:\n```javascript\nconst cube = new THREE.Mesh(geometry, material);\n```"),
	}}
	res := New(model).Generate(context.Background(), nil)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Sure:", res.Explanation)
	assert.Same(t, script.Default(), res.Unit)
}

func TestGenerateAnonymousFunctionGetsName(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){
		reply("A sphere.\n```\nfunction (engine, scene) {\n  add s sphere\n}\n```"),
	}}
	res := New(model).Generate(context.Background(), nil)
	assert.Equal(t, "function sceneSetup(engine, scene) {\n  add s sphere\n}", res.Code())
}

func TestGenerateRetriesTimeoutsThenFallsBack(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){hang}}
	rec := &sleepRecorder{}
	m := metrics.New()
	c := New(model,
		WithAttemptTimeout(10*time.Millisecond),
		WithSleep(rec.sleep),
		WithFallbacks(firstFallback(t)),
		WithMetrics(m),
	)

	res := c.Generate(context.Background(), []llm.Message{llm.User("x")})

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Cause, ErrTimeout)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, model.calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.Equal(t, fallback.Default().Entries()[0].Explanation, res.Explanation)
	assert.NotEmpty(t, res.Code())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.GenerationAttempts.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationResults.WithLabelValues(metrics.ResultFallback)))
}

func TestGenerateRecoversAfterTimeout(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){
		fail(context.DeadlineExceeded),
		reply("Second time lucky.\n```\nadd a box\n```"),
	}}
	rec := &sleepRecorder{}
	res := New(model, WithSleep(rec.sleep)).Generate(context.Background(), nil)
	assert.False(t, res.Fallback)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want error
	}{
		"transport": {errors.New("connection refused"), ErrNetwork},
		"status":    {&llm.StatusError{Provider: "p", Code: 500, Status: "500 Internal Server Error"}, ErrNetwork},
		"decode":    {llm.ErrBadResponse, ErrMalformed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			model := &scriptedLLM{replies: []func(context.Context) (string, error){fail(tc.err)}}
			rec := &sleepRecorder{}
			res := New(model, WithSleep(rec.sleep)).Generate(context.Background(), nil)
			assert.True(t, res.Fallback)
			assert.ErrorIs(t, res.Cause, tc.want)
			assert.Equal(t, 1, model.calls())
			assert.Empty(t, rec.delays)
		})
	}
}

func TestGenerateEmptyReplyFallsBack(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){reply(" \n\t ")}}
	res := New(model).Generate(context.Background(), nil)
	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Cause, ErrMalformed)
}

func TestGenerateParentCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := &scriptedLLM{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) {
			cancel()
			return "", context.Canceled
		},
	}}
	res := New(model).Generate(ctx, nil)
	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Cause, ErrNetwork)
	assert.Equal(t, 1, model.calls())
}

type panickingLLM struct{}

func (panickingLLM) Complete(context.Context, llm.Request) (string, error) { panic("boom") }

func TestGenerateRecoversPanics(t *testing.T) {
	res := New(panickingLLM{}).Generate(context.Background(), nil)
	assert.True(t, res.Fallback)
	require.NotNil(t, res.Unit)
}

func TestGenerateNilModelFallsBack(t *testing.T) {
	res := New(nil).Generate(context.Background(), nil)
	assert.True(t, res.Fallback)
	assert.Zero(t, res.Attempts)
}

func TestGenerateSendsModelOverride(t *testing.T) {
	model := &scriptedLLM{replies: []func(context.Context) (string, error){reply("ok")}}
	c := New(model, WithParams(llm.Params{Temperature: 0.2}))
	c.SetModel("deepseek-ai/DeepSeek-V3")
	c.Generate(context.Background(), nil)
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", model.reqs[0].Params.Model)
	assert.Equal(t, 0.2, model.reqs[0].Params.Temperature)
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", c.Model())
}

func TestGenerateOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A torus.\n` + "```" + `\nadd ring torus\n` + "```" + `"}}]}`))
	}))
	defer srv.Close()

	chat := llm.NewChat(llm.Preset{Name: "test", URL: srv.URL}, "key")
	res := New(chat).Generate(context.Background(), []llm.Message{llm.User("a torus")})
	assert.False(t, res.Fallback)
	assert.Equal(t, "A torus.", res.Explanation)
	assert.Contains(t, res.Code(), "add ring torus")
}

func TestSleepContextHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
