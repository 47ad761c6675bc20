package studio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/fallback"
	"scene-studio/internal/generate"
	"scene-studio/internal/llm"
	"scene-studio/internal/logger"
	"scene-studio/internal/script"
	"scene-studio/internal/session"
	"scene-studio/internal/session/sessiontest"
)

// gatedGenerator answers with a fixed reply once release is closed.
type gatedGenerator struct {
	mu      sync.Mutex
	model   string
	reply   string
	release chan struct{}
	seen    [][]llm.Message
}

func newGenerator(reply string) *gatedGenerator {
	g := &gatedGenerator{reply: reply, release: make(chan struct{})}
	close(g.release)
	return g
}

func (g *gatedGenerator) Generate(ctx context.Context, turns []llm.Message) generate.Result {
	g.mu.Lock()
	g.seen = append(g.seen, turns)
	g.mu.Unlock()
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	explanation, code, _ := generate.Extract(g.reply)
	return generate.Result{Explanation: explanation, Unit: script.Normalize(code), Attempts: 1}
}

func (g *gatedGenerator) Model() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.model
}

func (g *gatedGenerator) SetModel(m string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = m
}

func newStudio(t *testing.T, gen Generator, opts ...Option) (*Studio, *session.Session) {
	t.Helper()
	sess, err := session.Start(sessiontest.NewSurface(640, 480))
	require.NoError(t, err)
	s := New(gen, sess, opts...)
	t.Cleanup(s.Close)
	return s, sess
}

// pumpUntil pumps until a result is applied or a second passes.
func pumpUntil(t *testing.T, s *Studio) {
	t.Helper()
	require.Eventually(t, s.Pump, time.Second, time.Millisecond)
}

func TestConversationStartsWithWelcome(t *testing.T) {
	s, _ := newStudio(t, newGenerator(""))
	assert.Equal(t, []llm.Message{llm.Assistant(Welcome)}, s.Conversation())
	assert.Equal(t, "idle", s.Status())
	assert.False(t, s.Pump())
}

func TestSubmitAppliesResultOnPump(t *testing.T) {
	gen := newGenerator("Two spheres.\n```\nadd a sphere\nadd b sphere position=2,0,0\n```")
	s, sess := newStudio(t, gen)

	require.NoError(t, s.Submit("two spheres"))
	pumpUntil(t, s)

	assert.False(t, s.Busy())
	assert.Equal(t, 2, sess.Counts().Meshes)
	assert.NotNil(t, sess.Root().Find("b"))
	assert.Equal(t, []llm.Message{
		llm.Assistant(Welcome),
		llm.User("two spheres"),
		llm.Assistant("Two spheres."),
	}, s.Conversation())
	assert.Contains(t, s.LastCode(), "add b sphere")

	require.Len(t, gen.seen, 1)
	assert.Equal(t, []llm.Message{llm.Assistant(Welcome), llm.User("two spheres")}, gen.seen[0])
}

func TestSubmitWhileBusy(t *testing.T) {
	gen := &gatedGenerator{reply: "ok", release: make(chan struct{})}
	s, _ := newStudio(t, gen)

	require.NoError(t, s.Submit("first"))
	assert.ErrorIs(t, s.Submit("second"), ErrBusy)
	assert.Equal(t, "generating", s.Status())

	s.Line("third")
	last := s.Conversation()[len(s.Conversation())-1]
	assert.Equal(t, llm.RoleSystem, last.Role)

	close(gen.release)
	pumpUntil(t, s)
	assert.NoError(t, s.Submit("fourth"))
}

func TestFailingUnitAddsSystemTurn(t *testing.T) {
	gen := newGenerator("Oops.\n```\nmaterial ghost color=red\n```")
	s, sess := newStudio(t, gen)

	require.NoError(t, s.Submit("break it"))
	pumpUntil(t, s)

	turns := s.Conversation()
	last := turns[len(turns)-1]
	assert.Equal(t, llm.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "Error executing the generated code")
	assert.Contains(t, sess.LastError(), "ghost")
}

func TestCommands(t *testing.T) {
	gen := newGenerator("")
	lib, err := fallback.Load([]byte("- explanation: A lone torus.\n  code: add ring torus\n"))
	require.NoError(t, err)
	tr := logger.NewTranscript("")
	s, sess := newStudio(t, gen, WithFallbacks(lib), WithTranscript(tr))

	lastTurn := func() llm.Message {
		turns := s.Conversation()
		return turns[len(turns)-1]
	}

	s.Line("cmd code")
	assert.Equal(t, llm.System("No scene has been applied yet."), lastTurn())

	s.Line("cmd fallback")
	assert.NotNil(t, sess.Root().Find("ring"))
	assert.Equal(t, llm.Assistant("A lone torus."), lastTurn())

	s.Line("cmd code")
	assert.Contains(t, lastTurn().Content, "add ring torus")

	s.Line("cmd error")
	assert.Equal(t, llm.System("No errors."), lastTurn())

	s.Line("cmd model deepseek-ai/DeepSeek-V3")
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", gen.Model())
	s.Line("cmd model")
	assert.Equal(t, llm.System("Model: deepseek-ai/DeepSeek-V3"), lastTurn())

	s.Line("cmd reset")
	assert.NotNil(t, sess.Root().Find("cube"))
	assert.Equal(t, script.DefaultSource(), s.LastCode())

	s.Line("cmd history --clear")
	assert.Equal(t, []llm.Message{llm.Assistant(Welcome), llm.System("History cleared.")}, s.Conversation())
	s.Line("cmd history")
	assert.Equal(t, llm.System("2 turns."), lastTurn())

	s.Line("cmd nope")
	assert.Contains(t, lastTurn().Content, "unknown command")

	s.Line(`cmd model "open`)
	assert.Equal(t, llm.RoleSystem, lastTurn().Role)

	assert.NotEmpty(t, tr.Lines())
}

func TestCloseAbandonsPendingRequest(t *testing.T) {
	gen := &gatedGenerator{reply: "never", release: make(chan struct{})}
	s, _ := newStudio(t, gen)
	require.NoError(t, s.Submit("slow"))
	s.Close()
	assert.False(t, s.Pump())
}
