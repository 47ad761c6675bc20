// Package studio runs the conversation: user lines become generation requests off the frame
// timeline, and finished results are applied to the session on it.
package studio

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"scene-studio/internal/commands"
	"scene-studio/internal/fallback"
	"scene-studio/internal/generate"
	"scene-studio/internal/llm"
	"scene-studio/internal/logger"
	"scene-studio/internal/script"
)

// Welcome is the assistant turn every conversation starts with.
const Welcome = "Welcome to the scene studio! Describe the 3D scene you want in plain language " +
	"and the AI will write a scene script for it and render it live."

// ErrBusy is returned by Submit while an earlier request is still being generated.
var ErrBusy = errors.New("studio: a request is already in flight")

// Generator produces scene units from conversations. *generate.Client implements it.
type Generator interface {
	Generate(ctx context.Context, turns []llm.Message) generate.Result
	Model() string
	SetModel(model string)
}

// Scene is the live session results are applied to. *session.Session implements it.
type Scene interface {
	Apply(u script.Unit) error
	LastError() string
}

// Studio holds one conversation bound to one scene.
type Studio struct {
	gen        Generator
	scene      Scene
	fallbacks  *fallback.Library
	transcript *logger.Transcript
	log        *zap.Logger
	cmds       *commands.Registry

	mu       sync.Mutex
	turns    []llm.Message
	busy     bool
	lastCode string

	results chan generate.Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Studio.
type Option func(*Studio)

// WithTranscript mirrors the conversation into t.
func WithTranscript(t *logger.Transcript) Option {
	return func(s *Studio) {
		if t != nil {
			s.transcript = t
		}
	}
}

// WithLogger sets the diagnostics logger. A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(s *Studio) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFallbacks sets the library "cmd fallback" draws from.
func WithFallbacks(l *fallback.Library) Option {
	return func(s *Studio) {
		if l != nil {
			s.fallbacks = l
		}
	}
}

// New returns a studio whose conversation holds only the welcome turn.
func New(gen Generator, scn Scene, opts ...Option) *Studio {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Studio{
		gen:        gen,
		scene:      scn,
		fallbacks:  fallback.Default(),
		transcript: logger.NewTranscript(""),
		log:        zap.NewNop(),
		results:    make(chan generate.Result, 1),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cmds = s.registry()
	s.appendTurn(llm.Assistant(Welcome))
	return s
}

// Line handles one line typed by the user: "cmd ..." lines run a command, anything else is
// submitted as a request. Command output and errors become system turns.
func (s *Studio) Line(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	args, isCmd, err := commands.Parse(line)
	if !isCmd {
		if err := s.Submit(line); err != nil {
			s.appendTurn(llm.System(err.Error()))
		}
		return
	}
	s.transcript.Log("> " + line)
	if err != nil {
		s.appendTurn(llm.System(err.Error()))
		return
	}
	out, err := s.cmds.Execute(args)
	switch {
	case err != nil:
		s.appendTurn(llm.System(err.Error()))
	case out != "":
		s.appendTurn(llm.System(out))
	}
}

// Submit adds text as a user turn and starts generating a reply in the background. The result
// is applied by a later Pump. It returns ErrBusy while another request is in flight.
func (s *Studio) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	s.appendTurn(llm.User(text))
	turns := s.Conversation()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.gen.Generate(s.ctx, turns)
		if s.ctx.Err() != nil {
			return
		}
		select {
		case s.results <- res:
		case <-s.ctx.Done():
		}
	}()
	return nil
}

// Pump applies a finished result, if there is one. Call it once per frame on the frame
// timeline. It reports whether a result was applied.
func (s *Studio) Pump() bool {
	select {
	case res := <-s.results:
		s.deliver(res)
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		return true
	default:
		return false
	}
}

func (s *Studio) deliver(res generate.Result) {
	if res.Fallback {
		s.log.Info("showing fallback scene", zap.Int("attempts", res.Attempts), zap.Error(res.Cause))
	}
	s.appendTurn(llm.Assistant(res.Explanation))
	s.apply(res.Unit, res.Code())
}

func (s *Studio) apply(u script.Unit, code string) {
	s.mu.Lock()
	s.lastCode = code
	s.mu.Unlock()
	if err := s.scene.Apply(u); err != nil {
		s.log.Warn("scene unit failed", zap.Error(err))
		s.appendTurn(llm.System("Error executing the generated code: " + err.Error()))
	}
}

// Busy reports whether a request is in flight.
func (s *Studio) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Status is a one-word summary for overlays.
func (s *Studio) Status() string {
	if s.Busy() {
		return "generating"
	}
	return "idle"
}

// Conversation returns a copy of every turn, oldest first.
func (s *Studio) Conversation() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.turns))
	copy(out, s.turns)
	return out
}

// LastCode returns the serialized form of the most recently applied unit.
func (s *Studio) LastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}

// Close abandons any request in flight and waits for its goroutine.
func (s *Studio) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Studio) appendTurn(m llm.Message) {
	s.mu.Lock()
	s.turns = append(s.turns, m)
	s.mu.Unlock()
	s.transcript.Log(fmt.Sprintf("%s: %s", m.Role, m.Content))
}

func (s *Studio) registry() *commands.Registry {
	r := commands.NewRegistry()
	r.Register("reset", "", nil, func([]string) (string, error) {
		s.apply(script.Default(), script.DefaultSource())
		return "Scene reset.", nil
	})
	r.Register("error", "", nil, func([]string) (string, error) {
		if msg := s.scene.LastError(); msg != "" {
			return "Last error: " + msg, nil
		}
		return "No errors.", nil
	})
	r.Register("code", "", nil, func([]string) (string, error) {
		if code := s.LastCode(); code != "" {
			return code, nil
		}
		return "No scene has been applied yet.", nil
	})
	r.Register("model", "[name]", nil, func(args []string) (string, error) {
		switch len(args) {
		case 0:
			if m := s.gen.Model(); m != "" {
				return "Model: " + m, nil
			}
			return "Model: provider default", nil
		case 1:
			s.gen.SetModel(args[0])
			return "Model set to " + args[0] + ".", nil
		}
		return "", errors.New("usage: cmd model [name]")
	})
	history := flag.NewFlagSet("history", flag.ContinueOnError)
	clearHistory := history.Bool("clear", false, "forget every turn but the welcome")
	r.Register("history", "[--clear]", history, func([]string) (string, error) {
		defer func() { *clearHistory = false }()
		if !*clearHistory {
			return fmt.Sprintf("%d turns.", len(s.Conversation())), nil
		}
		s.mu.Lock()
		s.turns = []llm.Message{llm.Assistant(Welcome)}
		s.mu.Unlock()
		s.transcript.Clear()
		return "History cleared.", nil
	})
	r.Register("fallback", "", nil, func([]string) (string, error) {
		e := s.fallbacks.Pick()
		s.appendTurn(llm.Assistant(e.Explanation))
		s.apply(e.Unit, e.Code)
		return "", nil
	})
	return r
}
