// Package api exposes generation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"scene-studio/internal/generate"
	"scene-studio/internal/llm"
	"scene-studio/internal/metrics"
)

// maxBody bounds a request body.
const maxBody = 1 << 20

// Generator answers a conversation with a scene. *generate.Client implements it.
type Generator interface {
	Generate(ctx context.Context, turns []llm.Message) generate.Result
}

// GenerateRequest is the POST /api/generate body.
type GenerateRequest struct {
	Messages []llm.Message `json:"messages"`
}

// GenerateResponse carries the explanation and the serialized scene unit.
type GenerateResponse struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Fallback bool   `json:"fallback,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles the HTTP routes.
type Server struct {
	Generator Generator
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// NewHandler returns the router: POST /api/generate, GET /healthz and, when m is not nil,
// GET /metrics.
func NewHandler(gen Generator, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{Generator: gen, Metrics: m, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Post("/api/generate", s.Generate)
	return r
}

// Generate handles POST /api/generate. Generation itself never fails, so every well-formed
// request gets a 200 with a renderable scene.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	for _, m := range body.Messages {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid role " + string(m.Role)})
			return
		}
	}

	start := time.Now()
	res := s.Generator.Generate(r.Context(), body.Messages)
	s.Log.Info("generate request served",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("turns", len(body.Messages)),
		zap.Bool("fallback", res.Fallback),
		zap.Duration("elapsed", time.Since(start)))

	writeJSON(w, http.StatusOK, GenerateResponse{
		Message:  res.Explanation,
		Code:     res.Code(),
		Fallback: res.Fallback,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
