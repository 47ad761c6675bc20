package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"scene-studio/internal/api"
	"scene-studio/internal/debug"
	"scene-studio/internal/graphics"
	"scene-studio/internal/logger"
	"scene-studio/internal/session"
	"scene-studio/internal/studio"
	"scene-studio/internal/terminal"
)

const (
	windowTitle  = "Scene Studio"
	windowWidth  = 1280
	windowHeight = 800
)

// runWindow opens the window and runs the studio until it is closed. Must run on the main
// goroutine; main locks it to its OS thread.
func runWindow(a *app) error {
	win := graphics.Open(windowTitle, windowWidth, windowHeight)
	defer win.Close()
	win.GridVisible = a.prefs.GridVisible

	sess, err := session.Start(win, session.WithLogger(a.log), session.WithMetrics(a.metrics))
	if err != nil {
		return err
	}
	defer sess.Stop()

	transcript := logger.NewTranscript(logger.TranscriptPath)
	st := studio.New(a.gen, sess, studio.WithTranscript(transcript), studio.WithLogger(a.log))
	defer st.Close()

	if a.prefs.HTTPAddr != "" {
		stop := serveBackground(a, a.prefs.HTTPAddr)
		defer stop()
	}

	term := terminal.New(transcript.Lines, st.Line)
	win.Pointer().Captured = term.UnderPointer
	dbg := debug.New(debug.Source{
		Status:    st.Status,
		LastError: sess.LastError,
		Counts:    sess.Counts,
	})
	dbg.SetShowFPS(a.prefs.ShowFPS)
	dbg.SetShowMemAlloc(a.prefs.ShowMemAlloc)

	win.Run(
		func() {
			term.Update()
			st.Pump()
		},
		func() {
			term.Draw()
			dbg.Draw()
		},
	)
	return nil
}

// serveBackground starts the HTTP API and returns a function that shuts it down.
func serveBackground(a *app, addr string) (stop func()) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(a.gen, a.metrics, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.log.Info("http api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http api stopped", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("http api shutdown incomplete", zap.Error(err))
			_ = srv.Close()
		}
	}
}
