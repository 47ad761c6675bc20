package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scene-studio/internal/config"
	"scene-studio/internal/env"
	"scene-studio/internal/generate"
	"scene-studio/internal/llm"
	"scene-studio/internal/logger"
	"scene-studio/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Scene Studio turns plain-language descriptions into live 3D scenes",
	Long: `Scene Studio opens a window with a rotating cube and a chat bar. Describe a scene and
the configured model writes a scene script for it, which is rendered and animated live.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.log.Sync() //nolint:errcheck
		return runWindow(app)
	},
}

// app is everything both the window and the server need.
type app struct {
	prefs   config.Prefs
	log     *zap.Logger
	metrics *metrics.Metrics
	gen     *generate.Client
}

// setup loads .env, the preferences file, environment overrides and flags, in that order
// of increasing precedence, and builds the generation client.
func setup(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	envPath, _ := flags.GetString("env")
	if err := env.Load(envPath); err != nil {
		return nil, err
	}
	path, _ := flags.GetString("config")
	prefs, loadErr := config.LoadFile(path)
	prefs, err := config.ApplyEnv(prefs, nil)
	if err != nil {
		return nil, err
	}
	if v, _ := flags.GetString("provider"); v != "" {
		prefs.Provider = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		prefs.Model = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		prefs.LogLevel = v
	}
	if flags.Lookup("addr") != nil {
		if v, _ := flags.GetString("addr"); v != "" {
			prefs.HTTPAddr = v
		}
	}

	log, err := logger.New(prefs.LogLevel)
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		log.Warn("using default preferences", zap.Error(loadErr))
	}

	model, err := llm.New(prefs.LLMOptions())
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	gen := generate.New(model,
		generate.WithParams(llm.Params{Model: model.Model()}),
		generate.WithLogger(log),
		generate.WithMetrics(m),
		generate.WithRetries(prefs.MaxRetries),
		generate.WithAttemptTimeout(prefs.AttemptTimeout.Std()),
		generate.WithBaseDelay(prefs.BaseDelay.Std()),
	)
	log.Info("generation configured",
		zap.String("provider", model.Name()),
		zap.String("model", model.Model()),
		zap.Int("max_retries", prefs.MaxRetries),
		zap.Duration("attempt_timeout", prefs.AttemptTimeout.Std()))
	return &app{prefs: prefs, log: log, metrics: m, gen: gen}, nil
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.Path, "Preferences file")
	pf.String("env", ".env", "File with API keys (KEY=VALUE lines)")
	pf.String("provider", "", "Model provider: siliconflow, openai, groq, cursor or ollama")
	pf.String("model", "", "Model name sent to the provider")
	pf.String("log-level", "", "Diagnostics level: debug, info, warn or error")
	rootCmd.Flags().String("addr", "", "Also serve the HTTP API on this address (e.g. :8080)")
}
