// Package config loads clip-goat settings from CG_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// Prefix is prepended to every variable name, e.g. CG_HTTP_PORT.
const Prefix = "CG_"

// Config aggregates all configuration sections. Nested structs are tagged
// with envPrefix so their fields read e.g. CG_ENGINE_SCORER.
type Config struct {
	// DBPath is the SQLite file holding experiments and content.
	DBPath string `env:"DB_PATH" envDefault:"./cg.db"`

	HTTP   HTTP   `envPrefix:"HTTP_"`
	Log    Logger `envPrefix:"LOG_"`
	Engine Engine `envPrefix:"ENGINE_"`
	Notify Notify `envPrefix:"NOTIFY_"`
}

type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
}

// Engine tunes winner detection.
type Engine struct {
	// MinSampleSize is the number of views every variant needs before a
	// winner can be declared.
	MinSampleSize   int     `env:"MIN_SAMPLE_SIZE" envDefault:"100"`
	WinnerThreshold float64 `env:"WINNER_THRESHOLD" envDefault:"95"`
	// EvaluateOnView re-runs the winner check after every recorded view, not
	// only after engagement events.
	EvaluateOnView bool   `env:"EVALUATE_ON_VIEW" envDefault:"false"`
	Scorer         string `env:"SCORER" envDefault:"linear"`
}

// Notify configures where winner announcements go. An empty WebhookURL
// disables the webhook; winners are always logged.
type Notify struct {
	WebhookURL string        `env:"WEBHOOK_URL"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Load reads configuration from the environment. Unset variables take their
// defaults; malformed values and out-of-range settings return an error.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Engine.MinSampleSize < 1 {
		return fmt.Errorf("%sENGINE_MIN_SAMPLE_SIZE must be at least 1, got %d", Prefix, c.Engine.MinSampleSize)
	}
	if c.Engine.WinnerThreshold <= 0 || c.Engine.WinnerThreshold > 100 {
		return fmt.Errorf("%sENGINE_WINNER_THRESHOLD must be in (0, 100], got %v", Prefix, c.Engine.WinnerThreshold)
	}
	if _, ok := experiment.ScorerByName(c.Engine.Scorer); !ok {
		return fmt.Errorf("%sENGINE_SCORER must be linear or ztest, got %q", Prefix, c.Engine.Scorer)
	}
	return nil
}

// Options turns the engine section into experiment.Engine options.
func (e Engine) Options() []experiment.Option {
	scorer, ok := experiment.ScorerByName(e.Scorer)
	if !ok {
		scorer = experiment.LinearScorer{}
	}
	return []experiment.Option{
		experiment.WithMinSampleSize(e.MinSampleSize),
		experiment.WithWinnerThreshold(e.WinnerThreshold),
		experiment.WithEvaluateOnView(e.EvaluateOnView),
		experiment.WithScorer(scorer),
	}
}
