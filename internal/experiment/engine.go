package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMinSampleSize   = 100
	DefaultWinnerThreshold = 95.0

	// splitTolerance is how far a caller-supplied split may drift from 100
	// before creation logs a warning.
	splitTolerance = 0.01
)

// Engine owns the experiment collection. All methods are serialized; the
// engine is the only writer of the collection it was loaded with.
type Engine struct {
	mu sync.Mutex

	repo     Repository
	content  ContentStore
	notifier Notifier
	scorer   Scorer
	logger   *zap.Logger
	now      func() time.Time
	random   func() float64

	minSampleSize  int
	threshold      float64
	evaluateOnView bool

	experiments []*Experiment
	active      map[string]*Experiment
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandom sets the uniform [0,1) source used for traffic draws.
func WithRandom(r func() float64) Option {
	return func(e *Engine) { e.random = r }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithContentStore(cs ContentStore) Option {
	return func(e *Engine) { e.content = cs }
}

func WithScorer(s Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithMinSampleSize sets the views every variant needs before a winner check
// can decide anything.
func WithMinSampleSize(n int) Option {
	return func(e *Engine) { e.minSampleSize = n }
}

func WithWinnerThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// WithEvaluateOnView makes RecordView run the winner check too. Off by
// default: only engagement events trigger it.
func WithEvaluateOnView(on bool) Option {
	return func(e *Engine) { e.evaluateOnView = on }
}

// New loads the persisted collection and returns an engine over it.
func New(ctx context.Context, repo Repository, opts ...Option) (*Engine, error) {
	e := &Engine{
		repo:          repo,
		notifier:      nopNotifier{},
		scorer:        LinearScorer{},
		logger:        zap.NewNop(),
		now:           time.Now,
		random:        rand.Float64,
		minSampleSize: DefaultMinSampleSize,
		threshold:     DefaultWinnerThreshold,
		active:        make(map[string]*Experiment),
	}
	for _, opt := range opts {
		opt(e)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load experiments: %w", err)
	}
	e.experiments = loaded
	for _, exp := range loaded {
		if exp.Status == StatusActive {
			e.active[exp.ID] = exp
		}
	}

	e.logger.Debug("experiment engine ready",
		zap.Int("experiments", len(e.experiments)),
		zap.Int("active", len(e.active)))
	return e, nil
}

// Create validates def, stores a new active experiment and returns a copy of it.
func (e *Engine) Create(ctx context.Context, def Definition) (*Experiment, error) {
	if len(def.Variants) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewVariants, len(def.Variants))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	exp := &Experiment{
		ID:          uuid.NewString(),
		Name:        def.Name,
		Description: def.Description,
		ContentID:   def.ContentID,
		Status:      StatusActive,
		StartDate:   e.now(),
		Metrics:     append([]string(nil), def.Metrics...),
	}
	if len(exp.Metrics) == 0 {
		exp.Metrics = append([]string(nil), DefaultMetrics...)
	}

	exp.Variants = make([]Variant, len(def.Variants))
	for i, d := range def.Variants {
		exp.Variants[i] = Variant{
			ID:          uuid.NewString(),
			Index:       i,
			Name:        d.Name,
			Type:        d.Type,
			Value:       d.Value,
			Description: d.Description,
			Attributes:  d.Attributes,
		}.clone()
	}

	if def.TrafficSplit == nil {
		exp.TrafficSplit = EvenSplit(len(exp.Variants))
	} else {
		exp.TrafficSplit = append([]float64(nil), def.TrafficSplit...)
		e.checkSplit(exp)
	}

	e.experiments = append(e.experiments, exp)
	e.active[exp.ID] = exp

	if err := e.persist(ctx); err != nil {
		e.experiments = e.experiments[:len(e.experiments)-1]
		delete(e.active, exp.ID)
		return nil, err
	}

	names := make([]string, len(exp.Variants))
	for i, v := range exp.Variants {
		names[i] = v.Name
	}
	e.logger.Info("experiment created",
		zap.String("id", exp.ID),
		zap.String("name", exp.Name),
		zap.String("variants", strings.Join(names, ", ")))

	return exp.Clone(), nil
}

func (e *Engine) checkSplit(exp *Experiment) {
	var sum float64
	for _, share := range exp.TrafficSplit {
		sum += share
	}
	if len(exp.TrafficSplit) != len(exp.Variants) || math.Abs(sum-100) > splitTolerance {
		e.logger.Warn("traffic split does not cover 100% of traffic",
			zap.String("experiment", exp.Name),
			zap.Int("shares", len(exp.TrafficSplit)),
			zap.Int("variants", len(exp.Variants)),
			zap.Float64("sum", sum))
	}
}

// AutoCreate builds a variant set of the given kind from a content item and
// creates an experiment for it. An empty kind means TypeTitle.
func (e *Engine) AutoCreate(ctx context.Context, contentID string, kind VariantType) (*Experiment, error) {
	if e.content == nil {
		return nil, ErrNoContentStore
	}
	if kind == "" {
		kind = TypeTitle
	}

	c, err := e.content.GetContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %w", contentID, err)
	}

	variants, err := GenerateVariants(kind, c)
	if err != nil {
		return nil, err
	}

	e.logger.Info("auto-creating experiment", zap.String("content", c.Title), zap.String("kind", string(kind)))

	return e.Create(ctx, Definition{
		Name:         fmt.Sprintf("Auto Test: %s for %q", kind, c.Title),
		Description:  fmt.Sprintf("Compare %s variants to find the best performing version", kind),
		ContentID:    c.ID,
		Variants:     variants,
		Metrics:      []string{"views", "likes", "engagement"},
		TrafficSplit: EvenSplit(len(variants)),
	})
}

// Get returns a copy of the experiment with the given id.
func (e *Engine) Get(id string) (*Experiment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp := e.find(id)
	if exp == nil {
		return nil, false
	}
	return exp.Clone(), true
}

// List returns copies of all experiments in creation order.
func (e *Engine) List() []*Experiment {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Experiment, len(e.experiments))
	for i, exp := range e.experiments {
		out[i] = exp.Clone()
	}
	return out
}

// Active returns copies of the experiments still collecting data.
func (e *Engine) Active() []*Experiment {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []*Experiment
	for _, exp := range e.experiments {
		if exp.Status == StatusActive {
			out = append(out, exp.Clone())
		}
	}
	return out
}

// Stop ends an active experiment without a winner. It returns false when the
// experiment does not exist or is already terminal.
func (e *Engine) Stop(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp := e.find(id)
	if exp == nil || exp.Status.Terminal() {
		return false
	}

	end := e.now()
	exp.Status = StatusStopped
	exp.EndDate = &end
	delete(e.active, exp.ID)

	e.persistQuietly(ctx, "stop")
	e.logger.Info("experiment stopped", zap.String("id", exp.ID), zap.String("name", exp.Name))
	return true
}

// Delete removes an experiment. Unknown ids are ignored.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]*Experiment, 0, len(e.experiments))
	for _, exp := range e.experiments {
		if exp.ID != id {
			kept = append(kept, exp)
		}
	}
	if len(kept) == len(e.experiments) {
		return nil
	}

	previous := e.experiments
	e.experiments = kept
	if err := e.persist(ctx); err != nil {
		e.experiments = previous
		return err
	}
	delete(e.active, id)
	return nil
}

func (e *Engine) find(id string) *Experiment {
	for _, exp := range e.experiments {
		if exp.ID == id {
			return exp
		}
	}
	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.repo.Save(ctx, e.experiments); err != nil {
		return fmt.Errorf("failed to save experiments: %w", err)
	}
	return nil
}

// persistQuietly saves on paths that must not fail their caller.
func (e *Engine) persistQuietly(ctx context.Context, op string) {
	if err := e.persist(ctx); err != nil {
		e.logger.Warn("persisting experiments failed", zap.String("op", op), zap.Error(err))
	}
}
