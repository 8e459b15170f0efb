package experiment_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// memRepo keeps the collection as the JSON bytes of the last save, which
// lets tests compare persisted state byte for byte.
type memRepo struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	failErr error
}

func (r *memRepo) Load(context.Context) ([]*experiment.Experiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil, nil
	}
	var out []*experiment.Experiment
	if err := json.Unmarshal(r.data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memRepo) Save(_ context.Context, experiments []*experiment.Experiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failErr != nil {
		return r.failErr
	}
	data, err := json.Marshal(experiments)
	if err != nil {
		return err
	}
	r.data = data
	r.saves++
	return nil
}

func (r *memRepo) snapshot() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...)
}

type recordingNotifier struct {
	events []experiment.WinnerEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev experiment.WinnerEvent) {
	n.events = append(n.events, ev)
}

type contentMap map[string]*experiment.Content

func (m contentMap) GetContent(_ context.Context, id string) (*experiment.Content, error) {
	c, ok := m[id]
	if !ok {
		return nil, experiment.ErrNotFound
	}
	return c, nil
}

var errDiskFull = errors.New("disk full")

// fixedClock starts at a known instant and only moves when told to.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time           { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func newEngine(t *testing.T, repo *memRepo, opts ...experiment.Option) *experiment.Engine {
	t.Helper()
	e, err := experiment.New(context.Background(), repo, opts...)
	require.NoError(t, err)
	return e
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func twoVariants() []experiment.VariantDefinition {
	return []experiment.VariantDefinition{
		{Name: "A", Type: experiment.TypeTitle, Value: "Ship faster"},
		{Name: "B", Type: experiment.TypeTitle, Value: "Build better"},
	}
}

func createTwoVariant(t *testing.T, e *experiment.Engine) *experiment.Experiment {
	t.Helper()
	exp, err := e.Create(context.Background(), experiment.Definition{
		Name:     "hero title",
		Variants: twoVariants(),
	})
	require.NoError(t, err)
	return exp
}

func recordViews(t *testing.T, e *experiment.Engine, expID, variantID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.Equal(t, experiment.Recorded, e.RecordView(context.Background(), expID, variantID))
	}
}
