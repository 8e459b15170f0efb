package experiment

import (
	"context"
	"time"
)

// Repository persists the whole experiment collection. Save always receives
// the complete, ordered list; implementations overwrite what they had.
type Repository interface {
	Load(ctx context.Context) ([]*Experiment, error)
	Save(ctx context.Context, experiments []*Experiment) error
}

// Content is the externally owned item an experiment refers to.
type Content struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Hashtags     string    `json:"hashtags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContentStore is a read-only lookup used to seed variant generators.
type ContentStore interface {
	GetContent(ctx context.Context, id string) (*Content, error)
}

// WinnerEvent is emitted once, when an experiment completes with a winner.
type WinnerEvent struct {
	ExperimentID   string
	ExperimentName string
	Winner         Variant
	Confidence     float64
	At             time.Time
}

// Notifier receives winner events. Delivery is fire-and-forget: the engine
// neither waits for nor retries it.
type Notifier interface {
	Notify(ctx context.Context, event WinnerEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, WinnerEvent) {}
