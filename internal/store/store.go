package store

import (
	"context"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// Store is everything the server and CLI need from persistence: the
// experiment collection plus the content items experiments point at.
type Store interface {
	experiment.Repository
	experiment.ContentStore

	CountExperiments(ctx context.Context) (int, error)
	SizeBytes(ctx context.Context) (int64, error)
	CreateContent(ctx context.Context, c experiment.Content) (*experiment.Content, error)
	ListContent(ctx context.Context) ([]*experiment.Content, error)

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
