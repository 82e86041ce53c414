package service

import (
	"context"

	"goalTracker/internal/models/goal"
)

// Persister stores and restores the full goal list.
// persistence.Adapter is the production implementation.
type Persister interface {
	Save(ctx context.Context, goals []goal.Goal) error
	Load(ctx context.Context) []goal.Goal
}
