package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	repo "goalTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultKey = "goals"

const currentVersion = 1

var (
	ErrNoData  = errors.New("persistence: no data stored")
	ErrCorrupt = errors.New("persistence: corrupt data")
)

// Slot is a durable byte store addressed by key. Get returns
// repository.ErrNotFound for a key that was never set.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LoadResult is either a decoded list or the reason there is none.
type LoadResult struct {
	Goals []goal.Goal
	Err   error
}

func (r LoadResult) OK() bool {
	return r.Err == nil
}

type Adapter struct {
	slot Slot
	key  string
}

func New(slot Slot, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{slot: slot, key: key}
}

func (a *Adapter) Key() string {
	return a.key
}

type envelope struct {
	Version int         `json:"version"`
	Goals   []goal.Goal `json:"goals"`
}

// Save writes the whole list under the adapter key. Failures are logged and
// returned; the caller's slice is never modified.
func (a *Adapter) Save(ctx context.Context, goals []goal.Goal) error {
	if goals == nil {
		goals = []goal.Goal{}
	}

	b, err := Encode(goals)
	if err != nil {
		logger.Error("Persistence: failed to encode goals", err, zap.String("key", a.key))
		return err
	}

	if err := a.slot.Set(ctx, a.key, b); err != nil {
		logger.Error("Persistence: failed to write goals", err,
			zap.String("key", a.key),
			zap.Int("count", len(goals)))
		return fmt.Errorf("write slot %s: %w", a.key, err)
	}

	logger.Debug("Persistence: goals saved", zap.String("key", a.key), zap.Int("count", len(goals)))
	return nil
}

// Decode reads and decodes the stored list, reporting why it could not.
func (a *Adapter) Decode(ctx context.Context) LoadResult {
	b, err := a.slot.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoadResult{Err: ErrNoData}
		}
		return LoadResult{Err: fmt.Errorf("read slot %s: %w", a.key, err)}
	}

	goals, err := Decode(b)
	if err != nil {
		return LoadResult{Err: err}
	}
	return LoadResult{Goals: goals}
}

// Load returns the stored list, or an empty list when nothing usable is
// stored. It never returns a partial list and never fails.
func (a *Adapter) Load(ctx context.Context) []goal.Goal {
	res := a.Decode(ctx)
	switch {
	case res.OK():
		return res.Goals
	case errors.Is(res.Err, ErrNoData):
		logger.Info("Persistence: nothing stored yet", zap.String("key", a.key))
	default:
		logger.Warn("Persistence: discarding unreadable goals",
			zap.String("key", a.key),
			zap.Error(res.Err))
	}
	return []goal.Goal{}
}

func Encode(goals []goal.Goal) ([]byte, error) {
	b, err := json.Marshal(envelope{Version: currentVersion, Goals: goals})
	if err != nil {
		return nil, fmt.Errorf("encode goals: %w", err)
	}
	return b, nil
}

// Decode accepts the versioned envelope and the bare array of records.
func Decode(b []byte) ([]goal.Goal, error) {
	var goals []goal.Goal

	var probe json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	switch firstToken(probe) {
	case '[':
		if err := json.Unmarshal(probe, &goals); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(probe, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if env.Version != currentVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, env.Version)
		}
		goals = env.Goals
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrCorrupt)
	}

	if goals == nil {
		goals = []goal.Goal{}
	}

	seen := make(map[uuid.UUID]struct{}, len(goals))
	for i := range goals {
		id := goals[i].ID
		if id == uuid.Nil {
			return nil, fmt.Errorf("%w: goal at %d has no id", ErrCorrupt, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorrupt, id)
		}
		seen[id] = struct{}{}
		goals[i].Deadline = goal.NormalizeDeadline(goals[i].Deadline)
	}

	return goals, nil
}

func firstToken(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}
