package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GoalStore owns the ordered goal list. Every mutator changes the list first
// and then hands the full list to the Persister; a failed save keeps the
// change in memory and comes back as a PERSIST_FAILED error.
//
// Positions are validated against the list as it was before the call.
// An out-of-range position rejects the whole call and changes nothing.
//
// Move's destination is the position the first moved goal occupies in the
// resulting list, valid in [0, Len()-k] where k is the number of distinct
// sources: moving 0 to 2 in A,B,C gives B,C,A.
type GoalStore struct {
	mu        sync.Mutex
	goals     []goal.Goal
	index     map[uuid.UUID]int
	persister Persister
}

func NewGoalStore(persister Persister) *GoalStore {
	return &GoalStore{
		goals:     []goal.Goal{},
		index:     make(map[uuid.UUID]int),
		persister: persister,
	}
}

// Load replaces the in-memory list with the persisted one and returns its
// length. A list with repeated ids is refused and the store starts empty.
func (s *GoalStore) Load(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := s.persister.Load(ctx)

	index := make(map[uuid.UUID]int, len(loaded))
	for i, g := range loaded {
		if _, dup := index[g.ID]; dup {
			logger.Warn("Service: persisted goals contain duplicate ids, starting empty",
				zap.String("goal_id", g.ID.String()))
			loaded, index = []goal.Goal{}, map[uuid.UUID]int{}
			break
		}
		index[g.ID] = i
	}

	s.goals = append(make([]goal.Goal, 0, len(loaded)), loaded...)
	s.index = index

	logger.Info("Service: goals loaded", zap.Int("count", len(s.goals)))
	return len(s.goals)
}

// Save persists the current list as is.
func (s *GoalStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist(ctx, "save")
}

func (s *GoalStore) Add(ctx context.Context, title, description string, deadline time.Time) (goal.Goal, error) {
	if !goal.ValidDeadline(deadline) {
		logger.Warn("Service: deadline out of range", zap.Time("deadline", deadline))
		return goal.Goal{}, NewValidationError("deadline",
			fmt.Sprintf("year %d outside %d..%d", deadline.UTC().Year(), goal.MinDeadlineYear, goal.MaxDeadlineYear))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := goal.New(title, description, deadline)
	for {
		if _, taken := s.index[g.ID]; !taken {
			break
		}
		g.ID = uuid.New()
	}

	s.goals = append(s.goals, g)
	s.index[g.ID] = len(s.goals) - 1

	logger.Info("Service: goal added",
		zap.String("goal_id", g.ID.String()),
		zap.Int("position", len(s.goals)-1))

	return g, s.persist(ctx, "add")
}

// Remove deletes the goals at the given positions in one batch.
func (s *GoalStore) Remove(ctx context.Context, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(indices) == 0 {
		return nil
	}

	drop, err := s.resolve("index", indices)
	if err != nil {
		return err
	}

	kept := make([]goal.Goal, 0, len(s.goals)-len(drop))
	for i, g := range s.goals {
		if _, ok := drop[i]; !ok {
			kept = append(kept, g)
		}
	}
	s.goals = kept
	s.reindex()

	logger.Info("Service: goals removed", zap.Int("removed", len(drop)), zap.Int("left", len(s.goals)))
	return s.persist(ctx, "remove")
}

// ToggleCompletion flips IsCompleted of the goal with the given id.
// An unknown id yields NOT_FOUND and leaves the list untouched.
func (s *GoalStore) ToggleCompletion(ctx context.Context, id uuid.UUID) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		logger.Info("Service: goal not found", zap.String("target_id", id.String()))
		return goal.Goal{}, NewNotFound("goal", id.String())
	}

	s.goals[i].IsCompleted = !s.goals[i].IsCompleted
	g := s.goals[i]

	logger.Info("Service: goal toggled",
		zap.String("goal_id", id.String()),
		zap.Bool("completed", g.IsCompleted))

	return g, s.persist(ctx, "toggle")
}

// Move takes the goals at sources out of the list, keeping their relative
// order, and puts them back as one block starting at destination in the
// resulting list. destination ranges over [0, Len()-len(unique sources)].
func (s *GoalStore) Move(ctx context.Context, sources []int, destination int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sources) == 0 {
		return nil
	}

	moving, err := s.resolve("source", sources)
	if err != nil {
		return err
	}

	maxDest := len(s.goals) - len(moving)
	if destination < 0 || destination > maxDest {
		logger.Warn("Service: destination out of range",
			zap.Int("destination", destination),
			zap.Int("max", maxDest))
		return NewOutOfRange("destination", destination, maxDest+1)
	}

	moved := make([]goal.Goal, 0, len(moving))
	rest := make([]goal.Goal, 0, len(s.goals)-len(moving))
	for i, g := range s.goals {
		if _, ok := moving[i]; ok {
			moved = append(moved, g)
		} else {
			rest = append(rest, g)
		}
	}

	result := make([]goal.Goal, 0, len(s.goals))
	result = append(result, rest[:destination]...)
	result = append(result, moved...)
	result = append(result, rest[destination:]...)

	s.goals = result
	s.reindex()

	logger.Info("Service: goals moved", zap.Int("moved", len(moved)), zap.Int("destination", destination))
	return s.persist(ctx, "move")
}

// Goals returns a copy of the list in display order.
func (s *GoalStore) Goals() []goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *GoalStore) Get(id uuid.UUID) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return goal.Goal{}, NewNotFound("goal", id.String())
	}
	return s.goals[i], nil
}

func (s *GoalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.goals)
}

// resolve checks every position against the current list and returns them
// as a set, so repeated positions count once.
func (s *GoalStore) resolve(field string, positions []int) (map[int]struct{}, error) {
	set := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(s.goals) {
			logger.Warn("Service: position out of range",
				zap.String("field", field),
				zap.Int("position", p),
				zap.Int("len", len(s.goals)))
			return nil, NewOutOfRange(field, p, len(s.goals))
		}
		set[p] = struct{}{}
	}
	return set, nil
}

func (s *GoalStore) reindex() {
	s.index = make(map[uuid.UUID]int, len(s.goals))
	for i, g := range s.goals {
		s.index[g.ID] = i
	}
}

func (s *GoalStore) snapshot() []goal.Goal {
	out := make([]goal.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

func (s *GoalStore) persist(ctx context.Context, op string) error {
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		logger.Error("Service: goals changed in memory but not persisted", err,
			zap.String("op", op),
			zap.Int("count", len(s.goals)))
		return NewPersistFailed(op, err)
	}
	return nil
}
