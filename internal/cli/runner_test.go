package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"goalTracker/internal/cli"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/persistence"
	"goalTracker/internal/repository/kv/inmemory"
	"goalTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct{}

func (failingPersister) Save(context.Context, []goal.Goal) error { return errors.New("read-only") }
func (failingPersister) Load(context.Context) []goal.Goal        { return nil }

func newRunner(t *testing.T) (*cli.Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	store := service.NewGoalStore(persistence.New(inmemory.NewSlotStorage(), ""))
	store.Load(context.Background())

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &cli.Runner{Store: store, Out: out, ErrOut: errOut}, out, errOut
}

func run(r *cli.Runner, args ...string) int {
	return r.Run(context.Background(), args)
}

func TestRunner_Help(t *testing.T) {
	r, out, _ := newRunner(t)

	assert.Equal(t, 0, run(r, "help"))
	assert.Contains(t, out.String(), "Subcommands:")
	assert.Equal(t, 2, run(r))
}

func TestRunner_UnknownSubcommand(t *testing.T) {
	r, _, errOut := newRunner(t)

	assert.Equal(t, 2, run(r, "launch"))
	assert.Contains(t, errOut.String(), "unknown subcommand: launch")
}

func TestRunner_AddListToggle(t *testing.T) {
	r, out, _ := newRunner(t)

	require.Equal(t, 0, run(r, "add", "Finish report", "Q3 summary", "2024-03-01"))
	require.Equal(t, 0, run(r, "done", "1"))

	out.Reset()
	require.Equal(t, 0, run(r, "ls"))
	assert.Contains(t, out.String(), " 1. [x] Finish report  (due 2024-03-01)")
	assert.Contains(t, out.String(), "Q3 summary")

	goals := r.Store.Goals()
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Deadline.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRunner_ListEmpty(t *testing.T) {
	r, out, _ := newRunner(t)

	assert.Equal(t, 0, run(r, "ls"))
	assert.Equal(t, "no goals\n", out.String())
}

func TestRunner_MoveAndRemove(t *testing.T) {
	r, _, _ := newRunner(t)
	for _, title := range []string{"A", "B", "C"} {
		require.Equal(t, 0, run(r, "add", title, "", "2024-03-01"))
	}

	require.Equal(t, 0, run(r, "mv", "3", "1"))
	assert.Equal(t, []string{"B", "C", "A"}, titlesOf(r.Store.Goals()))

	require.Equal(t, 0, run(r, "rm", "1", "3"))
	assert.Equal(t, []string{"C"}, titlesOf(r.Store.Goals()))
}

func TestRunner_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "add missing args", args: []string{"add", "only title"}},
		{name: "add bad date", args: []string{"add", "t", "d", "01/03/2024"}},
		{name: "done not a number", args: []string{"done", "first"}},
		{name: "done out of range", args: []string{"done", "5"}},
		{name: "rm out of range", args: []string{"rm", "0"}},
		{name: "mv out of range", args: []string{"mv", "9", "1"}},
		{name: "mv missing sources", args: []string{"mv", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, errOut := newRunner(t)
			require.Equal(t, 0, run(r, "add", "A", "", "2024-03-01"))

			assert.Equal(t, 2, run(r, tt.args...))
			assert.Contains(t, errOut.String(), "error:")
			assert.Equal(t, 1, r.Store.Len())
		})
	}
}

func TestRunner_PersistFailureKeepsGoal(t *testing.T) {
	store := service.NewGoalStore(failingPersister{})
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	r := &cli.Runner{Store: store, Out: out, ErrOut: errOut}

	assert.Equal(t, 1, run(r, "add", "A", "", "2024-03-01"))
	assert.Contains(t, out.String(), "added #1 A")
	assert.Contains(t, errOut.String(), "PERSIST_FAILED")
	assert.Equal(t, 1, store.Len())
}

func titlesOf(goals []goal.Goal) []string {
	out := make([]string, len(goals))
	for i, g := range goals {
		out[i] = g.Title
	}
	return out
}
