package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/service"
)

const dateLayout = "2006-01-02"

// Runner drives a GoalStore from command line arguments. Positions typed by
// the user are 1-based, as printed by ls.
type Runner struct {
	Store  *service.GoalStore
	Out    io.Writer
	ErrOut io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0

	case "ls":
		r.list()
		return 0

	case "add":
		if len(a) != 3 {
			r.fail("usage: goals add <title> <description> <YYYY-MM-DD>")
			return 2
		}
		deadline, err := time.Parse(dateLayout, a[2])
		if err != nil {
			r.fail("add: bad deadline " + strconv.Quote(a[2]) + ", want YYYY-MM-DD")
			return 2
		}
		g, err := r.Store.Add(ctx, a[0], a[1], deadline)
		return r.report(err, fmt.Sprintf("added #%d %s", r.Store.Len(), g.Title))

	case "done":
		if len(a) != 1 {
			r.fail("usage: goals done <n>")
			return 2
		}
		positions, ok := r.positions(cmd, a)
		if !ok {
			return 2
		}
		goals := r.Store.Goals()
		if positions[0] < 0 || positions[0] >= len(goals) {
			r.fail(fmt.Sprintf("done: index out of range: have %d, got %s", len(goals), a[0]))
			return 2
		}
		g, err := r.Store.ToggleCompletion(ctx, goals[positions[0]].ID)
		return r.report(err, fmt.Sprintf("%s %s", mark(g), g.Title))

	case "rm":
		if len(a) == 0 {
			r.fail("usage: goals rm <n...>")
			return 2
		}
		positions, ok := r.positions(cmd, a)
		if !ok {
			return 2
		}
		return r.report(r.Store.Remove(ctx, positions), "removed")

	case "mv":
		if len(a) < 2 {
			r.fail("usage: goals mv <to> <n...>")
			return 2
		}
		positions, ok := r.positions(cmd, a)
		if !ok {
			return 2
		}
		return r.report(r.Store.Move(ctx, positions[1:], positions[0]), "moved")
	}

	r.fail("unknown subcommand: " + cmd)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.Out, `goals - track goals with deadlines

Usage:
  goals [-config path] <subcommand> [args]

Subcommands:
  ls                                   List goals
  add <title> <description> <date>     Add a goal, date as YYYY-MM-DD
  done <n>                             Toggle completion of goal n
  rm <n...>                            Remove goals, positions as listed
  mv <to> <n...>                       Move goals so the first lands at <to>
`)
}

func (r *Runner) list() {
	goals := r.Store.Goals()
	if len(goals) == 0 {
		fmt.Fprintln(r.Out, "no goals")
		return
	}
	for i, g := range goals {
		fmt.Fprintf(r.Out, "%2d. %s %s  (due %s)\n", i+1, mark(g), g.Title, g.Deadline.Format(dateLayout))
		if g.Description != "" {
			fmt.Fprintf(r.Out, "      %s\n", g.Description)
		}
	}
}

// positions parses 1-based arguments into 0-based positions.
func (r *Runner) positions(cmd string, args []string) ([]int, bool) {
	out := make([]int, 0, len(args))
	for _, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			r.fail(cmd + ": not a number: " + s)
			return nil, false
		}
		out = append(out, n-1)
	}
	return out, true
}

func (r *Runner) report(err error, okMsg string) int {
	if err == nil {
		fmt.Fprintln(r.Out, okMsg)
		return 0
	}

	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		switch busErr.Code {
		case service.CodeOutOfRange, service.CodeValidation:
			r.fail(busErr.Message)
			fmt.Fprintln(r.ErrOut, "Hint: run `goals ls` to see valid positions")
			return 2
		case service.CodePersistFault:
			fmt.Fprintln(r.Out, okMsg)
			r.fail("warning: " + busErr.Error())
			return 1
		}
	}
	r.fail(err.Error())
	return 1
}

func (r *Runner) fail(msg string) {
	fmt.Fprintln(r.ErrOut, "error: "+msg)
}

func mark(g goal.Goal) string {
	if g.IsCompleted {
		return "[x]"
	}
	return "[ ]"
}
