// Package solver invokes the liquid-fixpoint Horn-clause solver binary
// and interprets its result (spec.md §4.5/§6, component H's
// counterpart on the output side): Safe, Unsafe with surviving tags, or
// Crash.
//
// Grounded on the funxy teacher's own external-process pattern
// (internal/evaluator's and cmd/funxy's use of os/exec.Command to shell
// out to a subprocess and scrape its output) — os/exec is the standard
// library because no example repo in the pack wraps process spawning in
// a third-party library; go-cmd/exec-style wrappers exist in the
// ecosystem but add nothing over os/exec for a single blocking
// request/response subprocess, so this stays on the standard library.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/fixpoint"
)

// Outcome is the solver's verdict on one query (spec.md §4.5).
type Outcome int

const (
	Safe Outcome = iota
	Unsafe
	Crash
)

// Result pairs the outcome with the tags of every obligation the solver
// reported as unsafe, so the checker can map them back to source
// positions via internal/diagnostics.
type Result struct {
	Outcome Outcome
	Tags    []string
	Stderr  string
}

// wireResponse is liquid-fixpoint's own JSON result shape (`--json`):
// {"tag": "Safe"} or {"tag": "Unsafe", "contents": [["tag1", ...], ...]}
// or {"tag": "Crash", "contents": [...]}.
type wireResponse struct {
	Tag      string          `json:"tag"`
	Contents json.RawMessage `json:"contents"`
}

// Solver runs a fixpoint.Constraint against a solver binary.
type Solver interface {
	Solve(ctx context.Context, c fixpoint.Constraint, quals []fixpoint.Qualifier) (Result, error)
}

// Process shells out to a liquid-fixpoint-compatible binary, feeding it
// the rendered wire format on stdin (spec.md §6 "invoke the solver").
type Process struct {
	Bin  string
	Args []string
}

func NewProcess(bin string) *Process { return &Process{Bin: bin, Args: []string{"--json", "--stdin"}} }

func (p *Process) Solve(ctx context.Context, c fixpoint.Constraint, quals []fixpoint.Qualifier) (Result, error) {
	var buf bytes.Buffer
	for _, q := range quals {
		fmt.Fprintln(&buf, q.String())
	}
	fmt.Fprintln(&buf, "constraint:")
	fmt.Fprintln(&buf, c.String())

	cmd := exec.CommandContext(ctx, p.Bin, p.Args...)
	cmd.Stdin = &buf
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return Result{}, diagnostics.NewError(diagnostics.ErrSolverCrash, diagnostics.Pos{},
				fmt.Sprintf("failed to invoke solver %q: %v", p.Bin, err))
		}
	}

	var resp wireResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{Outcome: Crash, Stderr: stderr.String()},
			diagnostics.NewError(diagnostics.ErrSolverCrash, diagnostics.Pos{},
				fmt.Sprintf("could not parse solver output: %v", err))
	}

	switch resp.Tag {
	case "Safe":
		return Result{Outcome: Safe}, nil
	case "Unsafe":
		var groups [][]string
		if len(resp.Contents) > 0 {
			_ = json.Unmarshal(resp.Contents, &groups)
		}
		tags := make([]string, 0)
		for _, g := range groups {
			tags = append(tags, g...)
		}
		return Result{Outcome: Unsafe, Tags: tags, Stderr: stderr.String()}, nil
	default:
		return Result{Outcome: Crash, Stderr: stderr.String()},
			diagnostics.NewError(diagnostics.ErrSolverCrash, diagnostics.Pos{},
				fmt.Sprintf("solver reported %s: %s", resp.Tag, stderr.String()))
	}
}
