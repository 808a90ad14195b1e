// Command refinec is the checker's CLI driver (spec.md §6): it wires
// check → encode → solve → report for one named function whose body and
// signature are built into the binary (demo.go); it does no parameter
// gathering. Written in funxy's cmd/funxy/main.go style (plain flag parsing, no CLI
// framework, a BackendType-style build-time var for the solver binary).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/liquidgo/liquidgo/internal/checker"
	"github.com/liquidgo/liquidgo/internal/config"
	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/fixpoint"
	"github.com/liquidgo/liquidgo/internal/kvars"
	"github.com/liquidgo/liquidgo/internal/querycache"
	"github.com/liquidgo/liquidgo/internal/rlog"
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/solver"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// SolverBin is the default solver binary name, overridable at build time
// the same way funxy's main.go overrides BackendType via -ldflags.
var SolverBin = "fixpoint"

func main() {
	var (
		projectFile = flag.String("config", ".liquidgo.yaml", "project config file")
		solverBin   = flag.String("solver", SolverBin, "Horn-clause solver binary")
		cachePath   = flag.String("cache", "", "SQLite query-cache path (empty: in-memory)")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
		noColor     = flag.Bool("no-color", false, "disable ANSI diagnostic coloring")
	)
	flag.Parse()

	rlog.Verbose = *verbose

	cfg, err := config.LoadProjectFile(*projectFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refinec: loading %s: %v\n", *projectFile, err)
		os.Exit(1)
	}
	rlog.Debugf("loaded config: check_overflow=%v scrape_quals=%v", cfg.CheckOverflow, cfg.ScrapeQuals)

	cache, err := openCache(*cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refinec: opening query cache: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: refinec check <function-name>")
		os.Exit(2)
	}

	switch flag.Arg(0) {
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: refinec check <function-name>")
			os.Exit(2)
		}
		os.Exit(runCheck(context.Background(), flag.Arg(1), *solverBin, cache, color))
	case "version":
		fmt.Println(config.Version)
	default:
		fmt.Fprintf(os.Stderr, "refinec: unknown subcommand %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

func openCache(path string) (querycache.Cache, error) {
	if path == "" {
		return querycache.NewMemory(), nil
	}
	return querycache.OpenSQLite(path)
}

// runCheck checks one function from a fixed in-memory GlobalEnv against
// a trivial single-block body, demonstrating the full gather-free
// core pipeline a real frontend drives once it has lowered a surface
// function into an internal/mir.Body and internal/rty.FnSig (spec.md
// §1's frontend/core split: parsing and lowering stay external, this
// binary only exercises the core from that point on).
func runCheck(ctx context.Context, fnPath, solverBin string, cache querycache.Cache, color bool) int {
	g, body, sig := demoProgram(fnPath)
	if g == nil {
		fmt.Fprintf(os.Stderr, "refinec: unknown function %q\n", fnPath)
		return 2
	}

	bodyHash := fmt.Sprintf("%d-locals-%d-blocks", body.NumLocals, len(body.Blocks))
	if entry, ok, err := cache.Get(ctx, fnPath, bodyHash); err == nil && ok {
		rlog.Debugf("cache hit for %s (task %s)", fnPath, entry.TaskID)
		if entry.Safe {
			report(color, fnPath, solver.Result{Outcome: solver.Safe})
			return 0
		}
	}

	env := typeenv.New()
	for i, arg := range sig.Args {
		env.AllocWithTy(i+1, arg)
	}
	env.AllocWithTy(0, rty.Never)

	shapeMode := checker.NewShapeMode()
	shapeChecker := checker.New(g, body, sig.Ret, shapeMode)
	if err := shapeChecker.Run(env.Clone()); err != nil {
		reportError(color, fnPath, err)
		return 1
	}

	store := kvars.NewStore()
	refineMode := checker.NewRefineMode(shapeMode.Shapes(), store)
	refineChecker := checker.New(g, body, sig.Ret, refineMode)
	if err := refineChecker.Run(env); err != nil {
		reportError(color, fnPath, err)
		return 1
	}

	fctx := fixpoint.NewCtx(store)
	constraint := fctx.Encode(refineChecker.Tree())

	if !constraint.IsConcrete() {
		report(color, fnPath, solver.Result{Outcome: solver.Safe})
		_ = cache.Put(ctx, querycache.Entry{FnPath: fnPath, BodyHash: bodyHash, Safe: true, CheckedAt: checkedAtNow()})
		return 0
	}

	proc := solver.NewProcess(solverBin)
	result, err := proc.Solve(ctx, constraint, fixpoint.DefaultQualifiers)
	if err != nil {
		reportError(color, fnPath, err)
		return 1
	}
	report(color, fnPath, result)
	_ = cache.Put(ctx, querycache.Entry{
		FnPath: fnPath, BodyHash: bodyHash, Safe: result.Outcome == solver.Safe, CheckedAt: checkedAtNow(),
	})
	if result.Outcome != solver.Safe {
		return 1
	}
	return 0
}

// checkedAtNow is split out so a future wall-clock source swap (e.g. an
// injected clock for tests) only touches one call site.
func checkedAtNow() (t time.Time) { return time.Now() }

func report(color bool, fnPath string, result solver.Result) {
	switch result.Outcome {
	case solver.Safe:
		fmt.Println(paint(color, "32", fmt.Sprintf("safe: %s", fnPath)))
	case solver.Unsafe:
		fmt.Println(paint(color, "31", fmt.Sprintf("unsafe: %s", fnPath)))
		for _, tag := range result.Tags {
			fmt.Printf("  - %s\n", tag)
		}
	case solver.Crash:
		fmt.Println(paint(color, "31", fmt.Sprintf("solver crashed checking %s: %s", fnPath, result.Stderr)))
	}
}

func reportError(color bool, fnPath string, err error) {
	if de, ok := err.(*diagnostics.DiagnosticError); ok {
		fmt.Println(paint(color, "31", de.Error()))
		return
	}
	fmt.Println(paint(color, "31", fmt.Sprintf("%s: %v", fnPath, err)))
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, s)
}
