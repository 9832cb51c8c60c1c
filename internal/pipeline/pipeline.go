// Package pipeline wires the compiler's phases together: lex, parse, lower
// to SSA, emit an object file. It is the single entry point cmd/polec and
// the test suite call instead of reaching into each internal/* package
// directly.
package pipeline

import (
	"time"

	"github.com/llir/llvm/ir"

	"github.com/pole-lang/polec/internal/arena"
	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/codegen"
	"github.com/pole-lang/polec/internal/emit"
	"github.com/pole-lang/polec/internal/lexer"
	"github.com/pole-lang/polec/internal/parser"
)

// Config controls how far a Run goes and what it emits.
type Config struct {
	// EmitObject writes a native object file to ObjectPath when true. When
	// false, Run stops after producing the SSA module (useful for tests
	// that only want to inspect the IR).
	EmitObject bool
	ObjectPath string

	// ArenaBudget is the total byte budget handed to arena.NewPool. Zero
	// uses the pool's own default.
	ArenaBudget int
}

// Source is one compilation unit.
type Source struct {
	Code     string
	Filename string
}

// Artifacts holds the intermediate representations a Run produced, for
// callers that want to inspect a stage directly (tests, `--dump-ast`, etc).
type Artifacts struct {
	Program    *ast.Program
	Module     *ir.Module
	Signatures map[string]*ast.FunctionType // declared signature per function/extern, effect included
}

// Result is what a completed Run returns.
type Result struct {
	Artifacts    Artifacts
	ObjectPath   string
	PhaseTimings map[string]time.Duration
}

// Run lexes, parses, and lowers src to an SSA module, optionally emitting a
// native object file. It returns the first error encountered by any phase;
// the compiler does not attempt partial recovery across phase boundaries
// (spec.md §7).
func Run(cfg Config, src Source) (Result, error) {
	result := Result{PhaseTimings: make(map[string]time.Duration)}

	pool := arena.NewPool(cfg.ArenaBudget)
	defer pool.Reset()

	t0 := time.Now()
	l := lexer.New(src.Code, src.Filename)
	p := parser.New(l)
	prog := p.Parse()
	result.PhaseTimings["parse"] = time.Since(t0)

	if errs := p.Errors(); len(errs) > 0 {
		return result, errs[0]
	}
	result.Artifacts.Program = prog

	t1 := time.Now()
	lw := codegen.NewLowerer(src.Filename)
	mod, err := lw.Lower(prog)
	result.PhaseTimings["codegen"] = time.Since(t1)
	if err != nil {
		return result, err
	}
	result.Artifacts.Module = mod
	result.Artifacts.Signatures = lw.Signatures()

	if !cfg.EmitObject {
		return result, nil
	}

	t2 := time.Now()
	w := emit.NewWriter()
	if err := w.EmitObjectFile(mod, cfg.ObjectPath); err != nil {
		return result, err
	}
	result.PhaseTimings["emit"] = time.Since(t2)
	result.ObjectPath = cfg.ObjectPath

	return result, nil
}
