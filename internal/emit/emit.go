// Package emit renders a completed SSA module to a native object file,
// wrapping tinygo.org/x/go-llvm's target-machine API (spec.md §4.6).
package emit

import (
	"fmt"
	"sync"

	"github.com/llir/llvm/ir"
	goLLVM "tinygo.org/x/go-llvm"

	"github.com/pole-lang/polec/internal/ast"
	"github.com/pole-lang/polec/internal/errors"
)

var initOnce sync.Once

func initTarget() {
	initOnce.Do(func() {
		goLLVM.InitializeNativeTarget()
		goLLVM.InitializeNativeAsmPrinter()
	})
}

// Writer turns an *ir.Module into an object file on disk.
type Writer struct {
	opt goLLVM.CodeGenOptLevel
}

// NewWriter creates a Writer at the default optimization level (spec.md
// §4.6: "default optimization").
func NewWriter() *Writer {
	return &Writer{opt: goLLVM.CodeGenLevelDefault}
}

// EmitObjectFile parses module's textual LLVM IR with go-llvm, obtains a
// target machine for the host triple (position-independent code, default
// code model), and writes the compiled object to path.
func (w *Writer) EmitObjectFile(module *ir.Module, path string) error {
	initTarget()

	irText := module.String()
	ctx := goLLVM.NewContext()
	defer ctx.Dispose()

	mod, err := ctx.ParseIR(goLLVM.NewMemoryBufferFromString(irText))
	if err != nil {
		return wrapEmitErr("EMT001", fmt.Sprintf("parsing generated IR: %v", err))
	}
	defer mod.Dispose()

	triple := goLLVM.DefaultTargetTriple()
	target, err := goLLVM.GetTargetFromTriple(triple)
	if err != nil {
		return wrapEmitErr("EMT002", fmt.Sprintf("resolving target for %s: %v", triple, err))
	}

	machine := target.CreateTargetMachine(
		triple,
		"", "",
		w.opt,
		goLLVM.RelocPIC,
		goLLVM.CodeModelDefault,
	)
	defer machine.Dispose()

	if err := machine.EmitToFile(mod, path, goLLVM.ObjectFile); err != nil {
		return wrapEmitErr("EMT003", fmt.Sprintf("writing object file %s: %v", path, err))
	}
	return nil
}

func wrapEmitErr(code, msg string) error {
	return errors.WrapReport(errors.New(code, "emit", ast.Pos{}, msg, nil))
}
