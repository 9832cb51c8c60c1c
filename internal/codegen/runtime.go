package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// runtimeDecls holds the lazily-declared C runtime collaborators built-in
// lowering needs: malloc, memcpy, memset, strstr, puts, printf. Each is
// declared in the module on first use, never eagerly (spec.md §4.5).
type runtimeDecls struct {
	module *ir.Module

	malloc  *ir.Func
	memcpy  *ir.Func
	memset  *ir.Func
	strstr  *ir.Func
	puts    *ir.Func
	printf  *ir.Func
}

func newRuntimeDecls(mod *ir.Module) *runtimeDecls {
	return &runtimeDecls{module: mod}
}

func i8ptr() *types.PointerType { return types.NewPointer(types.I8) }

func (r *runtimeDecls) Malloc() *ir.Func {
	if r.malloc == nil {
		r.malloc = r.module.NewFunc("malloc", i8ptr(), ir.NewParam("size", types.I64))
	}
	return r.malloc
}

func (r *runtimeDecls) Memcpy() *ir.Func {
	if r.memcpy == nil {
		r.memcpy = r.module.NewFunc("memcpy", i8ptr(),
			ir.NewParam("dst", i8ptr()),
			ir.NewParam("src", i8ptr()),
			ir.NewParam("n", types.I64))
	}
	return r.memcpy
}

func (r *runtimeDecls) Memset() *ir.Func {
	if r.memset == nil {
		r.memset = r.module.NewFunc("memset", i8ptr(),
			ir.NewParam("dst", i8ptr()),
			ir.NewParam("c", types.I32),
			ir.NewParam("n", types.I64))
	}
	return r.memset
}

func (r *runtimeDecls) Strstr() *ir.Func {
	if r.strstr == nil {
		r.strstr = r.module.NewFunc("strstr", i8ptr(),
			ir.NewParam("haystack", i8ptr()),
			ir.NewParam("needle", i8ptr()))
	}
	return r.strstr
}

func (r *runtimeDecls) Puts() *ir.Func {
	if r.puts == nil {
		r.puts = r.module.NewFunc("puts", types.I32, ir.NewParam("s", i8ptr()))
	}
	return r.puts
}

func (r *runtimeDecls) Printf() *ir.Func {
	if r.printf == nil {
		fn := r.module.NewFunc("printf", types.I32, ir.NewParam("fmt", i8ptr()))
		fn.Sig.Variadic = true
		r.printf = fn
	}
	return r.printf
}
