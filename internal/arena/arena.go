// Package arena provides the bump allocators shared by every compilation
// phase. Three independent arenas (parse, IR, codegen) are created once per
// compilation and reset in bulk when it completes, matching the lifetime
// described for the AST and SSA module.
package arena

import "fmt"

// defaultTotalBudget is the default byte budget split evenly across the
// three arenas when a Pool is created with NewPool(0).
const defaultTotalBudget = 100 * 1024 * 1024

// Phase names used in OutOfMemory errors.
const (
	PhaseParse   = "parse"
	PhaseIR      = "ir"
	PhaseCodegen = "codegen"
)

// OutOfMemoryError is returned when an allocation cannot be satisfied.
// It fires for a negative size, or when the new chunk a request needs
// would take the arena past four times its hardCap.
type OutOfMemoryError struct {
	Phase string
	Used  int
	Limit int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory during %s: used %d bytes, limit %d bytes", e.Phase, e.Used, e.Limit)
}

// Arena is a single bump allocator. It grows by appending additional chunks
// when the current chunk is exhausted. The hardCap is advisory: Alloc grows
// past it, but refuses (with an OutOfMemoryError) a new chunk that would
// take the arena's allocated bytes past four times hardCap.
type Arena struct {
	phase       string
	chunkSize   int
	hardCap     int
	chunks      [][]byte
	cur         int // index into chunks of the chunk currently being filled
	used        int // bytes used in the current chunk
	highWater   int // running high-water mark across the arena's lifetime
	allocatedNo int // number of Alloc calls since the last Reset, for telemetry
}

// newArena creates an arena with the given chunk size and hard cap.
func newArena(phase string, chunkSize, hardCap int) *Arena {
	a := &Arena{
		phase:     phase,
		chunkSize: chunkSize,
		hardCap:   hardCap,
	}
	a.chunks = [][]byte{make([]byte, 0, chunkSize)}
	return a
}

// Alloc bump-allocates n bytes and returns a zeroed slice backed by the
// arena. The slice is valid until the next Reset.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, &OutOfMemoryError{Phase: a.phase, Used: a.AllocatedBytes(), Limit: a.hardCap}
	}
	if n == 0 {
		return nil, nil
	}

	chunk := a.chunks[a.cur]
	if a.used+n > cap(chunk) {
		// Current chunk exhausted: grow a new one, sized to fit n even if
		// n exceeds the default chunk size.
		next := a.chunkSize
		if n > next {
			next = n
		}
		if a.AllocatedBytes()+next > a.hardCap*4 {
			// Even the advisory cap has limits: refuse requests that would
			// blow past four times the budget in a single shot.
			return nil, &OutOfMemoryError{Phase: a.phase, Used: a.AllocatedBytes(), Limit: a.hardCap}
		}
		a.chunks = append(a.chunks, make([]byte, 0, next))
		a.cur++
		chunk = a.chunks[a.cur]
		a.used = 0
	}

	start := a.used
	chunk = chunk[:a.used+n]
	a.chunks[a.cur] = chunk
	a.used += n
	a.allocatedNo++

	if total := a.AllocatedBytes(); total > a.highWater {
		a.highWater = total
	}

	out := chunk[start : start+n : start+n]
	for i := range out {
		out[i] = 0
	}
	return out, nil
}

// AllocatedBytes returns the bytes currently in use across all chunks.
func (a *Arena) AllocatedBytes() int {
	total := 0
	for _, c := range a.chunks {
		total += len(c)
	}
	return total
}

// HighWaterMark returns the largest AllocatedBytes value observed since
// creation; Reset does not clear it.
func (a *Arena) HighWaterMark() int { return a.highWater }

// Reset releases all chunks back to a single empty chunk, keeping the
// backing storage of the first chunk for reuse ("bulk deallocation").
func (a *Arena) Reset() {
	first := a.chunks[0][:0]
	a.chunks = [][]byte{first}
	a.cur = 0
	a.used = 0
	a.allocatedNo = 0
}

// Pool owns the three arenas used by one compilation: parse, IR, and
// codegen. It is a plain value threaded explicitly into the parser and
// lowering engine entry points rather than reached through ambient state.
type Pool struct {
	Parse   *Arena
	IR      *Arena
	Codegen *Arena
}

// NewPool creates a Pool with the given total byte budget split evenly
// across the three arenas. A totalBudget of 0 uses the 100 MiB default.
func NewPool(totalBudget int) *Pool {
	if totalBudget <= 0 {
		totalBudget = defaultTotalBudget
	}
	chunkSize := totalBudget / 3
	return &Pool{
		Parse:   newArena(PhaseParse, chunkSize, chunkSize),
		IR:      newArena(PhaseIR, chunkSize, chunkSize),
		Codegen: newArena(PhaseCodegen, chunkSize, chunkSize),
	}
}

// Reset resets all three arenas in bulk.
func (p *Pool) Reset() {
	p.Parse.Reset()
	p.IR.Reset()
	p.Codegen.Reset()
}

// TotalAllocated returns the sum of bytes currently allocated across all
// three arenas.
func (p *Pool) TotalAllocated() int {
	return p.Parse.AllocatedBytes() + p.IR.AllocatedBytes() + p.Codegen.AllocatedBytes()
}

// ParseAllocated returns the parse arena's current allocation.
func (p *Pool) ParseAllocated() int { return p.Parse.AllocatedBytes() }

// IRAllocated returns the IR arena's current allocation.
func (p *Pool) IRAllocated() int { return p.IR.AllocatedBytes() }

// CodegenAllocated returns the codegen arena's current allocation.
func (p *Pool) CodegenAllocated() int { return p.Codegen.AllocatedBytes() }
