package mpa

import (
	"sync"
	"unsafe"
)

// Scratch buffer sizes in limbs. These only affect performance: when a
// buffer is too small for an operation the core falls back to a one-shot
// heap allocation.
const (
	// DivmodBufferSize is the size of the pooled division workspace.
	DivmodBufferSize = 2048
	// PowerBufferSize is the size of the pooled sliding-window lookup table.
	PowerBufferSize = 2048
	// KaratsubaBufferSize is the size of the pooled Karatsuba bump arena.
	KaratsubaBufferSize = 2048
)

// scratch carries the per-operation working memory: a division workspace,
// the modular-exponentiation lookup table, and a bump arena shared by
// nested Karatsuba calls. A scratch is owned by a single operation at a
// time; operations acquire one from a pool keyed by limb width, the Go
// rendition of the original thread-local buffers.
type scratch[W Word] struct {
	divmod    []W
	power     []W
	karatsuba []W

	// karatsubaOff is the bump offset into karatsuba. Nested recursive
	// calls advance it and restore it on return, also on heap-fallback
	// paths.
	karatsubaOff int
}

// scratchPools holds one pool per limb width (16, 32, 64 bits).
var scratchPools [3]sync.Pool

// poolIndex maps the limb width of W to its pool slot.
func poolIndex[W Word]() int {
	switch unsafe.Sizeof(W(0)) {
	case 2:
		return 0
	case 4:
		return 1
	default:
		return 2
	}
}

// acquireScratch returns a scratch for limb type W, reusing a pooled one
// when available.
func acquireScratch[W Word]() *scratch[W] {
	if v := scratchPools[poolIndex[W]()].Get(); v != nil {
		return v.(*scratch[W])
	}
	return &scratch[W]{
		divmod:    make([]W, DivmodBufferSize),
		power:     make([]W, PowerBufferSize),
		karatsuba: make([]W, KaratsubaBufferSize),
	}
}

// releaseScratch returns a scratch to its pool. The bump offset must be
// fully unwound by then.
func releaseScratch[W Word](sc *scratch[W]) {
	sc.karatsubaOff = 0
	scratchPools[poolIndex[W]()].Put(sc)
}

// grabKaratsuba reserves n limbs from the bump arena, zeroed. It reports
// false when the arena cannot hold the request, in which case the caller
// heap-allocates.
func (sc *scratch[W]) grabKaratsuba(n int) ([]W, bool) {
	if len(sc.karatsuba) <= n+sc.karatsubaOff {
		return nil, false
	}
	buf := sc.karatsuba[sc.karatsubaOff : sc.karatsubaOff+n]
	clearWords(buf)
	sc.karatsubaOff += n
	return buf, true
}

// divmodWorkspace returns a zeroed workspace of n limbs, from the pooled
// buffer when it fits and from the heap otherwise.
func (sc *scratch[W]) divmodWorkspace(n int) []W {
	if n <= len(sc.divmod) {
		buf := sc.divmod[:n]
		clearWords(buf)
		return buf
	}
	return make([]W, n)
}

// powerTable returns a zeroed lookup-table buffer of n limbs, pooled when
// it fits and heap-allocated otherwise.
func (sc *scratch[W]) powerTable(n int) []W {
	if n <= len(sc.power) {
		buf := sc.power[:n]
		clearWords(buf)
		return buf
	}
	return make([]W, n)
}
