package mpa

// Sliding-window modular exponentiation with Barrett reduction.
//
// mu = floor(B^2k / m) is computed once per call; each reduction then
// costs two multiplications: q = floor(floor(x / B^(k-1)) * mu / B^(k+1)),
// r = x - q*m, followed by at most two conditional subtractions of m.
// The window scan walks the exponent MSB to LSB, batching runs of bits
// into odd windows of up to six bits that index a 32-entry table of odd
// powers of the base.

const expWindowSize = 6

// barrettCtx carries the reduction state shared by the exponentiation
// loops: the modulus limbs, mu, and the product scratch slabs.
type barrettCtx[W Word] struct {
	sc       *scratch[W]
	k        int
	modWords []W
	mue      []W
	mueSize  int
	stash    []W
	barrett  []W
}

func newBarrettCtx[W Word](sc *scratch[W], modulus *Integer[W], prodsize int) *barrettCtx[W] {
	k := modulus.WordCount()
	mueWords := make([]W, 2*k+1)
	mueWords[2*k] = 1
	mue := FromWords(mueWords, false).Div(modulus)
	return &barrettCtx[W]{
		sc:       sc,
		k:        k,
		modWords: modulus.words,
		mue:      mue.words,
		mueSize:  mue.WordCount(),
		stash:    make([]W, prodsize),
		barrett:  make([]W, 2*prodsize),
	}
}

// geqModulus reports |x| >= m for the non-negative working value x.
func (b *barrettCtx[W]) geqModulus(x *num[W]) bool {
	return absGeq(x.words, b.modWords, x.head, b.k-1)
}

// reduce brings the non-negative x into [0, m).
func (b *barrettCtx[W]) reduce(x *num[W]) {
	if x.head >= b.k-1 {
		mulLen := x.head + 2 - b.k
		clearWords(b.stash[:mulLen+b.mueSize])
		karatsubaMul(b.sc, x.words[b.k-1:], b.mue, mulLen, b.mueSize, b.stash)
		bHead := findHead(b.stash, x.head+1-b.k+b.mueSize)
		if bHead >= b.k+1 {
			qHead := bHead - b.k - 1
			clearWords(b.barrett[:qHead+1+b.k])
			karatsubaMul(b.sc, b.stash[b.k+1:], b.modWords, qHead+1, b.k, b.barrett)
			pHead := findHead(b.barrett, qHead+b.k)
			inplaceDecrement(x.words, b.barrett[:pHead+1])
			x.head = findHead(x.words, x.head)
		}
	}
	for i := 0; i < 2; i++ {
		if b.geqModulus(x) {
			inplaceDecrement(x.words, b.modWords[:b.k])
			x.head = findHead(x.words, x.head)
		}
	}
}

// mulAssign computes l = l * r into l's own buffer via the stash.
func (b *barrettCtx[W]) mulAssign(l *num[W], rWords []W, rHead int) {
	lSize, rSize := l.wordCount(), rHead+1
	copy(b.stash[:lSize], l.words[:lSize])
	clearWords(l.words[:lSize+rSize])
	karatsubaMul(b.sc, b.stash, rWords, lSize, rSize, l.words)
	l.head = findHead(l.words, lSize+rSize-1)
}

// sqrAssign computes l = l * l into l's own buffer via the stash.
func (b *barrettCtx[W]) sqrAssign(l *num[W]) {
	lSize := l.wordCount()
	copy(b.stash[:lSize], l.words[:lSize])
	clearWords(l.words[:2*lSize])
	karatsubaSqr(b.sc, b.stash, lSize, l.words)
	l.head = findHead(l.words, 2*lSize-1)
}

func (b *barrettCtx[W]) mulReduce(l *num[W], rWords []W, rHead int) {
	b.mulAssign(l, rWords, rHead)
	b.reduce(l)
}

func (b *barrettCtx[W]) sqrReduce(l *num[W]) {
	b.sqrAssign(l)
	b.reduce(l)
}

// powTable is the sliding-window lookup: 32 odd powers of the base with a
// uniform limb stride and the per-entry heads kept in a parallel array.
type powTable[W Word] struct {
	entries []W
	heads   [1 << (expWindowSize - 1)]int
	stride  int
}

func (t *powTable[W]) entry(i int) ([]W, int) {
	return t.entries[i*t.stride:], t.heads[i]
}

// buildPowTable fills the table with base^(2i+1) mod m for i in [0, 32),
// squaring the reduced base once and multiplying up from there.
func buildPowTable[W Word](b *barrettCtx[W], q *num[W], table *powTable[W]) {
	precompSize := 1 << (expWindowSize - 1)
	copy(table.entries[:q.wordCount()], q.words[:q.wordCount()])
	table.heads[0] = q.head
	b.sqrReduce(q)
	baseSqSize := q.wordCount()
	for j := 1; j < precompSize; j++ {
		src, srcHead := table.entry(j - 1)
		srcSize := srcHead + 1
		target, _ := table.entry(j)
		karatsubaMul(b.sc, src, q.words, srcSize, baseSqSize, target)
		tmp := num[W]{words: target, head: findHead(target, srcSize+baseSqSize-1)}
		b.reduce(&tmp)
		table.heads[j] = tmp.head
	}
}

// windowAt locates the odd window ending at exponent bit i: the longest
// run of at most expWindowSize bits that starts and ends with a set bit.
// Returns the window value and the index of its lowest set bit.
func windowAt[W Word](exp *Integer[W], i int) (window uint, low int) {
	rightMost := 0
	if expWindowSize > i+1 {
		rightMost = expWindowSize - i - 1
	}
	width := 0
	foundLow := false
	for j := rightMost; j < expWindowSize; j++ {
		index := i - expWindowSize + 1 + j
		var component uint
		if exp.Bit(uint(index)) {
			component = 1
		}
		if !foundLow && component == 1 {
			low = index
			foundLow = true
		}
		window |= component << width
		if window > 0 {
			width++
		}
	}
	return window, low
}

// ModularPower returns base^exponent mod modulus for modulus > 1.
// base^0 is 1 even for base 0; 0^e is 0 for e > 0. A negative exponent
// inverts the base via the extended GCD first; when base and modulus are
// not coprime the inverse does not exist and the result is 0.
func ModularPower[W Word](base, exponent, modulus *Integer[W]) *Integer[W] {
	if exponent.IsZero() {
		return New[W](1)
	}
	if base.IsZero() {
		return New[W](0)
	}
	start := base
	if exponent.neg {
		g, s, _ := ExtendedGCD(base, modulus)
		if !(g.Head() == 0 && g.words[0] == 1) {
			return New[W](0)
		}
		start = s
	}
	return modPow(start.Mod(modulus), exponent.Abs(), modulus)
}

// ModularInverse returns N^-1 mod modulus, or zero when no inverse exists.
func ModularInverse[W Word](n, modulus *Integer[W]) *Integer[W] {
	return ModularPower(n, New[W](-1), modulus)
}

// modPow computes base^exp mod m for base in [0, m) and exp > 0.
func modPow[W Word](base, exp, m *Integer[W]) *Integer[W] {
	baseSize, modSize := base.WordCount(), m.WordCount()
	prodsize := 2*modSize + 4
	if baseSize > modSize {
		prodsize = 2*baseSize + 4
	}
	sc := acquireScratch[W]()
	defer releaseScratch(sc)
	b := newBarrettCtx(sc, m, prodsize)

	precompSize := 1 << (expWindowSize - 1)
	table := &powTable[W]{
		entries: sc.powerTable(precompSize * prodsize),
		stride:  prodsize,
	}
	q := &num[W]{words: make([]W, prodsize)}
	copy(q.words, base.words)
	q.head = base.Head()
	buildPowTable(b, q, table)

	p := &num[W]{words: make([]W, prodsize)}
	p.words[0] = 1

	i := int(exp.BitCount()) - 1
	for i >= 0 {
		if !exp.Bit(uint(i)) {
			b.sqrReduce(p)
			i--
			continue
		}
		window, low := windowAt(exp, i)
		for x := 0; x < i-low+1; x++ {
			b.sqrReduce(p)
		}
		entry, entryHead := table.entry(int(window >> 1))
		b.mulReduce(p, entry, entryHead)
		i = low - 1
	}

	out := make([]W, p.wordCount())
	copy(out, p.words[:p.wordCount()])
	return normalized(out, p.head, false)
}
