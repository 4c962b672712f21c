package mpa

import "math/bits"

// Power returns base^exponent, with base^0 = 1. Square-and-multiply over
// two product buffers: trailing zero bits of the exponent are stripped
// first and applied as final squarings of the accumulator.
func Power[W Word](base *Integer[W], exponent uint) *Integer[W] {
	if exponent == 0 {
		return New[W](1)
	}
	neg := base.neg && exponent&1 == 1
	prodsize := base.WordCount()*int(exponent) + 2

	sc := acquireScratch[W]()
	defer releaseScratch(sc)

	p := &num[W]{words: make([]W, prodsize)}
	q := &num[W]{words: make([]W, prodsize)}
	stash := make([]W, prodsize)
	copy(p.words, base.words)
	copy(q.words, base.words)
	p.head, q.head = base.Head(), base.Head()

	mulAssign := func(l *num[W], r *num[W]) {
		lSize, rSize := l.wordCount(), r.wordCount()
		copy(stash[:lSize], l.words[:lSize])
		clearWords(l.words[:lSize+rSize])
		karatsubaMul(sc, stash, r.words, lSize, rSize, l.words)
		l.head = findHead(l.words, lSize+rSize-1)
	}
	sqrAssign := func(l *num[W]) {
		lSize := l.wordCount()
		copy(stash[:lSize], l.words[:lSize])
		clearWords(l.words[:2*lSize])
		karatsubaSqr(sc, stash, lSize, l.words)
		l.head = findHead(l.words, 2*lSize-1)
	}

	j := bits.TrailingZeros(exponent)
	exponent >>= uint(j)
	for exponent >= 2 {
		exponent >>= 1
		sqrAssign(q)
		if exponent&1 == 1 {
			mulAssign(p, q)
		}
	}
	for ; j > 0; j-- {
		sqrAssign(p)
	}

	out := make([]W, p.wordCount())
	copy(out, p.words[:p.wordCount()])
	return normalized(out, p.head, neg)
}
