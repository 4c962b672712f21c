package mpa

import (
	"math"

	"github.com/rs/zerolog/log"
)

// sieveSize is the number of precomputed small primes used for trial
// division during prime search.
const sieveSize = 2048

// primesSieve holds the first 2048 primes (2, 3, 5, ... 17863), built by
// trial division at startup.
var primesSieve = func() [sieveSize]uint32 {
	const biggestPrime = 17863
	const biggestPrimeSqrt = 133
	var out [sieveSize]uint32
	idx := 0
	out[idx] = 2
	idx++
	for i := uint32(3); i <= biggestPrime; i++ {
		prime := true
		bound := i
		if bound > biggestPrimeSqrt+1 {
			bound = biggestPrimeSqrt + 1
		}
		for f := uint32(2); prime && f < bound; f++ {
			prime = i%f != 0
		}
		if prime {
			out[idx] = i
			idx++
		}
	}
	return out
}()

// DefaultMillerRabinSteps is the trial count used when validating parsed
// key material; prime search uses primeSearchSteps.
const (
	DefaultMillerRabinSteps = 32
	primeSearchSteps        = 64
)

// IsProbablyPrime runs the given number of Miller-Rabin trials against the
// candidate. Each trial picks a random witness a in [1, n-2), computes
// a^d mod n by Barrett sliding-window exponentiation for n-1 = 2^r * d,
// and squares up to r-1 times looking for n-1. A single failing witness
// proves compositeness.
func IsProbablyPrime[W Word](candidate *Integer[W], steps int) bool {
	if candidate.neg {
		return false
	}
	if candidate.Head() == 0 {
		switch candidate.words[0] {
		case 2, 3:
			return true
		case 0, 1:
			return false
		}
	}
	if candidate.IsEven() {
		return false
	}

	wordcount := candidate.WordCount()
	prodsize := wordcount*2 + 4
	sc := acquireScratch[W]()
	defer releaseScratch(sc)
	b := newBarrettCtx(sc, candidate, prodsize)

	c := candidate.Sub(New[W](1))
	baseJ := int(trailingZeroBitsBuf(c.words, c.Head()))
	limit := candidate.Sub(New[W](2))
	exponentBitcount := int(c.BitCount())

	// The window decomposition of the exponent d = (n-1) >> r is the same
	// for every trial, so it is computed once up front.
	type expWindow struct {
		window uint
		low    int
	}
	var windows []expWindow
	pos := exponentBitcount - 1
	for pos >= baseJ {
		if !c.Bit(uint(pos)) {
			pos--
			continue
		}
		window, low := windowAt(c, pos)
		windows = append(windows, expWindow{window, low})
		pos = low - 1
	}

	precompSize := 1 << (expWindowSize - 1)
	table := &powTable[W]{
		entries: sc.powerTable(precompSize * prodsize),
		stride:  prodsize,
	}
	p := &num[W]{words: make([]W, prodsize)}
	q := &num[W]{words: make([]W, prodsize)}

	equalsC := func(x *num[W]) bool {
		if x.head != c.Head() {
			return false
		}
		for i := 0; i <= x.head; i++ {
			if x.words[i] != c.words[i] {
				return false
			}
		}
		return true
	}

	for i := 0; i < steps; i++ {
		a := RandomBelow(limit)
		clearWords(p.words)
		p.words[0] = 1
		p.head = 0
		clearWords(q.words)
		copy(q.words, a.words)
		q.head = a.Head()

		clearWords(table.entries)
		buildPowTable(b, q, table)

		// p = a^d mod n via the precomputed windows.
		pos := exponentBitcount - 1
		wi := 0
		for pos >= baseJ {
			if !c.Bit(uint(pos)) {
				b.sqrReduce(p)
				pos--
				continue
			}
			w := windows[wi]
			for x := 0; x < pos-w.low+1; x++ {
				b.sqrReduce(p)
			}
			entry, entryHead := table.entry(int(w.window >> 1))
			b.mulReduce(p, entry, entryHead)
			pos = w.low - 1
			wi++
		}

		passed := (p.head == 0 && p.words[0] == 1) || equalsC(p)
		// Square through a^(2^r * d) for 0 <= r < baseJ, watching for n-1.
		for j := baseJ; !passed && j > 1 && (p.head > 0 || p.words[0] > 1); j-- {
			b.sqrReduce(p)
			passed = equalsC(p)
		}
		if !passed {
			return false
		}
	}
	return true
}

// SearchStats reports what a prime search did: wheel iterations, sieve
// rejections, Miller-Rabin invocations and full restarts.
type SearchStats struct {
	Iterations       int
	SieveRejections  int
	MillerRabinCalls int
	Resets           int
}

// sieveState caches candidate mod p for every sieve prime. The wheel walk
// then screens candidate+step by offsetting each cached residue, keeping
// the whole search incremental until the offset would overflow the reset
// threshold.
type sieveState struct {
	memory [sieveSize]uint16
}

// refreshMemory seeds the residue cache for the candidate, using
// n mod m = sum (limb[i] mod m) * (B mod m)^i.
func refreshMemory[W Word](s *sieveState, words []W) {
	maxw := uint64(maxWord[W]())
	for j := 0; j < sieveSize; j++ {
		m := uint64(primesSieve[j])
		baseFactor := (maxw%m + 1) % m
		output := uint64(words[0]) % m
		basePow := baseFactor
		for i := 1; i < len(words); i++ {
			output = (output + (uint64(words[i])%m)*basePow) % m
			basePow = (basePow * baseFactor) % m
		}
		s.memory[j] = uint16(output)
	}
}

// prepareCandidate forces the candidate odd with its top bit set and steps
// it to 1 mod 6 so the +4/+2 wheel lands only on 6k±1 values. The mod-3
// residue comes from a limb sum, using 2^bits = 1 (mod 3).
func prepareCandidate[W Word](p *Integer[W]) *Integer[W] {
	p.words[0] |= 1
	p.words[len(p.words)-1] |= msbMask[W]()
	var mod3 uint64
	for _, w := range p.words {
		mod3 = (mod3 + uint64(w)%3) % 3
	}
	switch mod3 {
	case 0: // p = 3 mod 6
		return p.Add(New[W](4))
	case 2: // p = 5 mod 6
		return p.Add(New[W](2))
	default:
		return p
	}
}

// RandomPrime returns a random probable prime of exactly wordcount limbs
// with the top bit set. When verbose, the iteration count of the search
// is logged.
func RandomPrime[W Word](wordcount int, verbose bool) *Integer[W] {
	p, stats := RandomPrimeStats[W](wordcount)
	if verbose {
		log.Info().
			Int("iterations", stats.Iterations).
			Int("sieve_rejections", stats.SieveRejections).
			Int("miller_rabin_calls", stats.MillerRabinCalls).
			Msg("prime search finished")
	}
	return p
}

// RandomPrimeStats is RandomPrime with search telemetry for the caller.
func RandomPrimeStats[W Word](wordcount int) (*Integer[W], SearchStats) {
	var stats SearchStats
	var sieve sieveState
	p := Random[W](wordcount, false)
	p = prepareCandidate(p)
	refreshMemory(&sieve, p.words)

	step, memoryStep, j := 0, 0, 0
	for {
		composite := false
		for i := 0; !composite && i < sieveSize; i++ {
			composite = (uint32(sieve.memory[i])+uint32(memoryStep))%primesSieve[i] == 0
		}
		if !composite {
			p = p.Add(New[W](int64(step)))
			step = 0
			stats.MillerRabinCalls++
			if IsProbablyPrime(p, primeSearchSteps) {
				stats.Iterations = j
				return p, stats
			}
		} else {
			stats.SieveRejections++
		}
		increment := 2
		if j&1 == 0 {
			increment = 4
		}
		step += increment
		memoryStep += increment
		j++
		// The residue cache only tracks offsets up to the int16 range; a
		// long search reseeds from a fresh candidate.
		if memoryStep >= math.MaxInt16 {
			stats.Resets++
			p = Random[W](wordcount, false)
			p = prepareCandidate(p)
			refreshMemory(&sieve, p.words)
			step, memoryStep, j = 0, 0, 0
		}
	}
}
