package mpa

// Long division with normalization and two-limb quotient estimation.
//
// The divisor is left-shifted so that its top double-limb has the most
// significant bit set, the numerator is shifted alongside, and the main
// loop then produces two quotient limbs per step: a double-limb estimate
// from the top of the running remainder (never below the true value),
// refined by a four-limb checker comparison and, after the multiply-
// subtract, by an at-most-once add-back.
//
// The workspace is laid out as three K-limb slabs
// [quotient-or-remainder | shifted divisor | remainder correction] with
// K >= numerator head + 5.

// div3by2 divides the three-limb value (u2, u1, u0) by the normalized
// two-limb divisor (d1, d0), with d1's MSB set and (u2, u1) <= (d1, d0).
// Returns the single-limb quotient and the two-limb remainder.
func div3by2[W Word](u2, u1, u0, d1, d0 W) (q, r1, r0 W) {
	var rhat W
	rhatOverflow := false
	if u2 >= d1 {
		// Quotient saturates; skip the initial division.
		q = maxWord[W]()
		rhat, _ = addWW(u1, d1, 0)
		rhatOverflow = rhat < d1
	} else {
		q, rhat = divWW(u2, u1, d1)
	}
	for !rhatOverflow {
		ph, pl := mulWW(q, d0)
		if ph < rhat || (ph == rhat && pl <= u0) {
			break
		}
		q--
		prev := rhat
		rhat += d1
		rhatOverflow = rhat < prev
	}
	// Remainder via the full product, with a single add-back if the
	// estimate is still one too large.
	h0, p0 := mulWW(q, d0)
	h1, p1 := mulWW(q, d1)
	p1, c := addWW(p1, h0, 0)
	p2 := h1 + c
	var b W
	r0, b = subWW(u0, p0, 0)
	r1, b = subWW(u1, p1, b)
	_, b = subWW(u2, p2, b)
	if b != 0 {
		q--
		r0, c = addWW(r0, d0, 0)
		r1, _ = addWW(r1, d1, c)
	}
	return q, r1, r0
}

// div4by2 estimates the two-limb quotient of (a3, a2, a1, a0) divided by
// the normalized divisor (d1, d0), assuming (a3, a2) < (d1, d0).
func div4by2[W Word](a3, a2, a1, a0, d1, d0 W) (q1, q0 W) {
	q1, r1, r0 := div3by2(a3, a2, a1, d1, d0)
	q0, _, _ = div3by2(r1, r0, a0, d1, d0)
	return q1, q0
}

// divmod divides the numerator at l (head lHead) by the divisor at y
// (head yHead), writing the quotient or the remainder (per needRemainder)
// into output and returning the result head. workspace must be zeroed and
// hold 3*K limbs with K >= lHead+5; output must be zeroed and hold K limbs.
func divmod[W Word](l []W, lHead int, y []W, yHead int, output, workspace []W, K int, needRemainder bool) int {
	if lHead < yHead {
		if needRemainder {
			copy(output, l[:lHead+1])
			return lHead
		}
		output[0] = 0
		return 0
	}

	bitsIn := wordBits[W]()
	backshift := leadingZeroBits(y[yHead])
	if yHead&1 == 0 {
		backshift += bitsIn
	}
	backshiftWords := backshift / bitsIn
	backshiftBits := backshift - backshiftWords*bitsIn

	remainder := workspace[:K]
	quot := output
	if needRemainder {
		remainder, quot = output, workspace[:K]
	}

	n := shiftLeftWordsBits(l, lHead, backshiftBits, backshiftWords, remainder) + 1
	n += n & 1
	t := yHead + int(backshiftWords) + 1
	nn, tt := n/2-1, t/2-1
	offset := n - t
	shiftedYBase := workspace[K : 2*K]
	correction := workspace[2*K : 3*K]
	shiftLeftWordsBits(y, yHead, backshiftBits, backshiftWords, shiftedYBase[offset:])
	initialY := shiftedYBase[offset:]
	correctionSize := n
	shiftedYSize := t + offset
	shiftedYOff := 0         // rolling offset into shiftedYBase
	shiftedCorrOff := offset // rolling offset into correction

	d1, d0 := initialY[t-1], initialY[t-2]
	var checker [4]W
	if t > 2 {
		checker[0], checker[1] = initialY[t-4], initialY[t-3]
	}
	checker[2], checker[3] = d0, d1

	// Top fix: when the shifted numerator's top t limbs already cover the
	// divisor, take one out up front.
	if !compareWords(shiftedYBase, remainder, n) {
		quot[offset]++
		inplaceDecrement(remainder, shiftedYBase[:shiftedYSize])
	}

	wordsToClear := correctionSize - offset + 2
	loopBound := tt
	if tt == 0 {
		loopBound = 1
	}

	estimate := func(a3, a2, a1, a0 W) (W, W) {
		if a3 == d1 && a2 == d0 {
			return maxWord[W](), maxWord[W]()
		}
		return div4by2(a3, a2, a1, a0, d1, d0)
	}

	// One division step at remainder window i: estimate, check against the
	// four-limb checker, apply via multiply-subtract, add back once if the
	// subtraction went under. tmpTop substitutes the remainder top limbs in
	// the final step where the window would run below index zero.
	step := func(i int, qPos int, tmpTop []W) {
		q1, q0 := estimate(remainder[2*i+1], remainder[2*i], remainder[2*i-1], remainder[2*i-2])
		var est [6]W
		qw := [2]W{q0, q1}
		mulSchoolbook(checker[:], qw[:], 4, 2, est[:])
		top := tmpTop
		if top == nil {
			top = remainder[2*i-4 : 2*i+2]
		}
		for pass := 0; pass < 2; pass++ {
			if compareWords(est[:], top, 6) {
				var b W
				q0, b = subWW(q0, 1, 0)
				q1, _ = subWW(q1, 0, b)
				if pass == 0 {
					inplaceDecrement(est[:], checker[:])
				}
			} else {
				break
			}
		}
		shiftedYSize -= 2
		shiftedYOff += 2
		shiftedCorrOff -= 2
		clearWords(correction[shiftedCorrOff : shiftedCorrOff+wordsToClear])
		qw[0], qw[1] = q0, q1
		mulByDoubleword(qw[:], initialY, t, correction[shiftedCorrOff:])
		// Add-back pass: if the correction exceeds the remainder at the
		// target slot the estimate was still one too large.
		j := 0
		for j < wordsToClear && remainder[correctionSize-1-j] == correction[correctionSize-1-j] {
			j++
		}
		if j < wordsToClear && remainder[correctionSize-1-j] < correction[correctionSize-1-j] {
			var b W
			q0, b = subWW(q0, 1, 0)
			q1, _ = subWW(q1, 0, b)
			inplaceDecrement(correction, shiftedYBase[shiftedYOff:shiftedYOff+shiftedYSize])
		}
		quot[qPos] = q0
		if q1 != 0 {
			quot[qPos+1] = q1
		}
		inplaceDecrement(remainder, correction[:correctionSize])
	}

	i := nn
	for ; i > loopBound; i-- {
		step(i, 2*(i-tt-1), nil)
		correctionSize -= 2
	}
	if i == 1 && tt == 0 {
		tmp := []W{0, 0, remainder[0], remainder[1], remainder[2], remainder[3]}
		step(1, 0, tmp)
	}

	if needRemainder {
		remainderHead := findHead(remainder, K-1)
		if remainderHead+1 <= int(backshiftWords) {
			remainder[0] = 0
			return 0
		}
		wc := remainderHead + 1 - int(backshiftWords)
		copy(remainder, remainder[backshiftWords:backshiftWords+uint(wc)])
		clearWords(remainder[wc : remainderHead+1])
		return shiftRightBits(remainder, wc-1, backshiftBits)
	}
	return findHead(quot, offset)
}
