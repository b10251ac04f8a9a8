// Package huffman builds length-limited canonical Huffman tables for JPEG
// entropy coding, per SPEC_FULL.md §4.6. Code lengths are restricted to 16
// bits, as required by the DHT segment's BITS array, and the all-ones code
// of maximum length is never assigned (reserved by the JPEG specification).
package huffman

import "sort"

// maxCodeLength is the longest Huffman code a JPEG DHT segment can encode.
const maxCodeLength = 16

// Code is a single symbol's Huffman code: Bits significant bits, value in
// Code's low bits, MSB first when emitted to the bit stream.
type Code struct {
	Length uint8
	Bits   uint16
}

// Table is a canonical Huffman table in JPEG DHT wire form: Counts[l] is
// the number of symbols assigned an l-bit code (l in 1..16, Counts[0]
// unused), and Values lists the symbols in order of increasing code
// length. Within one length, Build orders symbols by their code length
// before the 16-bit fold, then by symbol value.
type Table struct {
	Counts [maxCodeLength + 1]byte
	Values []byte
}

// Build constructs a length-limited canonical Huffman table from a symbol
// frequency histogram. Symbols with zero frequency are omitted. An empty
// histogram produces an empty table.
//
// The construction follows the classic length-limited Huffman algorithm
// used by the reference JPEG tooling (IJG's merge chain over linked lists
// of code lengths): a dummy guard symbol with frequency 1 is added so a
// single real symbol still receives a 1-bit code, code lengths are
// accumulated by repeatedly merging the two least frequent remaining
// groups, then any lengths that overflow 16 bits are folded back down by
// trading a pair of max-length codes for one code one bit shorter. One
// code slot at the longest remaining length is then discarded, which is
// exactly what creates the reserved all-ones slot. This is not
// package-merge: when the fold runs, the resulting lengths are not
// guaranteed to be optimal under the 16-bit limit.
func Build(freq map[byte]int) Table {
	var symbols []int
	var f [257]int64
	for sym, n := range freq {
		if n <= 0 {
			continue
		}
		symbols = append(symbols, int(sym))
		f[sym] = int64(n)
	}
	if len(symbols) == 0 {
		return Table{}
	}
	sort.Ints(symbols)

	const guard = 256
	symbols = append(symbols, guard)
	f[guard] = 1

	codesize := make(map[int]int, len(symbols))
	other := make(map[int]int, len(symbols))
	for _, s := range symbols {
		codesize[s] = 0
		other[s] = -1
	}

	active := make(map[int]bool, len(symbols))
	for _, s := range symbols {
		active[s] = true
	}

	for {
		v1, ok1 := leastFrequent(f, active, -1)
		if !ok1 {
			break
		}
		v2, ok2 := leastFrequent(f, active, v1)
		if !ok2 {
			break
		}

		f[v1] += f[v2]
		active[v2] = false

		for {
			codesize[v1]++
			if other[v1] == -1 {
				break
			}
			v1 = other[v1]
		}
		other[v1] = v2

		for {
			codesize[v2]++
			if other[v2] == -1 {
				break
			}
			v2 = other[v2]
		}
	}

	var bits [33]int
	for s := range codesize {
		bits[codesize[s]]++
	}
	// Fold any code lengths beyond 16 bits back down: trade a pair of
	// length-i codes for one length-(i-1) code and lengthen one code at the
	// longest length j below i-1 that has any codes by one bit to absorb
	// the difference.
	for i := 32; i > maxCodeLength; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}
	last := maxCodeLength
	for bits[last] == 0 {
		last--
	}
	bits[last]--

	// huffval is built by walking symbols in order of their pre-limiting
	// codesize, then consuming them length-bucket by length-bucket using
	// the post-limiting bits[] counts. Total counts are preserved through
	// the folding above, so this always consumes exactly len(ordered)
	// symbols.
	type symLen struct {
		sym int
		len int
	}
	ordered := make([]symLen, 0, len(symbols)-1)
	for _, s := range symbols {
		if s == guard {
			continue
		}
		ordered = append(ordered, symLen{sym: s, len: codesize[s]})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].len != ordered[j].len {
			return ordered[i].len < ordered[j].len
		}
		return ordered[i].sym < ordered[j].sym
	})

	var table Table
	idx := 0
	for length := 1; length <= maxCodeLength; length++ {
		for c := 0; c < bits[length]; c++ {
			table.Values = append(table.Values, byte(ordered[idx].sym))
			idx++
		}
		table.Counts[length] = byte(bits[length])
	}
	return table
}

func leastFrequent(f [257]int64, active map[int]bool, exclude int) (int, bool) {
	best := -1
	var bestFreq int64
	for s, on := range active {
		if !on || s == exclude {
			continue
		}
		if best == -1 || f[s] < bestFreq || (f[s] == bestFreq && s < best) {
			best = s
			bestFreq = f[s]
		}
	}
	return best, best != -1
}

// KraftSumExceeded reports that a table's code lengths violate the Kraft
// inequality for a 16-bit-max prefix code. This indicates a bug in Build,
// never a property of the input histogram.
type KraftSumExceeded struct {
	Sum uint32
}

func (e KraftSumExceeded) Error() string {
	return "huffman: Kraft sum exceeds 2^16"
}

// CheckKraft panics with KraftSumExceeded if t's code lengths don't satisfy
// Σ Counts[l]*2^(16-l) <= 2^16, and with a plain message if any length-16
// code is all ones.
// Build is expected to always produce a valid table; this is a guard
// against that invariant breaking, not a recoverable input error.
func (t Table) CheckKraft() {
	var sum uint32
	for l := 1; l <= maxCodeLength; l++ {
		sum += uint32(t.Counts[l]) << uint(maxCodeLength-l)
	}
	if sum > 1<<maxCodeLength {
		panic(KraftSumExceeded{Sum: sum})
	}
	codes := t.Codes()
	allOnes := uint16(1<<maxCodeLength - 1)
	for _, code := range codes {
		if code.Length == maxCodeLength && code.Bits == allOnes {
			panic("huffman: all-ones code assigned at max length")
		}
	}
}

// Codes assigns canonical JPEG codes to a Table's symbols: within each
// code length the codes are consecutive, and moving to the next length
// shifts the running code left by one bit, per ITU-T T.81 Annex C.
func (t Table) Codes() map[byte]Code {
	codes := make(map[byte]Code, len(t.Values))
	code := uint16(0)
	idx := 0
	for length := 1; length <= maxCodeLength; length++ {
		for c := byte(0); c < t.Counts[length]; c++ {
			codes[t.Values[idx]] = Code{Length: uint8(length), Bits: code}
			code++
			idx++
		}
		code <<= 1
	}
	return codes
}
