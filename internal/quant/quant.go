// Package quant implements quality-scaled quantization tables, zig-zag
// reordering, and coefficient quantization, per SPEC_FULL.md §4.4.
package quant

import "github.com/kordan/bjpeg/internal/dct"

// Table holds 64 quantization divisors in natural (row-major) order,
// matching dct.Coeffs's index convention.
type Table [64]int32

// baseLuma and baseChroma are the standard quantization tables from
// ITU-T T.81 Annex K, at quality 50, in natural row-major order.
var baseLuma = Table{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var baseChroma = Table{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// ScaleFactor maps a 1-100 quality setting to the IJG scaling percentage:
// below 50 the table grows (lower quality, more compression), above 50 it
// shrinks, with quality 50 leaving the base table unchanged.
func ScaleFactor(quality int) int {
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}
	if quality < 50 {
		return 5000 / quality
	}
	return 200 - 2*quality
}

// scale applies the IJG percentage scale to a base table, clamping every
// entry to [1, 255] as required by the single-byte DQT wire format.
func scale(base Table, quality int) Table {
	factor := ScaleFactor(quality)
	var out Table
	for i, v := range base {
		s := (int32(v)*int32(factor) + 50) / 100
		if s < 1 {
			s = 1
		} else if s > 255 {
			s = 255
		}
		out[i] = s
	}
	return out
}

// LumaTable returns the quality-scaled luma quantization table.
func LumaTable(quality int) Table { return scale(baseLuma, quality) }

// ChromaTable returns the quality-scaled chroma quantization table.
func ChromaTable(quality int) Table { return scale(baseChroma, quality) }

// zigzag[k] is the natural (row-major) index of the sample that belongs at
// zig-zag position k.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// ZigZag reorders 64 natural-order values into zig-zag scan order.
func ZigZag(natural [64]int32) [64]int32 {
	var out [64]int32
	for k, idx := range zigzag {
		out[k] = natural[idx]
	}
	return out
}

// Quantize divides each DCT coefficient by the matching table entry and
// rounds to the nearest integer, half-away-from-zero, matching the
// reference quantizer's tie-breaking (an exact .5 magnitude rounds toward
// zero instead, which only ever arises at the boundary and biases tiny
// high-frequency coefficients to 0 for better compression). coeffs must
// already be normalized (dct.Direct or dct.Separated output); for
// dct.Arai's unnormalized output use QuantizeArai instead.
func Quantize(coeffs dct.Coeffs, table Table) [64]int32 {
	var divisors [64]float64
	for i, v := range table {
		divisors[i] = float64(v)
	}
	return quantizeWithDivisors(coeffs, divisors)
}

// QuantizeArai quantizes the Arai DCT's unnormalized raw output. The Arai
// 1-D transform leaves each coefficient divided by dct.AraiScale[k]
// instead of applying that scale inline (see internal/dct); per
// SPEC_FULL.md §4.3/§9, that scaling must be absorbed into the
// quantization table here — Q'[m,n] = Q[m,n] / (AraiScale[m]*AraiScale[n])
// — rather than inside the transform, so that Quantize and QuantizeArai
// produce identical integer results for the same input block. table is
// the same quality-scaled table passed to Quantize; it is never mutated
// or written to the DQT segment in this adjusted form, only used as a
// divisor here.
func QuantizeArai(coeffs dct.Coeffs, table Table) [64]int32 {
	var divisors [64]float64
	for m := 0; m < 8; m++ {
		for n := 0; n < 8; n++ {
			i := m*8 + n
			divisors[i] = float64(table[i]) / (dct.AraiScale[m] * dct.AraiScale[n])
		}
	}
	return quantizeWithDivisors(coeffs, divisors)
}

func quantizeWithDivisors(coeffs dct.Coeffs, divisors [64]float64) [64]int32 {
	var out [64]int32
	for i := 0; i < 64; i++ {
		q := coeffs[i] / divisors[i]
		if q == 0.5 || q == -0.5 {
			out[i] = 0
			continue
		}
		out[i] = roundHalfAwayFromZero(q)
	}
	return out
}

func roundHalfAwayFromZero(v float64) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return int32(v - 0.5)
}
