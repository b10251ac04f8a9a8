// Package dct implements the forward 8x8 discrete cosine transform used by
// the encoder, in three interchangeable variants that must agree on their
// quantized output: Direct (full double-sum cosine lookup), Separated
// (row/column 1-D passes of the same formula), and Arai (the Arai-Agui-
// Nakajima fast algorithm). See SPEC_FULL.md §4.3.
package dct

import (
	"math"

	"github.com/kordan/bjpeg/internal/block"
)

// Variant selects a forward-DCT implementation. All variants compute the
// same mathematical transform; they differ only in arithmetic strategy and
// operation count.
type Variant int

const (
	// Direct evaluates the full 2-D sum via a precomputed 8x8x8x8 cosine
	// lookup table. Simplest, and the slowest: O(N^4) per block.
	Direct Variant = iota
	// Separated performs the 2-D DCT as two passes of the 1-D DCT-II
	// formula (rows, then columns). O(N^3) per block.
	Separated
	// Arai uses the Arai-Agui-Nakajima factored algorithm: 5 real
	// multiplications and 29 additions per 1-D pass, applied to rows then
	// columns. O(N^2 log N)-ish in practice, the fastest of the three.
	Arai
)

// String names a Variant, for flag parsing and diagnostics.
func (v Variant) String() string {
	switch v {
	case Direct:
		return "direct"
	case Separated:
		return "separated"
	case Arai:
		return "arai"
	default:
		return "unknown"
	}
}

// ParseVariant maps a CLI flag value to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "direct":
		return Direct, true
	case "separated":
		return Separated, true
	case "arai":
		return Arai, true
	default:
		return 0, false
	}
}

// Coeffs holds the 64 forward-DCT output coefficients in natural
// (row-major, not zig-zag) order: Coeffs[u*8+v] is frequency (u, v).
type Coeffs [64]float64

// Transform computes the forward DCT of b using the given variant. Direct
// and Separated agree to within floating-point rounding on the normalized
// coefficient. Arai's raw output is unnormalized (see AraiScale) and must
// be compensated for at the quantization step, not here; SPEC_FULL.md
// requires that after that compensation, all three variants quantize to
// bit-identical results.
func Transform(b *block.Block, variant Variant) Coeffs {
	switch variant {
	case Direct:
		return direct(b)
	case Separated:
		return separated(b)
	case Arai:
		return arai(b)
	default:
		return direct(b)
	}
}

// --- Direct ---

// directLUT[i][j][x][y] is the product of the two cosine factors and the
// 1/4 * C(i) * C(j) normalization for output frequency (i, j) and input
// sample (x, y). Precomputed once at package init.
var directLUT [8][8][8][8]float64

func init() {
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			for x := 0; x < 8; x++ {
				for y := 0; y < 8; y++ {
					v := math.Cos(float64(2*x+1)*float64(i)*math.Pi/16) *
						math.Cos(float64(2*y+1)*float64(j)*math.Pi/16) * 0.25
					if i == 0 {
						v *= math.Sqrt2 / 2
					}
					if j == 0 {
						v *= math.Sqrt2 / 2
					}
					directLUT[i][j][x][y] = v
				}
			}
		}
	}
}

func direct(b *block.Block) Coeffs {
	var out Coeffs
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			var sum float64
			for x := 0; x < 8; x++ {
				for y := 0; y < 8; y++ {
					sum += float64(b.At(x, y)) * directLUT[i][j][x][y]
				}
			}
			out[i*8+j] = sum
		}
	}
	return out
}

// --- Separated ---

// cosTable[u][x] = cos((2x+1)*u*pi/16), shared by the separated 1-D pass.
var cosTable [8][8]float64

func init() {
	for u := 0; u < 8; u++ {
		for x := 0; x < 8; x++ {
			cosTable[u][x] = math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16)
		}
	}
}

// dct1D computes the 1-D forward DCT-II of an 8-element row, including the
// 0.5*C(u) normalization (C(0) = 1/sqrt2, else 1), so that two successive
// passes (rows then columns) yield the same scale as the direct method.
func dct1D(in [8]float64) (out [8]float64) {
	for u := 0; u < 8; u++ {
		var sum float64
		for x := 0; x < 8; x++ {
			sum += in[x] * cosTable[u][x]
		}
		sum *= 0.5
		if u == 0 {
			sum *= math.Sqrt2 / 2
		}
		out[u] = sum
	}
	return out
}

func separated(b *block.Block) Coeffs {
	var rows [8][8]float64
	for x := 0; x < 8; x++ {
		var row [8]float64
		for y := 0; y < 8; y++ {
			row[y] = float64(b.At(x, y))
		}
		rows[x] = dct1D(row)
	}
	var out Coeffs
	for v := 0; v < 8; v++ {
		var col [8]float64
		for x := 0; x < 8; x++ {
			col[x] = rows[x][v]
		}
		col = dct1D(col)
		for u := 0; u < 8; u++ {
			out[u*8+v] = col[u]
		}
	}
	return out
}

// --- Arai ---

// araiC[k] = cos(k*pi/16), the seed constants the rest of the algorithm's
// multipliers are derived from.
var araiC [8]float64

// araiA holds the four distinct multiplier values used between the two
// addition stages; araiA[0] is never used (kept for index parity with the
// reference derivation).
var araiA [6]float64

// AraiScale holds the per-output-index scale factor s[k] that the Arai
// 1-D transform leaves folded into its raw output instead of applying
// inline: arai1D's result at index k is the normalized coefficient
// divided by AraiScale[k]. SPEC_FULL.md §4.3/§9 requires this scaling be
// absorbed by the quantization table (see quant.QuantizeArai) rather than
// removed here, so a 1-D pass stays at 5 multiplications.
var AraiScale [8]float64

func init() {
	for k := 0; k < 8; k++ {
		araiC[k] = math.Cos(float64(k) * math.Pi / 16)
	}
	araiA[0] = 0
	araiA[1] = araiC[4]
	araiA[2] = araiC[2] - araiC[6]
	araiA[3] = araiC[4]
	araiA[4] = araiC[6] + araiC[2]
	araiA[5] = araiC[6]

	AraiScale[0] = 1 / (2 * math.Sqrt2)
	for k := 1; k < 8; k++ {
		AraiScale[k] = 1 / (4 * araiC[k])
	}
}

// arai1D runs the four-stage Arai-Agui-Nakajima factorization on an 8-
// element vector in place, using exactly 5 real multiplications (stage
// 2). The result is left unnormalized: output index k is the true DCT
// coefficient divided by AraiScale[k], not the final coefficient itself.
func arai1D(v *[8]float64) {
	// Stage 1: additions before the first multiplication.
	t0, t7 := v[0]+v[7], v[0]-v[7]
	t1, t6 := v[1]+v[6], v[1]-v[6]
	t2, t5 := v[2]+v[5], v[2]-v[5]
	t3, t4 := v[3]+v[4], v[3]-v[4]
	t10, t13 := t0+t3, t0-t3
	t11, t12 := t1+t2, t1-t2
	v[0], v[1], v[2], v[3] = t10+t11, t10-t11, t12+t13, t13
	v[4], v[5], v[6], v[7] = -t4-t5, t5+t6, t6+t7, t7

	// Stage 2: first multiplications.
	s2 := v[2]
	v[2] = s2 * araiA[1]
	afterA5 := -(v[4] + v[6]) * araiA[5]
	v[4] = afterA5 - v[4]*araiA[2]
	v[5] = v[5] * araiA[3]
	v[6] = afterA5 + v[6]*araiA[4]

	// Stage 3: additions before the second multiplication.
	s2 = v[2]
	v[2] = v[2] + v[3]
	v[3] = v[3] - s2
	f5 := v[5]
	v[5] = v[5] + v[7]
	v[7] = v[7] - f5
	f5 = v[5]
	v[5] = v[5] + v[6]
	v[6] = f5 - v[6]
	f4 := v[4]
	v[4] = v[4] + v[7]
	v[7] = v[7] - f4

	// Stage 4: output permutation only. The reference algorithm multiplies
	// each of these by AraiScale[k] here; that scaling is deliberately
	// deferred to quantization instead (see quant.QuantizeArai), so v[0]
	// and v[2] pass through unchanged and the rest are just reordered.
	a1, a3, a4, a6 := v[1], v[3], v[4], v[6]
	v[1] = v[5]
	v[3] = v[7]
	v[4] = a1
	v[5] = a4
	v[6] = a3
	v[7] = a6
}

func arai(b *block.Block) Coeffs {
	var rows [8][8]float64
	for x := 0; x < 8; x++ {
		var row [8]float64
		for y := 0; y < 8; y++ {
			row[y] = float64(b.At(x, y))
		}
		arai1D(&row)
		rows[x] = row
	}
	var out Coeffs
	for v := 0; v < 8; v++ {
		var col [8]float64
		for x := 0; x < 8; x++ {
			col[x] = rows[x][v]
		}
		arai1D(&col)
		for u := 0; u < 8; u++ {
			out[u*8+v] = col[u]
		}
	}
	return out
}
