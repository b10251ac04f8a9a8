package quant

import (
	"testing"

	"github.com/kordan/bjpeg/internal/block"
	"github.com/kordan/bjpeg/internal/dct"
)

func TestScaleFactorBoundaries(t *testing.T) {
	cases := []struct {
		quality int
		want    int
	}{
		{1, 5000},
		{50, 100},
		{100, 0},
		{90, 20},
	}
	for _, c := range cases {
		if got := ScaleFactor(c.quality); got != c.want {
			t.Errorf("ScaleFactor(%d) = %d, want %d", c.quality, got, c.want)
		}
	}
}

func TestLumaTableQuality50IsBase(t *testing.T) {
	got := LumaTable(50)
	if got[0] != 16 || got[63] != 99 {
		t.Errorf("quality-50 luma table should equal the base table, got %v", got)
	}
}

func TestZigZagSequence(t *testing.T) {
	var natural [64]int32
	for i := range natural {
		natural[i] = int32(i)
	}
	got := ZigZag(natural)
	want := [64]int32{
		0, 1, 8, 16, 9, 2, 3, 10,
		17, 24, 32, 25, 18, 11, 4, 5,
		12, 19, 26, 33, 40, 48, 41, 34,
		27, 20, 13, 6, 7, 14, 21, 28,
		35, 42, 49, 56, 57, 50, 43, 36,
		29, 22, 15, 23, 30, 37, 44, 51,
		58, 59, 52, 45, 38, 31, 39, 46,
		53, 60, 61, 54, 47, 55, 62, 63,
	}
	if got != want {
		t.Errorf("ZigZag sequence mismatch:\ngot  %v\nwant %v", got, want)
	}
}

func TestQuantizeFromReference(t *testing.T) {
	var c dct.Coeffs
	in := []float64{
		581.0, -144.0, 56.0, 17.0, 15.0, -7.0, 25.0, -9.0, -242.0, 133.0, -48.0, 42.0, -2.0,
		-7.0, 13.0, -4.0, 108.0, -18.0, -40.0, 71.0, -33.0, 12.0, 6.0, -10.0, -56.0, -93.0,
		48.0, 19.0, -8.0, 7.0, 6.0, -2.0, -17.0, 9.0, 7.0, -23.0, -3.0, -10.0, 5.0, 3.0, 4.0,
		9.0, -4.0, -5.0, 2.0, 2.0, -7.0, 3.0, -9.0, 7.0, 8.0, -6.0, 5.0, 12.0, 2.0, -5.0, -9.0,
		-4.0, -2.0, -3.0, 6.0, 1.0, -1.0, -1.0,
	}
	copy(c[:], in)

	var table Table
	for i := range table {
		table[i] = 50
	}

	want := [64]int32{
		12, -3, 1, 0, 0, 0, 0, 0,
		-5, 3, -1, 1, 0, 0, 0, 0,
		2, 0, -1, 1, -1, 0, 0, 0,
		-1, -2, 1, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	got := Quantize(c, table)
	if got != want {
		t.Errorf("Quantize mismatch:\ngot  %v\nwant %v", got, want)
	}
}

// TestQuantizeAraiMatchesDirect proves the Arai-specific divisor table
// absorbs the scaling the transform itself leaves out: quantizing the
// Arai variant's raw (unnormalized) output with QuantizeArai must produce
// the same integer coefficients as quantizing the Direct variant's
// normalized output with Quantize, for the same input block.
func TestQuantizeAraiMatchesDirect(t *testing.T) {
	var b block.Block
	v := int32(-120)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			b.Set(r, c, v)
			v += 5
			if v > 127 {
				v = -128
			}
		}
	}

	table := LumaTable(75)
	direct := Quantize(dct.Transform(&b, dct.Direct), table)
	arai := QuantizeArai(dct.Transform(&b, dct.Arai), table)
	if direct != arai {
		t.Errorf("QuantizeArai mismatch with Quantize(Direct):\narai   %v\ndirect %v", arai, direct)
	}
}
