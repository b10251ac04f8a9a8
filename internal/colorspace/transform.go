// Package colorspace implements the RGB-to-YCbCr color transform and
// chroma downsampling described in SPEC_FULL.md §4.1.
package colorspace

import (
	"math"

	"github.com/kordan/bjpeg/internal/raster"
)

// Subsampling names a supported chroma subsampling mode. Only 4:2:0 and
// 4:4:4 are implemented; see SPEC_FULL.md §10/§11.
type Subsampling int

const (
	// Subsample420 halves chroma resolution in both dimensions.
	Subsample420 Subsampling = iota
	// Subsample444 carries chroma at full resolution (no subsampling).
	Subsample444
)

// Factors returns the (sx, sy) subsampling factors for the chroma planes
// under this mode.
func (s Subsampling) Factors() (sx, sy int) {
	if s == Subsample444 {
		return 1, 1
	}
	return 2, 2
}

// ToYCbCr converts an RGB raster.Image to YCbCr, downsampling the chroma
// planes according to sub. The luma plane is never subsampled.
//
// Coefficients are the ITU-R BT.601 constants named in SPEC_FULL.md §4.1.
// Rounding is half-away-from-zero at the final integer conversion.
func ToYCbCr(img *raster.Image, sub Subsampling) *raster.Image {
	w, h := img.Width, img.Height
	r, g, b := img.Planes[0], img.Planes[1], img.Planes[2]

	yPlane := raster.NewPlane(w, h, 1, 1)
	// Full-resolution Cb/Cr scratch planes, downsampled afterward.
	cbFull := raster.NewPlane(w, h, 1, 1)
	crFull := raster.NewPlane(w, h, 1, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rr := float64(r.At(x, y))
			gg := float64(g.At(x, y))
			bb := float64(b.At(x, y))

			yy := 0.299*rr + 0.587*gg + 0.114*bb
			cb := -0.168736*rr - 0.331264*gg + 0.5*bb + 128
			cr := 0.5*rr - 0.418688*gg - 0.081312*bb + 128

			yPlane.Set(x, y, roundClamp(yy))
			cbFull.Set(x, y, roundClamp(cb))
			crFull.Set(x, y, roundClamp(cr))
		}
	}

	sx, sy := sub.Factors()
	out := &raster.Image{
		Width:  w,
		Height: h,
		Space:  raster.YCbCr,
		Planes: [3]*raster.Plane{
			yPlane,
			downsample(cbFull, sx, sy),
			downsample(crFull, sx, sy),
		},
	}
	return out
}

// roundClamp rounds half-away-from-zero and clamps to [0, 255].
func roundClamp(v float64) int32 {
	r := math.Round(v)
	if r < 0 {
		r = 0
	} else if r > 255 {
		r = 255
	}
	return int32(r)
}

// downsample averages every sx*sy rectangle of src into a single output
// sample, rounded half-away-from-zero. Edges whose rectangle runs past the
// source bounds are handled by Plane.At's edge-replication.
func downsample(src *raster.Plane, sx, sy int) *raster.Plane {
	if sx == 1 && sy == 1 {
		out := raster.NewPlane(src.Width, src.Height, 1, 1)
		copy(out.Pix, src.Pix)
		return out
	}
	outW := ceilDiv(src.Width, sx)
	outH := ceilDiv(src.Height, sy)
	out := raster.NewPlane(outW, outH, sx, sy)
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			var sum int32
			for j := 0; j < sy; j++ {
				for i := 0; i < sx; i++ {
					sum += src.At(ox*sx+i, oy*sy+j)
				}
			}
			n := int32(sx * sy)
			out.Set(ox, oy, (sum+n/2)/n)
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
