// Package block extracts 8x8 sample blocks from a YCbCr raster.Image in
// minimum-coded-unit (MCU) scan order, per SPEC_FULL.md §4.2.
package block

import (
	"github.com/kordan/bjpeg/internal/colorspace"
	"github.com/kordan/bjpeg/internal/raster"
)

const size = 8

// Block is an 8x8 array of samples in natural (row-major, not zig-zag)
// order, already level-shifted to be centered around zero (see Extract).
type Block [64]int32

// At returns the sample at row r, column c (0..7 each).
func (b *Block) At(r, c int) int32 { return b[r*size+c] }

// Set stores the sample at row r, column c.
func (b *Block) Set(r, c int, v int32) { b[r*size+c] = v }

// MCU groups the blocks produced together for one minimum coded unit. For
// 4:2:0, Y holds four blocks (TL, TR, BL, BR of a 16x16 luma region); for
// 4:4:4, Y holds exactly one block. Cb and Cr always hold exactly one
// block, covering the same spatial region as the Y blocks.
type MCU struct {
	Y      []Block
	Cb, Cr Block
}

// Plan describes the block-grid geometry derived from an image's
// dimensions and subsampling mode, used by both the extractor and the
// writer to agree on padded dimensions and MCU counts.
type Plan struct {
	Sub            colorspace.Subsampling
	MCUWidth       int // luma pixels per MCU column (16 for 420, 8 for 444)
	MCUHeight      int // luma pixels per MCU row
	MCUsAcross     int
	MCUsDown       int
	PaddedLumaW    int
	PaddedLumaH    int
	PaddedChromaW  int
	PaddedChromaH  int
}

// NewPlan computes the MCU grid for an image of the given luma dimensions.
func NewPlan(lumaWidth, lumaHeight int, sub colorspace.Subsampling) Plan {
	sx, sy := sub.Factors()
	mcuW, mcuH := size*sx, size*sy
	p := Plan{
		Sub:       sub,
		MCUWidth:  mcuW,
		MCUHeight: mcuH,
	}
	p.MCUsAcross = ceilDiv(lumaWidth, mcuW)
	p.MCUsDown = ceilDiv(lumaHeight, mcuH)
	p.PaddedLumaW = p.MCUsAcross * mcuW
	p.PaddedLumaH = p.MCUsDown * mcuH
	p.PaddedChromaW = p.PaddedLumaW / sx
	p.PaddedChromaH = p.PaddedLumaH / sy
	return p
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Extract partitions img (already converted to YCbCr, per colorspace.ToYCbCr)
// into MCUs in scan order. Partial edge MCUs are padded by replicating the
// nearest existing sample (raster.Plane.At already implements edge
// replication for out-of-range coordinates). Samples are level-shifted by
// subtracting 128 so the DCT operates on values centered around zero.
func Extract(img *raster.Image, plan Plan) []MCU {
	y, cb, cr := img.Planes[0], img.Planes[1], img.Planes[2]
	sx, sy := plan.Sub.Factors()

	mcus := make([]MCU, 0, plan.MCUsAcross*plan.MCUsDown)
	blocksPerMCU := sx * sy

	for my := 0; my < plan.MCUsDown; my++ {
		for mx := 0; mx < plan.MCUsAcross; mx++ {
			mcu := MCU{Y: make([]Block, blocksPerMCU)}
			baseX, baseY := mx*plan.MCUWidth, my*plan.MCUHeight
			idx := 0
			for by := 0; by < sy; by++ {
				for bx := 0; bx < sx; bx++ {
					extractInto(&mcu.Y[idx], y, baseX+bx*size, baseY+by*size)
					idx++
				}
			}
			extractInto(&mcu.Cb, cb, baseX/sx, baseY/sy)
			extractInto(&mcu.Cr, cr, baseX/sx, baseY/sy)
			mcus = append(mcus, mcu)
		}
	}
	return mcus
}

func extractInto(b *Block, p *raster.Plane, x0, y0 int) {
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			b.Set(r, c, p.At(x0+c, y0+r)-128)
		}
	}
}
