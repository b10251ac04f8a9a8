// Package jpegwriter assembles the final JFIF byte stream: SOI, APP0,
// DQT, SOF0, DHT, SOS, and EOI segments wrapping the entropy-coded scan
// data, per SPEC_FULL.md §4.8.
package jpegwriter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kordan/bjpeg/internal/bitstream"
	"github.com/kordan/bjpeg/internal/block"
	"github.com/kordan/bjpeg/internal/coeff"
	"github.com/kordan/bjpeg/internal/colorspace"
	"github.com/kordan/bjpeg/internal/dct"
	"github.com/kordan/bjpeg/internal/huffman"
	"github.com/kordan/bjpeg/internal/quant"
	"github.com/kordan/bjpeg/internal/raster"
	"github.com/kordan/bjpeg/internal/workerpool"
)

const (
	soiMarker = 0xd8
	app0Marker = 0xe0
	dqtMarker = 0xdb
	sof0Marker = 0xc0
	dhtMarker = 0xc4
	sosMarker = 0xda
	eoiMarker = 0xd9
)

// componentID values for the SOF0/SOS component lists; 1 = Y, 2 = Cb, 3 = Cr.
const (
	compY = 1
	compCb = 2
	compCr = 3
)

// Options configures a single Encode call.
type Options struct {
	Quality    int // 1-100, default 75
	Variant    dct.Variant
	Sub        colorspace.Subsampling
	NumWorkers int // 0 selects GOMAXPROCS
}

// DefaultQuality is used when Options.Quality is out of range or zero.
const DefaultQuality = 75

// Encode writes img as a baseline sequential sRGB-to-YCbCr JFIF stream to w.
//
// Invariant violations (a Huffman table exceeding the Kraft bound, an
// all-ones max-length code) are bugs, never a property of valid input;
// Encode recovers from them and reports an error rather than crashing the
// caller.
func Encode(w io.Writer, img *raster.Image, opt Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("jpegwriter: internal error: %v", r)
		}
	}()
	return encode(w, img, opt)
}

func encode(w io.Writer, img *raster.Image, opt Options) error {
	quality := opt.Quality
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	ycbcr := colorspace.ToYCbCr(img, opt.Sub)
	plan := block.NewPlan(img.Width, img.Height, opt.Sub)
	mcus := block.Extract(ycbcr, plan)

	lumaQuant := quant.LumaTable(quality)
	chromaQuant := quant.ChromaTable(quality)

	type quantizedBlock struct {
		dc  int32
		ac  [64]int32 // zig-zag, index 0 unused (DC carried separately)
	}
	sx, sy := opt.Sub.Factors()
	blocksPerMCU := sx*sy + 2
	quantized := make([][]quantizedBlock, len(mcus))
	for i := range quantized {
		quantized[i] = make([]quantizedBlock, blocksPerMCU)
	}

	pool := workerpool.New(opt.NumWorkers)
	pool.Process(len(mcus), func(i int) {
		mcu := &mcus[i]
		out := quantized[i]
		idx := 0
		for b := range mcu.Y {
			out[idx] = quantizeBlock(&mcu.Y[b], lumaQuant, opt.Variant)
			idx++
		}
		out[idx] = quantizeBlock(&mcu.Cb, chromaQuant, opt.Variant)
		idx++
		out[idx] = quantizeBlock(&mcu.Cr, chromaQuant, opt.Variant)
	})

	lumaFreq := map[byte]int{}
	lumaACFreq := map[byte]int{}
	chromaFreq := map[byte]int{}
	chromaACFreq := map[byte]int{}
	lumaPrev, cbPrev, crPrev := int32(0), int32(0), int32(0)
	yPerMCU := sx * sy

	scratch := coeff.GetTerms()
	defer coeff.PutTerms(scratch)
	for _, mcu := range quantized {
		for i := 0; i < yPerMCU; i++ {
			diff := mcu[i].dc - lumaPrev
			lumaPrev = mcu[i].dc
			lumaFreq[coeff.EncodeDC(diff).Symbol]++
			scratch = coeff.EncodeACInto(scratch[:0], mcu[i].ac)
			for _, t := range scratch {
				lumaACFreq[t.Symbol]++
			}
		}
		cb := mcu[yPerMCU]
		diff := cb.dc - cbPrev
		cbPrev = cb.dc
		chromaFreq[coeff.EncodeDC(diff).Symbol]++
		scratch = coeff.EncodeACInto(scratch[:0], cb.ac)
		for _, t := range scratch {
			chromaACFreq[t.Symbol]++
		}
		cr := mcu[yPerMCU+1]
		diff = cr.dc - crPrev
		crPrev = cr.dc
		chromaFreq[coeff.EncodeDC(diff).Symbol]++
		scratch = coeff.EncodeACInto(scratch[:0], cr.ac)
		for _, t := range scratch {
			chromaACFreq[t.Symbol]++
		}
	}

	lumaDCTable := huffman.Build(lumaFreq)
	lumaACTable := huffman.Build(lumaACFreq)
	chromaDCTable := huffman.Build(chromaFreq)
	chromaACTable := huffman.Build(chromaACFreq)
	for _, t := range []huffman.Table{lumaDCTable, lumaACTable, chromaDCTable, chromaACTable} {
		t.CheckKraft()
	}

	bw := bufio.NewWriter(w)
	if err := writeSOI(bw); err != nil {
		return err
	}
	if err := writeAPP0(bw); err != nil {
		return err
	}
	if err := writeDQT(bw, lumaQuant, chromaQuant); err != nil {
		return err
	}
	if err := writeSOF0(bw, img.Width, img.Height, sx, sy); err != nil {
		return err
	}
	if err := writeDHT(bw, lumaDCTable, lumaACTable, chromaDCTable, chromaACTable); err != nil {
		return err
	}
	if err := writeSOS(bw); err != nil {
		return err
	}

	entropy := bitstream.New(bw)
	lumaDCCodes := lumaDCTable.Codes()
	lumaACCodes := lumaACTable.Codes()
	chromaDCCodes := chromaDCTable.Codes()
	chromaACCodes := chromaACTable.Codes()

	emitScratch := coeff.GetTerms()
	defer coeff.PutTerms(emitScratch)
	lumaPrev, cbPrev, crPrev = 0, 0, 0
	for _, mcu := range quantized {
		for i := 0; i < yPerMCU; i++ {
			lumaPrev, emitScratch = emitBlock(entropy, mcu[i].dc, lumaPrev, mcu[i].ac, lumaDCCodes, lumaACCodes, emitScratch)
		}
		cb := mcu[yPerMCU]
		cbPrev, emitScratch = emitBlock(entropy, cb.dc, cbPrev, cb.ac, chromaDCCodes, chromaACCodes, emitScratch)
		cr := mcu[yPerMCU+1]
		crPrev, emitScratch = emitBlock(entropy, cr.dc, crPrev, cr.ac, chromaDCCodes, chromaACCodes, emitScratch)
	}
	if err := entropy.Flush(); err != nil {
		return err
	}

	if err := writeEOI(bw); err != nil {
		return err
	}
	return bw.Flush()
}

func quantizeBlock(b *block.Block, table quant.Table, variant dct.Variant) struct {
	dc int32
	ac [64]int32
} {
	coeffs := dct.Transform(b, variant)
	var natural [64]int32
	if variant == dct.Arai {
		natural = quant.QuantizeArai(coeffs, table)
	} else {
		natural = quant.Quantize(coeffs, table)
	}
	zz := quant.ZigZag(natural)
	return struct {
		dc int32
		ac [64]int32
	}{dc: zz[0], ac: zz}
}

func emitBlock(w *bitstream.Writer, dc, prevDC int32, ac [64]int32, dcCodes, acCodes map[byte]huffman.Code, scratch []coeff.Term) (int32, []coeff.Term) {
	diff := dc - prevDC
	dcTerm := coeff.EncodeDC(diff)
	emitTerm(w, dcTerm, dcCodes)
	scratch = coeff.EncodeACInto(scratch[:0], ac)
	for _, t := range scratch {
		emitTerm(w, t, acCodes)
	}
	return dc, scratch
}

func emitTerm(w *bitstream.Writer, t coeff.Term, codes map[byte]huffman.Code) {
	code := codes[t.Symbol]
	w.Emit(uint32(code.Bits), uint32(code.Length))
	if t.Bits > 0 {
		w.Emit(t.Value, uint32(t.Bits))
	}
}

func writeSOI(w *bufio.Writer) error {
	_, err := w.Write([]byte{0xff, soiMarker})
	return err
}

func writeEOI(w *bufio.Writer) error {
	_, err := w.Write([]byte{0xff, eoiMarker})
	return err
}

func writeAPP0(w *bufio.Writer) error {
	data := []byte{
		0xff, app0Marker, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, // version 1.01
		0x00,             // aspect ratio units: none
		0x00, 0x01, 0x00, 0x01, // X density, Y density
		0x00, 0x00, // no thumbnail
	}
	_, err := w.Write(data)
	return err
}

func writeSegmentHeader(w *bufio.Writer, marker byte, length int) error {
	_, err := w.Write([]byte{0xff, marker, byte(length >> 8), byte(length)})
	return err
}

func writeDQT(w *bufio.Writer, luma, chroma quant.Table) error {
	length := 2 + 2*(1+64)
	if err := writeSegmentHeader(w, dqtMarker, length); err != nil {
		return err
	}
	for idx, table := range []quant.Table{luma, chroma} {
		if err := w.WriteByte(byte(idx)); err != nil {
			return err
		}
		zz := quant.ZigZag(table)
		for _, v := range zz {
			if err := w.WriteByte(byte(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSOF0(w *bufio.Writer, width, height, sx, sy int) error {
	length := 8 + 3*3
	if err := writeSegmentHeader(w, sof0Marker, length); err != nil {
		return err
	}
	header := []byte{
		8, // sample precision
		byte(height >> 8), byte(height),
		byte(width >> 8), byte(width),
		3, // number of components
		compY, byte(sx<<4 | sy), 0,
		compCb, 0x11, 1,
		compCr, 0x11, 1,
	}
	_, err := w.Write(header)
	return err
}

func writeDHT(w *bufio.Writer, lumaDC, lumaAC, chromaDC, chromaAC huffman.Table) error {
	tables := []struct {
		class int // 0 = DC, 1 = AC
		id    int
		table huffman.Table
	}{
		{0, 0, lumaDC},
		{1, 0, lumaAC},
		{0, 1, chromaDC},
		{1, 1, chromaAC},
	}
	length := 2
	for _, t := range tables {
		length += 1 + 16 + len(t.table.Values)
	}
	if err := writeSegmentHeader(w, dhtMarker, length); err != nil {
		return err
	}
	for _, t := range tables {
		if err := w.WriteByte(byte(t.class<<4 | t.id)); err != nil {
			return err
		}
		for l := 1; l <= 16; l++ {
			if err := w.WriteByte(t.table.Counts[l]); err != nil {
				return err
			}
		}
		if _, err := w.Write(t.table.Values); err != nil {
			return err
		}
	}
	return nil
}

func writeSOS(w *bufio.Writer) error {
	header := []byte{
		0xff, sosMarker, 0x00, 0x0c,
		3,
		compY, 0x00,
		compCb, 0x11,
		compCr, 0x11,
		0x00, 0x3f, 0x00,
	}
	_, err := w.Write(header)
	return err
}
