package raster

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodePPMBinaryP6(t *testing.T) {
	// 2x1 image: red pixel, green pixel.
	data := []byte("P6\n2 1\n255\n\xff\x00\x00\x00\xff\x00")
	img, err := DecodePPM(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodePPM: %v", err)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("dims = %dx%d, want 2x1", img.Width, img.Height)
	}
	if r, g, b := img.Planes[0].At(0, 0), img.Planes[1].At(0, 0), img.Planes[2].At(0, 0); r != 255 || g != 0 || b != 0 {
		t.Errorf("pixel 0 = (%d,%d,%d), want (255,0,0)", r, g, b)
	}
	if r, g, b := img.Planes[0].At(1, 0), img.Planes[1].At(1, 0), img.Planes[2].At(1, 0); r != 0 || g != 255 || b != 0 {
		t.Errorf("pixel 1 = (%d,%d,%d), want (0,255,0)", r, g, b)
	}
}

func TestDecodePPMPlainTextP3(t *testing.T) {
	src := "P3\n# a comment\n2 2 255\n" +
		"255 0 0  0 255 0\n" +
		"0 0 255  255 255 255\n"
	img, err := DecodePPM(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodePPM: %v", err)
	}
	if r, g, b := img.Planes[0].At(1, 1), img.Planes[1].At(1, 1), img.Planes[2].At(1, 1); r != 255 || g != 255 || b != 255 {
		t.Errorf("pixel (1,1) = (%d,%d,%d), want (255,255,255)", r, g, b)
	}
}

func TestDecodePPMRescales16BitMaxValue(t *testing.T) {
	data := []byte("P6\n1 1\n65535\n\xff\xff\x00\x00\x00\x00")
	img, err := DecodePPM(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodePPM: %v", err)
	}
	if v := img.Planes[0].At(0, 0); v != 255 {
		t.Errorf("rescaled red = %d, want 255", v)
	}
}

func TestDecodePPMRejectsUnknownMagic(t *testing.T) {
	_, err := DecodePPM(strings.NewReader("P5\n1 1 255\n\x00"))
	if err == nil {
		t.Fatal("expected error for unsupported magic number")
	}
}

func TestDecodePPMRejectsNonPositiveDimensions(t *testing.T) {
	_, err := DecodePPM(strings.NewReader("P3\n0 4 255\n"))
	if err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestDecodePPMRejectsTruncatedData(t *testing.T) {
	data := []byte("P6\n2 2\n255\n\xff\x00\x00")
	_, err := DecodePPM(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for truncated pixel data")
	}
}
