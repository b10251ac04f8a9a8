package raster

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// DecodePPM reads a binary "P6" or plain-text "P3" PPM stream and returns
// the decoded image as three unsubsampled RGB planes (SX=SY=1 on every
// plane). Maximum sample values other than 255 are rescaled to 8-bit range,
// per §9's decision to convert to 8-bit before level shift.
//
// Unsupported magic numbers and max values are reported as
// UnsupportedError, non-integer tokens and non-positive dimensions as
// FormatError, and read failures (including truncated pixel data) as
// wrapped I/O errors; none of them panic.
func DecodePPM(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("raster: reading PPM magic: %w", err)
	}
	if magic != "P3" && magic != "P6" {
		return nil, UnsupportedError(fmt.Sprintf("magic number %q", magic))
	}

	width, err := readIntToken(br)
	if err != nil {
		return nil, fmt.Errorf("raster: reading width: %w", err)
	}
	height, err := readIntToken(br)
	if err != nil {
		return nil, fmt.Errorf("raster: reading height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, FormatError(fmt.Sprintf("non-positive dimensions %dx%d", width, height))
	}
	maxVal, err := readIntToken(br)
	if err != nil {
		return nil, fmt.Errorf("raster: reading max value: %w", err)
	}
	if maxVal <= 0 || maxVal > 65535 {
		return nil, UnsupportedError(fmt.Sprintf("max value %d", maxVal))
	}
	// The single whitespace byte following the max-value token is part of
	// the header per the PPM format and has already been consumed by
	// readIntToken's trailing-whitespace skip.

	img := &Image{
		Width:  width,
		Height: height,
		Space:  RGB,
		Planes: [3]*Plane{
			NewPlane(width, height, 1, 1),
			NewPlane(width, height, 1, 1),
			NewPlane(width, height, 1, 1),
		},
	}

	wide16 := maxVal > 255
	scale := func(v int) int32 {
		if maxVal == 255 {
			return int32(v)
		}
		return int32((v*255 + maxVal/2) / maxVal)
	}

	if magic == "P3" {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < 3; c++ {
					v, err := readIntToken(br)
					if err != nil {
						return nil, fmt.Errorf("raster: truncated pixel data at (%d,%d): %w", x, y, err)
					}
					img.Planes[c].Set(x, y, scale(v))
				}
			}
		}
		return img, nil
	}

	// P6: binary samples, big-endian if maxVal > 255.
	bytesPerSample := 1
	if wide16 {
		bytesPerSample = 2
	}
	row := make([]byte, width*3*bytesPerSample)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("raster: truncated pixel data at row %d: %w", y, err)
		}
		for x := 0; x < width; x++ {
			for c := 0; c < 3; c++ {
				var v int
				off := (x*3 + c) * bytesPerSample
				if wide16 {
					v = int(row[off])<<8 | int(row[off+1])
				} else {
					v = int(row[off])
				}
				img.Planes[c].Set(x, y, scale(v))
			}
		}
	}
	return img, nil
}

// readToken reads whitespace-delimited tokens, skipping "#"-prefixed
// comments as the PPM format requires.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		if b == '#' {
			for {
				c, err := br.ReadByte()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		if isPPMSpace(b) {
			if len(tok) > 0 {
				return string(tok), nil
			}
			continue
		}
		tok = append(tok, b)
	}
}

func readIntToken(br *bufio.Reader) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, FormatError(fmt.Sprintf("expected integer, got %q", tok))
	}
	return v, nil
}

func isPPMSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}
