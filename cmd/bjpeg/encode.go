package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kordan/bjpeg/internal/colorspace"
	"github.com/kordan/bjpeg/internal/dct"
	"github.com/kordan/bjpeg/internal/jpegwriter"
	"github.com/kordan/bjpeg/internal/raster"
)

func runEncode(cmd *cobra.Command, args []string) error {
	inPath := args[0]

	quality, _ := cmd.Flags().GetInt("quality")
	dctName, _ := cmd.Flags().GetString("dct")
	subName, _ := cmd.Flags().GetString("subsample")
	outPath, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := newLogger(verbose)

	variant, ok := dct.ParseVariant(dctName)
	if !ok {
		return fmt.Errorf("unknown --dct value %q (want direct, separated, or arai)", dctName)
	}
	sub, ok := parseSubsampling(subName)
	if !ok {
		return fmt.Errorf("unknown --subsample value %q (want 420 or 444)", subName)
	}
	if outPath == "" {
		outPath = deriveOutputPath(inPath)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer in.Close()

	start := time.Now()
	img, err := raster.DecodePPM(in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inPath, err)
	}
	logger.Info("decoded PPM", "path", inPath, "width", img.Width, "height", img.Height, "elapsed", time.Since(start))

	opt := jpegwriter.Options{
		Quality:    quality,
		Variant:    variant,
		Sub:        sub,
		NumWorkers: workers,
	}
	logger.Info("encoding", "quality", opt.Quality, "dct", variant.String(), "subsample", subName, "workers", workers)

	var buf bytes.Buffer
	encodeStart := time.Now()
	if err := jpegwriter.Encode(&buf, img, opt); err != nil {
		return fmt.Errorf("encoding %s: %w", outPath, err)
	}
	logger.Info("encoded JPEG", "elapsed", time.Since(encodeStart))

	if err := writeFileAtomically(outPath, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	logger.Info("wrote JPEG", "path", outPath, "bytes", buf.Len())

	return nil
}

// writeFileAtomically stages data in a temp file next to path, then renames
// it into place, so a crash or I/O failure partway through never leaves a
// truncated file at path: either the rename happens after the full stream
// is known good, or path is untouched.
func writeFileAtomically(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bjpeg-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseSubsampling(s string) (colorspace.Subsampling, bool) {
	switch s {
	case "420":
		return colorspace.Subsample420, true
	case "444":
		return colorspace.Subsample444, true
	default:
		return 0, false
	}
}

func deriveOutputPath(inPath string) string {
	if trimmed := strings.TrimSuffix(inPath, ".ppm"); trimmed != inPath {
		return trimmed + ".jpg"
	}
	return inPath + ".jpg"
}
