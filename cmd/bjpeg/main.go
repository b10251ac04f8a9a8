// Command bjpeg encodes a PPM image into a baseline sequential JPEG file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bjpeg [input.ppm]",
	Short: "Encode a PPM raster to a baseline sequential JPEG",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncode,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntP("quality", "q", 75, "JPEG quality, 1-100")
	flags.String("dct", "arai", "forward DCT implementation: direct, separated, or arai")
	flags.String("subsample", "420", "chroma subsampling: 420 or 444")
	flags.StringP("output", "o", "", "output path (default: input path with .ppm replaced by .jpg)")
	flags.IntP("workers", "w", 0, "number of worker goroutines (default: GOMAXPROCS)")
	flags.BoolP("verbose", "v", false, "log per-stage diagnostics to stderr")
}
