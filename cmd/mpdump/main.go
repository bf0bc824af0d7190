// Command mpdump prints the multipart/form-data bodies found in a captured HTTP request stream
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/floordiv/snowdrop-multipart/multipart"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var input = pflag.StringP("input", "i", "-", "File with the raw client stream, - for stdin")
var chunkSize = pflag.IntP("chunk", "c", 4096, "Feed the input by this many bytes, 0 feeds it at once")
var boundary = pflag.StringP("boundary", "b", "", "Treat the input as a bare multipart body with this boundary instead of an HTTP stream")
var verbose = pflag.BoolP("verbose", "v", false, "Verbose (development) logging")
var maxParts = pflag.Int("max-parts", 0, "Maximum parts in a single body, 0 for the default")
var maxPartLength = pflag.Int("max-part-length", 0, "Maximum retained length of a single part, 0 for the default")
var preview = pflag.Int("preview", 64, "How many bytes of every value to print")

func main() {
	pflag.Parse()
	os.Exit(execute())
}

// execute returns the exit code, so the deferred calls run before the process exits
func execute() int {
	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)

		return 1
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Sugar()

	in, err := openInput(*input)
	if err != nil {
		log.Errorw("failed to open input", "input", *input, "error", err)

		return 1
	}
	defer in.Close()

	cfg := config{
		chunkSize: *chunkSize,
		boundary:  *boundary,
		preview:   *preview,
		multipart: multipart.Settings{
			MaxParts:      *maxParts,
			MaxPartLength: *maxPartLength,
			Logger:        log,
		},
	}

	if err = run(cfg, in, os.Stdout, log); err != nil {
		log.Errorw("dump failed", "input", *input, "error", err)

		return 1
	}

	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" || len(name) == 0 {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no such file: %s", name)
	}

	return file, err
}
