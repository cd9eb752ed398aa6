// Command pcdecode decodes Draco point clouds and reports their attributes.
//
//	pcdecode -draco draco_decoder.wasm -semantics POSITION,RGBA cloud.drc [more.drc.zst ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/draco/wasmdraco"
	"github.com/wippyai/draco-decoder/errors"
	"github.com/wippyai/draco-decoder/pointcloud"
	"github.com/wippyai/draco-decoder/worker"
)

func main() {
	var (
		dracoFile  = flag.String("draco", "", "Path to the Draco decoder wasm (.wasm, .wasm.gz, .wasm.zst)")
		semantics  = flag.String("semantics", "POSITION", "Comma separated semantics (POSITION,NORMAL,RGB,RGBA,BATCH_ID)")
		dequantize = flag.Bool("dequantize", false, "Keep POSITION quantized and NORMAL octahedron encoded")
		asJSON     = flag.Bool("json", false, "Write results as JSON")
		verbose    = flag.Bool("v", false, "Verbose logging to stderr")
	)
	flag.Parse()

	if *dracoFile == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pcdecode -draco <decoder.wasm> [-semantics POSITION,RGBA] [-dequantize] [-json] [-v] <file.drc>...")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		dracoFile:  *dracoFile,
		semantics:  *semantics,
		dequantize: *dequantize,
		files:      flag.Args(),
		logger:     logger,
	}

	reports, err := run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *asJSON:
		err = writeJSON(os.Stdout, reports)
	case term.IsTerminal(int(os.Stdout.Fd())):
		err = writeStyled(os.Stdout, reports)
	default:
		err = writePlain(os.Stdout, reports)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, rep := range reports {
		if rep.Err != nil {
			os.Exit(1)
		}
	}
}

type options struct {
	logger     *zap.Logger
	dracoFile  string
	semantics  string
	files      []string
	dequantize bool
}

// run decodes every file. Per-file decode errors are reported, not returned.
func run(ctx context.Context, opts options) ([]fileReport, error) {
	sems, err := parseSemantics(opts.semantics)
	if err != nil {
		return nil, err
	}

	wasmdraco.SetLogger(opts.logger)
	dec := pointcloud.NewDecoder(wasmLoader(opts.dracoFile, opts.logger), pointcloud.WithLogger(opts.logger))
	return decodeFiles(ctx, dec, opts.files, sems, opts.dequantize, opts.logger)
}

// decodeFiles reads all files and feeds them through a single processor.
func decodeFiles(ctx context.Context, dec worker.Decoder, files []string, sems []pointcloud.Semantic, dequantize bool, logger *zap.Logger) ([]fileReport, error) {
	inputs, err := readInputs(ctx, files)
	if err != nil {
		return nil, err
	}

	proc := worker.New(dec, worker.Config{Logger: logger, QueueSize: len(inputs)})
	defer func() {
		proc.Close()
		logger.Debug("processor stopped", zap.Stringer("stats", proc.Stats()))
	}()

	reports := make([]fileReport, len(inputs))
	var g errgroup.Group
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := proc.Submit(ctx, pointcloud.Request{
				Buffer:             in.data,
				Semantics:          sems,
				DequantizeInShader: dequantize,
			})
			reports[i] = fileReport{Path: in.path, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return reports, ctx.Err()
}

// wasmLoader loads the decoder wasm on first use.
func wasmLoader(path string, logger *zap.Logger) pointcloud.Loader {
	return func(ctx context.Context) (draco.Module, error) {
		wasm, err := readFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loading draco decoder", zap.String("path", path), zap.Int("bytes", len(wasm)))
		return wasmdraco.Load(ctx, wasm, wasmdraco.WithOutput(io.Discard, os.Stderr))
	}
}

// parseSemantics parses a comma separated list. Names are case-insensitive.
func parseSemantics(s string) ([]pointcloud.Semantic, error) {
	var out []pointcloud.Semantic
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sem, err := pointcloud.ParseSemantic(part)
		if err != nil {
			return nil, err
		}
		out = append(out, sem)
	}
	if len(out) == 0 {
		return nil, errors.InvalidInput(errors.PhaseResolve, "no semantics requested")
	}
	return out, nil
}
