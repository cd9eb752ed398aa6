// Package worker runs point cloud decodes on a dedicated goroutine.
//
// A Processor owns one decoder and feeds it requests strictly one at a
// time, in submission order. Callers block in Submit until their request
// has been decoded. Panics raised while decoding are recovered and
// returned as errors so a single malformed input cannot take the
// processor down.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/draco-decoder/errors"
	"github.com/wippyai/draco-decoder/pointcloud"
)

// Decoder is the work performed for each request.
type Decoder interface {
	Decode(ctx context.Context, req pointcloud.Request) (*pointcloud.Result, error)
}

// Config configures a Processor.
type Config struct {
	// Logger receives one line per task. nil disables logging.
	Logger *zap.Logger
	// QueueSize bounds the number of requests waiting to be decoded.
	// Submit blocks while the queue is full. Defaults to 16.
	QueueSize int
}

const defaultQueueSize = 16

// Stats counts finished tasks.
type Stats struct {
	Decoded uint64
	Failed  uint64
	Panics  uint64
}

type outcome struct {
	res *pointcloud.Result
	err error
}

type task struct {
	ctx  context.Context
	done chan outcome
	req  pointcloud.Request
	id   uint64
}

// Processor serializes decode requests onto a single goroutine.
type Processor struct {
	dec      Decoder
	logger   *zap.Logger
	tasks    chan *task
	wg       sync.WaitGroup
	submitMu sync.RWMutex
	seq      atomic.Uint64
	decoded  atomic.Uint64
	failed   atomic.Uint64
	panics   atomic.Uint64
	closed   atomic.Bool
}

// New starts a Processor around dec.
func New(dec Decoder, cfg Config) *Processor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	p := &Processor{
		dec:    dec,
		logger: cfg.Logger,
		tasks:  make(chan *task, cfg.QueueSize),
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// Submit decodes req on the processor goroutine and waits for the result.
//
// If ctx ends before the request is picked up it is skipped; if it ends
// while the request is running Submit returns ctx.Err() and the result is
// discarded.
func (p *Processor) Submit(ctx context.Context, req pointcloud.Request) (*pointcloud.Result, error) {
	t := &task{
		ctx:  ctx,
		req:  req,
		id:   p.seq.Add(1),
		done: make(chan outcome, 1),
	}

	if err := p.enqueue(ctx, t); err != nil {
		return nil, err
	}

	select {
	case out := <-t.done:
		return out.res, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Processor) enqueue(ctx context.Context, t *task) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return errClosed()
	}

	select {
	case p.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting requests, finishes the queued ones and waits for
// the processor goroutine to exit. It is safe to call more than once.
func (p *Processor) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.tasks)
	p.submitMu.Unlock()

	p.wg.Wait()
}

// Stats returns counters of finished tasks.
func (p *Processor) Stats() Stats {
	return Stats{
		Decoded: p.decoded.Load(),
		Failed:  p.failed.Load(),
		Panics:  p.panics.Load(),
	}
}

func (p *Processor) run() {
	defer p.wg.Done()

	for t := range p.tasks {
		if err := t.ctx.Err(); err != nil {
			p.failed.Add(1)
			t.done <- outcome{err: err}
			continue
		}
		t.done <- p.process(t)
	}
}

func (p *Processor) process(t *task) (out outcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.failed.Add(1)
			p.logger.Error("decode panicked",
				zap.Uint64("task", t.id),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			out = outcome{err: errors.New(errors.PhaseDispatch, errors.KindPanic).
				Value(r).
				Detail("decode panicked: %v", r).
				Build()}
		}
	}()

	res, err := p.dec.Decode(t.ctx, t.req)
	elapsed := time.Since(start)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("decode failed",
			zap.Uint64("task", t.id),
			zap.Strings("semantics", semanticNames(t.req.Semantics)),
			zap.Int("bytes", len(t.req.Buffer)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return outcome{err: err}
	}

	p.decoded.Add(1)
	p.logger.Info("decoded point cloud",
		zap.Uint64("task", t.id),
		zap.Strings("semantics", semanticNames(t.req.Semantics)),
		zap.Bool("dequantize_in_shader", t.req.DequantizeInShader),
		zap.Int("points", res.NumPoints),
		zap.Duration("elapsed", elapsed),
	)
	return outcome{res: res}
}

func errClosed() error {
	return errors.New(errors.PhaseDispatch, errors.KindClosed).
		Detail("processor closed").
		Build()
}

func semanticNames(s []pointcloud.Semantic) []string {
	names := make([]string, len(s))
	for i, v := range s {
		names[i] = string(v)
	}
	return names
}

// String is used in log fields and CLI output.
func (s Stats) String() string {
	return fmt.Sprintf("decoded=%d failed=%d panics=%d", s.Decoded, s.Failed, s.Panics)
}
