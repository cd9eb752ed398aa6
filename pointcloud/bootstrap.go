package pointcloud

import (
	"context"
	"sync"

	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
)

// Loader produces the decoder library. It is called at most once.
type Loader func(ctx context.Context) (draco.Module, error)

// Static returns a Loader for an already loaded library.
func Static(m draco.Module) Loader {
	return func(context.Context) (draco.Module, error) {
		return m, nil
	}
}

// Bootstrap owns the process-lifetime decoder library and engines.
//
// The library is loaded on first use and never reloaded; a load failure is
// returned to every later caller. Engines are created lazily, one per
// dequantization mode, because SkipAttributeTransform cannot be undone on a
// Draco decoder. Neither the library nor the engines are ever released.
type Bootstrap struct {
	load    Loader
	module  draco.Module
	err     error
	engines map[bool]draco.Decoder
	once    sync.Once
	mu      sync.Mutex
}

// NewBootstrap creates a Bootstrap that calls load on first use.
func NewBootstrap(load Loader) *Bootstrap {
	return &Bootstrap{
		load:    load,
		engines: make(map[bool]draco.Decoder, 2),
	}
}

// Module returns the loaded library, loading it on the first call.
func (b *Bootstrap) Module(ctx context.Context) (draco.Module, error) {
	b.once.Do(func() {
		if b.load == nil {
			b.err = errors.NotInitialized(errors.PhaseBootstrap, "draco loader")
			return
		}
		m, err := b.load(ctx)
		switch {
		case err != nil:
			b.err = errors.Wrap(errors.PhaseBootstrap, errors.KindInstantiation, err, "load draco module")
		case m == nil:
			b.err = errors.NotInitialized(errors.PhaseBootstrap, "draco module")
		default:
			b.module = m
		}
	})
	return b.module, b.err
}

// Engine returns the library and the engine for the given mode. The
// dequantize-in-shader engine skips the POSITION and NORMAL transforms.
func (b *Bootstrap) Engine(ctx context.Context, dequantizeInShader bool) (draco.Module, draco.Decoder, error) {
	m, err := b.Module(ctx)
	if err != nil {
		return nil, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.engines[dequantizeInShader]; ok {
		return m, e, nil
	}

	e, err := m.NewDecoder(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(errors.PhaseBootstrap, errors.KindInstantiation, err, "create draco decoder")
	}
	if dequantizeInShader {
		for _, t := range []draco.AttributeType{draco.AttributePosition, draco.AttributeNormal} {
			if err := e.SkipAttributeTransform(ctx, t); err != nil {
				if r, ok := e.(draco.Releaser); ok {
					_ = r.Release(ctx)
				}
				return nil, nil, errors.Wrap(errors.PhaseBootstrap, errors.KindCallFailed, err, "skip "+t.String()+" transform")
			}
		}
	}
	b.engines[dequantizeInShader] = e
	return m, e, nil
}
