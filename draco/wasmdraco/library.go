// Package wasmdraco runs the Emscripten build of the Draco decoder
// (draco_decoder.wasm) in wazero and exposes it as a draco.Module.
//
// The module must be built in standalone mode (no JS glue) with the
// WebIDL binder exports of draco_web_decoder.idl and malloc/free exported.
// Every exported binding is checked at load time; a module lacking any of
// them fails with *errors.MissingExportsError naming all of them.
package wasmdraco

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
)

var _ draco.Module = (*Library)(nil)

// Library is an instantiated decoder module.
// Calls into the guest are serialized; Library is safe for concurrent use
// but objects it creates must not be shared between goroutines.
type Library struct {
	runtime wazero.Runtime
	module  api.Module
	mem     *memoryWrapper
	funcs   map[string]api.Function
	mu      sync.Mutex
	closed  bool
}

// Load compiles and instantiates a decoder module in a new wazero runtime.
func Load(ctx context.Context, wasm []byte, opts ...Option) (*Library, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	if cfg.CompilationCache != nil {
		runtimeCfg = runtimeCfg.WithCompilationCache(cfg.CompilationCache)
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	lib, err := load(ctx, r, wasm, &cfg)
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	Logger().Debug("draco module loaded",
		zap.Int("wasm_bytes", len(wasm)),
		zap.Uint32("memory_bytes", lib.mem.Size()),
	)
	return lib, nil
}

func load(ctx context.Context, r wazero.Runtime, wasm []byte, cfg *Config) (*Library, error) {
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile decoder module", err)
	}

	if err := instantiateHostModules(ctx, r, compiled); err != nil {
		return nil, errors.Instantiation(err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(cfg.Name).
		WithStartFunctions(cfg.StartFunctions...)
	if cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(cfg.Stderr)
	}

	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	funcs, err := bind(mod)
	if err != nil {
		return nil, err
	}

	if mod.Memory() == nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindMissingExport).
			Detail("decoder module exports no memory").
			Build()
	}

	return &Library{
		runtime: r,
		module:  mod,
		mem:     &memoryWrapper{mem: mod.Memory()},
		funcs:   funcs,
	}, nil
}

// bind resolves every required export, reporting all missing names at once.
func bind(mod api.Module) (map[string]api.Function, error) {
	funcs := make(map[string]api.Function, len(RequiredExports))
	var missing []string
	for _, name := range RequiredExports {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			missing = append(missing, name)
			continue
		}
		funcs[name] = fn
	}
	if len(missing) > 0 {
		return nil, &errors.MissingExportsError{Exports: missing}
	}
	return funcs, nil
}

// Close releases the wazero runtime and everything allocated in it.
func (l *Library) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.runtime.Close(ctx)
}

// MemorySize returns the guest memory size in bytes.
func (l *Library) MemorySize() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mem.Size()
}

func (l *Library) call(ctx context.Context, name string, params ...uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callLocked(ctx, name, params...)
}

func (l *Library) callLocked(ctx context.Context, name string, params ...uint64) (uint64, error) {
	if l.closed {
		return 0, errors.New(errors.PhaseRuntime, errors.KindClosed).
			Detail("draco library closed").
			Build()
	}
	results, err := l.funcs[name].Call(ctx, params...)
	if err != nil {
		return 0, errors.CallFailed(name, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

func (l *Library) callI32(ctx context.Context, name string, params ...uint64) (int32, error) {
	v, err := l.call(ctx, name, params...)
	return api.DecodeI32(v), err
}

func (l *Library) callF32(ctx context.Context, name string, params ...uint64) (float32, error) {
	v, err := l.call(ctx, name, params...)
	return api.DecodeF32(v), err
}

func (l *Library) callBool(ctx context.Context, name string, params ...uint64) (bool, error) {
	v, err := l.call(ctx, name, params...)
	return api.DecodeU32(v) != 0, err
}

// newObject calls a binding constructor and checks the returned pointer.
func (l *Library) newObject(ctx context.Context, ctor string) (uint32, error) {
	v, err := l.call(ctx, ctor)
	if err != nil {
		return 0, err
	}
	ptr := api.DecodeU32(v)
	if ptr == 0 {
		return 0, errors.New(errors.PhaseRuntime, errors.KindAllocation).
			Path(ctor).
			Detail("constructor returned null").
			Build()
	}
	return ptr, nil
}

func (l *Library) allocator(ctx context.Context) *allocatorWrapper {
	return &allocatorWrapper{
		ctx:    ctx,
		malloc: l.funcs[exportMalloc],
		free:   l.funcs[exportFree],
	}
}

// NewDecoder creates a decoder engine. Engines live as long as the library.
func (l *Library) NewDecoder(ctx context.Context) (draco.Decoder, error) {
	ptr, err := l.newObject(ctx, bindDecoderNew)
	if err != nil {
		return nil, err
	}
	return &decoder{object: object{lib: l, ptr: ptr, destroy: bindDecoderDestroy}}, nil
}

// NewBuffer copies data into the guest heap and wraps it in a DecoderBuffer.
// The copy is freed when the buffer is released.
func (l *Library) NewBuffer(ctx context.Context, data []byte) (draco.Buffer, error) {
	ptr, err := l.newObject(ctx, bindBufferNew)
	if err != nil {
		return nil, err
	}
	buf := &buffer{object: object{lib: l, ptr: ptr, destroy: bindBufferDestroy}, n: len(data)}

	l.mu.Lock()
	dataPtr, err := copyIn(l.allocator(ctx), l.mem, data)
	l.mu.Unlock()
	if err != nil {
		_ = buf.object.Release(ctx)
		return nil, err
	}
	buf.data = dataPtr

	if _, err := l.call(ctx, bindBufferInit, uint64(ptr), uint64(dataPtr), uint64(len(data))); err != nil {
		_ = buf.Release(ctx)
		return nil, err
	}
	return buf, nil
}

func (l *Library) NewPointCloud(ctx context.Context) (draco.PointCloud, error) {
	ptr, err := l.newObject(ctx, bindPointCloudNew)
	if err != nil {
		return nil, err
	}
	return &pointCloud{object: object{lib: l, ptr: ptr, destroy: bindPointCloudDestroy}}, nil
}

func (l *Library) NewQuantizationTransform(ctx context.Context) (draco.QuantizationTransform, error) {
	ptr, err := l.newObject(ctx, bindQuantNew)
	if err != nil {
		return nil, err
	}
	return &quantizationTransform{object: object{lib: l, ptr: ptr, destroy: bindQuantDestroy}}, nil
}

func (l *Library) NewOctahedronTransform(ctx context.Context) (draco.OctahedronTransform, error) {
	ptr, err := l.newObject(ctx, bindOctNew)
	if err != nil {
		return nil, err
	}
	return &octahedronTransform{object: object{lib: l, ptr: ptr, destroy: bindOctDestroy}}, nil
}

func (l *Library) NewFloat32Array(ctx context.Context) (draco.Float32Array, error) {
	ptr, err := l.newObject(ctx, bindFloat32ArrayNew)
	if err != nil {
		return nil, err
	}
	return &float32Array{object: object{lib: l, ptr: ptr, destroy: bindFloat32ArrayDestroy}}, nil
}

func (l *Library) NewInt32Array(ctx context.Context) (draco.Int32Array, error) {
	ptr, err := l.newObject(ctx, bindInt32ArrayNew)
	if err != nil {
		return nil, err
	}
	return &int32Array{object: object{lib: l, ptr: ptr, destroy: bindInt32ArrayDestroy}}, nil
}
