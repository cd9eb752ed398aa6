package wasmdraco

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/emscripten"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const (
	envModule  = "env"
	wasiModule = "wasi_snapshot_preview1"
	pageSize   = 65536
)

// envFunc implements an "env" import. The return value is stored as the
// first result when the import declares one.
type envFunc func(ctx context.Context, mod api.Module, stack []uint64) uint64

// envFuncs are the runtime imports of Emscripten builds that wazero's
// emscripten package does not provide. Signatures are taken from the
// guest's import declarations since they differ between toolchain versions.
var envFuncs = map[string]envFunc{
	"abort":                  envAbort,
	"_abort_js":              envAbort,
	"__assert_fail":          envAssertFail,
	"emscripten_resize_heap": envResizeHeap,
	"emscripten_memcpy_big":  envMemcpy,
	"_emscripten_memcpy_js":  envMemcpy,
}

// instantiateHostModules provides WASI and "env" for the compiled guest.
func instantiateHostModules(ctx context.Context, r wazero.Runtime, compiled wazero.CompiledModule) error {
	if r.Module(wasiModule) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			return fmt.Errorf("instantiate WASI: %w", err)
		}
	}

	if r.Module(envModule) != nil {
		return nil
	}

	builder := r.NewHostModuleBuilder(envModule)

	// invoke_* trampolines and emscripten_notify_memory_growth
	exporter, err := emscripten.NewFunctionExporterForModule(compiled)
	if err != nil {
		return fmt.Errorf("emscripten exports: %w", err)
	}
	exporter.ExportFunctions(builder)

	for _, def := range compiled.ImportedFunctions() {
		modName, name, ok := def.Import()
		if !ok || modName != envModule {
			continue
		}
		fn, known := envFuncs[name]
		if !known {
			continue
		}
		hasResult := len(def.ResultTypes()) > 0
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				res := fn(ctx, mod, stack)
				if hasResult {
					stack[0] = res
				}
			}), def.ParamTypes(), def.ResultTypes()).
			Export(name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate env: %w", err)
	}
	return nil
}

func envAbort(context.Context, api.Module, []uint64) uint64 {
	panic("draco: abort called")
}

func envAssertFail(_ context.Context, mod api.Module, stack []uint64) uint64 {
	msg := "assertion failed"
	if len(stack) > 0 && mod.Memory() != nil {
		m := &memoryWrapper{mem: mod.Memory()}
		if s, err := m.ReadCString(api.DecodeU32(stack[0]), maxCString); err == nil && s != "" {
			msg = s
		}
	}
	panic("draco: " + msg)
}

func envResizeHeap(_ context.Context, mod api.Module, stack []uint64) uint64 {
	mem := mod.Memory()
	if mem == nil || len(stack) == 0 {
		return 0
	}
	requested := api.DecodeU32(stack[0])
	current := mem.Size()
	if requested <= current {
		return 1
	}
	delta := (requested - current + pageSize - 1) / pageSize
	if _, ok := mem.Grow(delta); !ok {
		Logger().Sugar().Warnf("draco heap resize to %d bytes refused", requested)
		return 0
	}
	return 1
}

func envMemcpy(_ context.Context, mod api.Module, stack []uint64) uint64 {
	if len(stack) < 3 || mod.Memory() == nil {
		return 0
	}
	dest, src, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	mem := mod.Memory()
	data, ok := mem.Read(src, n)
	if !ok {
		panic(fmt.Sprintf("draco: memcpy source out of bounds: %d+%d", src, n))
	}
	// Read aliases guest memory and the ranges may overlap.
	if !mem.Write(dest, append([]byte(nil), data...)) {
		panic(fmt.Sprintf("draco: memcpy destination out of bounds: %d+%d", dest, n))
	}
	return uint64(dest)
}
