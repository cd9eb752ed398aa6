package wasmdraco

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/draco-decoder/internal/wasmtest"
)

// envGuest imports the emscripten runtime helpers and re-exports a caller
// for each one.
func envGuest() []byte {
	i32 := wasmtest.I32
	p := wasmtest.Params
	sig := wasmtest.Sig
	code := wasmtest.NewCode

	m := &wasmtest.Module{
		Imports: []wasmtest.Import{
			{Module: envModule, Name: "abort", Type: sig(nil)},
			{Module: envModule, Name: "__assert_fail", Type: sig(p(i32, i32, i32, i32))},
			{Module: envModule, Name: "emscripten_memcpy_big", Type: sig(p(i32, i32, i32))},
			{Module: envModule, Name: "_emscripten_memcpy_js", Type: sig(p(i32, i32, i32))},
		},
		MemoryPages:  1,
		MemoryExport: "memory",
		Data: []wasmtest.Data{
			{Offset: 16, Bytes: []byte("bad point\x00")},
		},
		Funcs: []wasmtest.Func{
			{Export: "do_abort", Type: sig(nil), Body: code().Call(0).End()},
			{Export: "do_assert", Type: sig(nil), Body: code().
				I32Const(16).I32Const(0).I32Const(0).I32Const(0).Call(1).End()},
			{Export: "do_memcpy", Type: sig(p(i32, i32, i32)), Body: code().
				LocalGet(0).LocalGet(1).LocalGet(2).Call(2).End()},
			{Export: "do_memcpy_js", Type: sig(p(i32, i32, i32)), Body: code().
				LocalGet(0).LocalGet(1).LocalGet(2).Call(3).End()},
		},
	}
	return m.Encode()
}

func instantiateEnvGuest(t *testing.T) api.Module {
	t.Helper()
	ctx := context.Background()

	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = r.Close(ctx) })

	compiled, err := r.CompileModule(ctx, envGuest())
	require.NoError(t, err)
	require.NoError(t, instantiateHostModules(ctx, r, compiled))
	// A second call reuses the modules already present.
	require.NoError(t, instantiateHostModules(ctx, r, compiled))

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	require.NoError(t, err)
	return mod
}

func TestEnv_AbortTraps(t *testing.T) {
	mod := instantiateEnvGuest(t)

	_, err := mod.ExportedFunction("do_abort").Call(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abort")
}

func TestEnv_AssertFailCarriesMessage(t *testing.T) {
	mod := instantiateEnvGuest(t)

	_, err := mod.ExportedFunction("do_assert").Call(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad point")
}

func TestEnv_Memcpy(t *testing.T) {
	ctx := context.Background()
	mod := instantiateEnvGuest(t)

	for _, name := range []string{"do_memcpy", "do_memcpy_js"} {
		t.Run(name, func(t *testing.T) {
			require.True(t, mod.Memory().Write(200, make([]byte, 16)))

			_, err := mod.ExportedFunction(name).Call(ctx, 200, 16, 9)
			require.NoError(t, err)

			got, ok := mod.Memory().Read(200, 9)
			require.True(t, ok)
			assert.Equal(t, "bad point", string(got))
		})
	}

	t.Run("overlapping", func(t *testing.T) {
		require.True(t, mod.Memory().Write(300, []byte("abcdef")))
		_, err := mod.ExportedFunction("do_memcpy").Call(ctx, 302, 300, 4)
		require.NoError(t, err)

		got, ok := mod.Memory().Read(300, 6)
		require.True(t, ok)
		assert.Equal(t, "ababcd", string(got))
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := mod.ExportedFunction("do_memcpy").Call(ctx, 0, pageSize-2, 8)
		require.Error(t, err)
	})
}

func TestMemoryWrapper(t *testing.T) {
	mod := instantiateEnvGuest(t)
	m := &memoryWrapper{mem: mod.Memory()}

	s, err := m.ReadCString(16, maxCString)
	require.NoError(t, err)
	assert.Equal(t, "bad point", s)

	s, err = m.ReadCString(16, 3)
	require.NoError(t, err)
	assert.Equal(t, "bad", s)

	s, err = m.ReadCString(0, maxCString)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = m.ReadCString(m.Size(), maxCString)
	require.Error(t, err)

	require.NoError(t, m.Write(400, []byte{1, 2, 3}))
	data, err := m.Read(400, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.Error(t, m.Write(m.Size()-1, []byte{1, 2}))
	_, err = m.Read(m.Size(), 1)
	require.Error(t, err)
}

// stubAllocator hands out sequential pointers.
type stubAllocator struct {
	next  uint32
	freed []uint32
}

func (a *stubAllocator) Alloc(size uint32) (uint32, error) {
	p := a.next
	a.next += size
	return p, nil
}

func (a *stubAllocator) Free(ptr uint32) error {
	a.freed = append(a.freed, ptr)
	return nil
}

func TestCopyIn(t *testing.T) {
	mod := instantiateEnvGuest(t)
	m := &memoryWrapper{mem: mod.Memory()}

	alloc := &stubAllocator{next: 1024}
	ptr, err := copyIn(alloc, m, []byte("draco"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), ptr)
	got, err := m.Read(ptr, 5)
	require.NoError(t, err)
	assert.Equal(t, "draco", string(got))

	ptr, err = copyIn(alloc, m, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1029), ptr)
	assert.Equal(t, uint32(1030), alloc.next, "empty input still reserves a byte")

	alloc.next = m.Size() - 2
	_, err = copyIn(alloc, m, []byte("overflow"))
	require.Error(t, err)
	assert.Equal(t, []uint32{m.Size() - 2}, alloc.freed)
}
