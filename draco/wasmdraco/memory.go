package wasmdraco

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	dracodecoder "github.com/wippyai/draco-decoder"
	"github.com/wippyai/draco-decoder/errors"
)

// maxCString bounds reads of NUL-terminated guest strings.
const maxCString = 4096

var (
	_ dracodecoder.Memory      = (*memoryWrapper)(nil)
	_ dracodecoder.MemorySizer = (*memoryWrapper)(nil)
	_ dracodecoder.Allocator   = (*allocatorWrapper)(nil)
)

// memoryWrapper adapts wazero api.Memory to dracodecoder.Memory.
type memoryWrapper struct {
	mem api.Memory
}

// Read reads bytes from memory. The returned slice aliases guest memory.
func (m *memoryWrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Detail("memory read out of bounds: offset=%d, length=%d", offset, length).
			Build()
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *memoryWrapper) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Detail("memory write out of bounds: offset=%d, length=%d", offset, len(data)).
			Build()
	}
	return nil
}

// ReadCString reads a NUL-terminated string of at most maxLen bytes.
func (m *memoryWrapper) ReadCString(offset uint32, maxLen uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	size := m.mem.Size()
	if offset >= size {
		return "", errors.OutOfBounds(errors.PhaseRuntime, []string{"cstring"}, int(offset), int(size))
	}
	n := min(maxLen, size-offset)
	data, err := m.Read(offset, n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

// Size returns the current memory size in bytes.
func (m *memoryWrapper) Size() uint32 {
	return m.mem.Size()
}

// allocatorWrapper adapts the guest malloc/free exports to dracodecoder.Allocator.
type allocatorWrapper struct {
	ctx    context.Context
	malloc api.Function
	free   api.Function
}

// Alloc allocates size bytes in the guest heap.
func (a *allocatorWrapper) Alloc(size uint32) (uint32, error) {
	results, err := a.malloc.Call(a.ctx, uint64(size))
	if err != nil {
		return 0, errors.CallFailed(exportMalloc, err)
	}
	if len(results) == 0 || uint32(results[0]) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size)
	}
	return uint32(results[0]), nil
}

// Free releases a pointer returned by Alloc.
func (a *allocatorWrapper) Free(ptr uint32) error {
	if ptr == 0 {
		return nil
	}
	if _, err := a.free.Call(a.ctx, uint64(ptr)); err != nil {
		return errors.CallFailed(exportFree, err)
	}
	return nil
}

// copyIn allocates len(data) bytes in the guest and copies data there.
func copyIn(alloc dracodecoder.Allocator, mem dracodecoder.Memory, data []byte) (uint32, error) {
	size := uint32(len(data))
	if size == 0 {
		// malloc(0) may legally return NULL; keep a valid pointer for Init.
		size = 1
	}
	ptr, err := alloc.Alloc(size)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(ptr, data); err != nil {
		if ferr := alloc.Free(ptr); ferr != nil {
			return 0, fmt.Errorf("%w (free: %v)", err, ferr)
		}
		return 0, err
	}
	return ptr, nil
}
