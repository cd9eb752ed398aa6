package wasmdraco

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
)

var (
	_ draco.Buffer                = (*buffer)(nil)
	_ draco.PointCloud            = (*pointCloud)(nil)
	_ draco.Status                = (*status)(nil)
	_ draco.Attribute             = (*attribute)(nil)
	_ draco.QuantizationTransform = (*quantizationTransform)(nil)
	_ draco.OctahedronTransform   = (*octahedronTransform)(nil)
	_ draco.Float32Array          = (*float32Array)(nil)
	_ draco.Int32Array            = (*int32Array)(nil)
)

// pointer is implemented by every guest object so that objects can be
// passed back as call arguments.
type pointer interface {
	guestPtr() uint32
}

// object is a guest heap object destroyed through its binding destructor.
type object struct {
	lib      *Library
	destroy  string
	ptr      uint32
	released bool
}

func (o *object) guestPtr() uint32 { return o.ptr }

// Release calls the destructor once; later calls are no-ops.
func (o *object) Release(ctx context.Context) error {
	if o.released || o.ptr == 0 {
		return nil
	}
	o.released = true
	_, err := o.lib.call(ctx, o.destroy, api.EncodeU32(o.ptr))
	return err
}

// ptrArg extracts the guest pointer of an object created by this package.
func ptrArg(name string, v any) (uint64, error) {
	p, ok := v.(pointer)
	if !ok || p == nil {
		return 0, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Path(name).
			Detail("%T was not created by wasmdraco", v).
			Build()
	}
	return api.EncodeU32(p.guestPtr()), nil
}

type buffer struct {
	object
	data uint32
	n    int
}

func (b *buffer) Len() int { return b.n }

// Release destroys the DecoderBuffer and frees the copied bytes.
func (b *buffer) Release(ctx context.Context) error {
	if err := b.object.Release(ctx); err != nil {
		return err
	}
	if b.data == 0 {
		return nil
	}
	b.lib.mu.Lock()
	defer b.lib.mu.Unlock()
	if b.lib.closed {
		return nil
	}
	err := b.lib.allocator(ctx).Free(b.data)
	b.data = 0
	return err
}

type pointCloud struct {
	object
}

func (p *pointCloud) Valid() bool { return p.ptr != 0 }

func (p *pointCloud) NumPoints(ctx context.Context) (int32, error) {
	return p.lib.callI32(ctx, bindPointCloudNumPoints, api.EncodeU32(p.ptr))
}

// status is owned by the decoder engine and never destroyed.
type status struct {
	lib *Library
	ptr uint32
}

func (s *status) OK(ctx context.Context) (bool, error) {
	return s.lib.callBool(ctx, bindStatusOK, api.EncodeU32(s.ptr))
}

func (s *status) ErrorMsg(ctx context.Context) (string, error) {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()
	v, err := s.lib.callLocked(ctx, bindStatusErrorMsg, api.EncodeU32(s.ptr))
	if err != nil {
		return "", err
	}
	return s.lib.mem.ReadCString(api.DecodeU32(v), maxCString)
}

// attribute is owned by its point cloud and never destroyed.
type attribute struct {
	lib *Library
	ptr uint32
}

func (a *attribute) guestPtr() uint32 { return a.ptr }

func (a *attribute) NumComponents(ctx context.Context) (int32, error) {
	return a.lib.callI32(ctx, bindAttributeNumComponents, api.EncodeU32(a.ptr))
}

func (a *attribute) DataType(ctx context.Context) (draco.DataType, error) {
	v, err := a.lib.callI32(ctx, bindAttributeDataType, api.EncodeU32(a.ptr))
	return draco.DataType(v), err
}

type quantizationTransform struct {
	object
}

func (q *quantizationTransform) InitFromAttribute(ctx context.Context, attr draco.Attribute) (bool, error) {
	a, err := ptrArg("attribute", attr)
	if err != nil {
		return false, err
	}
	return q.lib.callBool(ctx, bindQuantInit, api.EncodeU32(q.ptr), a)
}

func (q *quantizationTransform) QuantizationBits(ctx context.Context) (int32, error) {
	return q.lib.callI32(ctx, bindQuantBits, api.EncodeU32(q.ptr))
}

func (q *quantizationTransform) MinValue(ctx context.Context, axis int32) (float32, error) {
	return q.lib.callF32(ctx, bindQuantMinValue, api.EncodeU32(q.ptr), api.EncodeI32(axis))
}

func (q *quantizationTransform) Range(ctx context.Context) (float32, error) {
	return q.lib.callF32(ctx, bindQuantRange, api.EncodeU32(q.ptr))
}

type octahedronTransform struct {
	object
}

func (o *octahedronTransform) InitFromAttribute(ctx context.Context, attr draco.Attribute) (bool, error) {
	a, err := ptrArg("attribute", attr)
	if err != nil {
		return false, err
	}
	return o.lib.callBool(ctx, bindOctInit, api.EncodeU32(o.ptr), a)
}

func (o *octahedronTransform) QuantizationBits(ctx context.Context) (int32, error) {
	return o.lib.callI32(ctx, bindOctBits, api.EncodeU32(o.ptr))
}

type float32Array struct {
	object
}

func (f *float32Array) Size(ctx context.Context) (int32, error) {
	return f.lib.callI32(ctx, bindFloat32ArraySize, api.EncodeU32(f.ptr))
}

func (f *float32Array) GetValue(ctx context.Context, index int32) (float32, error) {
	return f.lib.callF32(ctx, bindFloat32ArrayGetValue, api.EncodeU32(f.ptr), api.EncodeI32(index))
}

type int32Array struct {
	object
}

func (i *int32Array) Size(ctx context.Context) (int32, error) {
	return i.lib.callI32(ctx, bindInt32ArraySize, api.EncodeU32(i.ptr))
}

func (i *int32Array) GetValue(ctx context.Context, index int32) (int32, error) {
	return i.lib.callI32(ctx, bindInt32ArrayGetValue, api.EncodeU32(i.ptr), api.EncodeI32(index))
}
