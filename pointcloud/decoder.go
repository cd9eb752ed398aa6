// Package pointcloud extracts typed vertex attributes from Draco encoded
// point clouds.
//
// A Decoder ingests the encoded buffer, checks that it holds a point cloud,
// resolves every requested semantic to a decoder attribute and copies its
// per-point values into a componenttype.Array. With DequantizeInShader set,
// POSITION and NORMAL keep their quantized form and carry the parameters a
// shader needs to reconstruct them.
//
// Every object allocated from the decoder library during a call is tracked
// by a resource.Scope and released exactly once, on success and on every
// error path.
package pointcloud

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/draco-decoder/componenttype"
	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
	"github.com/wippyai/draco-decoder/resource"
)

// Request is one decode call.
type Request struct {
	Buffer []byte
	// Semantics are decoded in order and must be unique.
	Semantics []Semantic
	// DequantizeInShader leaves POSITION quantized (uint16) and NORMAL
	// octahedron encoded (int16).
	DequantizeInShader bool
}

// Validate checks the semantics before anything is decoded.
func (r *Request) Validate() error {
	seen := make(map[Semantic]struct{}, len(r.Semantics))
	for _, s := range r.Semantics {
		if !s.Valid() {
			return errors.InvalidSemantic(string(s))
		}
		if _, dup := seen[s]; dup {
			return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Path(string(s)).
				Detail("semantic %s requested more than once", s).
				Build()
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Decoder decodes point clouds with a lazily loaded decoder library.
// Decode calls are serialized.
type Decoder struct {
	boot   *Bootstrap
	logger *zap.Logger
	opts   options
	mu     sync.Mutex
}

// NewDecoder creates a Decoder that loads its library on the first Decode.
func NewDecoder(load Loader, opts ...Option) *Decoder {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{
		boot:   NewBootstrap(load),
		logger: o.logger,
		opts:   o,
	}
}

// Bootstrap exposes the decoder's library lifecycle.
func (d *Decoder) Bootstrap() *Bootstrap {
	return d.boot
}

// call holds the per-call state of one Decode.
type call struct {
	module draco.Module
	engine draco.Decoder
	scope  *resource.Scope
	pc     draco.PointCloud
	points int
}

// Decode decodes req.Buffer and returns one attribute per requested
// semantic. Any failure aborts the whole call and no result is returned.
func (d *Decoder) Decode(ctx context.Context, req Request) (res *Result, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	module, engine, err := d.boot.Engine(ctx, req.DequantizeInShader)
	if err != nil {
		return nil, err
	}

	c := &call{
		module: module,
		engine: engine,
		scope:  resource.NewScope(d.observers()...),
	}
	defer func() {
		if cerr := c.scope.Close(ctx); cerr != nil {
			err = stderrors.Join(err, errors.Wrap(errors.PhaseRuntime, errors.KindCallFailed, cerr, "release decoder objects"))
			res = nil
		}
	}()

	pcHandle, err := c.ingest(ctx, req.Buffer)
	if err != nil {
		return nil, err
	}

	res = newResult(c.points, len(req.Semantics))
	for _, s := range req.Semantics {
		attr, err := c.resolve(ctx, s)
		if err != nil {
			return nil, err
		}
		out, err := c.materialize(ctx, s, attr, req.DequantizeInShader)
		if err != nil {
			return nil, err
		}
		res.add(s, out)
	}

	if err := c.scope.Release(ctx, pcHandle); err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Decoder) observers() []resource.Observer {
	obs := append([]resource.Observer(nil), d.opts.observers...)
	if d.logger.Core().Enabled(zap.DebugLevel) {
		obs = append(obs, resource.ObserverFunc(func(e resource.Event) {
			d.logger.Debug("draco object",
				zap.Stringer("event", e.Type),
				zap.String("object", e.Label),
				zap.Uint32("handle", uint32(e.Handle)),
				zap.Error(e.Err),
			)
		}))
	}
	return obs
}

// track hands r to the call scope.
func (c *call) track(ctx context.Context, label string, r draco.Releaser) (resource.Handle, error) {
	return c.scope.Track(ctx, label, r)
}

// ingest wraps data in a decoder buffer, checks the geometry type and
// decodes the point cloud. The buffer is released once decoding is done.
func (c *call) ingest(ctx context.Context, data []byte) (resource.Handle, error) {
	buf, err := c.module.NewBuffer(ctx, data)
	if err != nil {
		return 0, err
	}
	bufHandle, err := c.track(ctx, "buffer", buf)
	if err != nil {
		return 0, err
	}

	geometry, err := c.engine.GetEncodedGeometryType(ctx, buf)
	if err != nil {
		return 0, err
	}
	if geometry != draco.GeometryPointCloud {
		return 0, errors.WrongGeometryKind()
	}

	pc, err := c.module.NewPointCloud(ctx)
	if err != nil {
		return 0, err
	}
	pcHandle, err := c.track(ctx, "point_cloud", pc)
	if err != nil {
		return 0, err
	}

	status, err := c.engine.DecodeBufferToPointCloud(ctx, buf, pc)
	if err != nil {
		return 0, err
	}
	ok, err := status.OK(ctx)
	if err != nil {
		return 0, err
	}
	if !ok || !pc.Valid() {
		msg, merr := status.ErrorMsg(ctx)
		derr := errors.DecodeFailure(msg)
		derr.Cause = merr
		return 0, derr
	}

	if err := c.scope.Release(ctx, bufHandle); err != nil {
		return 0, err
	}

	n, err := pc.NumPoints(ctx)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.DecodeFailure(fmt.Sprintf("negative point count %d", n))
	}
	c.pc = pc
	c.points = int(n)
	return pcHandle, nil
}

// resolve finds the first attribute of the semantic's decoder type.
func (c *call) resolve(ctx context.Context, s Semantic) (draco.Attribute, error) {
	t, ok := AttributeTypeFor(s)
	if !ok {
		return nil, errors.InvalidSemantic(string(s))
	}

	id, err := c.engine.GetAttributeID(ctx, c.pc, t)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Path(string(s)).
			Value(t).
			Detail("point cloud has no %s attribute", t).
			Build()
	}
	return c.engine.GetAttribute(ctx, c.pc, id)
}

// materialize reads the quantization parameters (when kept) and copies all
// values of attr into a new typed array.
func (c *call) materialize(ctx context.Context, s Semantic, attr draco.Attribute, dequantizeInShader bool) (*Attribute, error) {
	quantize := dequantizeInShader && s == Position
	octEncode := dequantizeInShader && s == Normal

	numComponents, err := attr.NumComponents(ctx)
	if err != nil {
		return nil, err
	}
	if numComponents < 0 {
		return nil, errors.New(errors.PhaseMaterialize, errors.KindInvalidInput).
			Path(string(s)).
			Detail("negative component count %d", numComponents).
			Build()
	}

	var q Quantization
	switch {
	case quantize:
		q, err = c.positionQuantization(ctx, s, attr, numComponents)
	case octEncode:
		q, err = c.normalQuantization(ctx, s, attr)
	}
	if err != nil {
		return nil, err
	}

	native, err := attr.DataType(ctx)
	if err != nil {
		return nil, err
	}
	dt, ok := DatatypeFor(native)
	if !ok {
		return nil, errors.InvalidAttributeDataType(string(s), int32(native))
	}
	switch {
	case quantize:
		dt = componenttype.UnsignedShort
	case octEncode:
		dt = componenttype.Short
	}

	length := c.points * int(numComponents)
	out, err := componenttype.NewArray(dt, length)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMaterialize, errors.KindInvalidDataType, err, string(s))
	}

	if dt == componenttype.Float {
		err = c.readFloats(ctx, s, attr, out)
	} else {
		err = c.readInts(ctx, s, attr, out)
	}
	if err != nil {
		return nil, err
	}

	return &Attribute{
		Buffer:        out,
		Quantization:  q,
		NumComponents: int(numComponents),
	}, nil
}

func (c *call) positionQuantization(ctx context.Context, s Semantic, attr draco.Attribute, numComponents int32) (Quantization, error) {
	t, err := c.module.NewQuantizationTransform(ctx)
	if err != nil {
		return nil, err
	}
	h, err := c.track(ctx, "quantization_transform", t)
	if err != nil {
		return nil, err
	}

	ok, err := t.InitFromAttribute(ctx, attr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoTransform(s, "quantization")
	}

	q := &PositionQuantization{MinValues: make([]float32, numComponents)}
	if q.QuantizationBits, err = t.QuantizationBits(ctx); err != nil {
		return nil, err
	}
	for i := int32(0); i < numComponents; i++ {
		if q.MinValues[i], err = t.MinValue(ctx, i); err != nil {
			return nil, err
		}
	}
	if q.Range, err = t.Range(ctx); err != nil {
		return nil, err
	}

	if err := c.scope.Release(ctx, h); err != nil {
		return nil, err
	}
	return q, nil
}

func (c *call) normalQuantization(ctx context.Context, s Semantic, attr draco.Attribute) (Quantization, error) {
	t, err := c.module.NewOctahedronTransform(ctx)
	if err != nil {
		return nil, err
	}
	h, err := c.track(ctx, "octahedron_transform", t)
	if err != nil {
		return nil, err
	}

	ok, err := t.InitFromAttribute(ctx, attr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoTransform(s, "octahedron")
	}

	bits, err := t.QuantizationBits(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.scope.Release(ctx, h); err != nil {
		return nil, err
	}
	return &NormalQuantization{QuantizationBits: bits}, nil
}

func errNoTransform(s Semantic, kind string) error {
	return errors.New(errors.PhaseMaterialize, errors.KindInvalidInput).
		Path(string(s)).
		Detail("%s attribute has no %s transform", s, kind).
		Build()
}

func (c *call) readFloats(ctx context.Context, s Semantic, attr draco.Attribute, out componenttype.Array) error {
	arr, err := c.module.NewFloat32Array(ctx)
	if err != nil {
		return err
	}
	h, err := c.track(ctx, "float32_array", arr)
	if err != nil {
		return err
	}
	ok, err := c.engine.GetAttributeFloatForAllPoints(ctx, c.pc, attr, arr)
	if err != nil {
		return err
	}
	if !ok {
		return errReadValues(s, "float")
	}
	if err := copyValues[float32](ctx, s, arr, out.Len(), out.SetFloat32); err != nil {
		return err
	}
	return c.scope.Release(ctx, h)
}

func (c *call) readInts(ctx context.Context, s Semantic, attr draco.Attribute, out componenttype.Array) error {
	arr, err := c.module.NewInt32Array(ctx)
	if err != nil {
		return err
	}
	h, err := c.track(ctx, "int32_array", arr)
	if err != nil {
		return err
	}
	ok, err := c.engine.GetAttributeInt32ForAllPoints(ctx, c.pc, attr, arr)
	if err != nil {
		return err
	}
	if !ok {
		return errReadValues(s, "int32")
	}
	if err := copyValues[int32](ctx, s, arr, out.Len(), out.SetInt32); err != nil {
		return err
	}
	return c.scope.Release(ctx, h)
}

func errReadValues(s Semantic, kind string) error {
	return errors.New(errors.PhaseMaterialize, errors.KindDecodeFailure).
		Path(string(s)).
		Detail("failed to read %s values of %s", kind, s).
		Build()
}

// valueArray is a decoder-owned container of T values.
type valueArray[T int32 | float32] interface {
	Size(ctx context.Context) (int32, error)
	GetValue(ctx context.Context, index int32) (T, error)
}

// copyValues copies n values by sequential index.
func copyValues[T int32 | float32](ctx context.Context, s Semantic, src valueArray[T], n int, set func(int, T)) error {
	size, err := src.Size(ctx)
	if err != nil {
		return err
	}
	if int(size) < n {
		return errors.OutOfBounds(errors.PhaseMaterialize, []string{string(s)}, n-1, int(size))
	}
	for k := 0; k < n; k++ {
		v, err := src.GetValue(ctx, int32(k))
		if err != nil {
			return err
		}
		set(k, v)
	}
	return nil
}
