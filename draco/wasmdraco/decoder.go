package wasmdraco

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
)

var _ draco.Decoder = (*decoder)(nil)

// decoder wraps a draco::Decoder instance in the guest heap.
type decoder struct {
	object
}

func (d *decoder) self() uint64 { return api.EncodeU32(d.ptr) }

func (d *decoder) SkipAttributeTransform(ctx context.Context, t draco.AttributeType) error {
	_, err := d.lib.call(ctx, bindDecoderSkipAttributeTransform, d.self(), api.EncodeI32(int32(t)))
	return err
}

func (d *decoder) GetEncodedGeometryType(ctx context.Context, buf draco.Buffer) (draco.GeometryType, error) {
	b, err := ptrArg("buffer", buf)
	if err != nil {
		return draco.GeometryInvalid, err
	}
	v, err := d.lib.callI32(ctx, bindDecoderGetEncodedGeometryType, d.self(), b)
	if err != nil {
		return draco.GeometryInvalid, err
	}
	return draco.GeometryType(v), nil
}

func (d *decoder) DecodeBufferToPointCloud(ctx context.Context, buf draco.Buffer, pc draco.PointCloud) (draco.Status, error) {
	b, err := ptrArg("buffer", buf)
	if err != nil {
		return nil, err
	}
	p, err := ptrArg("point_cloud", pc)
	if err != nil {
		return nil, err
	}
	v, err := d.lib.call(ctx, bindDecoderDecodeToPointCloud, d.self(), b, p)
	if err != nil {
		return nil, err
	}
	return &status{lib: d.lib, ptr: api.DecodeU32(v)}, nil
}

func (d *decoder) GetAttributeID(ctx context.Context, pc draco.PointCloud, t draco.AttributeType) (int32, error) {
	p, err := ptrArg("point_cloud", pc)
	if err != nil {
		return -1, err
	}
	return d.lib.callI32(ctx, bindDecoderGetAttributeID, d.self(), p, api.EncodeI32(int32(t)))
}

func (d *decoder) GetAttribute(ctx context.Context, pc draco.PointCloud, id int32) (draco.Attribute, error) {
	p, err := ptrArg("point_cloud", pc)
	if err != nil {
		return nil, err
	}
	v, err := d.lib.call(ctx, bindDecoderGetAttribute, d.self(), p, api.EncodeI32(id))
	if err != nil {
		return nil, err
	}
	ptr := api.DecodeU32(v)
	if ptr == 0 {
		return nil, errors.New(errors.PhaseRuntime, errors.KindNotFound).
			Value(id).
			Detail("attribute %d not found", id).
			Build()
	}
	return &attribute{lib: d.lib, ptr: ptr}, nil
}

func (d *decoder) GetAttributeFloatForAllPoints(ctx context.Context, pc draco.PointCloud, attr draco.Attribute, out draco.Float32Array) (bool, error) {
	return d.getForAllPoints(ctx, bindDecoderGetAttributeFloatForAll, pc, attr, out)
}

func (d *decoder) GetAttributeInt32ForAllPoints(ctx context.Context, pc draco.PointCloud, attr draco.Attribute, out draco.Int32Array) (bool, error) {
	return d.getForAllPoints(ctx, bindDecoderGetAttributeInt32ForAll, pc, attr, out)
}

func (d *decoder) getForAllPoints(ctx context.Context, export string, pc draco.PointCloud, attr draco.Attribute, out any) (bool, error) {
	p, err := ptrArg("point_cloud", pc)
	if err != nil {
		return false, err
	}
	a, err := ptrArg("attribute", attr)
	if err != nil {
		return false, err
	}
	o, err := ptrArg("out_values", out)
	if err != nil {
		return false, err
	}
	return d.lib.callBool(ctx, export, d.self(), p, a, o)
}
