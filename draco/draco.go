// Package draco defines the contract of the external Draco geometry decoder.
//
// The decoder is an opaque library. Objects it allocates (buffer views, point
// clouds, transform views, value arrays) live in the decoder's own heap and
// must be released explicitly through Release. Objects returned by the
// decoder itself (Status, Attribute) are owned by their parent and are never
// released by callers.
//
// Implementations are not required to be safe for concurrent use.
package draco

import (
	"context"
)

// Releaser is implemented by every object a caller allocates from a Module.
// Release must be called exactly once.
type Releaser interface {
	Release(ctx context.Context) error
}

// Module is a loaded decoder library. It constructs decoder engines and the
// helper objects the engine operates on.
type Module interface {
	NewDecoder(ctx context.Context) (Decoder, error)
	// NewBuffer copies data into the decoder heap and wraps it in a buffer view.
	NewBuffer(ctx context.Context, data []byte) (Buffer, error)
	NewPointCloud(ctx context.Context) (PointCloud, error)
	NewQuantizationTransform(ctx context.Context) (QuantizationTransform, error)
	NewOctahedronTransform(ctx context.Context) (OctahedronTransform, error)
	NewFloat32Array(ctx context.Context) (Float32Array, error)
	NewInt32Array(ctx context.Context) (Int32Array, error)
}

// Decoder is a reusable decoder engine.
type Decoder interface {
	// SkipAttributeTransform keeps attributes of type t in their transformed
	// (quantized or octahedron encoded) form. The setting persists for the
	// lifetime of the engine.
	SkipAttributeTransform(ctx context.Context, t AttributeType) error
	GetEncodedGeometryType(ctx context.Context, buf Buffer) (GeometryType, error)
	DecodeBufferToPointCloud(ctx context.Context, buf Buffer, pc PointCloud) (Status, error)
	// GetAttributeID returns the id of the first attribute of type t, or -1.
	GetAttributeID(ctx context.Context, pc PointCloud, t AttributeType) (int32, error)
	GetAttribute(ctx context.Context, pc PointCloud, id int32) (Attribute, error)
	GetAttributeFloatForAllPoints(ctx context.Context, pc PointCloud, attr Attribute, out Float32Array) (bool, error)
	GetAttributeInt32ForAllPoints(ctx context.Context, pc PointCloud, attr Attribute, out Int32Array) (bool, error)
}

// Buffer is a decoder-owned view over encoded bytes.
type Buffer interface {
	Releaser
	Len() int
}

// PointCloud is a decoded point cloud.
type PointCloud interface {
	Releaser
	// Valid reports whether the decoder produced a usable object.
	Valid() bool
	NumPoints(ctx context.Context) (int32, error)
}

// Status is the outcome of a decode operation.
type Status interface {
	OK(ctx context.Context) (bool, error)
	ErrorMsg(ctx context.Context) (string, error)
}

// Attribute is a per-point attribute of a point cloud.
type Attribute interface {
	NumComponents(ctx context.Context) (int32, error)
	DataType(ctx context.Context) (DataType, error)
}

// QuantizationTransform exposes the parameters of a quantized attribute.
type QuantizationTransform interface {
	Releaser
	InitFromAttribute(ctx context.Context, attr Attribute) (bool, error)
	QuantizationBits(ctx context.Context) (int32, error)
	MinValue(ctx context.Context, axis int32) (float32, error)
	Range(ctx context.Context) (float32, error)
}

// OctahedronTransform exposes the parameters of an octahedron encoded attribute.
type OctahedronTransform interface {
	Releaser
	InitFromAttribute(ctx context.Context, attr Attribute) (bool, error)
	QuantizationBits(ctx context.Context) (int32, error)
}

// Float32Array is a decoder-owned container of float values.
type Float32Array interface {
	Releaser
	Size(ctx context.Context) (int32, error)
	GetValue(ctx context.Context, index int32) (float32, error)
}

// Int32Array is a decoder-owned container of int values.
type Int32Array interface {
	Releaser
	Size(ctx context.Context) (int32, error)
	GetValue(ctx context.Context, index int32) (int32, error)
}
