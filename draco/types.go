package draco

import "fmt"

// GeometryType is the kind of geometry stored in an encoded buffer.
type GeometryType int32

const (
	GeometryInvalid        GeometryType = -1
	GeometryPointCloud     GeometryType = 0
	GeometryTriangularMesh GeometryType = 1
)

func (g GeometryType) String() string {
	switch g {
	case GeometryPointCloud:
		return "POINT_CLOUD"
	case GeometryTriangularMesh:
		return "TRIANGULAR_MESH"
	case GeometryInvalid:
		return "INVALID_GEOMETRY_TYPE"
	}
	return fmt.Sprintf("GeometryType(%d)", int32(g))
}

// AttributeType is the decoder's semantic kind of a per-point attribute
// (draco::GeometryAttribute::Type).
type AttributeType int32

const (
	AttributeInvalid  AttributeType = -1
	AttributePosition AttributeType = 0
	AttributeNormal   AttributeType = 1
	AttributeColor    AttributeType = 2
	AttributeTexCoord AttributeType = 3
	AttributeGeneric  AttributeType = 4
)

func (a AttributeType) String() string {
	switch a {
	case AttributePosition:
		return "POSITION"
	case AttributeNormal:
		return "NORMAL"
	case AttributeColor:
		return "COLOR"
	case AttributeTexCoord:
		return "TEX_COORD"
	case AttributeGeneric:
		return "GENERIC"
	case AttributeInvalid:
		return "INVALID"
	}
	return fmt.Sprintf("AttributeType(%d)", int32(a))
}

// DataType is the native storage kind of an attribute (draco::DataType).
type DataType int32

const (
	DTInvalid DataType = 0
	DTInt8    DataType = 1
	DTUint8   DataType = 2
	DTInt16   DataType = 3
	DTUint16  DataType = 4
	DTInt32   DataType = 5
	DTUint32  DataType = 6
	DTInt64   DataType = 7
	DTUint64  DataType = 8
	DTFloat32 DataType = 9
	DTFloat64 DataType = 10
	DTBool    DataType = 11
)

func (d DataType) String() string {
	switch d {
	case DTInvalid:
		return "DT_INVALID"
	case DTInt8:
		return "DT_INT8"
	case DTUint8:
		return "DT_UINT8"
	case DTInt16:
		return "DT_INT16"
	case DTUint16:
		return "DT_UINT16"
	case DTInt32:
		return "DT_INT32"
	case DTUint32:
		return "DT_UINT32"
	case DTInt64:
		return "DT_INT64"
	case DTUint64:
		return "DT_UINT64"
	case DTFloat32:
		return "DT_FLOAT32"
	case DTFloat64:
		return "DT_FLOAT64"
	case DTBool:
		return "DT_BOOL"
	}
	return fmt.Sprintf("DataType(%d)", int32(d))
}
