package pointcloud

import (
	"strings"

	"github.com/wippyai/draco-decoder/componenttype"
	"github.com/wippyai/draco-decoder/draco"
	"github.com/wippyai/draco-decoder/errors"
)

// Semantic names a per-point attribute requested by the caller.
type Semantic string

const (
	Position Semantic = "POSITION"
	Normal   Semantic = "NORMAL"
	RGB      Semantic = "RGB"
	RGBA     Semantic = "RGBA"
	BatchID  Semantic = "BATCH_ID"
)

// Semantics lists every supported semantic.
var Semantics = []Semantic{Position, Normal, RGB, RGBA, BatchID}

// Valid reports whether s is a supported semantic.
func (s Semantic) Valid() bool {
	_, ok := AttributeTypeFor(s)
	return ok
}

// ParseSemantic parses a semantic name, ignoring case and surrounding space.
func ParseSemantic(name string) (Semantic, error) {
	s := Semantic(strings.ToUpper(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", errors.InvalidSemantic(name)
	}
	return s, nil
}

// AttributeTypeFor maps a semantic to the decoder attribute type.
// RGB and RGBA both resolve to COLOR, so requesting both yields the same
// underlying attribute twice.
func AttributeTypeFor(s Semantic) (draco.AttributeType, bool) {
	switch s {
	case Position:
		return draco.AttributePosition, true
	case Normal:
		return draco.AttributeNormal, true
	case RGB, RGBA:
		return draco.AttributeColor, true
	case BatchID:
		return draco.AttributeGeneric, true
	}
	return draco.AttributeInvalid, false
}

// DatatypeFor maps a native attribute storage kind to the output component
// kind. 64-bit integers narrow to 32 bits because the decoder only returns
// 32-bit values; both float widths map to Float and booleans to Byte.
func DatatypeFor(dt draco.DataType) (componenttype.Datatype, bool) {
	switch dt {
	case draco.DTInt8:
		return componenttype.Byte, true
	case draco.DTUint8:
		return componenttype.UnsignedByte, true
	case draco.DTInt16:
		return componenttype.Short, true
	case draco.DTUint16:
		return componenttype.UnsignedShort, true
	case draco.DTInt32:
		return componenttype.Int, true
	case draco.DTUint32:
		return componenttype.UnsignedInt, true
	case draco.DTInt64:
		return componenttype.Int, true
	case draco.DTUint64:
		return componenttype.UnsignedInt, true
	case draco.DTFloat32:
		return componenttype.Float, true
	case draco.DTFloat64:
		return componenttype.Float, true
	case draco.DTBool:
		return componenttype.Byte, true
	}
	return 0, false
}
