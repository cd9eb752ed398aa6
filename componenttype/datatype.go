// Package componenttype describes the numeric kinds of vertex attribute
// components and allocates typed buffers for them.
//
// Datatype values use the WebGL/glTF componentType codes so that buffers can
// be handed to a rendering pipeline without translation.
package componenttype

import (
	"fmt"
)

// Datatype is the numeric kind of a single attribute component.
type Datatype uint16

const (
	Byte          Datatype = 5120 // int8
	UnsignedByte  Datatype = 5121 // uint8
	Short         Datatype = 5122 // int16
	UnsignedShort Datatype = 5123 // uint16
	Int           Datatype = 5124 // int32
	UnsignedInt   Datatype = 5125 // uint32
	Float         Datatype = 5126 // float32
	Double        Datatype = 5130 // float64
)

// SizeInBytes returns the width of one component, or 0 for an unknown kind.
func (d Datatype) SizeInBytes() int {
	switch d {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case Int, UnsignedInt, Float:
		return 4
	case Double:
		return 8
	}
	return 0
}

// IsFloat reports whether the kind is a floating point kind.
func (d Datatype) IsFloat() bool {
	return d == Float || d == Double
}

// Validate returns an error for kinds outside the known set.
func (d Datatype) Validate() error {
	if d.SizeInBytes() == 0 {
		return fmt.Errorf("componenttype: unknown datatype %d", uint16(d))
	}
	return nil
}

func (d Datatype) String() string {
	switch d {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case Int:
		return "INT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	}
	return fmt.Sprintf("Datatype(%d)", uint16(d))
}

// MarshalText encodes the kind by name.
func (d Datatype) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}
