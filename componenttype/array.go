package componenttype

import (
	"encoding/binary"
	"math"
)

// Array is a flat, writable buffer of components of a single Datatype.
//
// Stores into integer arrays wrap modulo the component width, and float
// stores into integer arrays truncate toward zero.
type Array interface {
	Datatype() Datatype
	Len() int
	SetInt32(i int, v int32)
	SetFloat32(i int, v float32)
	// Bytes returns the components in little-endian order.
	Bytes() []byte
	// Values returns the backing slice ([]int8, []uint16, []float32, ...).
	Values() any
}

// Number is the set of Go element types backing an Array.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

type typedArray[T Number] struct {
	data []T
	dt   Datatype
}

// NewArray allocates a zeroed array of the given kind and length.
func NewArray(dt Datatype, length int) (Array, error) {
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	if length < 0 {
		length = 0
	}
	switch dt {
	case Byte:
		return &typedArray[int8]{data: make([]int8, length), dt: dt}, nil
	case UnsignedByte:
		return &typedArray[uint8]{data: make([]uint8, length), dt: dt}, nil
	case Short:
		return &typedArray[int16]{data: make([]int16, length), dt: dt}, nil
	case UnsignedShort:
		return &typedArray[uint16]{data: make([]uint16, length), dt: dt}, nil
	case Int:
		return &typedArray[int32]{data: make([]int32, length), dt: dt}, nil
	case UnsignedInt:
		return &typedArray[uint32]{data: make([]uint32, length), dt: dt}, nil
	case Float:
		return &typedArray[float32]{data: make([]float32, length), dt: dt}, nil
	default:
		return &typedArray[float64]{data: make([]float64, length), dt: dt}, nil
	}
}

// Values returns the backing slice of a when its element type is T.
func Values[T Number](a Array) ([]T, bool) {
	if a == nil {
		return nil, false
	}
	s, ok := a.Values().([]T)
	return s, ok
}

func (a *typedArray[T]) Datatype() Datatype { return a.dt }
func (a *typedArray[T]) Len() int           { return len(a.data) }
func (a *typedArray[T]) Values() any        { return a.data }

func (a *typedArray[T]) SetInt32(i int, v int32) {
	a.data[i] = T(v)
}

func (a *typedArray[T]) SetFloat32(i int, v float32) {
	if a.dt.IsFloat() {
		a.data[i] = T(v)
		return
	}
	// Out-of-range float to int conversions are implementation defined in Go.
	a.data[i] = T(int64(v))
}

func (a *typedArray[T]) Bytes() []byte {
	size := a.dt.SizeInBytes()
	out := make([]byte, len(a.data)*size)
	for i, v := range a.data {
		off := i * size
		switch x := any(v).(type) {
		case int8:
			out[off] = byte(x)
		case uint8:
			out[off] = x
		case int16:
			binary.LittleEndian.PutUint16(out[off:], uint16(x))
		case uint16:
			binary.LittleEndian.PutUint16(out[off:], x)
		case int32:
			binary.LittleEndian.PutUint32(out[off:], uint32(x))
		case uint32:
			binary.LittleEndian.PutUint32(out[off:], x)
		case float32:
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(x))
		case float64:
			binary.LittleEndian.PutUint64(out[off:], math.Float64bits(x))
		}
	}
	return out
}
