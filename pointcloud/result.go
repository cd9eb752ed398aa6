package pointcloud

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/wippyai/draco-decoder/componenttype"
)

// Attribute is one decoded per-point attribute.
type Attribute struct {
	// Buffer holds NumPoints*NumComponents values, point-major.
	Buffer componenttype.Array
	// Quantization is nil unless the attribute was left quantized.
	Quantization  Quantization
	NumComponents int
}

// Fingerprint hashes the buffer contents and quantization parameters.
// Identical decodes produce identical fingerprints.
func (a *Attribute) Fingerprint() uint64 {
	d := xxhash.New()
	var scratch [8]byte

	binary.LittleEndian.PutUint16(scratch[:2], uint16(a.Buffer.Datatype()))
	_, _ = d.Write(scratch[:2])
	_, _ = d.Write(a.Buffer.Bytes())

	switch q := a.Quantization.(type) {
	case *PositionQuantization:
		binary.LittleEndian.PutUint32(scratch[:4], uint32(q.QuantizationBits))
		_, _ = d.Write(scratch[:4])
		for _, v := range q.MinValues {
			binary.LittleEndian.PutUint32(scratch[:4], math.Float32bits(v))
			_, _ = d.Write(scratch[:4])
		}
		binary.LittleEndian.PutUint32(scratch[:4], math.Float32bits(q.Range))
		_, _ = d.Write(scratch[:4])
	case *NormalQuantization:
		binary.LittleEndian.PutUint32(scratch[:4], uint32(q.QuantizationBits))
		_, _ = d.Write(scratch[:4])
	}
	return d.Sum64()
}

// MarshalJSON encodes the attribute as
// {"componentDatatype", "numComponents", "buffer", "quantization"}.
func (a *Attribute) MarshalJSON() ([]byte, error) {
	values := a.Buffer.Values()
	// []uint8 would otherwise be encoded as base64.
	if b, ok := values.([]uint8); ok {
		ints := make([]int, len(b))
		for i, v := range b {
			ints[i] = int(v)
		}
		values = ints
	}
	return json.Marshal(struct {
		Buffer            any                    `json:"buffer"`
		Quantization      Quantization           `json:"quantization"`
		ComponentDatatype componenttype.Datatype `json:"componentDatatype"`
		NumComponents     int                    `json:"numComponents"`
	}{
		Buffer:            values,
		Quantization:      a.Quantization,
		ComponentDatatype: a.Buffer.Datatype(),
		NumComponents:     a.NumComponents,
	})
}

// Result maps each requested semantic to its decoded attribute.
type Result struct {
	Attributes map[Semantic]*Attribute
	order      []Semantic
	NumPoints  int
}

func newResult(numPoints int, capacity int) *Result {
	return &Result{
		Attributes: make(map[Semantic]*Attribute, capacity),
		order:      make([]Semantic, 0, capacity),
		NumPoints:  numPoints,
	}
}

func (r *Result) add(s Semantic, a *Attribute) {
	if _, exists := r.Attributes[s]; !exists {
		r.order = append(r.order, s)
	}
	r.Attributes[s] = a
}

// Semantics returns the decoded semantics in request order. Results not
// produced by Decode list their semantics in the order of Semantics.
func (r *Result) Semantics() []Semantic {
	if len(r.order) == len(r.Attributes) {
		return append([]Semantic(nil), r.order...)
	}
	out := make([]Semantic, 0, len(r.Attributes))
	for _, s := range Semantics {
		if _, ok := r.Attributes[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// MarshalJSON encodes the result as an object keyed by semantic name.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Attributes)
}
