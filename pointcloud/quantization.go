package pointcloud

// Quantization describes how a quantized attribute is reconstructed.
// It is either *PositionQuantization or *NormalQuantization.
type Quantization interface {
	Bits() int32
	quantization()
}

// PositionQuantization holds the parameters of a quantized POSITION:
// value = MinValues[c] + q * Range / (2^QuantizationBits - 1).
type PositionQuantization struct {
	MinValues        []float32 `json:"minValues"`
	QuantizationBits int32     `json:"quantizationBits"`
	Range            float32   `json:"range"`
}

func (p *PositionQuantization) Bits() int32 { return p.QuantizationBits }
func (*PositionQuantization) quantization() {}

// NormalQuantization holds the precision of an octahedron encoded NORMAL.
type NormalQuantization struct {
	QuantizationBits int32 `json:"quantizationBits"`
}

func (n *NormalQuantization) Bits() int32 { return n.QuantizationBits }
func (*NormalQuantization) quantization() {}
