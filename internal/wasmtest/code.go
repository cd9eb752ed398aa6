package wasmtest

// Opcodes used by Code.
const (
	opEnd           = 0x0b
	opCall          = 0x10
	opDrop          = 0x1a
	opSelect        = 0x1b
	opLocalGet      = 0x20
	opLocalSet      = 0x21
	opGlobalGet     = 0x23
	opGlobalSet     = 0x24
	opI32Load       = 0x28
	opI32Load8U     = 0x2d
	opI32Store      = 0x36
	opI32Const      = 0x41
	opF32Const      = 0x43
	opI32Eqz        = 0x45
	opI32Eq         = 0x46
	opI32Add        = 0x6a
	opI32Sub        = 0x6b
	opI32Mul        = 0x6c
	opF32ConvertI32 = 0xb2
	opUnreachable   = 0x00
)

// Code builds a function body instruction by instruction.
type Code struct {
	w Writer
}

// NewCode starts an empty function body.
func NewCode() *Code {
	return &Code{}
}

func (c *Code) op(b byte) *Code {
	c.w.Byte(b)
	return c
}

func (c *Code) LocalGet(idx uint32) *Code {
	c.w.Byte(opLocalGet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) LocalSet(idx uint32) *Code {
	c.w.Byte(opLocalSet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) GlobalGet(idx uint32) *Code {
	c.w.Byte(opGlobalGet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) GlobalSet(idx uint32) *Code {
	c.w.Byte(opGlobalSet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(opI32Const)
	c.w.WriteS32(v)
	return c
}

func (c *Code) F32Const(v float32) *Code {
	c.w.Byte(opF32Const)
	c.w.WriteF32(v)
	return c
}

// I32Load loads a 32-bit value at the address on the stack plus offset.
func (c *Code) I32Load(offset uint32) *Code {
	c.w.Byte(opI32Load)
	c.w.WriteU32(2)
	c.w.WriteU32(offset)
	return c
}

// I32Load8U loads one byte at the address on the stack plus offset.
func (c *Code) I32Load8U(offset uint32) *Code {
	c.w.Byte(opI32Load8U)
	c.w.WriteU32(0)
	c.w.WriteU32(offset)
	return c
}

// I32Store stores a 32-bit value at the address below it plus offset.
func (c *Code) I32Store(offset uint32) *Code {
	c.w.Byte(opI32Store)
	c.w.WriteU32(2)
	c.w.WriteU32(offset)
	return c
}

func (c *Code) Call(funcIdx uint32) *Code {
	c.w.Byte(opCall)
	c.w.WriteU32(funcIdx)
	return c
}

func (c *Code) I32Add() *Code         { return c.op(opI32Add) }
func (c *Code) I32Sub() *Code         { return c.op(opI32Sub) }
func (c *Code) I32Mul() *Code         { return c.op(opI32Mul) }
func (c *Code) I32Eq() *Code          { return c.op(opI32Eq) }
func (c *Code) I32Eqz() *Code         { return c.op(opI32Eqz) }
func (c *Code) F32ConvertI32S() *Code { return c.op(opF32ConvertI32) }
func (c *Code) Select() *Code         { return c.op(opSelect) }
func (c *Code) Drop() *Code           { return c.op(opDrop) }
func (c *Code) Unreachable() *Code    { return c.op(opUnreachable) }

// End terminates the body and returns its encoding.
func (c *Code) End() []byte {
	c.w.Byte(opEnd)
	return append([]byte(nil), c.w.Bytes()...)
}
