package wasmdraco

import (
	"github.com/wippyai/draco-decoder/internal/wasmtest"
)

// Globals of the synthetic guest.
const (
	gHeap uint32 = iota
	gGeometry
	gDecodeFailed
	gNumPoints
	gLive
	gFreed
)

const (
	guestErrorMsgAddr = 512
	guestStatusPtr    = 600
	guestErrorMsg     = "Unknown major version."

	colorAttrPtr = 100 + 2 // GetAttribute returns 100+id; COLOR has id 2
)

// guestBuffer encodes the bytes the synthetic guest interprets: geometry
// type, decode failure flag and number of points.
func guestBuffer(geometry, failed, points byte) []byte {
	return []byte{geometry, failed, points, 0xd7}
}

// syntheticGuest builds a module exporting every binding the library
// binds. It behaves like a tiny Draco decoder:
//
//   - DecoderBuffer.Init latches geometry, failure flag and point count
//     from the first three data bytes
//   - attribute id equals the attribute type; COLOR has 4 uint8
//     components, everything else 3 float32 components
//   - value arrays hold their index as value
//   - quantization: 11 bits, min value = axis, range 2.5; octahedron: 8 bits
//
// Global "live" counts constructed minus destroyed objects and "freed"
// counts free calls.
func syntheticGuest(omit ...string) []byte {
	skip := make(map[string]bool, len(omit))
	for _, name := range omit {
		skip[name] = true
	}

	i32 := wasmtest.I32
	f32 := wasmtest.F32
	p := wasmtest.Params
	sig := wasmtest.Sig

	m := &wasmtest.Module{
		Imports: []wasmtest.Import{
			{Module: envModule, Name: "emscripten_resize_heap", Type: sig(p(i32), i32)},
		},
		MemoryPages:  2,
		MemoryExport: "memory",
		Globals: []wasmtest.Global{
			gHeap:         {Init: 4096, Mutable: true},
			gGeometry:     {Mutable: true},
			gDecodeFailed: {Mutable: true},
			gNumPoints:    {Mutable: true},
			gLive:         {Export: "live", Mutable: true},
			gFreed:        {Export: "freed", Mutable: true},
		},
		Data: []wasmtest.Data{
			{Offset: guestErrorMsgAddr, Bytes: []byte(guestErrorMsg + "\x00")},
		},
	}

	const mallocIdx = 1 // after the single import
	code := wasmtest.NewCode

	components := func(attrLocal uint32) *wasmtest.Code {
		return code().I32Const(4).I32Const(3).LocalGet(attrLocal).I32Const(colorAttrPtr).I32Eq().Select()
	}
	ctor := code().GlobalGet(gLive).I32Const(1).I32Add().GlobalSet(gLive).I32Const(16).Call(mallocIdx).End()
	dtor := code().GlobalGet(gLive).I32Const(1).I32Sub().GlobalSet(gLive).End()
	retI32 := func(v int32) []byte { return code().I32Const(v).End() }
	// Stores numComponents*numPoints as the size of the out array.
	fill := func() []byte {
		return code().LocalGet(3).
			I32Const(4).I32Const(3).LocalGet(2).I32Const(colorAttrPtr).I32Eq().Select().
			GlobalGet(gNumPoints).I32Mul().
			I32Store(0).
			I32Const(1).
			End()
	}

	funcs := []wasmtest.Func{
		{Export: exportMalloc, Type: sig(p(i32), i32),
			Body: code().GlobalGet(gHeap).GlobalGet(gHeap).LocalGet(0).I32Add().GlobalSet(gHeap).End()},
		{Export: exportFree, Type: sig(p(i32)),
			Body: code().GlobalGet(gFreed).I32Const(1).I32Add().GlobalSet(gFreed).End()},
		{Export: "grow_heap", Type: sig(p(i32), i32),
			Body: code().LocalGet(0).Call(0).End()},

		{Export: bindDecoderNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindDecoderDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindDecoderSkipAttributeTransform, Type: sig(p(i32, i32)), Body: code().End()},
		{Export: bindDecoderGetEncodedGeometryType, Type: sig(p(i32, i32), i32), Body: code().GlobalGet(gGeometry).End()},
		{Export: bindDecoderDecodeToPointCloud, Type: sig(p(i32, i32, i32), i32), Body: retI32(guestStatusPtr)},
		{Export: bindDecoderGetAttributeID, Type: sig(p(i32, i32, i32), i32), Body: code().LocalGet(2).End()},
		{Export: bindDecoderGetAttribute, Type: sig(p(i32, i32, i32), i32), Body: code().LocalGet(2).I32Const(100).I32Add().End()},
		{Export: bindDecoderGetAttributeFloatForAll, Type: sig(p(i32, i32, i32, i32), i32), Body: fill()},
		{Export: bindDecoderGetAttributeInt32ForAll, Type: sig(p(i32, i32, i32, i32), i32), Body: fill()},

		{Export: bindBufferNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindBufferDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindBufferInit, Type: sig(p(i32, i32, i32)), Body: code().
			LocalGet(1).I32Load8U(0).GlobalSet(gGeometry).
			LocalGet(1).I32Load8U(1).GlobalSet(gDecodeFailed).
			LocalGet(1).I32Load8U(2).GlobalSet(gNumPoints).
			End()},

		{Export: bindPointCloudNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindPointCloudDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindPointCloudNumPoints, Type: sig(p(i32), i32), Body: code().GlobalGet(gNumPoints).End()},

		{Export: bindStatusOK, Type: sig(p(i32), i32), Body: code().GlobalGet(gDecodeFailed).I32Eqz().End()},
		{Export: bindStatusErrorMsg, Type: sig(p(i32), i32), Body: retI32(guestErrorMsgAddr)},

		{Export: bindAttributeNumComponents, Type: sig(p(i32), i32), Body: components(0).End()},
		{Export: bindAttributeDataType, Type: sig(p(i32), i32), Body: code().
			I32Const(2).I32Const(9).LocalGet(0).I32Const(colorAttrPtr).I32Eq().Select().End()},

		{Export: bindQuantNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindQuantDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindQuantInit, Type: sig(p(i32, i32), i32), Body: retI32(1)},
		{Export: bindQuantBits, Type: sig(p(i32), i32), Body: retI32(11)},
		{Export: bindQuantMinValue, Type: sig(p(i32, i32), f32), Body: code().LocalGet(1).F32ConvertI32S().End()},
		{Export: bindQuantRange, Type: sig(p(i32), f32), Body: code().F32Const(2.5).End()},

		{Export: bindOctNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindOctDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindOctInit, Type: sig(p(i32, i32), i32), Body: retI32(1)},
		{Export: bindOctBits, Type: sig(p(i32), i32), Body: retI32(8)},

		{Export: bindFloat32ArrayNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindFloat32ArrayDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindFloat32ArraySize, Type: sig(p(i32), i32), Body: code().LocalGet(0).I32Load(0).End()},
		{Export: bindFloat32ArrayGetValue, Type: sig(p(i32, i32), f32), Body: code().LocalGet(1).F32ConvertI32S().End()},

		{Export: bindInt32ArrayNew, Type: sig(nil, i32), Body: ctor},
		{Export: bindInt32ArrayDestroy, Type: sig(p(i32)), Body: dtor},
		{Export: bindInt32ArraySize, Type: sig(p(i32), i32), Body: code().LocalGet(0).I32Load(0).End()},
		{Export: bindInt32ArrayGetValue, Type: sig(p(i32, i32), i32), Body: code().LocalGet(1).End()},
	}

	for _, f := range funcs {
		if skip[f.Export] {
			// Keep indices stable for calls into malloc.
			f.Export = ""
		}
		m.Funcs = append(m.Funcs, f)
	}
	return m.Encode()
}
