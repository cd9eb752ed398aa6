// Package dracodecoder decodes Draco-compressed point clouds into typed
// vertex attribute arrays.
//
// The Draco decoder itself is an opaque WebAssembly module (the Emscripten
// build shipped with Draco) executed by wazero. This library drives it
// through its C binding exports, copies every requested per-point attribute
// out into Go-owned typed buffers and releases every decoder-owned object
// before returning.
//
// # Architecture Overview
//
//	dracodecoder/        Root package with guest Memory and Allocator interfaces
//	├── componenttype/   Numeric component kinds and typed output arrays
//	├── draco/           Contract of the external decoder (enums, objects, operations)
//	│   └── wasmdraco/   wazero-backed implementation over draco_decoder.wasm
//	├── resource/        Per-call scope that releases decoder objects exactly once
//	├── pointcloud/      Attribute resolution, quantization and materialization
//	├── worker/          Serialized task processor around pointcloud.Decoder
//	├── errors/          Structured error types
//	└── cmd/pcdecode/    Command line decoder
//
// # Quick Start
//
//	lib, err := wasmdraco.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close(ctx)
//
//	dec := pointcloud.NewDecoder(pointcloud.Static(lib))
//	res, err := dec.Decode(ctx, pointcloud.Request{
//	    Buffer:    drc,
//	    Semantics: []pointcloud.Semantic{pointcloud.Position, pointcloud.RGBA},
//	})
//
//	positions, _ := componenttype.Values[float32](res.Attributes[pointcloud.Position].Buffer)
//
// # Dequantization in shader
//
// With Request.DequantizeInShader set, POSITION is returned as quantized
// uint16 values with the parameters needed to reconstruct it, and NORMAL as
// octahedron-encoded int16 pairs. Every other attribute is unaffected.
//
// # Thread Safety
//
// pointcloud.Decoder serializes decode calls. The underlying wasm instance is
// single-threaded; use worker.Processor to decode off the caller's goroutine.
package dracodecoder
