// Package wasmtest encodes small WebAssembly modules for tests.
//
// Only the subset needed to stand in for real guest libraries is
// supported: numeric function types, function imports, one memory,
// i32 globals, exports and active data segments.
package wasmtest

import "strings"

// ValType is a numeric value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

const (
	magic   uint32 = 0x6d736100
	version uint32 = 1

	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11

	kindFunc   byte = 0x00
	kindMemory byte = 0x02
	kindGlobal byte = 0x03

	funcTypeByte byte = 0x60
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (f FuncType) key() string {
	var b strings.Builder
	for _, p := range f.Params {
		b.WriteByte(byte(p))
	}
	b.WriteByte('>')
	for _, r := range f.Results {
		b.WriteByte(byte(r))
	}
	return b.String()
}

// Sig is shorthand for a FuncType.
func Sig(params []ValType, results ...ValType) FuncType {
	return FuncType{Params: params, Results: results}
}

// Params is shorthand for a parameter list.
func Params(p ...ValType) []ValType { return p }

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a function defined by the module. Export is the export name,
// empty for internal functions.
type Func struct {
	Export string
	Type   FuncType
	Locals []ValType
	Body   []byte
}

// Global is a mutable or immutable i32 global.
type Global struct {
	Export  string
	Init    int32
	Mutable bool
}

// Data is an active data segment in memory 0.
type Data struct {
	Bytes  []byte
	Offset int32
}

// Module is a module under construction.
//
// Function indices count imports first, then Funcs in order.
type Module struct {
	Imports      []Import
	Funcs        []Func
	Globals      []Global
	Data         []Data
	MemoryExport string
	MemoryPages  uint32
}

// FuncIndex returns the index of the function exported or imported as name.
func (m *Module) FuncIndex(name string) (uint32, bool) {
	for i, imp := range m.Imports {
		if imp.Name == name {
			return uint32(i), true
		}
	}
	for i, f := range m.Funcs {
		if f.Export == name {
			return uint32(len(m.Imports) + i), true
		}
	}
	return 0, false
}

// Encode encodes the module to the wasm binary format.
func (m *Module) Encode() []byte {
	var w Writer
	w.WriteU32LE(magic)
	w.WriteU32LE(version)

	types, typeIdx := m.collectTypes()

	if len(types) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(types)))
		for _, ft := range types {
			sec.Byte(funcTypeByte)
			writeValTypes(&sec, ft.Params)
			writeValTypes(&sec, ft.Results)
		}
		w.section(sectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(kindFunc)
			sec.WriteU32(typeIdx[imp.Type.key()])
		}
		w.section(sectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			sec.WriteU32(typeIdx[f.Type.key()])
		}
		w.section(sectionFunction, sec.Bytes())
	}

	if m.MemoryPages > 0 {
		var sec Writer
		sec.WriteU32(1)
		sec.Byte(0x00) // no maximum
		sec.WriteU32(m.MemoryPages)
		w.section(sectionMemory, sec.Bytes())
	}

	if len(m.Globals) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			sec.Byte(byte(I32))
			if g.Mutable {
				sec.Byte(0x01)
			} else {
				sec.Byte(0x00)
			}
			sec.Byte(opI32Const)
			sec.WriteS32(g.Init)
			sec.Byte(opEnd)
		}
		w.section(sectionGlobal, sec.Bytes())
	}

	if exports := m.exports(); exports.Len() > 0 {
		w.section(sectionExport, exports.Bytes())
	}

	if len(m.Funcs) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body Writer
			body.WriteU32(uint32(len(f.Locals)))
			for _, l := range f.Locals {
				body.WriteU32(1)
				body.Byte(byte(l))
			}
			body.WriteBytes(f.Body)
			sec.WriteU32(uint32(body.Len()))
			sec.WriteBytes(body.Bytes())
		}
		w.section(sectionCode, sec.Bytes())
	}

	if len(m.Data) > 0 {
		var sec Writer
		sec.WriteU32(uint32(len(m.Data)))
		for _, d := range m.Data {
			sec.WriteU32(0) // active, memory 0
			sec.Byte(opI32Const)
			sec.WriteS32(d.Offset)
			sec.Byte(opEnd)
			sec.WriteU32(uint32(len(d.Bytes)))
			sec.WriteBytes(d.Bytes)
		}
		w.section(sectionData, sec.Bytes())
	}

	return w.Bytes()
}

// collectTypes deduplicates signatures in first-use order.
func (m *Module) collectTypes() ([]FuncType, map[string]uint32) {
	var types []FuncType
	idx := make(map[string]uint32)
	add := func(ft FuncType) {
		k := ft.key()
		if _, ok := idx[k]; ok {
			return
		}
		idx[k] = uint32(len(types))
		types = append(types, ft)
	}
	for _, imp := range m.Imports {
		add(imp.Type)
	}
	for _, f := range m.Funcs {
		add(f.Type)
	}
	return types, idx
}

func (m *Module) exports() *Writer {
	var entries Writer
	n := uint32(0)
	for i, f := range m.Funcs {
		if f.Export == "" {
			continue
		}
		entries.WriteName(f.Export)
		entries.Byte(kindFunc)
		entries.WriteU32(uint32(len(m.Imports) + i))
		n++
	}
	if m.MemoryPages > 0 && m.MemoryExport != "" {
		entries.WriteName(m.MemoryExport)
		entries.Byte(kindMemory)
		entries.WriteU32(0)
		n++
	}
	for i, g := range m.Globals {
		if g.Export == "" {
			continue
		}
		entries.WriteName(g.Export)
		entries.Byte(kindGlobal)
		entries.WriteU32(uint32(i))
		n++
	}

	out := &Writer{}
	if n == 0 {
		return out
	}
	out.WriteU32(n)
	out.WriteBytes(entries.Bytes())
	return out
}

func writeValTypes(w *Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}
