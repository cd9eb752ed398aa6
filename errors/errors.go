package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBootstrap   Phase = "bootstrap"   // decoder module and engine creation
	PhaseIngest      Phase = "ingest"      // buffer view, geometry check, decode
	PhaseResolve     Phase = "resolve"     // semantic to attribute lookup
	PhaseMaterialize Phase = "materialize" // quantization and value copy
	PhaseLoad        Phase = "load"        // wasm module loading and binding
	PhaseRuntime     Phase = "runtime"     // guest calls and memory access
	PhaseDispatch    Phase = "dispatch"    // task processor boundary
)

// Kind categorizes the error
type Kind string

const (
	KindWrongGeometry   Kind = "wrong_geometry"
	KindDecodeFailure   Kind = "decode_failure"
	KindInvalidSemantic Kind = "invalid_semantic"
	KindInvalidDataType Kind = "invalid_data_type"
	KindMissingExport   Kind = "missing_export"
	KindInstantiation   Kind = "instantiation"
	KindAllocation      Kind = "allocation"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidInput    Kind = "invalid_input"
	KindNotInitialized  Kind = "not_initialized"
	KindNotFound        Kind = "not_found"
	KindCallFailed      Kind = "call_failed"
	KindClosed          Kind = "closed"
	KindPanic           Kind = "panic"
)

// Sentinels for errors.Is matching. Only Phase and Kind are compared.
var (
	ErrWrongGeometryKind        = &Error{Phase: PhaseIngest, Kind: KindWrongGeometry}
	ErrDecodeFailure            = &Error{Phase: PhaseIngest, Kind: KindDecodeFailure}
	ErrInvalidSemantic          = &Error{Phase: PhaseResolve, Kind: KindInvalidSemantic}
	ErrInvalidAttributeDataType = &Error{Phase: PhaseMaterialize, Kind: KindInvalidDataType}
	ErrClosed                   = &Error{Phase: PhaseDispatch, Kind: KindClosed}
)

// Error is the structured error type used throughout the decoder
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the attribute path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Decoder failure constructors

// WrongGeometryKind reports an encoded geometry that is not a point cloud.
func WrongGeometryKind() *Error {
	return &Error{
		Phase:  PhaseIngest,
		Kind:   KindWrongGeometry,
		Detail: "Draco geometry type must be POINT_CLOUD.",
	}
}

// DecodeFailure carries the decoder's own diagnostic text.
func DecodeFailure(msg string) *Error {
	return &Error{
		Phase:  PhaseIngest,
		Kind:   KindDecodeFailure,
		Detail: "Error decoding draco point cloud: " + msg,
		Value:  msg,
	}
}

// InvalidSemantic reports a semantic name outside the supported set.
func InvalidSemantic(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidSemantic,
		Path:   []string{name},
		Detail: fmt.Sprintf("Error decoding draco point cloud: %s is not a valid draco semantic", name),
		Value:  name,
	}
}

// InvalidAttributeDataType reports a native attribute storage code outside the known table.
func InvalidAttributeDataType(semantic string, code int32) *Error {
	return &Error{
		Phase:  PhaseMaterialize,
		Kind:   KindInvalidDataType,
		Path:   []string{semantic},
		Detail: fmt.Sprintf("Error decoding draco point cloud: %d is not a valid draco attribute data type", code),
		Value:  code,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// CallFailed wraps a trap or host error raised while calling a guest export.
func CallFailed(export string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindCallFailed,
		Path:   []string{export},
		Detail: "call " + export,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a missing module or engine
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate decoder module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExportsError is returned when a decoder module lacks binding exports
type MissingExportsError struct {
	Exports []string
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "decoder module is missing %d export(s):", len(e.Exports))

	// Group by bound class for cleaner output
	byClass := make(map[string][]string)
	var order []string
	for _, name := range e.Exports {
		class, method := splitBindName(name)
		if _, exists := byClass[class]; !exists {
			order = append(order, class)
		}
		byClass[class] = append(byClass[class], method)
	}

	for _, class := range order {
		b.WriteString("\n  ")
		b.WriteString(class)
		b.WriteByte(':')
		for _, m := range byClass[class] {
			b.WriteString("\n    - ")
			b.WriteString(m)
		}
	}

	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	if _, ok := target.(*MissingExportsError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseLoad && t.Kind == KindMissingExport
	}
	return false
}

// splitBindName splits "emscripten_bind_Decoder_GetAttribute_2" into
// ("Decoder", "GetAttribute_2"). Names outside the binding scheme are
// grouped under "module".
func splitBindName(name string) (class, method string) {
	rest, ok := strings.CutPrefix(name, "emscripten_bind_")
	if !ok {
		return "module", name
	}
	class, method, found := strings.Cut(rest, "_")
	if !found {
		return "module", name
	}
	return class, method
}
