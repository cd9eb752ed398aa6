// Package errors provides structured error types for the draco decoder.
//
// Errors are categorized by Phase (which pipeline stage failed) and Kind
// (error category). The Error type carries the attribute path, the
// offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMaterialize, errors.KindInvalidDataType).
//		Path("RGBA").
//		Value(code).
//		Detail("%d is not a valid draco attribute data type", code).
//		Build()
//
// Or use convenience constructors for the decoder's failure modes:
//
//	err := errors.WrongGeometryKind()
//	err := errors.InvalidSemantic("FOO")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching with errors.Is compares Phase and Kind only, so the exported
// sentinels (ErrInvalidSemantic, ErrDecodeFailure, ...) match any error of
// the same category.
package errors
