// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes HLSL translation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedOpcode indicates an ALU or fetch opcode outside the
	// documented enumeration.
	ErrUnsupportedOpcode ErrorKind = iota

	// ErrUnresolvedReference indicates a vertex element, interpolator or
	// export register the container does not declare.
	ErrUnresolvedReference

	// ErrInternalError indicates an internal translator error.
	ErrInternalError
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ErrUnresolvedReference:
		return "UnresolvedReference"
	case ErrInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Span locates an instruction within the shader microcode.
type Span struct {
	// Slot is the instruction slot index.
	Slot uint32
}

// Error represents an HLSL translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Span optionally identifies the offending instruction.
	Span *Span
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("hlsl %s at slot %d: %s", e.Kind, e.Span.Slot, e.Message)
	}
	return fmt.Sprintf("hlsl %s: %s", e.Kind, e.Message)
}

// NewError creates a new HLSL error without span information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// NewErrorAt creates a new HLSL error for the instruction at slot.
func NewErrorAt(kind ErrorKind, slot uint32, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    &Span{Slot: slot},
	}
}

// IsUnsupportedOpcode returns true if the error is ErrUnsupportedOpcode.
func (e *Error) IsUnsupportedOpcode() bool {
	return e.Kind == ErrUnsupportedOpcode
}

// IsUnresolvedReference returns true if the error is ErrUnresolvedReference.
func (e *Error) IsUnresolvedReference() bool {
	return e.Kind == ErrUnresolvedReference
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
