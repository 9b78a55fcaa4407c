package microkernel

import (
	"errors"
	"fmt"
)

// Error is the kernel's structured error, adapted from the teacher's
// ublk.Error: an operation name, a high-level code, a human message,
// and the wrapped cause. Used for Bootstrap/Run-level failures; a
// syscall's own return value (spec §6.1's negative codes) is a plain
// int32, not a Go error — those never leave the task table.
type Error struct {
	Op    string  // operation that failed, e.g. "bootstrap", "create"
	Tid   int32   // -1 if not applicable to a specific task
	Code  ErrCode // high-level error category
	Msg   string  // human-readable message
	Inner error   // wrapped error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Tid >= 0 {
		return fmt.Sprintf("microkernel: %s: %s (tid=%d)", e.Op, msg, e.Tid)
	}
	return fmt.Sprintf("microkernel: %s: %s", e.Op, msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Inner }

// Is supports comparing against KernelError sentinels or other
// structured Errors with the same Code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if ke, ok := target.(KernelError); ok {
		return e.Code == ErrCode(ke)
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrCode categorizes kernel-level (non-syscall-return-code) failures.
type ErrCode string

const (
	ErrCodeInvalidPriority ErrCode = "invalid priority"
	ErrCodeTableFull       ErrCode = "task table full"
	ErrCodeTidTaken        ErrCode = "reserved tid already allocated"
	ErrCodeInvalidConfig   ErrCode = "invalid configuration"
	ErrCodePanic           ErrCode = "kernel panic"
)

// KernelError is a legacy-style sentinel, kept for the handful of
// callers that want a plain ==/errors.Is comparison instead of
// inspecting a structured Error (mirrors the teacher's UblkError).
type KernelError string

func (e KernelError) Error() string { return string(e) }

const (
	ErrTableFull       KernelError = "task table full"
	ErrInvalidPriority KernelError = "invalid priority"
	ErrTidTaken        KernelError = "reserved tid already allocated"
)

// NewError constructs a structured Error.
func NewError(op string, code ErrCode, msg string) *Error {
	return &Error{Op: op, Tid: -1, Code: code, Msg: msg}
}

// NewTaskError constructs a structured Error attributed to a task.
func NewTaskError(op string, tid int32, code ErrCode, msg string) *Error {
	return &Error{Op: op, Tid: tid, Code: code, Msg: msg}
}

// WrapError wraps inner with op, preserving its code if it's already
// a structured Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if e, ok := inner.(*Error); ok {
		return &Error{Op: op, Tid: e.Tid, Code: e.Code, Msg: e.Msg, Inner: e.Inner}
	}
	return &Error{Op: op, Tid: -1, Code: ErrCodeInvalidConfig, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a structured Error with code.
func IsCode(err error, code ErrCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
