package ths

import (
	"errors"
	"fmt"
)

// Sentinel errors for the native adapter.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoSession is returned by data calls made before a successful logon
	// or after the client has been closed.
	ErrNoSession = errors.New("ths: no active session")

	// ErrInvalidString is returned when a string argument contains a NUL byte
	// and cannot cross the native boundary intact.
	ErrInvalidString = errors.New("ths: string contains NUL byte")

	// ErrMalformedPayload indicates the library reported success but produced
	// output that is not valid JSON.
	ErrMalformedPayload = errors.New("ths: malformed native payload")

	// ErrInvalidCategory is returned for category names outside the fixed
	// enumeration of an endpoint family.
	ErrInvalidCategory = errors.New("ths: invalid category")

	// ErrLoginExhausted is returned when every logon attempt has failed.
	ErrLoginExhausted = errors.New("ths: login attempts exhausted")

	// ErrNoAddress is returned when a server record lists no addresses.
	ErrNoAddress = errors.New("ths: server has no address")

	// ErrUnsupportedPlatform is returned by Open on platforms that cannot
	// load a Win32 DLL.
	ErrUnsupportedPlatform = errors.New("ths: native library requires windows")
)

// NativeError is a non-success return from a native entry point.
// Buffer holds the diagnostic the library wrote into the output buffer.
type NativeError struct {
	Op     string
	Code   int32
	Buffer []byte
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("ths: %s failed (code %d): %s", e.Op, e.Code, e.Message())
}

// Message returns the decoded diagnostic text.
func (e *NativeError) Message() string {
	return DecodeError(e.Buffer)
}

// ConversionError reports a string argument that could not be converted to
// a C string.
type ConversionError struct {
	Field  string
	Offset int
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("转换字符串失败: %s contains NUL byte at offset %d", e.Field, e.Offset)
}

func (e *ConversionError) Unwrap() error {
	return ErrInvalidString
}

// CategoryError reports an unrecognised category name. Its message is the
// fixed hint returned to HTTP clients.
type CategoryError struct {
	Family string
	Name   string
	Hint   string
}

func (e *CategoryError) Error() string {
	return e.Hint
}

func (e *CategoryError) Unwrap() error {
	return ErrInvalidCategory
}

// ContractError means the library broke its output contract: a success code
// with a payload that does not parse as JSON. It is a bug signal, not a
// business error.
type ContractError struct {
	Size int
	Err  error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("ths: native payload of %d bytes is not valid JSON: %v", e.Size, e.Err)
}

func (e *ContractError) Unwrap() []error {
	return []error{ErrMalformedPayload, e.Err}
}
