// Package ths adapts the THS trading terminal library (tradej.dll) to Go.
//
// The package owns everything that touches the native boundary:
//   - Library: the narrow set of exported stdcall entry points
//   - Client: the session handle that owns one logon token
//   - LoginWithRetry: bounded logon with end-to-end health verification
//   - DecodeResult / DecodeError: GBK buffer decoding
//   - Parse*Category: URL names to the integer codes the library expects
//
// # Native Contract
//
// Every call receives a freshly allocated, zeroed output buffer. The library
// writes a NUL-terminated GBK string into it. A positive return code means
// the buffer holds a result; anything else means it holds a diagnostic.
//
// # Thread Safety
//
// A logged-in Client may be shared between goroutines. No lock is taken
// around native calls; the library is trusted to be reentrant. If it is not,
// concurrent requests may interfere inside the library.
package ths
