//go:build !windows

package ths

import "fmt"

// Open always fails: the trading library is a Win32 DLL.
func Open(path string) (Library, error) {
	return nil, fmt.Errorf("opening %s: %w", path, ErrUnsupportedPlatform)
}
