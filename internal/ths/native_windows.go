//go:build windows

package ths

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dllLibrary calls tradej.dll through lazily resolved procedures.
// On windows/386 the syscall convention is stdcall, which the DLL uses.
type dllLibrary struct {
	logon            *windows.LazyProc
	queryData        *windows.LazyProc
	sendOrder        *windows.LazyProc
	cancelOrder      *windows.LazyProc
	queryHistoryData *windows.LazyProc
	logoff           *windows.LazyProc
}

// The binding table is resolved once per process; later Open calls return
// the same table regardless of path.
var (
	bindOnce sync.Once
	bound    *dllLibrary
	errBind  error
)

// Open loads the DLL at path and resolves every entry point.
func Open(path string) (Library, error) {
	bindOnce.Do(func() {
		bound, errBind = bind(path)
	})
	if errBind != nil {
		return nil, errBind
	}
	return bound, nil
}

func bind(path string) (*dllLibrary, error) {
	dll := windows.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	lib := &dllLibrary{
		logon:            dll.NewProc(procLogon),
		queryData:        dll.NewProc(procQueryData),
		sendOrder:        dll.NewProc(procSendOrder),
		cancelOrder:      dll.NewProc(procCancelOrder),
		queryHistoryData: dll.NewProc(procQueryHistoryData),
		logoff:           dll.NewProc(procLogoff),
	}
	for _, p := range []*windows.LazyProc{lib.logon, lib.queryData, lib.sendOrder, lib.cancelOrder, lib.queryHistoryData, lib.logoff} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("resolving %s in %s: %w", p.Name, path, err)
		}
	}
	return lib, nil
}

func (l *dllLibrary) Logon(a *LogonArgs, out []byte) uintptr {
	r, _, _ := l.logon.Call(
		uintptr(a.ServerID),
		uintptr(unsafe.Pointer(&a.Host[0])),
		uintptr(a.Port),
		uintptr(unsafe.Pointer(&a.Version[0])),
		uintptr(unsafe.Pointer(&a.BranchID[0])),
		uintptr(a.Reserved),
		uintptr(unsafe.Pointer(&a.Account[0])),
		uintptr(unsafe.Pointer(&a.Password[0])),
		uintptr(unsafe.Pointer(&a.CommPassword[0])),
		boolArg(a.Flag),
		uintptr(unsafe.Pointer(&out[0])),
	)
	return r
}

func (l *dllLibrary) QueryData(session uintptr, category int32, out []byte) int32 {
	r, _, _ := l.queryData.Call(session, uintptr(category), uintptr(unsafe.Pointer(&out[0])))
	return int32(r)
}

// SendOrder passes price as its raw IEEE-754 bits, which is how a float
// argument sits in a 32-bit stdcall stack slot.
func (l *dllLibrary) SendOrder(session uintptr, side int32, gddm, gpdm []byte, price float32, quantity int32, out []byte) int32 {
	r, _, _ := l.sendOrder.Call(
		session,
		uintptr(side),
		uintptr(unsafe.Pointer(&gddm[0])),
		uintptr(unsafe.Pointer(&gpdm[0])),
		uintptr(math.Float32bits(price)),
		uintptr(quantity),
		uintptr(unsafe.Pointer(&out[0])),
	)
	return int32(r)
}

func (l *dllLibrary) CancelOrder(session uintptr, orderID []byte, out []byte) int32 {
	r, _, _ := l.cancelOrder.Call(session, uintptr(unsafe.Pointer(&orderID[0])), uintptr(unsafe.Pointer(&out[0])))
	return int32(r)
}

func (l *dllLibrary) QueryHistoryData(session uintptr, category int32, beginDate, endDate []byte, out []byte) int32 {
	r, _, _ := l.queryHistoryData.Call(
		session,
		uintptr(category),
		uintptr(unsafe.Pointer(&beginDate[0])),
		uintptr(unsafe.Pointer(&endDate[0])),
		uintptr(unsafe.Pointer(&out[0])),
	)
	return int32(r)
}

func (l *dllLibrary) Logoff(session uintptr) {
	l.logoff.Call(session) //nolint:errcheck // void entry point
}

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}
