package ths

// Library is the set of entry points exported by the trading DLL.
//
// String arguments are NUL-terminated byte slices and out is a zeroed
// buffer the library writes its result or diagnostic into. Implementations
// do no validation; Client owns all marshalling.
type Library interface {
	// Logon returns a session handle, or zero on failure.
	Logon(args *LogonArgs, out []byte) uintptr
	QueryData(session uintptr, category int32, out []byte) int32
	SendOrder(session uintptr, side int32, gddm, gpdm []byte, price float32, quantity int32, out []byte) int32
	CancelOrder(session uintptr, orderID []byte, out []byte) int32
	QueryHistoryData(session uintptr, category int32, beginDate, endDate []byte, out []byte) int32
	Logoff(session uintptr)
}

// LogonArgs are the positional arguments of the Logon entry point.
type LogonArgs struct {
	ServerID     int32
	Host         []byte
	Port         int16
	Version      []byte
	BranchID     []byte
	Reserved     int16
	Account      []byte
	Password     []byte
	CommPassword []byte
	Flag         bool
}

// Native entry point names.
const (
	procLogon            = "Logon"
	procQueryData        = "QueryData"
	procSendOrder        = "SendOrder"
	procCancelOrder      = "CancelOrder"
	procQueryHistoryData = "QueryHistoryData"
	procLogoff           = "Logoff"
)
