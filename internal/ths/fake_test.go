package ths

import "sync"

// fakeLibrary is an in-memory Library that records every call.
type fakeLibrary struct {
	mu sync.Mutex

	logonHandles []uintptr // consumed in order; last value repeats
	logonOut     string
	lastLogon    *LogonArgs

	code map[string]int32
	out  map[string]string

	calls   []string
	logoffs []uintptr
	orders  []fakeOrder
}

type fakeOrder struct {
	side     int32
	gddm     string
	gpdm     string
	price    float32
	quantity int32
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		logonHandles: []uintptr{0x1000},
		code:         map[string]int32{},
		out:          map[string]string{},
	}
}

func (f *fakeLibrary) respond(op string, code int32, out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[op] = code
	f.out[op] = out
}

func (f *fakeLibrary) fill(op string, out []byte) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	copy(out, f.out[op])
	code, ok := f.code[op]
	if !ok {
		return 1
	}
	return code
}

func (f *fakeLibrary) Logon(args *LogonArgs, out []byte) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, procLogon)
	f.lastLogon = args
	copy(out, f.logonOut)
	handle := f.logonHandles[0]
	if len(f.logonHandles) > 1 {
		f.logonHandles = f.logonHandles[1:]
	}
	return handle
}

func (f *fakeLibrary) QueryData(_ uintptr, _ int32, out []byte) int32 {
	return f.fill(procQueryData, out)
}

func (f *fakeLibrary) SendOrder(_ uintptr, side int32, gddm, gpdm []byte, price float32, quantity int32, out []byte) int32 {
	f.mu.Lock()
	f.orders = append(f.orders, fakeOrder{
		side:     side,
		gddm:     string(cstring(gddm)),
		gpdm:     string(cstring(gpdm)),
		price:    price,
		quantity: quantity,
	})
	f.mu.Unlock()
	return f.fill(procSendOrder, out)
}

func (f *fakeLibrary) CancelOrder(_ uintptr, _ []byte, out []byte) int32 {
	return f.fill(procCancelOrder, out)
}

func (f *fakeLibrary) QueryHistoryData(_ uintptr, _ int32, _, _ []byte, out []byte) int32 {
	return f.fill(procQueryHistoryData, out)
}

func (f *fakeLibrary) Logoff(session uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, procLogoff)
	f.logoffs = append(f.logoffs, session)
}

func (f *fakeLibrary) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func testServer() *Server {
	return &Server{
		ID:        32,
		Addresses: []Address{{Host: "10.0.0.1", Port: 8002}, {Host: "10.0.0.2", Port: 8002}},
		Version:   "8.80.72",
		TradePort: 9090,
	}
}

func testAccount() *Account {
	return &Account{
		Name:         "main",
		BrokerName:   "htzq",
		BranchID:     "1",
		Number:       "123456789",
		Password:     "secret",
		CommPassword: "comm",
	}
}
