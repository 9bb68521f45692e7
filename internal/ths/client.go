package ths

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Output buffer sizes per entry point. Bulk queries get more room so the
// library never truncates its output.
const (
	logonBufferSize   = 1024
	queryBufferSize   = 512 * 1024
	orderBufferSize   = 1024
	cancelBufferSize  = 1024
	historyBufferSize = 2 * 1024 * 1024
)

// Fixed Logon arguments. Both are required by the library's calling
// convention; their meaning is undocumented.
const (
	logonReserved int16 = 0
	logonFlag           = false
)

// Client owns one native session.
//
// Logon must succeed before any data call. Close logs the session off and
// must be called exactly once the client is no longer needed; further calls
// are no-ops.
//
// Thread Safety:
//   - Data calls are safe for concurrent use after Logon returns.
//   - Logon is not; it runs once during startup.
type Client struct {
	lib       Library
	session   atomic.Uintptr
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewClient creates a client with no session.
func NewClient(lib Library) *Client {
	return &Client{lib: lib}
}

// Logon authenticates against the given server address and keeps the
// returned session handle. On failure the error is a *NativeError whose
// buffer holds the library's diagnostic. Logon after Close returns
// ErrNoSession without calling the library.
func (c *Client) Logon(server *Server, account *Account, addr Address) error {
	if c.closed.Load() {
		return ErrNoSession
	}

	args := &LogonArgs{
		ServerID: server.ID,
		Port:     addr.Port,
		Reserved: logonReserved,
		Flag:     logonFlag,
	}

	var err error
	fields := []struct {
		name string
		val  string
		dst  *[]byte
	}{
		{"host", addr.Host, &args.Host},
		{"version", server.Version, &args.Version},
		{"yyb_id", account.BranchID, &args.BranchID},
		{"account", account.Number, &args.Account},
		{"password", account.Password, &args.Password},
		{"comm_password", account.CommPassword, &args.CommPassword},
	}
	for _, f := range fields {
		if *f.dst, err = toCString(f.name, f.val); err != nil {
			return err
		}
	}

	out := make([]byte, logonBufferSize)
	handle := c.lib.Logon(args, out)
	if handle == 0 {
		return &NativeError{Op: procLogon, Buffer: out}
	}
	c.session.Store(handle)
	return nil
}

// LoggedIn reports whether the client holds a live session.
func (c *Client) LoggedIn() bool {
	return c.session.Load() != 0 && !c.closed.Load()
}

// QueryData returns the raw result buffer for a query category.
func (c *Client) QueryData(category QueryCategory) ([]byte, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	out := make([]byte, queryBufferSize)
	code := c.lib.QueryData(session, int32(category), out)
	return result(procQueryData, code, out)
}

// SendOrder places an order. gddm is the shareholder account code and gpdm
// the instrument code. Price and quantity are passed through unchecked.
func (c *Client) SendOrder(side OrderSide, gddm, gpdm string, price float32, quantity int32) ([]byte, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	account, err := toCString("gddm", gddm)
	if err != nil {
		return nil, err
	}
	instrument, err := toCString("gpdm", gpdm)
	if err != nil {
		return nil, err
	}

	out := make([]byte, orderBufferSize)
	code := c.lib.SendOrder(session, int32(side), account, instrument, price, quantity, out)
	return result(procSendOrder, code, out)
}

// CancelOrder cancels a pending order by its ID.
func (c *Client) CancelOrder(orderID string) ([]byte, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	id, err := toCString("order_id", orderID)
	if err != nil {
		return nil, err
	}

	out := make([]byte, cancelBufferSize)
	code := c.lib.CancelOrder(session, id, out)
	return result(procCancelOrder, code, out)
}

// QueryHistoryData returns historical orders or fills between two dates.
// Dates are passed through in whatever format the broker accepts.
func (c *Client) QueryHistoryData(category HistoryCategory, beginDate, endDate string) ([]byte, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	begin, err := toCString("begin_date", beginDate)
	if err != nil {
		return nil, err
	}
	end, err := toCString("end_date", endDate)
	if err != nil {
		return nil, err
	}

	out := make([]byte, historyBufferSize)
	code := c.lib.QueryHistoryData(session, int32(category), begin, end, out)
	return result(procQueryHistoryData, code, out)
}

// Close logs off the session if one was established. It is safe to call
// more than once and from deferred cleanup during a panic.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if session := c.session.Load(); session != 0 {
			c.lib.Logoff(session)
		}
	})
	return nil
}

func (c *Client) activeSession() (uintptr, error) {
	if c.closed.Load() {
		return 0, ErrNoSession
	}
	session := c.session.Load()
	if session == 0 {
		return 0, ErrNoSession
	}
	return session, nil
}

// result applies the library's return-code convention: positive is success,
// anything else returns the same buffer as a diagnostic.
func result(op string, code int32, out []byte) ([]byte, error) {
	if code > 0 {
		return out, nil
	}
	return nil, &NativeError{Op: op, Code: code, Buffer: out}
}

// toCString returns s with a trailing NUL, rejecting embedded NULs.
func toCString(field, s string) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, &ConversionError{Field: field, Offset: i}
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, nil
}
