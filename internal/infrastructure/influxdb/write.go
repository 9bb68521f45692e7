package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Outcome tag values for native_calls.
const (
	OutcomeOK       = "ok"       // positive return code
	OutcomeRejected = "rejected" // broker or library refused the call
	OutcomeInvalid  = "invalid"  // success code with a malformed payload
	OutcomeError    = "error"    // failed before reaching the library
)

// WriteNativeCall records one call into the trading library.
//
// Parameters:
//   - op: library entry point (QueryData, SendOrder, ...)
//   - category: the URL category name (zijin, buy, weituo, ...); empty for cancels
//   - outcome: one of the Outcome constants
//   - duration: wall time of the call including decoding
func (c *Client) WriteNativeCall(op, category, outcome string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"op":      op,
		"outcome": outcome,
	}
	if category != "" {
		tags["category"] = category
	}

	c.writeAPI.WritePoint(write.NewPoint(
		"native_calls",
		tags,
		map[string]interface{}{
			"duration_ms": float64(duration) / float64(time.Millisecond),
			"count":       1,
		},
		time.Now(),
	))
}

// WriteLogin records a login state transition for an account.
func (c *Client) WriteLogin(account, state string, attempt int) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		"logins",
		map[string]string{
			"account": account,
			"state":   state,
		},
		map[string]interface{}{
			"attempt": attempt,
		},
		time.Now(),
	))
}
