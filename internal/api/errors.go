package api

import (
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/nerrad567/ths-gateway/internal/ths"
)

// Response is the envelope of every reply. Data is the decoded payload on
// success and a message string on failure.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Client-facing messages for failures that carry no broker text.
const (
	msgBadBody       = "请求参数错误"
	msgMissingDates  = "缺少参数 begin_date, end_date"
	msgContract      = "交易接口返回数据格式错误"
	msgInternal      = "internal server error"
	msgUnauthorized  = "unauthorised"
	msgForbidden     = "insufficient permissions"
	msgAuditDisabled = "audit logging not configured"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		gojson.NewEncoder(w).Encode(v)
	}
}

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// writeFailure writes a failure envelope with a message.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Data: message})
}

// writeBadRequest writes a 400 failure envelope.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusBadRequest, message)
}

// writeInternalError writes a 500 failure envelope.
func writeInternalError(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusInternalServerError, message)
}

// writeTradingError maps an error from the trading service to a response.
//
// Input errors and broker rejections are 400 with the hint or the broker's
// own text. A malformed payload from the library is a 500.
func writeTradingError(w http.ResponseWriter, err error) {
	var (
		categoryErr *ths.CategoryError
		nativeErr   *ths.NativeError
		contractErr *ths.ContractError
	)
	switch {
	case errors.As(err, &categoryErr):
		writeBadRequest(w, categoryErr.Hint)
	case errors.As(err, &nativeErr):
		writeBadRequest(w, nativeErr.Message())
	case errors.As(err, &contractErr):
		writeInternalError(w, msgContract)
	default:
		writeBadRequest(w, err.Error())
	}
}
