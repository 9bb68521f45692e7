package ths

import (
	"bytes"
	"encoding/json"
	"strings"

	gojson "github.com/goccy/go-json"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Success payloads arrive wrapped as `{\n\t"data" : <payload>\n}\n`.
// The offsets below were taken from observed library output and must be
// kept byte-exact.
var (
	// dataNull is the complete buffer for an empty result.
	dataNull = []byte("{\n\t\"data\" : null\n}\n")

	// dataPrefix marks a wrapped payload.
	dataPrefix = []byte("{\n\t\"data\"")
)

const (
	// frameMinLen is the length a buffer must exceed before it is unwrapped.
	frameMinLen = 10

	// frameHead covers `{\n\t"data" :`.
	frameHead = 11

	// frameTail covers the closing `\n}` (the final newline is whitespace).
	frameTail = 2
)

// DecodeResult interprets a success buffer.
//
// A nil RawMessage with a nil error means the library returned no data.
// A *ContractError means the payload was not valid JSON.
func DecodeResult(buf []byte) (json.RawMessage, error) {
	b := cstring(buf)
	if len(b) == 0 || bytes.Equal(b, dataNull) {
		return nil, nil
	}

	if len(b) > frameMinLen && bytes.HasPrefix(b, dataPrefix) {
		if len(b) < frameHead+frameTail {
			b = nil
		} else {
			b = b[frameHead : len(b)-frameTail]
		}
	}

	text := decodeGBK(b)
	if !gojson.Valid(text) {
		var probe any
		err := gojson.Unmarshal(text, &probe)
		if err == nil {
			err = ErrMalformedPayload
		}
		return nil, &ContractError{Size: len(buf), Err: err}
	}

	var out bytes.Buffer
	if err := gojson.Compact(&out, text); err != nil {
		return nil, &ContractError{Size: len(buf), Err: err}
	}
	return json.RawMessage(out.Bytes()), nil
}

// DecodeError interprets a failure buffer as plain diagnostic text.
func DecodeError(buf []byte) string {
	return string(decodeGBK(cstring(buf)))
}

// cstring returns the bytes before the first NUL.
func cstring(buf []byte) []byte {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return buf[:i]
	}
	return buf
}

// decodeGBK converts GBK to UTF-8. Malformed sequences become U+FFFD.
func decodeGBK(b []byte) []byte {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(b), "\uFFFD"))
	}
	return out
}
