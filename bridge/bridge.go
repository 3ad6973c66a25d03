// Package bridge implements the three dispatch protocols the generated
// code speaks over an ipc.Bus: plain invoke round trips, zero-copy unary
// exchanges with buffer transfer, and server streams with cooperative
// cancellation.
//
// Zero-copy replies for one RPC share a single pair of reply channels,
// correlated by request ID. Streams get per-request sub-channels instead,
// derived from the RPC channel and the request ID.
package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Request opens a zero-copy or streaming exchange.
type Request struct {
	RequestID string      `json:"requestId"`
	Body      interface{} `json:"body"`
}

// Data carries one response payload for a request.
type Data struct {
	RequestID string      `json:"requestId"`
	Payload   interface{} `json:"payload"`
}

// End marks the clean end of a stream.
type End struct {
	RequestID string `json:"requestId"`
}

// Fail carries a terminal error for a request.
type Fail struct {
	RequestID string `json:"requestId"`
	Message   string `json:"error"`
}

// Cancel asks the host to stop serving a stream.
type Cancel struct {
	RequestID string `json:"requestId"`
}

// NewRequestID returns a correlation ID unique within the process: the
// nanosecond timestamp in base 36 plus four random bytes.
func NewRequestID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + hex.EncodeToString(b[:])
}

func dataChannel(channel string) string {
	return channel + ":data"
}

func errorChannel(channel string) string {
	return channel + ":error"
}

func streamDataChannel(channel, id string) string {
	return channel + ":" + id + ":data"
}

func streamEndChannel(channel, id string) string {
	return channel + ":" + id + ":end"
}

func streamErrChannel(channel, id string) string {
	return channel + ":" + id + ":err"
}

func streamCancelChannel(channel, id string) string {
	return channel + ":" + id + ":cancel"
}
