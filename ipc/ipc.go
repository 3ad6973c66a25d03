// Package ipc abstracts the duplex message channel between the restricted
// surface and the privileged host side of the bridge.
//
// Send-style traffic is fire-and-forget and ordered per endpoint; a message
// published on a channel nobody listens on is dropped without a trace.
// Invoke is a correlated round trip served by the peer's invoke handler.
package ipc

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned for any operation on a closed endpoint.
	ErrClosed = errors.New("endpoint is closed")
	// ErrNoHandler is returned by Invoke when the peer has no handler
	// installed for the channel.
	ErrNoHandler = errors.New("no invoke handler registered")
)

// Handler consumes a message published on a channel.
type Handler func(payload interface{})

// InvokeHandler serves invoke-style round trips on a channel.
type InvokeHandler func(ctx context.Context, req interface{}) (interface{}, error)

// Bus is one endpoint of a duplex channel.
type Bus interface {
	// Send publishes payload on channel.
	Send(channel string, payload interface{}) error
	// SendTransfer publishes payload together with raw buffers whose
	// ownership moves to the receiver.
	SendTransfer(channel string, payload interface{}, buffers [][]byte) error
	// Invoke performs one round trip against the peer's invoke handler
	// for channel. It honors ctx cancellation.
	Invoke(ctx context.Context, channel string, req interface{}) (interface{}, error)
	// Handle installs h for channel until the returned remove function
	// runs. Multiple handlers may listen on one channel.
	Handle(channel string, h Handler) (remove func())
	// HandleInvoke installs h as the invoke handler for channel,
	// replacing any previous one, until the returned remove runs.
	HandleInvoke(channel string, h InvokeHandler) (remove func())
}
