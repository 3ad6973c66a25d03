package bridge

import (
	"context"

	"github.com/yonagi/bridgen/ipc"
	"github.com/yonagi/bridgen/logger"
)

// PrepareFunc readies an outbound payload right before it crosses the
// boundary and returns the buffers whose ownership transfers with it.
// Generated code uses it to realign byte fields and attach float32 views.
type PrepareFunc func(payload interface{}) ([][]byte, error)

// UnaryFunc handles one request.
type UnaryFunc func(ctx context.Context, req interface{}) (interface{}, error)

// StreamFunc serves one streamed request. Each chunk goes out through
// send; a send error means the consumer cancelled or the bus is gone, and
// the handler should stop.
type StreamFunc func(ctx context.Context, req interface{}, send func(payload interface{}) error) error

// HandleUnary installs fn as the invoke handler for channel.
func HandleUnary(bus ipc.Bus, channel string, fn UnaryFunc) (remove func()) {
	return bus.HandleInvoke(channel, ipc.InvokeHandler(fn))
}

// HandleZeroCopy serves zero-copy unary requests on channel. Each request
// runs on its own goroutine; the response is prepared and sent on the
// shared reply channel with its buffers in the transfer set.
func HandleZeroCopy(bus ipc.Bus, channel string, prepare PrepareFunc, fn UnaryFunc) (remove func()) {
	return bus.Handle(channel, func(payload interface{}) {
		req, ok := payload.(*Request)
		if !ok {
			logger.Printf("dropping malformed request on channel '%s': %T", channel, payload)
			return
		}
		go serveZeroCopy(bus, channel, prepare, fn, req)
	})
}

func serveZeroCopy(bus ipc.Bus, channel string, prepare PrepareFunc, fn UnaryFunc, req *Request) {
	resp, err := fn(context.Background(), req.Body)
	if err != nil {
		sendFail(bus, errorChannel(channel), req.RequestID, err)
		return
	}
	var bufs [][]byte
	if prepare != nil {
		if bufs, err = prepare(resp); err != nil {
			sendFail(bus, errorChannel(channel), req.RequestID, err)
			return
		}
	}
	if err := bus.SendTransfer(dataChannel(channel), &Data{RequestID: req.RequestID, Payload: resp}, bufs); err != nil {
		logger.Printf("failed to reply on channel '%s': %s", channel, err)
	}
}

// HandleStream serves streaming requests on channel. Each request runs on
// its own goroutine with a context that a consumer cancel message cancels.
// Exactly one terminal event goes out per request, none after a cancel.
func HandleStream(bus ipc.Bus, channel string, prepare PrepareFunc, fn StreamFunc) (remove func()) {
	return bus.Handle(channel, func(payload interface{}) {
		req, ok := payload.(*Request)
		if !ok {
			logger.Printf("dropping malformed request on channel '%s': %T", channel, payload)
			return
		}
		go serveStream(bus, channel, prepare, fn, req)
	})
}

func serveStream(bus ipc.Bus, channel string, prepare PrepareFunc, fn StreamFunc, req *Request) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	removeCancel := bus.Handle(streamCancelChannel(channel, req.RequestID), func(interface{}) {
		cancel()
	})
	defer removeCancel()

	send := func(payload interface{}) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var bufs [][]byte
		if prepare != nil {
			var err error
			if bufs, err = prepare(payload); err != nil {
				return err
			}
		}
		return bus.SendTransfer(streamDataChannel(channel, req.RequestID), &Data{RequestID: req.RequestID, Payload: payload}, bufs)
	}

	err := fn(ctx, req.Body, send)
	if ctx.Err() != nil {
		// The consumer walked away, it is not listening for terminals.
		return
	}
	if err != nil {
		sendFail(bus, streamErrChannel(channel, req.RequestID), req.RequestID, err)
		return
	}
	if err := bus.Send(streamEndChannel(channel, req.RequestID), &End{RequestID: req.RequestID}); err != nil {
		logger.Printf("failed to end stream on channel '%s': %s", channel, err)
	}
}

func sendFail(bus ipc.Bus, channel, id string, cause error) {
	if err := bus.Send(channel, &Fail{RequestID: id, Message: cause.Error()}); err != nil {
		logger.Printf("failed to report error on channel '%s': %s", channel, err)
	}
}
