package bridge

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/yonagi/bridgen/ipc"
)

// Caller drives the restricted side of every dispatch strategy over one
// bus. A Caller is safe for concurrent use.
type Caller struct {
	bus ipc.Bus

	mu      sync.Mutex
	pending map[string]map[string]chan zeroCopyReply
}

func NewCaller(bus ipc.Bus) *Caller {
	return &Caller{
		bus:     bus,
		pending: map[string]map[string]chan zeroCopyReply{},
	}
}

// Unary performs a plain invoke round trip.
func (c *Caller) Unary(ctx context.Context, channel string, req interface{}) (interface{}, error) {
	return c.bus.Invoke(ctx, channel, req)
}

type zeroCopyReply struct {
	payload interface{}
	err     error
}

// ZeroCopy sends a request on channel and waits for the correlated reply
// on the shared "<channel>:data" / "<channel>:error" channels. Replies
// whose request ID matches no waiter are dropped silently; if the host
// never answers, the call ends only when ctx does.
func (c *Caller) ZeroCopy(ctx context.Context, channel string, req interface{}) (interface{}, error) {
	id := NewRequestID()
	ch := make(chan zeroCopyReply, 1)
	c.register(channel, id, ch)
	defer c.unregister(channel, id)

	if err := c.bus.Send(channel, &Request{RequestID: id, Body: req}); err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// register adds a waiter, installing the shared reply listeners for the
// channel on first use. The listeners stay for the life of the bus.
func (c *Caller) register(channel, id string, ch chan zeroCopyReply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters, ok := c.pending[channel]
	if !ok {
		waiters = map[string]chan zeroCopyReply{}
		c.pending[channel] = waiters
		c.bus.Handle(dataChannel(channel), func(payload interface{}) {
			d, ok := payload.(*Data)
			if !ok {
				return
			}
			c.deliver(channel, d.RequestID, zeroCopyReply{payload: d.Payload})
		})
		c.bus.Handle(errorChannel(channel), func(payload interface{}) {
			f, ok := payload.(*Fail)
			if !ok {
				return
			}
			c.deliver(channel, f.RequestID, zeroCopyReply{err: errors.New(f.Message)})
		})
	}
	waiters[id] = ch
}

func (c *Caller) unregister(channel, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if waiters, ok := c.pending[channel]; ok {
		delete(waiters, id)
	}
}

// deliver hands a reply to its waiter. Unknown request IDs are dropped:
// they belong to abandoned or foreign requests.
func (c *Caller) deliver(channel, id string, r zeroCopyReply) {
	c.mu.Lock()
	waiters := c.pending[channel]
	ch, ok := waiters[id]
	if ok {
		delete(waiters, id)
	}
	c.mu.Unlock()
	if ok {
		ch <- r
	}
}

// OpenStream sends a stream request and returns the receiving end. The
// returned stream is bound to ctx: cancelling it cancels the stream.
func (c *Caller) OpenStream(ctx context.Context, channel string, req interface{}) (*Stream, error) {
	id := NewRequestID()
	s := newStream(ctx, c.bus, channel, id)
	if err := c.bus.Send(channel, &Request{RequestID: id, Body: req}); err != nil {
		s.teardown()
		return nil, err
	}
	return s, nil
}
