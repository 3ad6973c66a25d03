package ipc

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const inboxDepth = 256

// Pair returns two connected in-memory endpoints. Each endpoint delivers
// the peer's messages in send order on its own pump goroutine, mirroring
// how a real process boundary serializes its event loop. Closing either
// endpoint closes the pair and waits for both pumps to stop.
func Pair() (*Endpoint, *Endpoint) {
	p := &pairState{done: make(chan struct{})}
	a := newEndpoint(p)
	b := newEndpoint(p)
	a.peer, b.peer = b, a
	p.eg.Go(a.pump)
	p.eg.Go(b.pump)
	return a, b
}

type pairState struct {
	eg   errgroup.Group
	once sync.Once
	done chan struct{}
}

type delivery struct {
	channel string
	payload interface{}
}

type registration struct {
	id int64
	fn Handler
}

type invokeRegistration struct {
	fn InvokeHandler
}

// Stats counts the traffic an endpoint has sent.
type Stats struct {
	MessagesSent       int64
	BuffersTransferred int64
}

// Endpoint is an in-memory Bus implementation created by Pair.
type Endpoint struct {
	pair  *pairState
	peer  *Endpoint
	inbox chan delivery

	mu       sync.Mutex
	nextID   int64
	handlers map[string][]registration
	invokes  map[string]*invokeRegistration

	sentMessages int64
	sentBuffers  int64
}

var _ Bus = (*Endpoint)(nil)

func newEndpoint(p *pairState) *Endpoint {
	return &Endpoint{
		pair:     p,
		inbox:    make(chan delivery, inboxDepth),
		handlers: map[string][]registration{},
		invokes:  map[string]*invokeRegistration{},
	}
}

func (e *Endpoint) pump() error {
	for {
		select {
		case d := <-e.inbox:
			for _, h := range e.snapshot(d.channel) {
				h.fn(d.payload)
			}
		case <-e.pair.done:
			return nil
		}
	}
}

func (e *Endpoint) snapshot(channel string) []registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	regs := e.handlers[channel]
	out := make([]registration, len(regs))
	copy(out, regs)
	return out
}

func (e *Endpoint) Send(channel string, payload interface{}) error {
	return e.send(channel, payload, nil)
}

func (e *Endpoint) SendTransfer(channel string, payload interface{}, buffers [][]byte) error {
	return e.send(channel, payload, buffers)
}

func (e *Endpoint) send(channel string, payload interface{}, buffers [][]byte) error {
	select {
	case <-e.pair.done:
		return ErrClosed
	default:
	}
	select {
	case e.peer.inbox <- delivery{channel: channel, payload: payload}:
		atomic.AddInt64(&e.sentMessages, 1)
		atomic.AddInt64(&e.sentBuffers, int64(len(buffers)))
		return nil
	case <-e.pair.done:
		return ErrClosed
	}
}

func (e *Endpoint) Invoke(ctx context.Context, channel string, req interface{}) (interface{}, error) {
	select {
	case <-e.pair.done:
		return nil, ErrClosed
	default:
	}
	e.peer.mu.Lock()
	reg, ok := e.peer.invokes[channel]
	e.peer.mu.Unlock()
	if !ok {
		return nil, ErrNoHandler
	}
	atomic.AddInt64(&e.sentMessages, 1)

	type result struct {
		v   interface{}
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := reg.fn(ctx, req)
		ch <- result{v: v, err: err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.pair.done:
		return nil, ErrClosed
	}
}

func (e *Endpoint) Handle(channel string, h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.handlers[channel] = append(e.handlers[channel], registration{id: id, fn: h})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		regs := e.handlers[channel]
		for i, reg := range regs {
			if reg.id == id {
				e.handlers[channel] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

func (e *Endpoint) HandleInvoke(channel string, h InvokeHandler) func() {
	reg := &invokeRegistration{fn: h}
	e.mu.Lock()
	e.invokes[channel] = reg
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.invokes[channel] == reg {
			delete(e.invokes, channel)
		}
	}
}

// Stats returns the endpoint's send-side counters.
func (e *Endpoint) Stats() Stats {
	return Stats{
		MessagesSent:       atomic.LoadInt64(&e.sentMessages),
		BuffersTransferred: atomic.LoadInt64(&e.sentBuffers),
	}
}

// Close shuts the pair down and waits for both pump goroutines to exit.
// Undelivered messages are dropped. Close is idempotent and may be called
// from either endpoint.
func (e *Endpoint) Close() error {
	e.pair.once.Do(func() { close(e.pair.done) })
	return e.pair.eg.Wait()
}
