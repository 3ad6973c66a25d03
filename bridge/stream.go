package bridge

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/yonagi/bridgen/ipc"
)

// Stream is the pull-based receiving end of one server-streamed request.
//
// Recv returns queued chunks in arrival order, io.EOF after the host ends
// the stream cleanly, or the host's error. Closing early, cancelling the
// context the stream was opened with, and receiving a host error each send
// at most one cancel to the host; chunks already in flight are dropped.
type Stream struct {
	ctx     context.Context
	bus     ipc.Bus
	channel string
	id      string

	mu       sync.Mutex
	queue    []interface{}
	terminal error

	notify     chan struct{}
	removes    []func()
	cancelOnce sync.Once
}

func newStream(ctx context.Context, bus ipc.Bus, channel, id string) *Stream {
	s := &Stream{
		ctx:     ctx,
		bus:     bus,
		channel: channel,
		id:      id,
		notify:  make(chan struct{}, 1),
	}
	s.removes = []func(){
		bus.Handle(streamDataChannel(channel, id), func(payload interface{}) {
			d, ok := payload.(*Data)
			if !ok || d.RequestID != id {
				return
			}
			s.push(d.Payload)
		}),
		bus.Handle(streamEndChannel(channel, id), func(payload interface{}) {
			if e, ok := payload.(*End); !ok || e.RequestID != id {
				return
			}
			s.finish(io.EOF)
		}),
		bus.Handle(streamErrChannel(channel, id), func(payload interface{}) {
			f, ok := payload.(*Fail)
			if !ok || f.RequestID != id {
				return
			}
			s.finish(errors.New(f.Message))
		}),
	}
	return s
}

// Recv returns the next chunk. Buffered chunks drain before the terminal
// state is reported, so a fast producer loses nothing by finishing early.
func (s *Stream) Recv() (interface{}, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, nil
		}
		terminal := s.terminal
		s.mu.Unlock()

		if terminal != nil {
			return nil, terminal
		}
		select {
		case <-s.notify:
		case <-s.ctx.Done():
			s.cancel()
			return nil, s.ctx.Err()
		}
	}
}

// Close abandons the stream. Pending chunks are discarded, later Recv
// calls return io.EOF, and the host is told to stop. Close after the
// stream already ended is a no-op and sends nothing.
func (s *Stream) Close() error {
	s.mu.Lock()
	alreadyDone := s.terminal != nil
	if !alreadyDone {
		s.terminal = io.EOF
	}
	s.queue = nil
	s.mu.Unlock()
	s.signal()
	if !alreadyDone {
		s.cancel()
	}
	return nil
}

func (s *Stream) push(v interface{}) {
	s.mu.Lock()
	if s.terminal == nil {
		s.queue = append(s.queue, v)
	}
	s.mu.Unlock()
	s.signal()
}

// finish records the terminal state delivered by the host. The first
// terminal event wins; listeners go away with it, so anything the host
// sends afterwards is dropped by the bus. An error terminal also signals
// cancellation, so the host stops producing for a consumer that is gone.
func (s *Stream) finish(err error) {
	s.mu.Lock()
	if s.terminal == nil {
		s.terminal = err
	}
	s.mu.Unlock()
	if err != io.EOF {
		s.cancel()
	} else {
		s.teardown()
	}
	s.signal()
}

func (s *Stream) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Stream) teardown() {
	for _, remove := range s.removes {
		remove()
	}
}

// cancel tears the stream down and tells the host to stop, exactly once.
// Streams that ended cleanly never send a cancel.
func (s *Stream) cancel() {
	s.cancelOnce.Do(func() {
		s.teardown()
		// The bus may already be gone; a lost cancel only costs the host
		// some discarded chunks.
		_ = s.bus.Send(streamCancelChannel(s.channel, s.id), &Cancel{RequestID: s.id})
	})
}
