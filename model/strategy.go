package model

import (
	"strings"
	"unicode"

	"github.com/yonagi/bridgen/idl"
)

// Strategy selects the wire protocol generated for one RPC.
type Strategy int

const (
	// Simple is a plain request/response round trip over an invoke channel.
	Simple Strategy = iota
	// ZeroCopyUnary is a unary call whose response carries raw buffers,
	// delivered over a shared reply channel with buffer transfer.
	ZeroCopyUnary
	// Streaming is a server-streamed call delivered over per-request
	// data/end/err sub-channels with cooperative cancellation.
	Streaming
)

func (s Strategy) String() string {
	switch s {
	case Simple:
		return "simple"
	case ZeroCopyUnary:
		return "zero-copy-unary"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Classify picks the dispatch strategy for a method. Streaming wins over
// byte presence; a response type that cannot be resolved falls back to
// Simple.
func Classify(m *idl.Method, a *Analyzer) Strategy {
	if m.ServerStreaming || m.ClientStreaming {
		return Streaming
	}
	if a.Contains(m.ResponseType) {
		return ZeroCopyUnary
	}
	return Simple
}

// ChannelName derives the IPC channel for an RPC: the tag, a hyphen, then
// the method name lowered with a hyphen before every internal capital.
// "GetColumnarData" with tag "grpc" becomes "grpc-get-columnar-data".
func ChannelName(tag, method string) string {
	return tag + "-" + kebabCase(method)
}

// kebabCase lowers s with a hyphen before each internal capital.
// Underscores count as separators, and separator runs collapse to one.
func kebabCase(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			if prev == '-' || b.Len() == 0 {
				continue
			}
			r = '-'
		case unicode.IsUpper(r):
			if b.Len() > 0 && prev != '-' {
				b.WriteRune('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Binding pairs one method with its classification and channel name.
type Binding struct {
	Service  *Service
	Method   *idl.Method
	Strategy Strategy
	Channel  string
}

// Bind classifies every method of every service in declaration order.
// All generated artifacts consume this single pass, so the client and the
// host registration can never disagree on a channel or a strategy.
func Bind(reg *Registry, a *Analyzer, tag string) []Binding {
	var bindings []Binding
	for _, svc := range reg.Services {
		for _, m := range svc.Methods {
			bindings = append(bindings, Binding{
				Service:  svc,
				Method:   m,
				Strategy: Classify(m, a),
				Channel:  ChannelName(tag, m.Name),
			})
		}
	}
	return bindings
}
