package model

import (
	"strings"

	"github.com/yonagi/bridgen/idl"
)

// Descriptor lists the byte-carrying and message-typed fields of one
// message, in declaration order. The generated alignment table is a direct
// rendering of these descriptors.
type Descriptor struct {
	ByteFields            []string
	RepeatedByteFields    []string
	MessageFields         []FieldRef
	RepeatedMessageFields []FieldRef
	View                  *ViewSpec
}

// FieldRef names a message-typed field together with its resolved type.
type FieldRef struct {
	Name string
	Type string
}

// ViewSpec marks a buffer/count field pair eligible for a shared float32
// view: the first singular bytes field plus the first singular integer
// field named "count" or ending in "_count".
type ViewSpec struct {
	Buffer string
	Count  string
}

// Empty reports whether the descriptor carries nothing of interest, so the
// message can be omitted from the generated table.
func (d *Descriptor) Empty() bool {
	return len(d.ByteFields) == 0 && len(d.RepeatedByteFields) == 0 &&
		len(d.MessageFields) == 0 && len(d.RepeatedMessageFields) == 0 && d.View == nil
}

// Analyzer derives byte descriptors and answers transitive byte-presence
// queries over the registry. Results are memoized; schemas with reference
// cycles terminate because each traversal visits a message at most once.
type Analyzer struct {
	reg  *Registry
	memo map[string]bool
}

func NewAnalyzer(reg *Registry) *Analyzer {
	return &Analyzer{reg: reg, memo: map[string]bool{}}
}

var integerTypes = map[string]bool{
	"int32":    true,
	"int64":    true,
	"uint32":   true,
	"uint64":   true,
	"sint32":   true,
	"sint64":   true,
	"fixed32":  true,
	"fixed64":  true,
	"sfixed32": true,
	"sfixed64": true,
}

// Describe builds the byte descriptor for a message reference.
func (a *Analyzer) Describe(ref string) (*Descriptor, bool) {
	msg, ok := a.reg.Message(ref)
	if !ok {
		return nil, false
	}
	d := &Descriptor{}
	for _, f := range msg.Fields {
		repeated := f.Repeated || f.IsMap
		switch {
		case f.Type == "bytes":
			if repeated {
				d.RepeatedByteFields = append(d.RepeatedByteFields, f.Name)
			} else {
				d.ByteFields = append(d.ByteFields, f.Name)
			}
		case idl.IsScalar(f.Type) || a.reg.IsEnum(f.Type):
			// Plain data, nothing to track.
		default:
			sub, ok := a.reg.Message(f.Type)
			if !ok {
				continue
			}
			fr := FieldRef{Name: f.Name, Type: sub.Name}
			if repeated {
				d.RepeatedMessageFields = append(d.RepeatedMessageFields, fr)
			} else {
				d.MessageFields = append(d.MessageFields, fr)
			}
		}
	}
	d.View = viewSpec(msg, d)
	return d, true
}

func viewSpec(msg *idl.Message, d *Descriptor) *ViewSpec {
	if len(d.ByteFields) == 0 {
		return nil
	}
	for _, f := range msg.Fields {
		// Optional counts are excluded: they render as pointers, which
		// the runtime cannot read a length from.
		if f.Repeated || f.IsMap || f.Optional || !integerTypes[f.Type] {
			continue
		}
		if f.Name == "count" || strings.HasSuffix(f.Name, "_count") {
			return &ViewSpec{Buffer: d.ByteFields[0], Count: f.Name}
		}
	}
	return nil
}

// Contains reports whether a message reference transitively reaches a
// bytes field, through singular, repeated and map-valued message fields.
// Unknown references are never bytey.
func (a *Analyzer) Contains(ref string) bool {
	found, _ := a.contains(ref, map[string]bool{})
	return found
}

// contains returns the byte-presence of ref plus whether the answer is
// safe to memoize. An answer computed under a cycle cut (ref reached a
// message already on the stack) may be incomplete for that message, so
// only the cycle-free negatives are cached. Positives are always cacheable.
func (a *Analyzer) contains(ref string, stack map[string]bool) (found, settled bool) {
	msg, ok := a.reg.Message(ref)
	if !ok {
		return false, true
	}
	if v, ok := a.memo[msg.Name]; ok {
		return v, true
	}
	if stack[msg.Name] {
		return false, false
	}
	stack[msg.Name] = true
	defer delete(stack, msg.Name)

	settled = true
	for _, f := range msg.Fields {
		if f.Type == "bytes" {
			a.memo[msg.Name] = true
			return true, true
		}
		if idl.IsScalar(f.Type) || a.reg.IsEnum(f.Type) {
			continue
		}
		sub, settledSub := a.contains(f.Type, stack)
		if sub {
			a.memo[msg.Name] = true
			return true, true
		}
		if !settledSub {
			settled = false
		}
	}
	if settled {
		a.memo[msg.Name] = false
	}
	return false, settled
}
