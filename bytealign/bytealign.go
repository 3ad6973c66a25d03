// Package bytealign keeps raw byte payloads 4-byte aligned and exposes
// zero-copy float32 views over them.
//
// Buffers that cross the process boundary are handed to consumers that
// reinterpret them as packed float32 arrays. Reinterpretation is only
// sound when the first byte sits on a 4-byte boundary; slicing can break
// that, so byte fields are checked and copied once, host-side, before a
// payload is sent. The generated alignment table (a SchemaSet) tells this
// package which fields of which messages to touch.
package bytealign

import "unsafe"

const alignment = 4

// SchemaSet maps generated message type names to their byte layouts.
type SchemaSet map[string]Message

// Message describes the byte-carrying fields of one generated struct.
// Field names are Go field names, in declaration order.
type Message struct {
	ByteFields            []string
	RepeatedByteFields    []string
	MessageFields         []FieldRef
	RepeatedMessageFields []FieldRef
	View                  *ViewSpec
}

// FieldRef names a message-typed field and the schema entry of its type.
type FieldRef struct {
	Name string
	Type string
}

// ViewSpec is a buffer/count field pair plus the field that receives the
// attached float32 view.
type ViewSpec struct {
	Buffer string
	Count  string
	View   string
}

// Aligned reports whether the first byte of b sits on a 4-byte boundary.
// Empty slices are trivially aligned.
func Aligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))%alignment == 0
}

// Realign returns b itself when it is already aligned, otherwise an
// aligned copy. The copy is backed by float32 storage because the tiny
// allocator packs small byte allocations tighter than 4 bytes.
func Realign(b []byte) []byte {
	if Aligned(b) {
		return b
	}
	w := make([]float32, (len(b)+alignment-1)/alignment)
	c := unsafe.Slice((*byte)(unsafe.Pointer(&w[0])), len(b))
	copy(c, b)
	return c
}

// Float32View reinterprets the leading bytes of b as n float32 values
// sharing b's backing array. n is clamped to the number of complete
// float32s b holds. A misaligned b yields nil rather than a torn view.
func Float32View(b []byte, n int) []float32 {
	if max := len(b) / alignment; n > max {
		n = max
	}
	if n <= 0 || !Aligned(b) {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n)
}
