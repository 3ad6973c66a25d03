// Package idl provides a tolerant parser for Protocol Buffers schema files.
//
// The parser recognizes the subset of the proto3 grammar the generator
// consumes: packages, imports, messages, fields, enums, services and RPCs.
// Statements outside that subset are skipped statement-by-statement instead
// of failing the whole file, so a schema using an exotic feature still
// yields every definition around it.
package idl

// File is the parsed form of a single .proto source file.
type File struct {
	// Name is the base name of the source file, e.g. "geospatial.proto".
	Name string

	Package  string
	Imports  []string
	Services []*Service
	Messages []*Message
	Enums    []*Enum

	// Skipped records statements the parser could not interpret, one
	// entry per skipped statement in "file:line: reason" form.
	Skipped []string
}

// Service is a service declaration with its RPC methods in declaration order.
type Service struct {
	Name    string
	Methods []*Method
}

// Method is a single RPC declaration.
type Method struct {
	Name            string
	RequestType     string
	ResponseType    string
	ClientStreaming bool
	ServerStreaming bool
}

// Message is a message declaration. Nested messages are hoisted to the
// top level with dotted names such as "Outer.Inner".
type Message struct {
	Name   string
	Fields []*Field
}

// Field is a single message field.
//
// Oneof members appear as ordinary optional fields. Map fields keep their
// key type in KeyType and their value type in Type, with IsMap set.
type Field struct {
	Name     string
	Type     string
	Number   int
	Repeated bool
	Optional bool
	IsMap    bool
	KeyType  string
}

// Enum is an enum declaration with its values in declaration order. Nested
// enums are hoisted like nested messages.
type Enum struct {
	Name   string
	Values []*EnumValue
}

// EnumValue is a single enum constant.
type EnumValue struct {
	Name   string
	Number int
}

// scalarTypes is the set of proto3 scalar type keywords.
var scalarTypes = map[string]bool{
	"double":   true,
	"float":    true,
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
	"bool":     true,
	"string":   true,
	"bytes":    true,
}

// IsScalar reports whether name is a proto3 scalar type keyword.
func IsScalar(name string) bool {
	return scalarTypes[name]
}
