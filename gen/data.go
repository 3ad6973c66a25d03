package gen

import (
	"strings"

	"github.com/yonagi/bridgen/idl"
	"github.com/yonagi/bridgen/logger"
	"github.com/yonagi/bridgen/model"
)

// Data is the single view of a schema set every template renders from.
// Building it once keeps the artifacts agreeing with each other: the
// client, host and surface all see the same methods, channels and types.
type Data struct {
	Source   string
	Package  string
	Runtime  string
	Services []Service
	Enums    []Enum
	Messages []Message
	Schemas  []Schema
	Streams  []Stream
	Prepares []Prepare
}

// Enum is one generated named int32 type with its constant block.
type Enum struct {
	Name   string
	Values []EnumValue
}

type EnumValue struct {
	Name   string
	Number int
}

// Message is one generated struct.
type Message struct {
	Name   string
	Fields []Field
}

// Field is one generated struct field. JSONTag is the full tag value.
type Field struct {
	Name    string
	Type    string
	JSONTag string
}

// Schema is one entry of the generated alignment table, in Go field names.
type Schema struct {
	Type                  string
	ByteFields            []string
	RepeatedByteFields    []string
	MessageFields         []SchemaRef
	RepeatedMessageFields []SchemaRef
	View                  *SchemaView
}

type SchemaRef struct {
	Name string
	Type string
}

type SchemaView struct {
	Buffer string
	Count  string
	View   string
}

// Service is one generated client/handler/surface trio.
type Service struct {
	Name    string
	Key     string
	Methods []Method
}

// Method is one RPC. Kind selects the dispatch protocol: "unary",
// "zerocopy" or "stream".
type Method struct {
	Name       string
	Channel    string
	Kind       string
	Request    string
	Response   string
	StreamType string
	Prepare    string
}

// Stream is one generated typed stream wrapper, deduplicated by name.
type Stream struct {
	Name string
	Elem string
}

// Prepare is one generated outbound-payload hook, deduplicated by name.
type Prepare struct {
	Name string
	Type string
}

// viewFieldName is the struct field attached views live in.
const viewFieldName = "Float32"

// build assembles the template data. Methods the generator cannot express
// are dropped with a warning: client streaming, and request or response
// types that do not resolve to a known message.
func build(reg *model.Registry, a *model.Analyzer, bindings []model.Binding, opts Options) *Data {
	d := &Data{
		Source:  sourceList(reg),
		Package: opts.Package,
		Runtime: opts.Runtime,
	}
	d.buildEnums(reg)
	d.buildMessages(reg, a)
	d.buildServices(reg, a, bindings, opts)
	return d
}

func (d *Data) buildEnums(reg *model.Registry) {
	for _, e := range reg.Enums() {
		ge := Enum{Name: goName(e.Name)}
		for _, v := range e.Values {
			ge.Values = append(ge.Values, EnumValue{Name: v.Name, Number: v.Number})
		}
		d.Enums = append(d.Enums, ge)
	}
}

func sourceList(reg *model.Registry) string {
	var names []string
	seen := map[string]bool{}
	for _, m := range reg.Messages() {
		if f := reg.Origin(m.Name); f != "" && !seen[f] {
			seen[f] = true
			names = append(names, f)
		}
	}
	for _, s := range reg.Services {
		if !seen[s.File] {
			seen[s.File] = true
			names = append(names, s.File)
		}
	}
	return strings.Join(names, ", ")
}

func (d *Data) buildMessages(reg *model.Registry, a *model.Analyzer) {
	for _, m := range reg.Messages() {
		desc, _ := a.Describe(m.Name)
		msg := Message{Name: goName(m.Name)}
		for _, f := range m.Fields {
			typ, ok := goType(f, reg)
			if !ok {
				logger.Warnf("dropping field '%s' of message '%s': type '%s' does not resolve", f.Name, m.Name, f.Type)
				continue
			}
			msg.Fields = append(msg.Fields, Field{
				Name:    goFieldName(f.Name),
				Type:    typ,
				JSONTag: jsonName(f.Name) + ",omitempty",
			})
		}
		if desc != nil && desc.View != nil {
			msg.Fields = append(msg.Fields, Field{
				Name:    viewFieldName,
				Type:    "[]float32",
				JSONTag: "-",
			})
		}
		d.Messages = append(d.Messages, msg)

		if desc != nil && !desc.Empty() {
			d.Schemas = append(d.Schemas, buildSchema(goName(m.Name), desc))
		}
	}
}

func buildSchema(typeName string, desc *model.Descriptor) Schema {
	s := Schema{Type: typeName}
	for _, f := range desc.ByteFields {
		s.ByteFields = append(s.ByteFields, goFieldName(f))
	}
	for _, f := range desc.RepeatedByteFields {
		s.RepeatedByteFields = append(s.RepeatedByteFields, goFieldName(f))
	}
	for _, r := range desc.MessageFields {
		s.MessageFields = append(s.MessageFields, SchemaRef{Name: goFieldName(r.Name), Type: goName(r.Type)})
	}
	for _, r := range desc.RepeatedMessageFields {
		s.RepeatedMessageFields = append(s.RepeatedMessageFields, SchemaRef{Name: goFieldName(r.Name), Type: goName(r.Type)})
	}
	if desc.View != nil {
		s.View = &SchemaView{
			Buffer: goFieldName(desc.View.Buffer),
			Count:  goFieldName(desc.View.Count),
			View:   viewFieldName,
		}
	}
	return s
}

func (d *Data) buildServices(reg *model.Registry, a *model.Analyzer, bindings []model.Binding, opts Options) {
	streams := map[string]bool{}
	prepares := map[string]bool{}

	for _, svc := range reg.Services {
		gs := Service{
			Name: goName(svc.Name),
			Key:  opts.Tag + ":" + svc.Name,
		}
		for _, b := range bindings {
			if b.Service != svc {
				continue
			}
			m := b.Method
			if m.ClientStreaming {
				logger.Warnf("skipping %s.%s: client streaming is not supported", svc.Name, m.Name)
				continue
			}
			reqMsg, ok := reg.Message(m.RequestType)
			if !ok {
				logger.Warnf("skipping %s.%s: request type '%s' does not resolve", svc.Name, m.Name, m.RequestType)
				continue
			}
			respMsg, ok := reg.Message(m.ResponseType)
			if !ok {
				logger.Warnf("skipping %s.%s: response type '%s' does not resolve", svc.Name, m.Name, m.ResponseType)
				continue
			}

			gm := Method{
				Name:     m.Name,
				Channel:  b.Channel,
				Request:  goName(reqMsg.Name),
				Response: goName(respMsg.Name),
			}
			respDesc, _ := a.Describe(respMsg.Name)
			needsPrepare := respDesc != nil && !respDesc.Empty()

			switch b.Strategy {
			case model.ZeroCopyUnary:
				gm.Kind = "zerocopy"
			case model.Streaming:
				gm.Kind = "stream"
				gm.StreamType = gm.Response + "Stream"
				if !streams[gm.StreamType] {
					streams[gm.StreamType] = true
					d.Streams = append(d.Streams, Stream{Name: gm.StreamType, Elem: gm.Response})
				}
			default:
				gm.Kind = "unary"
			}
			if gm.Kind != "unary" && needsPrepare {
				gm.Prepare = "prepare" + gm.Response
				if !prepares[gm.Prepare] {
					prepares[gm.Prepare] = true
					d.Prepares = append(d.Prepares, Prepare{Name: gm.Prepare, Type: gm.Response})
				}
			}
			gs.Methods = append(gs.Methods, gm)
		}
		if len(gs.Methods) == 0 {
			logger.Warnf("skipping service '%s': it has no generatable methods", svc.Name)
			continue
		}
		d.Services = append(d.Services, gs)
	}
}

var scalarGoTypes = map[string]string{
	"double":   "float64",
	"float":    "float32",
	"int32":    "int32",
	"int64":    "int64",
	"uint32":   "uint32",
	"uint64":   "uint64",
	"sint32":   "int32",
	"sint64":   "int64",
	"fixed32":  "uint32",
	"fixed64":  "uint64",
	"sfixed32": "int32",
	"sfixed64": "int64",
	"bool":     "bool",
	"string":   "string",
	"bytes":    "[]byte",
}

// goType maps a schema field to its Go type. Enum fields use the generated
// enum type, message fields become struct pointers. Optional singular
// scalars and enums become pointers; bytes and message fields already carry
// a nil state.
func goType(f *idl.Field, reg *model.Registry) (string, bool) {
	elem, ok := elemGoType(f.Type, reg)
	if !ok {
		return "", false
	}
	switch {
	case f.IsMap:
		key, ok := scalarGoTypes[f.KeyType]
		if !ok {
			return "", false
		}
		return "map[" + key + "]" + elem, true
	case f.Repeated:
		return "[]" + elem, true
	default:
		if f.Optional && !strings.HasPrefix(elem, "*") && !strings.HasPrefix(elem, "[]") {
			elem = "*" + elem
		}
		return elem, true
	}
}

func elemGoType(typ string, reg *model.Registry) (string, bool) {
	if t, ok := scalarGoTypes[typ]; ok {
		return t, true
	}
	if e, ok := reg.Enum(typ); ok {
		return goName(e.Name), true
	}
	if m, ok := reg.Message(typ); ok {
		return "*" + goName(m.Name), true
	}
	return "", false
}

// goName converts a message name to its Go type name. Dots from hoisted
// nested messages become underscores.
func goName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// goFieldName converts a snake_case field name to an exported Go name.
func goFieldName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// jsonName is the camelCase wire name of a field.
func jsonName(name string) string {
	pascal := goFieldName(name)
	if pascal == "" {
		return name
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}
