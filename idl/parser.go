package idl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses proto source into a File. It does not fail: statements the
// parser cannot interpret are recorded in File.Skipped and parsing resumes
// at the next statement boundary.
func Parse(name string, src []byte) *File {
	p := &parser{
		file: &File{Name: name},
		lex:  newLexer(src),
	}
	p.advance()
	p.parseFile()
	return p.file
}

type parser struct {
	file *File
	lex  *lexer
	tok  token
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

func (p *parser) atEOF() bool {
	return p.tok.kind == tokenEOF
}

func (p *parser) isIdent(text string) bool {
	return p.tok.kind == tokenIdent && p.tok.text == text
}

func (p *parser) isPunct(text string) bool {
	return p.tok.kind == tokenPunct && p.tok.text == text
}

// skipf records a warning and consumes tokens up to and including the next
// ';' or balanced '{...}' block so parsing can resume at a clean boundary.
func (p *parser) skipf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.file.Skipped = append(p.file.Skipped, fmt.Sprintf("%s:%d: %s", p.file.Name, p.tok.line, msg))
	p.skipStatement()
}

func (p *parser) skipStatement() {
	depth := 0
	for !p.atEOF() {
		switch {
		case p.isPunct(";") && depth == 0:
			p.advance()
			return
		case p.isPunct("{"):
			depth++
		case p.isPunct("}"):
			if depth == 0 {
				// Closing brace of the enclosing block, leave it alone.
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *parser) parseFile() {
	for !p.atEOF() {
		switch {
		case p.isIdent("syntax"), p.isIdent("edition"), p.isIdent("option"):
			p.skipStatement()
		case p.isIdent("package"):
			p.parsePackage()
		case p.isIdent("import"):
			p.parseImport()
		case p.isIdent("message"):
			p.parseMessage("")
		case p.isIdent("enum"):
			p.parseEnum("")
		case p.isIdent("service"):
			p.parseService()
		case p.isPunct(";"):
			p.advance()
		default:
			p.skipf("unsupported top-level statement starting with %s", p.tok)
		}
	}
}

func (p *parser) parsePackage() {
	p.advance()
	name, ok := p.typeName()
	if !ok {
		p.skipf("malformed package statement")
		return
	}
	p.file.Package = name
	p.expectSemi("package statement")
}

func (p *parser) parseImport() {
	p.advance()
	// import [weak|public] "path";
	if p.isIdent("weak") || p.isIdent("public") {
		p.advance()
	}
	if p.tok.kind != tokenString {
		p.skipf("import path must be a string literal, got %s", p.tok)
		return
	}
	p.file.Imports = append(p.file.Imports, p.tok.text)
	p.advance()
	p.expectSemi("import statement")
}

func (p *parser) parseMessage(prefix string) {
	p.advance()
	if p.tok.kind != tokenIdent {
		p.skipf("message name must be an identifier, got %s", p.tok)
		return
	}
	name := p.tok.text
	if prefix != "" {
		name = prefix + "." + name
	}
	p.advance()
	if !p.isPunct("{") {
		p.skipf("message %s is missing a body", name)
		return
	}
	p.advance()

	msg := &Message{Name: name}
	for !p.atEOF() && !p.isPunct("}") {
		switch {
		case p.isIdent("message"):
			p.parseMessage(name)
		case p.isIdent("enum"):
			p.parseEnum(name)
		case p.isIdent("oneof"):
			p.parseOneof(msg)
		case p.isIdent("map"):
			p.parseMapField(msg)
		case p.isIdent("option"), p.isIdent("reserved"), p.isIdent("extensions"):
			p.skipStatement()
		case p.isPunct(";"):
			p.advance()
		case p.tok.kind == tokenIdent || p.isPunct("."):
			p.parseField(msg, false)
		default:
			p.skipf("unexpected %s in message %s", p.tok, name)
		}
	}
	if p.isPunct("}") {
		p.advance()
	}
	p.file.Messages = append(p.file.Messages, msg)
}

// parseField parses "[repeated|optional] type name = number [options];".
func (p *parser) parseField(msg *Message, insideOneof bool) {
	f := &Field{Optional: insideOneof}
	for {
		switch {
		case !insideOneof && p.isIdent("repeated"):
			f.Repeated = true
			p.advance()
			continue
		case !insideOneof && (p.isIdent("optional") || p.isIdent("required")):
			f.Optional = p.tok.text == "optional"
			p.advance()
			continue
		}
		break
	}

	typ, ok := p.typeName()
	if !ok {
		p.skipf("malformed field type in message %s", msg.Name)
		return
	}
	f.Type = typ

	if p.tok.kind != tokenIdent {
		p.skipf("field of type %s in message %s has no name", typ, msg.Name)
		return
	}
	f.Name = p.tok.text
	p.advance()

	if !p.finishField(f, msg) {
		return
	}
	msg.Fields = append(msg.Fields, f)
}

// parseMapField parses "map<key, value> name = number;". For downstream
// analysis a map behaves like a repeated value: the key type is retained
// only for code generation.
func (p *parser) parseMapField(msg *Message) {
	p.advance()
	if !p.isPunct("<") {
		p.skipf("map field in message %s is missing '<'", msg.Name)
		return
	}
	p.advance()
	key, ok := p.typeName()
	if !ok {
		p.skipf("malformed map key type in message %s", msg.Name)
		return
	}
	if !p.isPunct(",") {
		p.skipf("map field in message %s is missing ','", msg.Name)
		return
	}
	p.advance()
	val, ok := p.typeName()
	if !ok {
		p.skipf("malformed map value type in message %s", msg.Name)
		return
	}
	if !p.isPunct(">") {
		p.skipf("map field in message %s is missing '>'", msg.Name)
		return
	}
	p.advance()

	f := &Field{Type: val, IsMap: true, KeyType: key}
	if p.tok.kind != tokenIdent {
		p.skipf("map field in message %s has no name", msg.Name)
		return
	}
	f.Name = p.tok.text
	p.advance()

	if !p.finishField(f, msg) {
		return
	}
	msg.Fields = append(msg.Fields, f)
}

// finishField consumes "= number [options];" shared by normal and map fields.
func (p *parser) finishField(f *Field, msg *Message) bool {
	if !p.isPunct("=") {
		p.skipf("field %s in message %s is missing '='", f.Name, msg.Name)
		return false
	}
	p.advance()
	if p.tok.kind != tokenNumber {
		p.skipf("field %s in message %s has a malformed number", f.Name, msg.Name)
		return false
	}
	n, err := strconv.Atoi(p.tok.text)
	if err != nil {
		p.skipf("field %s in message %s has a malformed number %q", f.Name, msg.Name, p.tok.text)
		return false
	}
	f.Number = n
	p.advance()

	if p.isPunct("[") {
		depth := 1
		p.advance()
		for !p.atEOF() && depth > 0 {
			if p.isPunct("[") {
				depth++
			}
			if p.isPunct("]") {
				depth--
			}
			p.advance()
		}
	}
	p.expectSemi(fmt.Sprintf("field %s", f.Name))
	return true
}

// parseOneof flattens oneof members into the enclosing message as optional
// singular fields.
func (p *parser) parseOneof(msg *Message) {
	p.advance()
	if p.tok.kind != tokenIdent {
		p.skipf("oneof in message %s has no name", msg.Name)
		return
	}
	p.advance()
	if !p.isPunct("{") {
		p.skipf("oneof in message %s is missing a body", msg.Name)
		return
	}
	p.advance()
	for !p.atEOF() && !p.isPunct("}") {
		switch {
		case p.isIdent("option"):
			p.skipStatement()
		case p.isPunct(";"):
			p.advance()
		case p.tok.kind == tokenIdent || p.isPunct("."):
			p.parseField(msg, true)
		default:
			p.skipf("unexpected %s in oneof of message %s", p.tok, msg.Name)
		}
	}
	if p.isPunct("}") {
		p.advance()
	}
}

func (p *parser) parseEnum(prefix string) {
	p.advance()
	if p.tok.kind != tokenIdent {
		p.skipf("enum name must be an identifier, got %s", p.tok)
		return
	}
	name := p.tok.text
	if prefix != "" {
		name = prefix + "." + name
	}
	p.advance()
	if !p.isPunct("{") {
		p.skipf("enum %s is missing a body", name)
		return
	}
	p.advance()

	e := &Enum{Name: name}
	for !p.atEOF() && !p.isPunct("}") {
		switch {
		case p.isIdent("option"), p.isIdent("reserved"):
			p.skipStatement()
		case p.isPunct(";"):
			p.advance()
		case p.tok.kind == tokenIdent:
			p.parseEnumValue(e)
		default:
			p.skipf("unexpected %s in enum %s", p.tok, name)
		}
	}
	if p.isPunct("}") {
		p.advance()
	}
	p.file.Enums = append(p.file.Enums, e)
}

// parseEnumValue parses "NAME = number [options];".
func (p *parser) parseEnumValue(e *Enum) {
	v := &EnumValue{Name: p.tok.text}
	p.advance()
	if !p.isPunct("=") {
		p.skipf("value %s in enum %s is missing '='", v.Name, e.Name)
		return
	}
	p.advance()
	if p.tok.kind != tokenNumber {
		p.skipf("value %s in enum %s has a malformed number", v.Name, e.Name)
		return
	}
	n, err := strconv.Atoi(p.tok.text)
	if err != nil {
		p.skipf("value %s in enum %s has a malformed number %q", v.Name, e.Name, p.tok.text)
		return
	}
	v.Number = n
	p.advance()

	if p.isPunct("[") {
		depth := 1
		p.advance()
		for !p.atEOF() && depth > 0 {
			if p.isPunct("[") {
				depth++
			}
			if p.isPunct("]") {
				depth--
			}
			p.advance()
		}
	}
	p.expectSemi(fmt.Sprintf("enum value %s", v.Name))
	e.Values = append(e.Values, v)
}

func (p *parser) parseService() {
	p.advance()
	if p.tok.kind != tokenIdent {
		p.skipf("service name must be an identifier, got %s", p.tok)
		return
	}
	svc := &Service{Name: p.tok.text}
	p.advance()
	if !p.isPunct("{") {
		p.skipf("service %s is missing a body", svc.Name)
		return
	}
	p.advance()
	for !p.atEOF() && !p.isPunct("}") {
		switch {
		case p.isIdent("rpc"):
			p.parseMethod(svc)
		case p.isIdent("option"):
			p.skipStatement()
		case p.isPunct(";"):
			p.advance()
		default:
			p.skipf("unexpected %s in service %s", p.tok, svc.Name)
		}
	}
	if p.isPunct("}") {
		p.advance()
	}
	p.file.Services = append(p.file.Services, svc)
}

// parseMethod parses "rpc Name (in) returns (out);" where either side may
// carry a leading "stream". A trailing "{...}" option block is consumed.
func (p *parser) parseMethod(svc *Service) {
	p.advance()
	if p.tok.kind != tokenIdent {
		p.skipf("rpc in service %s has no name", svc.Name)
		return
	}
	m := &Method{Name: p.tok.text}
	p.advance()

	var ok bool
	m.RequestType, m.ClientStreaming, ok = p.parseMethodType(svc, m.Name)
	if !ok {
		return
	}
	if !p.isIdent("returns") {
		p.skipf("rpc %s in service %s is missing 'returns'", m.Name, svc.Name)
		return
	}
	p.advance()
	m.ResponseType, m.ServerStreaming, ok = p.parseMethodType(svc, m.Name)
	if !ok {
		return
	}

	switch {
	case p.isPunct(";"):
		p.advance()
	case p.isPunct("{"):
		p.skipStatement()
	default:
		p.skipf("rpc %s in service %s has a malformed tail", m.Name, svc.Name)
		return
	}
	svc.Methods = append(svc.Methods, m)
}

func (p *parser) parseMethodType(svc *Service, rpc string) (typ string, streaming, ok bool) {
	if !p.isPunct("(") {
		p.skipf("rpc %s in service %s is missing '('", rpc, svc.Name)
		return "", false, false
	}
	p.advance()
	if p.isIdent("stream") {
		streaming = true
		p.advance()
	}
	typ, tok := p.typeName()
	if !tok {
		p.skipf("rpc %s in service %s has a malformed message type", rpc, svc.Name)
		return "", false, false
	}
	if !p.isPunct(")") {
		p.skipf("rpc %s in service %s is missing ')'", rpc, svc.Name)
		return "", false, false
	}
	p.advance()
	return typ, streaming, true
}

// typeName assembles a possibly qualified type reference such as
// "bytes", "Project" or ".geo.Project" from ident and '.' tokens.
func (p *parser) typeName() (string, bool) {
	var b strings.Builder
	if p.isPunct(".") {
		b.WriteString(".")
		p.advance()
	}
	if p.tok.kind != tokenIdent {
		return "", false
	}
	b.WriteString(p.tok.text)
	p.advance()
	for p.isPunct(".") {
		b.WriteString(".")
		p.advance()
		if p.tok.kind != tokenIdent {
			return "", false
		}
		b.WriteString(p.tok.text)
		p.advance()
	}
	return b.String(), true
}

// expectSemi consumes a terminating ';' if present. A missing semicolon is
// tolerated so a single slip does not cascade into skipping the next field.
func (p *parser) expectSemi(what string) {
	if p.isPunct(";") {
		p.advance()
		return
	}
	p.file.Skipped = append(p.file.Skipped,
		fmt.Sprintf("%s:%d: %s is missing ';'", p.file.Name, p.tok.line, what))
}
