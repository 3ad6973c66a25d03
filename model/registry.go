// Package model builds the cross-file symbol table from parsed schemas and
// classifies every RPC into the dispatch strategy its generated code uses.
package model

import (
	"strings"

	"github.com/yonagi/bridgen/idl"
	"github.com/yonagi/bridgen/logger"
)

// Service is a service definition annotated with its source file and
// proto package.
type Service struct {
	Name    string
	File    string
	Package string
	Methods []*idl.Method
}

// FullName returns the package-qualified service name.
func (s *Service) FullName() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// Registry is the symbol table spanning every loaded schema file. Name
// collisions across files are resolved first-definition-wins, with a
// warning for each ignored duplicate.
type Registry struct {
	Services []*Service

	messages []*idl.Message
	byName   map[string]*idl.Message
	origin   map[string]string
	enums    []*idl.Enum
	enumSet  map[string]*idl.Enum
	packages []string
}

// NewRegistry indexes files in order, so definitions from earlier files
// shadow later ones.
func NewRegistry(files []*idl.File) *Registry {
	r := &Registry{
		byName:  map[string]*idl.Message{},
		origin:  map[string]string{},
		enumSet: map[string]*idl.Enum{},
	}
	seenPkg := map[string]bool{}
	seenService := map[string]string{}
	for _, f := range files {
		if f.Package != "" && !seenPkg[f.Package] {
			seenPkg[f.Package] = true
			r.packages = append(r.packages, f.Package)
		}
		for _, m := range f.Messages {
			if prev, ok := r.origin[m.Name]; ok {
				logger.Warnf("duplicate message '%s' in %s ignored, the definition in %s wins", m.Name, f.Name, prev)
				continue
			}
			r.messages = append(r.messages, m)
			r.byName[m.Name] = m
			r.origin[m.Name] = f.Name
		}
		for _, e := range f.Enums {
			if _, ok := r.enumSet[e.Name]; ok {
				logger.Warnf("duplicate enum '%s' in %s ignored", e.Name, f.Name)
				continue
			}
			r.enums = append(r.enums, e)
			r.enumSet[e.Name] = e
		}
		for _, s := range f.Services {
			if prev, ok := seenService[s.Name]; ok {
				logger.Warnf("duplicate service '%s' in %s ignored, the definition in %s wins", s.Name, f.Name, prev)
				continue
			}
			seenService[s.Name] = f.Name
			r.Services = append(r.Services, &Service{
				Name:    s.Name,
				File:    f.Name,
				Package: f.Package,
				Methods: s.Methods,
			})
		}
	}
	return r
}

// Messages returns every indexed message in encounter order.
func (r *Registry) Messages() []*idl.Message {
	return r.messages
}

// Origin returns the file a message was taken from.
func (r *Registry) Origin(name string) string {
	m, ok := r.Message(name)
	if !ok {
		return ""
	}
	return r.origin[m.Name]
}

// Message resolves a type reference to its definition. References may be
// plain ("Project"), package-qualified ("geo.Project"), fully qualified
// (".geo.Project") or dotted nested names ("Outer.Inner"). A bare name
// also reaches nested messages hoisted under a dotted name, so a sibling
// field inside the declaring message can reference "Inner" directly.
func (r *Registry) Message(ref string) (*idl.Message, bool) {
	cands := r.candidates(ref)
	for _, cand := range cands {
		if m, ok := r.byName[cand]; ok {
			return m, true
		}
	}
	for _, cand := range cands {
		for _, m := range r.messages {
			if strings.HasSuffix(m.Name, "."+cand) {
				return m, true
			}
		}
	}
	return nil, false
}

// Enum resolves a type reference to its enum definition, with the same
// candidate order as Message.
func (r *Registry) Enum(ref string) (*idl.Enum, bool) {
	cands := r.candidates(ref)
	for _, cand := range cands {
		if e, ok := r.enumSet[cand]; ok {
			return e, true
		}
	}
	for _, cand := range cands {
		for _, e := range r.enums {
			if strings.HasSuffix(e.Name, "."+cand) {
				return e, true
			}
		}
	}
	return nil, false
}

// Enums returns every indexed enum in encounter order.
func (r *Registry) Enums() []*idl.Enum {
	return r.enums
}

// IsEnum reports whether a type reference names an enum.
func (r *Registry) IsEnum(ref string) bool {
	_, ok := r.Enum(ref)
	return ok
}

func (r *Registry) candidates(ref string) []string {
	ref = strings.TrimPrefix(ref, ".")
	cands := []string{ref}
	for _, pkg := range r.packages {
		if rest := strings.TrimPrefix(ref, pkg+"."); rest != ref {
			cands = append(cands, rest)
		}
	}
	return cands
}
