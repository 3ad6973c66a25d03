// Package compile checks schemas against a real Protocol Buffers compiler.
//
// The generator's own parser is deliberately tolerant, so before any code
// is written the schema set is compiled once with protocompile. A schema a
// proto toolchain would reject fails generation instead of silently
// producing artifacts from a half-understood file.
package compile

import (
	"context"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var errSymbolNotFound = errors.New("symbol not found")

// Files wraps a compiled schema set for baseline queries.
type Files struct {
	fds linker.Files
}

// Compile compiles fnames with dir as the import root. The standard
// well-known imports resolve without copies of the google protos on disk.
func Compile(ctx context.Context, dir string, fnames []string) (*Files, error) {
	c := &protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{dir},
		}),
	}
	compiled, err := c.Compile(ctx, fnames...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile schema files")
	}
	return &Files{fds: compiled}, nil
}

// ServiceNames returns the fully qualified name of every service in the
// compiled set, in file order.
func (f *Files) ServiceNames() []string {
	var services []string
	for _, fd := range f.fds {
		svcs := fd.Services()
		for i := 0; i < svcs.Len(); i++ {
			services = append(services, string(svcs.Get(i).FullName()))
		}
	}
	return services
}

// FindSymbol resolves a fully qualified symbol name in the compiled set.
func (f *Files) FindSymbol(name string) (protoreflect.Descriptor, error) {
	for _, fd := range f.fds {
		if d := fd.FindDescriptorByName(protoreflect.FullName(name)); d != nil {
			return d, nil
		}
	}
	return nil, errors.Wrapf(errSymbolNotFound, "symbol %s", name)
}

// HasSymbol reports whether a fully qualified symbol exists in the set.
func (f *Files) HasSymbol(name string) bool {
	_, err := f.FindSymbol(name)
	return err == nil
}
