// Package gen renders the dispatch artifacts for a schema set: message
// structs, the byte-alignment table, a typed client, host registration
// and the exposure shims. All artifacts are driven by one binding pass,
// so the two sides of every channel are derived from the same place.
package gen

import (
	"bytes"
	"embed"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/yonagi/bridgen/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// DefaultRuntime is the import path the generated code resolves the
// runtime packages (ipc, bridge, bytealign, restricted) under.
const DefaultRuntime = "github.com/yonagi/bridgen"

// artifacts maps template names to output file names, in emission order.
var artifacts = []struct {
	template string
	file     string
}{
	{"messages.tmpl", "messages.bridgen.go"},
	{"align.tmpl", "align.bridgen.go"},
	{"client.tmpl", "client.bridgen.go"},
	{"host.tmpl", "host.bridgen.go"},
	{"surface.tmpl", "surface.bridgen.go"},
	{"export.tmpl", "export.bridgen.go"},
}

// Options configures one generation run.
type Options struct {
	// OutDir is the directory the artifacts are written into. It is
	// created if it does not exist.
	OutDir string
	// Package is the package name of the generated files.
	Package string
	// Tag prefixes every derived channel name and registry key.
	Tag string
	// Runtime overrides the runtime import path. Empty means DefaultRuntime.
	Runtime string
}

// Generate renders every artifact for the given schema set and returns
// the written file paths. Methods the generator cannot express are
// dropped with a warning; it is an error if nothing usable remains.
func Generate(reg *model.Registry, a *model.Analyzer, bindings []model.Binding, opts Options) ([]string, error) {
	if opts.Runtime == "" {
		opts.Runtime = DefaultRuntime
	}
	data := build(reg, a, bindings, opts)
	if len(data.Services) == 0 {
		return nil, errors.New("no services with generatable methods")
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory '%s'", opts.OutDir)
	}

	var (
		written []string
		result  error
	)
	for _, art := range artifacts {
		src, err := render(art.template, data)
		if err != nil {
			return nil, err
		}
		name := filepath.Join(opts.OutDir, art.file)
		if err := os.WriteFile(name, src, 0644); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to write '%s'", name))
			continue
		}
		written = append(written, name)
	}
	if result != nil {
		return nil, result
	}
	return written, nil
}

func render(name string, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "failed to render %s", name)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format the output of %s", name)
	}
	return src, nil
}
