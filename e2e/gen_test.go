package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yonagi/bridgen/gen"
	"github.com/yonagi/bridgen/idl"
	"github.com/yonagi/bridgen/idl/compile"
	"github.com/yonagi/bridgen/model"
)

// TestGeneratedPackage_inSync regenerates the geo package from testdata
// and compares it against the checked-in artifacts, so a template or
// schema change cannot land without refreshing the package. Comparison
// collapses whitespace to stay independent of gofmt's column alignment.
func TestGeneratedPackage_inSync(t *testing.T) {
	files, err := idl.Load(filepath.Join("testdata", "geo"), "geospatial.proto")
	if err != nil {
		t.Fatalf("Load must succeed, got error: %s", err)
	}
	reg := model.NewRegistry(files)
	a := model.NewAnalyzer(reg)
	bindings := model.Bind(reg, a, "grpc")

	dir := t.TempDir()
	written, err := gen.Generate(reg, a, bindings, gen.Options{OutDir: dir, Package: "geo", Tag: "grpc"})
	if err != nil {
		t.Fatalf("Generate must succeed, got error: %s", err)
	}
	if len(written) == 0 {
		t.Fatal("Generate must write artifacts")
	}

	flat := func(b []byte) string { return strings.Join(strings.Fields(string(b)), " ") }
	for _, name := range written {
		base := filepath.Base(name)
		fresh, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("must read '%s': %s", name, err)
		}
		checkedIn, err := os.ReadFile(filepath.Join("geo", base))
		if err != nil {
			t.Fatalf("must read the checked-in '%s': %s", base, err)
		}
		if diff := cmp.Diff(flat(checkedIn), flat(fresh)); diff != "" {
			t.Errorf("%s is out of sync with the generator:\n%s", base, diff)
		}
	}
}

// TestBaseline_compiles runs the schema set through the reference
// compiler, the same check the CLI performs before generating.
func TestBaseline_compiles(t *testing.T) {
	fds, err := compile.Compile(context.Background(), filepath.Join("testdata", "geo"), []string{"geospatial.proto", "columnar.proto", "projects.proto"})
	if err != nil {
		t.Fatalf("the schema set must compile, got error: %s", err)
	}
	names := fds.ServiceNames()
	want := []string{"geo.GeospatialService"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("service names mismatch:\n%s", diff)
	}
	if !fds.HasSymbol("geo.ColumnarBatch") {
		t.Error("the compiled set must contain geo.ColumnarBatch")
	}
}
