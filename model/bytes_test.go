package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yonagi/bridgen/idl"
	"github.com/yonagi/bridgen/model"
)

func newAnalyzer(t *testing.T, src string) *model.Analyzer {
	t.Helper()
	reg := model.NewRegistry([]*idl.File{idl.Parse("test.proto", []byte(src))})
	return model.NewAnalyzer(reg)
}

func TestAnalyzer_Contains(t *testing.T) {
	cases := map[string]struct {
		src  string
		ref  string
		want bool
	}{
		"direct bytes field": {
			src:  `message M { bytes data = 1; }`,
			ref:  "M",
			want: true,
		},
		"repeated bytes field": {
			src:  `message M { repeated bytes chunks = 1; }`,
			ref:  "M",
			want: true,
		},
		"bytes behind a nested message": {
			src: `
message Outer { Middle m = 1; }
message Middle { Inner i = 1; }
message Inner { bytes data = 1; }
`,
			ref:  "Outer",
			want: true,
		},
		"bytes inside a nested declaration": {
			src: `
message Outer {
  message Inner { bytes data = 1; }
  Inner inner = 1;
}
`,
			ref:  "Outer",
			want: true,
		},
		"bytes behind a repeated message": {
			src: `
message Outer { repeated Inner items = 1; }
message Inner { bytes data = 1; }
`,
			ref:  "Outer",
			want: true,
		},
		"bytes behind a map value": {
			src: `
message Outer { map<string, Inner> items = 1; }
message Inner { bytes data = 1; }
`,
			ref:  "Outer",
			want: true,
		},
		"map with bytes values": {
			src:  `message M { map<string, bytes> blobs = 1; }`,
			ref:  "M",
			want: true,
		},
		"plain scalars only": {
			src:  `message M { string name = 1; int64 size = 2; }`,
			ref:  "M",
			want: false,
		},
		"enum fields are not bytey": {
			src: `
enum Quality { Q0 = 0; }
message M { Quality q = 1; }
`,
			ref:  "M",
			want: false,
		},
		"self-recursive message without bytes": {
			src:  `message Node { Node next = 1; string v = 2; }`,
			ref:  "Node",
			want: false,
		},
		"self-recursive message with bytes": {
			src:  `message Node { Node next = 1; bytes v = 2; }`,
			ref:  "Node",
			want: true,
		},
		"mutual recursion without bytes": {
			src: `
message A { B b = 1; }
message B { A a = 1; }
`,
			ref:  "A",
			want: false,
		},
		"mutual recursion with bytes on one branch": {
			src: `
message A { B b = 1; }
message B { A a = 1; bytes data = 2; }
`,
			ref:  "A",
			want: true,
		},
		"unknown reference": {
			src:  `message M { string name = 1; }`,
			ref:  "DoesNotExist",
			want: false,
		},
	}

	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			a := newAnalyzer(t, c.src)
			if got := a.Contains(c.ref); got != c.want {
				t.Errorf("Contains(%q) must return %t, but got %t", c.ref, c.want, got)
			}
			// A second query must agree with the first regardless of what
			// the memo recorded.
			if got := a.Contains(c.ref); got != c.want {
				t.Errorf("repeated Contains(%q) must return %t, but got %t", c.ref, c.want, got)
			}
		})
	}
}

// The cycle A <-> B with bytes hidden behind a sibling of the cycle used
// to be a memoization trap: querying B first walks into A, whose answer is
// cut short by the in-progress B, and a careless cache would pin A to
// false before B's own bytes field is seen.
func TestAnalyzer_Contains_cycleMemoOrder(t *testing.T) {
	src := `
message B { A a = 1; W w = 2; }
message A { B b = 1; }
message W { bytes data = 1; }
`
	a := newAnalyzer(t, src)
	if !a.Contains("B") {
		t.Fatal("B reaches bytes through W, Contains must return true")
	}
	if !a.Contains("A") {
		t.Error("A reaches bytes through B, Contains must return true even after querying B first")
	}
}

func TestAnalyzer_Describe(t *testing.T) {
	src := `
message ColumnarBatch {
  bytes points = 1;
  uint32 point_count = 2;
  string generation_method = 3;
}
message ProjectPage {
  repeated Project projects = 1;
  Project featured = 2;
  map<string, Project> by_name = 3;
  map<string, bytes> blobs = 4;
  int64 total_count = 5;
}
message Project { string id = 1; }
`
	a := newAnalyzer(t, src)

	t.Run("buffer and count pair produces a view spec", func(t *testing.T) {
		d, ok := a.Describe("ColumnarBatch")
		if !ok {
			t.Fatal("ColumnarBatch must be describable")
		}
		want := &model.Descriptor{
			ByteFields: []string{"points"},
			View:       &model.ViewSpec{Buffer: "points", Count: "point_count"},
		}
		if diff := cmp.Diff(want, d); diff != "" {
			t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("message fields are partitioned by cardinality", func(t *testing.T) {
		d, ok := a.Describe("ProjectPage")
		if !ok {
			t.Fatal("ProjectPage must be describable")
		}
		want := &model.Descriptor{
			RepeatedByteFields: []string{"blobs"},
			MessageFields:      []model.FieldRef{{Name: "featured", Type: "Project"}},
			RepeatedMessageFields: []model.FieldRef{
				{Name: "projects", Type: "Project"},
				{Name: "by_name", Type: "Project"},
			},
		}
		if diff := cmp.Diff(want, d); diff != "" {
			t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("plain messages yield an empty descriptor", func(t *testing.T) {
		d, ok := a.Describe("Project")
		if !ok {
			t.Fatal("Project must be describable")
		}
		if !d.Empty() {
			t.Errorf("expected an empty descriptor, but got %+v", d)
		}
	})

	t.Run("nested declarations resolve to their hoisted type", func(t *testing.T) {
		a := newAnalyzer(t, `
message BlobResponse {
  message Inner { bytes data = 1; }
  Inner inner = 1;
}
`)
		d, ok := a.Describe("BlobResponse")
		if !ok {
			t.Fatal("BlobResponse must be describable")
		}
		want := &model.Descriptor{
			MessageFields: []model.FieldRef{{Name: "inner", Type: "BlobResponse.Inner"}},
		}
		if diff := cmp.Diff(want, d); diff != "" {
			t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("an optional count field does not produce a view", func(t *testing.T) {
		a := newAnalyzer(t, `
message Batch {
  bytes points = 1;
  optional uint32 point_count = 2;
}
`)
		d, ok := a.Describe("Batch")
		if !ok {
			t.Fatal("Batch must be describable")
		}
		if d.View != nil {
			t.Errorf("an optional count renders as a pointer and cannot drive a view, but got %+v", d.View)
		}
	})

	t.Run("a count field alone does not produce a view", func(t *testing.T) {
		a := newAnalyzer(t, `message Stats { uint32 point_count = 1; }`)
		d, ok := a.Describe("Stats")
		if !ok {
			t.Fatal("Stats must be describable")
		}
		if d.View != nil {
			t.Errorf("no bytes field means no view, but got %+v", d.View)
		}
	})
}
