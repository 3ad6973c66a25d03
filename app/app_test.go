package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yonagi/bridgen/app"
	"github.com/yonagi/bridgen/cui"
	"github.com/yonagi/bridgen/meta"
)

func TestApp_Run(t *testing.T) {
	cases := map[string]struct {
		// Space separated arguments text. {{outDir}} is replaced by a
		// temp dir created for the case.
		args string

		// The exit code we expected.
		expectedCode int

		// assertTest checks whether the output is expected. If nil, it
		// is ignored.
		assertTest func(t *testing.T, output, eout, outDir string)
	}{
		"print usage text to the Writer": {
			args: "--help",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				for _, s := range []string{"Usage: bridgen", "generate", "describe", "--primary"} {
					if !strings.Contains(output, s) {
						t.Errorf("usage text must contain '%s', but missing in '%s'", s, output)
					}
				}
			},
		},
		"print version text to the Writer": {
			args: "--version",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				expected := fmt.Sprintf("%s %s\n", meta.AppName, meta.Version)
				if output != expected {
					t.Errorf("expected '%s', but got '%s'", expected, output)
				}
			},
		},
		"unknown command": {
			args:         "nope",
			expectedCode: 1,
			assertTest: func(t *testing.T, output, eout, outDir string) {
				if !strings.Contains(eout, `unknown command "nope"`) {
					t.Errorf("expected an unknown command error, but got '%s'", eout)
				}
			},
		},
		"generate writes the artifacts": {
			args: "generate --dir testdata/monitor --primary monitor.proto --out {{outDir}}",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				for _, base := range []string{
					"messages.bridgen.go",
					"align.bridgen.go",
					"client.bridgen.go",
					"host.bridgen.go",
					"surface.bridgen.go",
					"export.bridgen.go",
				} {
					if _, err := os.Stat(filepath.Join(outDir, base)); err != nil {
						t.Errorf("expected %s to be written: %s", base, err)
					}
					if !strings.Contains(output, base) {
						t.Errorf("expected the output to list %s, but got '%s'", base, output)
					}
				}
			},
		},
		"generate fails when the schema directory is missing": {
			args:         "generate --dir testdata/absent --primary monitor.proto --out {{outDir}}",
			expectedCode: 1,
		},
		"generate fails when the primary schema is missing": {
			args:         "generate --dir testdata/monitor --primary nope.proto --out {{outDir}}",
			expectedCode: 1,
		},
		"generate fails when the schema set defines no service": {
			args:         "generate --dir testdata/nosvc --primary types.proto --out {{outDir}}",
			expectedCode: 1,
		},
		"generate fails when the reference compiler rejects the schema set": {
			args:         "generate --dir testdata/broken --primary broken.proto --out {{outDir}}",
			expectedCode: 1,
			assertTest: func(t *testing.T, output, eout, outDir string) {
				if _, err := os.Stat(filepath.Join(outDir, "messages.bridgen.go")); err == nil {
					t.Error("no artifact must be written when the schema set does not compile")
				}
			},
		},
		"generate fails when --tag contains a colon": {
			args:         "generate --dir testdata/monitor --primary monitor.proto --out {{outDir}} --tag a:b",
			expectedCode: 1,
		},
		"describe prints the dispatch table": {
			args: "describe --dir testdata/monitor --primary monitor.proto",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				for _, s := range []string{
					"MonitorService",
					"Ping", "simple", "grpc-ping",
					"GetBlob", "zero-copy-unary", "grpc-get-blob",
					"Watch", "streaming", "grpc-watch",
				} {
					if !strings.Contains(output, s) {
						t.Errorf("expected the dispatch table to contain '%s', but got '%s'", s, output)
					}
				}
			},
		},
		"describe prints JSON with --format json": {
			args: "describe --dir testdata/monitor --primary monitor.proto --format json",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				var v struct {
					Service  []string `json:"service"`
					Method   []string `json:"method"`
					Strategy []string `json:"strategy"`
					Channel  []string `json:"channel"`
				}
				if err := json.Unmarshal([]byte(output), &v); err != nil {
					t.Fatalf("expected valid JSON output, but got '%s': %s", output, err)
				}
				if len(v.Channel) != 3 {
					t.Errorf("expected 3 channels, but got %v", v.Channel)
				}
			},
		},
		"describe rejects an unknown --format": {
			args:         "describe --dir testdata/monitor --primary monitor.proto --format yaml",
			expectedCode: 1,
		},
		"describe derives channels from --tag": {
			args: "describe --dir testdata/monitor --primary monitor.proto --tag ipc",
			assertTest: func(t *testing.T, output, eout, outDir string) {
				if !strings.Contains(output, "ipc-ping") {
					t.Errorf("expected the channel prefix to follow --tag, but got '%s'", output)
				}
			},
		},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			outDir := t.TempDir()

			outBuf, eoutBuf := new(bytes.Buffer), new(bytes.Buffer)
			ui := cui.New(cui.Writer(outBuf), cui.ErrWriter(eoutBuf))

			args := strings.Split(strings.ReplaceAll(c.args, "{{outDir}}", outDir), " ")
			code := app.New(ui).Run(args)
			if code != c.expectedCode {
				t.Errorf("unexpected code returned: expected = %d, actual = %d (stderr: '%s')", c.expectedCode, code, eoutBuf.String())
			}

			if c.expectedCode == 0 && eoutBuf.String() != "" {
				t.Errorf("expected code is 0, but got an error message: '%s'", eoutBuf.String())
			}
			if c.assertTest != nil {
				c.assertTest(t, outBuf.String(), eoutBuf.String(), outDir)
			}
		})
	}
}
