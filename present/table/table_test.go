package table

import (
	"strings"
	"testing"
)

func TestPresenter_Format(t *testing.T) {
	type view struct {
		Service  []string `table:"service"`
		Method   []string `table:"method"`
		Strategy []string `table:"strategy"`
		Channel  []string `table:"channel"`
	}
	v := &view{
		Service:  []string{"GeospatialService", "GeospatialService"},
		Method:   []string{"HealthCheck", "GetColumnarData"},
		Strategy: []string{"simple", "zero-copy-unary"},
		Channel:  []string{"grpc-health-check", "grpc-get-columnar-data"},
	}

	out, err := NewPresenter().Format(v)
	if err != nil {
		t.Fatalf("Format must succeed, got error: %s", err)
	}
	for _, want := range []string{"SERVICE", "METHOD", "STRATEGY", "CHANNEL", "zero-copy-unary", "grpc-health-check"} {
		if !strings.Contains(out, want) {
			t.Errorf("output must contain %q:\n%s", want, out)
		}
	}
	lines := strings.Count(strings.TrimSpace(out), "\n") + 1
	if lines < 4 {
		t.Errorf("output must render one row per method, got %d lines:\n%s", lines, out)
	}
}

func TestPresenter_Format_nonStruct(t *testing.T) {
	if _, err := NewPresenter().Format("not a struct"); err == nil {
		t.Error("Format must reject non-struct values")
	}
}
