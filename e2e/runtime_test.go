package e2e

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/yonagi/bridgen/bytealign"
	"github.com/yonagi/bridgen/e2e/geo"
	"github.com/yonagi/bridgen/ipc"
	"github.com/yonagi/bridgen/restricted"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// geoServer is the privileged-side implementation the tests run against.
// The stream hook lets a test take over the streamed method.
type geoServer struct {
	stream func(ctx context.Context, req *geo.GetColumnarDataRequest, send func(*geo.ColumnarChunk) error) error
}

func (s *geoServer) HealthCheck(ctx context.Context, req *geo.HealthCheckRequest) (*geo.HealthCheckResponse, error) {
	return &geo.HealthCheckResponse{Status: "SERVING"}, nil
}

func (s *geoServer) HelloWorld(ctx context.Context, req *geo.HelloWorldRequest) (*geo.HelloWorldResponse, error) {
	return &geo.HelloWorldResponse{Message: "Hello, " + req.Name}, nil
}

func (s *geoServer) GetColumnarData(ctx context.Context, req *geo.GetColumnarDataRequest) (*geo.ColumnarBatch, error) {
	return &geo.ColumnarBatch{
		Points:           misalignedFloats(1, 2, 3),
		PointCount:       3,
		GenerationMethod: "simplex",
	}, nil
}

func (s *geoServer) GetColumnarDataStreamed(ctx context.Context, req *geo.GetColumnarDataRequest, send func(*geo.ColumnarChunk) error) error {
	if s.stream != nil {
		return s.stream(ctx, req, send)
	}
	for i := uint32(1); i <= 3; i++ {
		chunk := &geo.ColumnarChunk{
			Points:     misalignedFloats(float32(i)),
			PointCount: 1,
			Sequence:   i,
			Last:       i == 3,
		}
		if err := send(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *geoServer) CreateProject(ctx context.Context, req *geo.CreateProjectRequest) (*geo.Project, error) {
	return &geo.Project{Id: "p-1", Name: req.Name, Description: req.Description}, nil
}

func (s *geoServer) GetProjects(ctx context.Context, req *geo.GetProjectsRequest) (*geo.ProjectList, error) {
	return &geo.ProjectList{Projects: []*geo.Project{{Id: "p-1", Name: "alpha"}}}, nil
}

// misalignedFloats encodes the values little-endian into a buffer that is
// deliberately offset from 4-byte alignment.
func misalignedFloats(values ...float32) []byte {
	arena := make([]byte, 4*len(values)+8)
	start := 0
	for bytealign.Aligned(arena[start:]) {
		start++
	}
	b := arena[start : start+4*len(values)]
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func newBridge(t *testing.T, h geo.GeospatialServiceHandler) (client *geo.GeospatialServiceClient, host, ui *ipc.Endpoint) {
	t.Helper()
	host, ui = ipc.Pair()
	unregister := geo.RegisterGeospatialServiceHost(host, h)
	t.Cleanup(func() {
		unregister()
		if err := host.Close(); err != nil {
			t.Errorf("close must not fail: %s", err)
		}
	})
	return geo.NewGeospatialServiceClient(ui), host, ui
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestBridge_unary(t *testing.T) {
	client, _, _ := newBridge(t, &geoServer{})
	ctx := testContext(t)

	health, err := client.HealthCheck(ctx, &geo.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck must succeed, got error: %s", err)
	}
	if health.Status != "SERVING" {
		t.Errorf("status = %q, want %q", health.Status, "SERVING")
	}

	hello, err := client.HelloWorld(ctx, &geo.HelloWorldRequest{Name: "columnar"})
	if err != nil {
		t.Fatalf("HelloWorld must succeed, got error: %s", err)
	}
	if hello.Message != "Hello, columnar" {
		t.Errorf("message = %q, want %q", hello.Message, "Hello, columnar")
	}
}

func TestBridge_zeroCopy(t *testing.T) {
	client, host, _ := newBridge(t, &geoServer{})
	ctx := testContext(t)

	batch, err := client.GetColumnarData(ctx, &geo.GetColumnarDataRequest{ProjectId: "p-1", MaxPoints: 3})
	if err != nil {
		t.Fatalf("GetColumnarData must succeed, got error: %s", err)
	}

	if !bytealign.Aligned(batch.Points) {
		t.Error("received buffer must be aligned")
	}
	if got := len(batch.Float32); got != 3 {
		t.Fatalf("view length = %d, want 3", got)
	}
	if batch.Float32[0] != 1 || batch.Float32[2] != 3 {
		t.Errorf("view = %v, want [1 2 3]", batch.Float32)
	}

	// The view and the buffer share storage: a write through the view
	// must be visible in the raw bytes.
	batch.Float32[1] = 42
	raw := math.Float32frombits(binary.LittleEndian.Uint32(batch.Points[4:]))
	if raw != 42 {
		t.Errorf("buffer did not observe the view write, got %v", raw)
	}

	if got := host.Stats().BuffersTransferred; got != 1 {
		t.Errorf("BuffersTransferred = %d, want 1", got)
	}
}

func TestBridge_streaming(t *testing.T) {
	client, _, _ := newBridge(t, &geoServer{})
	ctx := testContext(t)

	stream, err := client.GetColumnarDataStreamed(ctx, &geo.GetColumnarDataRequest{ProjectId: "p-1"})
	if err != nil {
		t.Fatalf("GetColumnarDataStreamed must succeed, got error: %s", err)
	}

	for i := uint32(1); i <= 3; i++ {
		chunk, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv %d must succeed, got error: %s", i, err)
		}
		if chunk.Sequence != i {
			t.Errorf("sequence = %d, want %d", chunk.Sequence, i)
		}
		if !bytealign.Aligned(chunk.Points) {
			t.Errorf("chunk %d buffer must be aligned", i)
		}
		if chunk.Last != (i == 3) {
			t.Errorf("chunk %d last = %t", i, chunk.Last)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := stream.Recv(); err != io.EOF {
			t.Fatalf("Recv after the end must return io.EOF, got %v", err)
		}
	}
}

func TestBridge_streamCancel(t *testing.T) {
	entered := make(chan struct{})
	hostDone := make(chan struct{})
	server := &geoServer{
		stream: func(ctx context.Context, req *geo.GetColumnarDataRequest, send func(*geo.ColumnarChunk) error) error {
			defer close(hostDone)
			if err := send(&geo.ColumnarChunk{Sequence: 1, PointCount: 0}); err != nil {
				return err
			}
			close(entered)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	client, _, _ := newBridge(t, server)
	ctx := testContext(t)

	stream, err := client.GetColumnarDataStreamed(ctx, &geo.GetColumnarDataRequest{})
	if err != nil {
		t.Fatalf("GetColumnarDataStreamed must succeed, got error: %s", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("first Recv must succeed, got error: %s", err)
	}
	<-entered

	if err := stream.Close(); err != nil {
		t.Fatalf("Close must succeed, got error: %s", err)
	}
	select {
	case <-hostDone:
	case <-time.After(5 * time.Second):
		t.Fatal("the host handler must observe the cancellation")
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv after Close must return io.EOF, got %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("second Close must be a no-op, got error: %s", err)
	}
}

func TestBridge_restrictedSurface(t *testing.T) {
	_, _, ui := newBridge(t, &geoServer{})

	reg := restricted.NewRegistry()
	if err := geo.Expose(reg, ui); err != nil {
		t.Fatalf("Expose must succeed, got error: %s", err)
	}

	v, ok := reg.Lookup(geo.GeospatialServiceKey)
	if !ok {
		t.Fatalf("key %q must be exposed", geo.GeospatialServiceKey)
	}
	surface, ok := v.(geo.GeospatialServiceSurface)
	if !ok {
		t.Fatalf("exposed value has type %T, want the service surface", v)
	}

	resp, err := surface.HealthCheck(testContext(t), &geo.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck through the surface must succeed, got error: %s", err)
	}
	if resp.Status != "SERVING" {
		t.Errorf("status = %q, want %q", resp.Status, "SERVING")
	}

	if err := geo.Expose(reg, ui); err == nil {
		t.Error("exposing the same key twice must fail")
	}
}
