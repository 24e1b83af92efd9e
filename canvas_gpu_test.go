package tvg

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	device  gpucontext.Device
	queue   gpucontext.Queue
	adapter gpucontext.Adapter
	format  gputypes.TextureFormat
}

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

func newMockProvider() *mockProvider {
	return &mockProvider{
		device:  &mockDevice{},
		queue:   &mockQueue{},
		adapter: &mockAdapter{},
		format:  gputypes.TextureFormatBGRA8Unorm,
	}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return m.queue }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return m.adapter }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

// recordingSubmitter keeps the frames it receives.
type recordingSubmitter struct {
	frames []GPUFrame
	err    error
}

func (r *recordingSubmitter) Submit(f GPUFrame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		cs      Colorspace
		want    gputypes.TextureFormat
		wantErr bool
	}{
		{ABGR8888S, gputypes.TextureFormatRGBA8Unorm, false},
		{ARGB8888S, gputypes.TextureFormatBGRA8Unorm, false},
		{ARGB8888, gputypes.TextureFormatUndefined, true},
		{ABGR8888, gputypes.TextureFormatUndefined, true},
	}
	for _, tt := range tests {
		got, err := TextureFormat(tt.cs)
		if (err != nil) != tt.wantErr {
			t.Errorf("TextureFormat(%v) error = %v", tt.cs, err)
		}
		if got != tt.want {
			t.Errorf("TextureFormat(%v) = %v, want %v", tt.cs, got, tt.want)
		}
	}
}

func TestGPUCanvasSetTarget(t *testing.T) {
	e := newEngine(t)
	c := e.NewWgCanvas()
	if err := c.SetTarget(nil, 0, 10, 10, ARGB8888S); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil provider: %v", err)
	}
	if err := c.SetTarget(newMockProvider(), 0, 10, 10, ARGB8888); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("premultiplied colorspace: %v", err)
	}
	if err := c.Draw(false); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Draw without target: %v", err)
	}
	if err := c.SetTarget(newMockProvider(), 3, 10, 10, ARGB8888S); err != nil {
		t.Errorf("SetTarget: %v", err)
	}
}

func TestGPUCanvasMeshes(t *testing.T) {
	e := newEngine(t)
	c := e.NewGlCanvas()
	sub := &recordingSubmitter{}
	c.SetSubmitter(sub)
	if err := c.SetTarget(newMockProvider(), 7, 64, 32, ARGB8888S); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}

	s := NewShape()
	s.AppendRect(4, 4, 20, 10, 0, 0, true)
	s.SetFillColor(10, 20, 30, 255)
	s.SetStrokeColor(1, 1, 1, 255)
	s.SetStrokeWidth(2)
	s.SetPaintOrder(true)
	sc := NewScene()
	sc.SetOpacity(128)
	sc.Push(s)
	c.Push(sc)

	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if len(sub.frames) != 1 {
		t.Fatalf("submitted %d frames, want 1", len(sub.frames))
	}
	f := c.Frame()
	if f.FBO != 7 || f.Format != gputypes.TextureFormatBGRA8Unorm || !f.Clear {
		t.Errorf("frame header = fbo %d format %v clear %v", f.FBO, f.Format, f.Clear)
	}
	if f.Viewport != [4]int{0, 0, 64, 32} {
		t.Errorf("viewport = %v", f.Viewport)
	}
	if len(f.Meshes) != 2 {
		t.Fatalf("meshes = %d, want stroke and fill", len(f.Meshes))
	}
	stroke, fill := f.Meshes[0], f.Meshes[1]
	if stroke.Color != [4]uint8{1, 1, 1, 255} || fill.Color != [4]uint8{10, 20, 30, 255} {
		t.Errorf("paint order wrong: %v then %v", stroke.Color, fill.Color)
	}
	for _, m := range f.Meshes {
		if m.Opacity != 128 {
			t.Errorf("opacity = %d, want 128", m.Opacity)
		}
		if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
			t.Errorf("indices = %d, want whole triangles", len(m.Indices))
		}
		for _, i := range m.Indices {
			if int(i) >= len(m.Points) {
				t.Fatalf("index %d out of %d points", i, len(m.Points))
			}
		}
	}
}

func TestGPUCanvasSubmitError(t *testing.T) {
	e := newEngine(t)
	c := e.NewGlCanvas()
	c.SetSubmitter(&recordingSubmitter{err: errors.New("device lost")})
	c.SetTarget(newMockProvider(), 0, 8, 8, ABGR8888S)
	s := NewShape()
	s.AppendRect(0, 0, 4, 4, 0, 0, true)
	s.SetFillColor(255, 255, 255, 255)
	c.Push(s)
	c.Draw(false)
	if err := c.Sync(); ResultOf(err) != Unknown {
		t.Errorf("Sync = %v, want Unknown", err)
	}
}
