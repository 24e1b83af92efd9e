package tvg

import (
	"errors"
	"slices"
	"testing"
)

// =============================================================================
// Helpers
// =============================================================================

// render draws paints on a fresh w×h ARGB8888 canvas and returns the pixels.
func render(t *testing.T, e *Engine, w, h int, paints ...Paint) []uint32 {
	t.Helper()
	buf := make([]uint32, w*h)
	c := e.NewSwCanvas()
	if err := c.SetTarget(buf, w, w, h, ARGB8888); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	for _, p := range paints {
		if err := c.Push(p); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return buf
}

func newEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e := NewEngine(opts...)
	t.Cleanup(func() { e.Term() })
	return e
}

func star() *Shape {
	s := NewShape()
	s.MoveTo(199, 34)
	for _, p := range [][2]float32{
		{253, 143}, {374, 160}, {287, 244}, {307, 365},
		{199, 309}, {97, 365}, {112, 245}, {26, 161}, {146, 143},
	} {
		s.LineTo(p[0], p[1])
	}
	s.Close()
	return s
}

func near(a, b uint32, tol int) bool {
	for shift := 0; shift < 32; shift += 8 {
		d := int(a>>shift&0xff) - int(b>>shift&0xff)
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

// =============================================================================
// Scenarios
// =============================================================================

func TestSolidRectangle(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendRect(10, 10, 80, 80, 0, 0, true)
	s.SetFillColor(255, 0, 0, 255)

	buf := render(t, e, 100, 100, s)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			want := uint32(0)
			if x >= 10 && x < 90 && y >= 10 && y < 90 {
				want = 0xFFFF0000
			}
			if got := buf[y*100+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %#08x, want %#08x", x, y, got, want)
			}
		}
	}
}

func TestDashedStarStroke(t *testing.T) {
	e := newEngine(t)
	s := star()
	s.SetStrokeWidth(4)
	s.SetStrokeColor(0, 255, 0, 255)
	if err := s.SetStrokeDash([]float32{20, 10}, 0); err != nil {
		t.Fatalf("SetStrokeDash: %v", err)
	}

	buf := render(t, e, 400, 400, s)
	at := func(x, y int) uint32 { return buf[y*400+x] }

	if got := at(199, 34); got != 0xFF00FF00 {
		t.Errorf("pixel at move-to = %#08x, want 0xff00ff00", got)
	}
	// 5 units along the first edge, inside the first dash
	if got := at(201, 38); got != 0xFF00FF00 {
		t.Errorf("pixel inside first dash = %#08x, want 0xff00ff00", got)
	}
	// 25 units along, inside the first gap
	if got := at(210, 56); got != 0 {
		t.Errorf("pixel inside first gap = %#08x, want 0", got)
	}
}

func TestRadialGradientReflect(t *testing.T) {
	e := newEngine(t)
	g := NewRadialGradient()
	if err := g.SetRadial(400, 200, 40, 400, 200, 0); err != nil {
		t.Fatalf("SetRadial: %v", err)
	}
	g.SetColorStops([]ColorStop{
		{0, 0x7F, 0x27, 0xFF, 255},
		{0.33, 0x9F, 0x70, 0xFD, 255},
		{0.66, 0xFD, 0xBF, 0x60, 255},
		{1, 0xFF, 0x89, 0x11, 255},
	})
	g.SetSpread(SpreadReflect)

	s := NewShape()
	s.AppendRect(280, 80, 240, 240, 0, 0, true)
	s.SetFillGradient(g)

	buf := render(t, e, 800, 800, s)
	tests := []struct {
		radius int
		want   uint32
	}{
		{40, 0xFFFF8911},
		{80, 0xFF7F27FF},
		{120, 0xFFFF8911},
	}
	for _, tt := range tests {
		// last pixel whose center lies inside the radius
		x := 400 + tt.radius - 1
		got := buf[200*800+x]
		if !near(got, tt.want, 10) {
			t.Errorf("radius %d: pixel = %#08x, want ~%#08x", tt.radius, got, tt.want)
		}
	}
}

func TestAnimationFramesDiffer(t *testing.T) {
	e := newEngine(t)
	a := e.NewAnimation()
	if err := a.Picture().Load("testdata/test.json"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	buf := make([]uint32, 100*100)
	c := e.NewSwCanvas()
	c.SetTarget(buf, 100, 100, 100, ARGB8888)
	if err := c.Push(a.Picture()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	frame := func() []uint32 {
		if err := c.Draw(true); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		if err := c.Sync(); err != nil {
			t.Fatalf("Sync: %v", err)
		}
		return slices.Clone(buf)
	}

	first := frame()
	if err := a.SetFrame(a.TotalFrame() / 2); err != nil {
		t.Fatalf("SetFrame: %v", err)
	}
	second := frame()
	if slices.Equal(first, second) {
		t.Error("frames 0 and total/2 rendered identical pixels")
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestStrokeWidthZeroRemovesStroke(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendCircle(50, 50, 30, 30, true)
	s.SetFillColor(0, 0, 255, 255)
	s.SetStrokeColor(255, 255, 0, 255)
	s.SetStrokeWidth(6)

	buf := make([]uint32, 100*100)
	c := e.NewSwCanvas()
	c.SetTarget(buf, 100, 100, 100, ARGB8888)
	c.Push(s)
	draw := func() []uint32 {
		t.Helper()
		if err := c.Draw(true); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		c.Sync()
		return slices.Clone(buf)
	}

	stroked := draw()
	s.SetStrokeWidth(0)
	bare := draw()
	s.SetStrokeWidth(6)
	again := draw()

	plain := NewShape()
	plain.AppendCircle(50, 50, 30, 30, true)
	plain.SetFillColor(0, 0, 255, 255)
	want := render(t, e, 100, 100, plain)

	if !slices.Equal(bare, want) {
		t.Error("width 0 still draws a stroke")
	}
	if !slices.Equal(stroked, again) {
		t.Error("restoring the width changed the stroke")
	}
	if slices.Equal(stroked, bare) {
		t.Error("stroke had no effect")
	}
}

func TestFillRuleDuality(t *testing.T) {
	e := newEngine(t)
	for _, name := range []string{"star", "circle"} {
		mk := func(rule FillRule) *Shape {
			var s *Shape
			if name == "star" {
				s = star()
			} else {
				s = NewShape()
				s.AppendCircle(200, 200, 120, 80, false)
			}
			s.SetFillColor(10, 200, 30, 200)
			s.SetFillRule(rule)
			return s
		}
		nz := render(t, e, 400, 400, mk(NonZero))
		eo := render(t, e, 400, 400, mk(EvenOdd))
		if !slices.Equal(nz, eo) {
			t.Errorf("%s: NonZero and EvenOdd rasters differ", name)
		}
	}
}

func TestLinearGradientSpread(t *testing.T) {
	e := newEngine(t)
	draw := func(spread Spread) []uint32 {
		g := NewLinearGradient()
		g.SetLinear(0, 0, 10, 0)
		g.SetColorStops([]ColorStop{{0, 255, 0, 0, 255}, {1, 0, 0, 255, 255}})
		g.SetSpread(spread)
		s := NewShape()
		s.AppendRect(0, 0, 40, 1, 0, 0, true)
		s.SetFillGradient(g)
		return render(t, e, 40, 1, s)
	}

	// pixel x samples t = (x+0.5)/10
	pad := draw(SpreadPad)
	if pad[20] != 0xFF0000FF {
		t.Errorf("pad at t=2.05 = %#08x, want blue", pad[20])
	}
	reflect := draw(SpreadReflect)
	if reflect[12] != reflect[7] {
		t.Errorf("reflect t=1.25 %#08x != t=0.75 %#08x", reflect[12], reflect[7])
	}
	repeat := draw(SpreadRepeat)
	if repeat[12] != repeat[2] {
		t.Errorf("repeat t=1.25 %#08x != t=0.25 %#08x", repeat[12], repeat[2])
	}
}

// complexScene exercises gradients, strokes, masks, clips and layers.
func complexScene() []Paint {
	bg := NewShape()
	bg.AppendRect(0, 0, 200, 200, 0, 0, true)
	g := NewLinearGradient()
	g.SetLinear(0, 0, 200, 200)
	g.SetColorStops([]ColorStop{{0, 255, 255, 255, 255}, {1, 20, 40, 90, 255}})
	bg.SetFillGradient(g)

	sc := NewScene()
	s := star()
	s.Scale(0.5)
	s.SetFillColor(200, 30, 30, 255)
	s.SetStrokeColor(0, 0, 0, 255)
	s.SetStrokeWidth(3)
	s.SetStrokeJoin(JoinRound)
	sc.Push(s)
	c := NewShape()
	c.AppendCircle(120, 120, 50, 50, true)
	c.SetFillColor(30, 200, 60, 160)
	c.SetBlend(BlendMultiply)
	sc.Push(c)
	sc.SetOpacity(200)

	mask := NewShape()
	mask.AppendCircle(100, 100, 70, 70, true)
	mask.SetFillColor(0, 0, 0, 255)
	sc.SetMask(mask, MaskAlpha)

	clipped := NewShape()
	clipped.AppendRect(0, 150, 200, 50, 0, 0, true)
	clipped.SetFillColor(250, 200, 0, 255)
	clipper := NewShape()
	clipper.AppendCircle(100, 200, 40, 40, true)
	clipped.SetClip(clipper)

	return []Paint{bg, sc, clipped}
}

func TestRenderDeterministicAcrossThreads(t *testing.T) {
	var want []uint32
	for _, threads := range []int{0, 1, 3, 8} {
		e := newEngine(t, WithThreads(threads))
		got := render(t, e, 200, 200, complexScene()...)
		if want == nil {
			want = got
			continue
		}
		if !slices.Equal(got, want) {
			t.Errorf("threads=%d: pixels differ from the inline render", threads)
		}
	}
}

// =============================================================================
// Masks, clips and layers
// =============================================================================

func TestAlphaMask(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendRect(0, 0, 100, 100, 0, 0, true)
	s.SetFillColor(255, 0, 0, 255)
	m := NewShape()
	m.AppendRect(0, 0, 50, 100, 0, 0, true)
	m.SetFillColor(255, 255, 255, 255)
	if err := s.SetMask(m, MaskAlpha); err != nil {
		t.Fatalf("SetMask: %v", err)
	}

	buf := render(t, e, 100, 100, s)
	if buf[50*100+25] != 0xFFFF0000 {
		t.Errorf("inside mask = %#08x, want red", buf[50*100+25])
	}
	if buf[50*100+75] != 0 {
		t.Errorf("outside mask = %#08x, want 0", buf[50*100+75])
	}
}

func TestInverseAlphaMask(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendRect(0, 0, 100, 100, 0, 0, true)
	s.SetFillColor(0, 0, 255, 255)
	m := NewShape()
	m.AppendRect(0, 0, 50, 100, 0, 0, true)
	m.SetFillColor(255, 255, 255, 255)
	s.SetMask(m, MaskInverseAlpha)

	buf := render(t, e, 100, 100, s)
	if buf[50*100+25] != 0 {
		t.Errorf("inside mask = %#08x, want 0", buf[50*100+25])
	}
	if buf[50*100+75] != 0xFF0000FF {
		t.Errorf("outside mask = %#08x, want blue", buf[50*100+75])
	}
}

func TestClipper(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendRect(0, 0, 100, 100, 0, 0, true)
	s.SetFillColor(0, 255, 0, 255)
	clip := NewShape()
	clip.AppendRect(20, 20, 30, 30, 0, 0, true)
	if err := s.SetClip(clip); err != nil {
		t.Fatalf("SetClip: %v", err)
	}

	buf := render(t, e, 100, 100, s)
	if buf[30*100+30] != 0xFF00FF00 {
		t.Errorf("inside clip = %#08x, want green", buf[30*100+30])
	}
	if buf[10*100+10] != 0 || buf[60*100+60] != 0 {
		t.Error("pixels outside the clipper were drawn")
	}
}

func TestSceneOpacityUsesLayer(t *testing.T) {
	e := newEngine(t)
	sc := NewScene()
	for range 2 {
		r := NewShape()
		r.AppendRect(0, 0, 10, 10, 0, 0, true)
		r.SetFillColor(255, 0, 0, 255)
		sc.Push(r)
	}
	sc.SetOpacity(128)

	buf := render(t, e, 10, 10, sc)
	// overlapping children composite once at the scene opacity
	if got := buf[55] >> 24; got != 128 {
		t.Errorf("alpha = %d, want 128", got)
	}
}

func TestStraightColorspace(t *testing.T) {
	e := newEngine(t)
	s := NewShape()
	s.AppendRect(0, 0, 4, 4, 0, 0, true)
	s.SetFillColor(255, 0, 0, 128)

	for _, tt := range []struct {
		cs   Colorspace
		want uint32
	}{
		{ARGB8888, 0x80800000},
		{ARGB8888S, 0x80FF0000},
		{ABGR8888, 0x80000080},
		{ABGR8888S, 0x800000FF},
	} {
		buf := make([]uint32, 16)
		c := e.NewSwCanvas()
		c.SetTarget(buf, 4, 4, 4, tt.cs)
		dup := s.Duplicate()
		c.Push(dup)
		c.Draw(true)
		c.Sync()
		if buf[5] != tt.want {
			t.Errorf("%v: pixel = %#08x, want %#08x", tt.cs, buf[5], tt.want)
		}
	}
}

// =============================================================================
// Canvas state machine
// =============================================================================

func TestCanvasStateMachine(t *testing.T) {
	e := newEngine(t)
	c := e.NewSwCanvas()
	s := NewShape()
	s.AppendRect(0, 0, 5, 5, 0, 0, true)
	s.SetFillColor(1, 2, 3, 255)

	if err := c.Draw(false); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Draw without target: %v", err)
	}
	if err := c.Sync(); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Sync without Draw: %v", err)
	}

	buf := make([]uint32, 100)
	if err := c.SetTarget(buf, 10, 10, 10, ARGB8888); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	c.Push(s)
	if err := c.Draw(false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Draw(false); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("second Draw: %v", err)
	}
	if err := c.SetTarget(buf, 10, 10, 10, ARGB8888); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetTarget while drawing: %v", err)
	}
	if err := c.SetViewport(0, 0, 5, 5); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetViewport while drawing: %v", err)
	}
	if err := c.Push(NewShape()); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Push while drawing: %v", err)
	}
	if err := c.Update(); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Update while drawing: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := c.Sync(); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("second Sync: %v", err)
	}
	if buf[0] != 0xFF010203 {
		t.Errorf("pixel = %#08x", buf[0])
	}
}

func TestCanvasPushRemove(t *testing.T) {
	e := newEngine(t)
	c := e.NewSwCanvas()
	a, b, d := NewShape(), NewShape(), NewShape()

	if err := c.Push(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Push(nil): %v", err)
	}
	c.Push(a)
	c.Push(b)
	if err := c.PushAt(d, b); err != nil {
		t.Fatalf("PushAt: %v", err)
	}
	if got := c.Paints(); !slices.Equal(got, []Paint{a, d, b}) {
		t.Errorf("order = %v", got)
	}
	if err := c.Push(a); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("double Push: %v", err)
	}
	if a.RefCount() != 1 {
		t.Errorf("RefCount = %d, want 1", a.RefCount())
	}
	if err := c.Remove(NewShape()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Remove of stranger: %v", err)
	}
	if err := c.Remove(d); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if d.RefCount() != 0 {
		t.Errorf("removed RefCount = %d", d.RefCount())
	}
	c.Remove(nil)
	if len(c.Paints()) != 0 {
		t.Error("Remove(nil) left paints")
	}
	// a removed paint can move elsewhere
	if err := NewScene().Push(a); err != nil {
		t.Errorf("Push after Remove: %v", err)
	}
}

func TestViewport(t *testing.T) {
	e := newEngine(t)
	buf := make([]uint32, 100)
	c := e.NewSwCanvas()
	c.SetTarget(buf, 10, 10, 10, ARGB8888)
	s := NewShape()
	s.AppendRect(0, 0, 10, 10, 0, 0, true)
	s.SetFillColor(255, 255, 255, 255)
	c.Push(s)
	if err := c.SetViewport(2, 2, 3, 3); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	c.Draw(true)
	c.Sync()

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			inside := x >= 2 && x < 5 && y >= 2 && y < 5
			if lit := buf[y*10+x] != 0; lit != inside {
				t.Fatalf("pixel (%d,%d) lit=%v", x, y, lit)
			}
		}
	}

	c.SetTarget(buf, 10, 10, 10, ARGB8888)
	if x, y, w, h := c.Viewport(); x != 0 || y != 0 || w != 10 || h != 10 {
		t.Errorf("viewport after SetTarget = %d,%d %dx%d", x, y, w, h)
	}
}

func TestUpdatePaint(t *testing.T) {
	e := newEngine(t)
	c := e.NewSwCanvas()
	c.SetTarget(make([]uint32, 16), 4, 4, 4, ARGB8888)
	sc := NewScene()
	s := NewShape()
	sc.Push(s)
	c.Push(sc)

	if err := c.UpdatePaint(s); err != nil {
		t.Errorf("UpdatePaint of nested paint: %v", err)
	}
	if err := c.UpdatePaint(NewShape()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("UpdatePaint of stranger: %v", err)
	}
}

func TestTerminatedEngine(t *testing.T) {
	e := NewEngine()
	c := e.NewSwCanvas()
	c.SetTarget(make([]uint32, 4), 2, 2, 2, ARGB8888)
	if err := e.Term(); err != nil {
		t.Fatalf("Term: %v", err)
	}
	if err := c.Push(NewShape()); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Push after Term: %v", err)
	}
	if err := c.Draw(false); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Draw after Term: %v", err)
	}
	if err := e.Term(); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("second Term: %v", err)
	}
}
