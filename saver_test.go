package tvg

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func redSquare() *Shape {
	s := NewShape()
	s.AppendRect(10, 10, 20, 20, 0, 0, true)
	s.SetFillColor(255, 0, 0, 255)
	return s
}

func TestSaverRoundTrip(t *testing.T) {
	e := newEngine(t)
	sv := e.NewSaver()
	var out bytes.Buffer
	if err := sv.SaveTo(redSquare(), &out, 100); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if err := sv.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Fatalf("image size = %dx%d, want 30x30", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(15, 15).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 || a>>8 != 255 {
		t.Errorf("inside = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
	if _, _, _, a := img.At(5, 5).RGBA(); a != 0 {
		t.Errorf("outside alpha = %d, want 0", a>>8)
	}
}

func TestSaverBackground(t *testing.T) {
	e := newEngine(t)
	sv := e.NewSaver(WithBackground(0, 0, 255, 255), WithInterlace(true))
	var out bytes.Buffer
	sv.SaveTo(redSquare(), &out, 0)
	if err := sv.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if r, g, b, a := img.At(5, 5).RGBA(); r != 0 || g != 0 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("background = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
	if r, _, b, _ := img.At(20, 20).RGBA(); r>>8 != 255 || b != 0 {
		t.Errorf("square over background = r %d b %d", r>>8, b>>8)
	}
}

func TestSaverFile(t *testing.T) {
	e := newEngine(t)
	sv := e.NewSaver()
	path := filepath.Join(t.TempDir(), "out.png")

	s := redSquare()
	if err := sv.Save(s, path, 50); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// the paint stays with the caller
	if s.RefCount() != 0 {
		t.Errorf("saved paint RefCount = %d", s.RefCount())
	}
	if err := sv.Save(s, path, 50); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("second Save before Sync: %v", err)
	}
	if err := sv.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved file is not a png: %v", err)
	}
}

func TestSaverErrors(t *testing.T) {
	e := newEngine(t)
	sv := e.NewSaver()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"jpeg", sv.Save(redSquare(), "out.jpg", 100), ErrNotSupported},
		{"nil paint", sv.Save(nil, "out.png", 100), ErrInvalidArgument},
		{"empty paint", sv.Save(NewShape(), "out.png", 100), ErrInsufficientCondition},
		{"nil writer", sv.SaveTo(redSquare(), nil, 100), ErrInvalidArgument},
		{"sync without save", sv.Sync(), ErrInsufficientCondition},
		{"empty animation", sv.SaveAnimation(e.NewAnimation(), "out.png", 100), ErrInsufficientCondition},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestSaverAnimation(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)
	sv := e.NewSaver()
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := sv.SaveAnimation(a, path, 80); err != nil {
		t.Fatalf("SaveAnimation: %v", err)
	}
	if err := sv.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("frame size = %dx%d", b.Dx(), b.Dy())
	}
}
