package tvg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/png"
)

// Saver writes paints to PNG files. Save renders in the background;
// Sync waits for the result and writes it out.
type Saver struct {
	engine *Engine
	opts   saverOptions

	pending *saveJob
}

type saveJob struct {
	canvas  *SwCanvas
	buf     []uint32
	w, h    int
	quality uint32
	path    string
	out     io.Writer
}

// NewSaver returns a PNG saver.
func (e *Engine) NewSaver(opts ...SaverOption) *Saver {
	s := &Saver{engine: e}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Save renders a copy of p and writes it to path when Sync is called.
// The image covers the paint's transformed bounds from the origin. Only
// the .png extension is supported. quality in [0, 100] trades encoding
// time for size.
func (s *Saver) Save(p Paint, path string, quality uint32) error {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return fmt.Errorf("tvg: save %s: %w", path, ErrNotSupported)
	}
	return s.start(p, path, nil, quality)
}

// SaveTo is Save writing the PNG stream to w.
func (s *Saver) SaveTo(p Paint, w io.Writer, quality uint32) error {
	if w == nil {
		return fmt.Errorf("tvg: save to nil writer: %w", ErrInvalidArgument)
	}
	return s.start(p, "", w, quality)
}

// SaveAnimation saves the current frame of a.
func (s *Saver) SaveAnimation(a *Animation, path string, quality uint32) error {
	if a == nil || a.source() == nil {
		return fmt.Errorf("tvg: save animation: %w", ErrInsufficientCondition)
	}
	return s.Save(a.Picture(), path, quality)
}

func (s *Saver) start(p Paint, path string, out io.Writer, quality uint32) error {
	if err := s.engine.check(); err != nil {
		return err
	}
	if s.pending != nil {
		return fmt.Errorf("tvg: save while saving: %w", ErrInsufficientCondition)
	}
	if p == nil {
		return fmt.Errorf("tvg: save: %w", ErrInvalidArgument)
	}
	x, y, w, h, err := p.Bounds(true)
	if err != nil {
		return err
	}
	iw, ih := int(math32.Ceil(x+w)), int(math32.Ceil(y+h))
	if iw <= 0 || ih <= 0 {
		return fmt.Errorf("tvg: save of paint outside the image: %w", ErrInsufficientCondition)
	}

	job := &saveJob{buf: make([]uint32, iw*ih), w: iw, h: ih, quality: min(quality, 100), path: path, out: out}
	if s.opts.hasBackground {
		c := s.opts.background
		bg := uint32(c[3])<<24 | uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
		for i := range job.buf {
			job.buf[i] = bg
		}
	}
	job.canvas = s.engine.NewSwCanvas()
	if err := job.canvas.SetTarget(job.buf, iw, iw, ih, ARGB8888S); err != nil {
		return err
	}
	if err := job.canvas.Push(p.Duplicate()); err != nil {
		return err
	}
	if err := job.canvas.Draw(!s.opts.hasBackground); err != nil {
		return err
	}
	s.pending = job
	return nil
}

// Sync waits for the pending save and writes the file.
func (s *Saver) Sync() error {
	job := s.pending
	if job == nil {
		return fmt.Errorf("tvg: sync without save: %w", ErrInsufficientCondition)
	}
	s.pending = nil
	if err := job.canvas.Sync(); err != nil {
		return err
	}
	data, err := s.encode(job)
	if err != nil {
		return wrap("encode png", err)
	}
	if job.out != nil {
		_, err = io.Copy(job.out, bytes.NewReader(data))
	} else {
		err = os.WriteFile(job.path, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("tvg: write png: %w: %w", ErrUnknown, err)
	}
	s.engine.log.Debug("tvg: saved png", "path", job.path, "width", job.w, "height", job.h, "bytes", len(data))
	return nil
}

func (s *Saver) encode(job *saveJob) ([]byte, error) {
	raw := make([]byte, 0, len(job.buf)*4)
	for _, c := range job.buf {
		raw = append(raw, byte(c>>16), byte(c>>8), byte(c), byte(c>>24))
	}
	settings := png.DefaultEncoderSettings()
	settings.Interlace = s.opts.interlace
	if job.quality > 0 {
		// window grows from 512 bytes to 32768 at quality 100
		settings.Compress.WindowSize = 1 << (9 + job.quality*6/100)
		settings.Compress.NiceMatch = 16 + int(job.quality)*242/100
	}
	data, _, err := png.Encode(raw, job.w, job.h, png.RGBA8(), settings)
	return data, err
}
