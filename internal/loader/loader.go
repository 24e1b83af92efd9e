// Package loader decodes picture sources into pixels or paint trees.
//
// Raster formats (PNG, JPEG, GIF, WebP) decode to a premultiplied ARGB
// Raster. SVG decodes to a vector.Node tree and Lottie to a
// vector.Animation. The format is chosen from a mimetype, a file extension
// or the content itself.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gogpu/tvg/internal/loader/lottie"
	"github.com/gogpu/tvg/internal/loader/svg"
	"github.com/gogpu/tvg/internal/vector"
)

var (
	// ErrNotSupported is returned for formats without a decoder.
	ErrNotSupported = errors.New("loader: format not supported")
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("loader: file not found")
	// ErrCorrupt is returned when a decoder rejects the stream.
	ErrCorrupt = errors.New("loader: corrupt stream")
)

// Raster is a decoded bitmap of premultiplied ARGB words.
type Raster struct {
	Pix  []uint32
	W, H int
}

// Asset is a decoded picture source. Exactly one of Raster, Vector and
// Anim is set.
type Asset struct {
	Format Format
	W, H   float32
	Raster *Raster
	Vector *vector.Node
	Anim   vector.Animation
}

// Loader decodes picture sources.
type Loader struct {
	log *slog.Logger
}

// New returns a loader reporting fallbacks to log. A nil log discards them.
func New(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{log: log}
}

// Open reads and decodes the file at path. The extension selects the
// decoder; content sniffing is the fallback.
func (l *Loader) Open(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return l.decode(data, FormatFromPath(path), path)
}

// Decode decodes data. mime may be a mimetype, an extension or empty; when
// it names no known format the content is sniffed.
func (l *Loader) Decode(data []byte, mime string) (*Asset, error) {
	return l.decode(data, FormatFromMime(mime), mime)
}

func (l *Loader) decode(data []byte, f Format, hint string) (*Asset, error) {
	if f == Unknown || f == Raw {
		sniffed := Sniff(data)
		if sniffed == Unknown {
			return nil, fmt.Errorf("%w: %q", ErrNotSupported, hint)
		}
		if hint != "" {
			l.log.Warn("loader: format hint not recognized, sniffed content", "hint", hint, "format", sniffed)
		}
		f = sniffed
	}

	a, err := l.decodeAs(data, f)
	if err == nil {
		return a, nil
	}
	// A wrong hint is common ("json" for an SVG, ".png" on a JPEG); retry
	// with the sniffed format before giving up.
	if sniffed := Sniff(data); sniffed != Unknown && sniffed != f {
		l.log.Warn("loader: decode failed, retrying with sniffed format", "format", f, "sniffed", sniffed, "err", err)
		if b, err2 := l.decodeAs(data, sniffed); err2 == nil {
			return b, nil
		}
	}
	return nil, err
}

func (l *Loader) decodeAs(data []byte, f Format) (*Asset, error) {
	switch f {
	case PNG, JPEG, GIF, WebP:
		r, err := decodeRaster(data, f)
		if err != nil {
			return nil, err
		}
		return &Asset{Format: f, W: float32(r.W), H: float32(r.H), Raster: r}, nil
	case SVG:
		doc, err := svg.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return &Asset{Format: f, W: doc.W, H: doc.H, Vector: doc.Root}, nil
	case Lottie:
		anim, err := lottie.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		w, h := anim.Size()
		return &Asset{Format: f, W: w, H: h, Anim: anim}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNotSupported, f)
}
