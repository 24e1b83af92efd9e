package loader

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/png"
)

func decodeRaster(data []byte, f Format) (*Raster, error) {
	if f == PNG {
		return decodePNG(data)
	}

	var (
		img image.Image
		err error
	)
	r := bytes.NewReader(data)
	switch f {
	case JPEG:
		img, err = jpeg.Decode(r)
	case GIF:
		img, err = gif.Decode(r) // first frame
	case WebP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %v", ErrNotSupported, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrCorrupt, f, err)
	}
	return fromImage(img), nil
}

// decodePNG goes through the engine's own codec so that the decoder
// settings and error categories match the saver.
func decodePNG(data []byte) (*Raster, error) {
	pix, info, err := png.Decode(data, png.DecoderSettings{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return FromRGBA(pix, info.Width, info.Height, info.Width*4), nil
}

// fromImage converts any decoded image to premultiplied ARGB words.
func fromImage(img image.Image) *Raster {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}
	r := &Raster{Pix: make([]uint32, b.Dx()*b.Dy()), W: b.Dx(), H: b.Dy()}
	// image.RGBA is already premultiplied.
	for y := range r.H {
		row := rgba.Pix[y*rgba.Stride:]
		dst := r.Pix[y*r.W : (y+1)*r.W]
		for x := range dst {
			p := row[4*x : 4*x+4 : 4*x+4]
			dst[x] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return r
}

// FromRGBA converts straight-alpha RGBA bytes to premultiplied ARGB words.
func FromRGBA(pix []byte, w, h, stride int) *Raster {
	r := &Raster{Pix: make([]uint32, w*h), W: w, H: h}
	for y := range h {
		row := pix[y*stride:]
		dst := r.Pix[y*w : (y+1)*w]
		for x := range dst {
			p := row[4*x : 4*x+4 : 4*x+4]
			dst[x] = blend.Premultiply(uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]))
		}
	}
	return r
}

