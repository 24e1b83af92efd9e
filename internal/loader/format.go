package loader

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Format identifies a picture source format.
type Format uint8

const (
	Unknown Format = iota
	PNG
	JPEG
	WebP
	GIF
	SVG
	Lottie
	TVG
	Raw
)

var formatNames = [...]string{"unknown", "png", "jpg", "webp", "gif", "svg", "lottie", "tvg", "raw"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// Vector reports whether f decodes to a paint tree rather than pixels.
func (f Format) Vector() bool {
	return f == SVG || f == Lottie || f == TVG
}

// FormatFromMime maps a mimetype or bare extension to a format. The match
// is case insensitive and ignores parameters after ';'.
func FormatFromMime(mime string) Format {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "png", "image/png":
		return PNG
	case "jpg", "jpeg", "image/jpeg", "image/jpg":
		return JPEG
	case "webp", "image/webp":
		return WebP
	case "gif", "image/gif":
		return GIF
	case "svg", "svg+xml", "image/svg+xml", "image/svg":
		return SVG
	case "lot", "lottie", "json", "lottie+json", "application/json", "application/lottie+json", "video/lottie+json":
		return Lottie
	case "tvg", "application/tvg":
		return TVG
	case "raw":
		return Raw
	}
	return Unknown
}

// FormatFromPath maps a file name to a format by its extension.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return Unknown
	}
	return FormatFromMime(ext)
}

var tvgMagic = []byte("ThorVG")

// Sniff guesses the format of data from its leading bytes.
func Sniff(data []byte) Format {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		if f := FormatFromMime(kind.MIME.Value); f != Unknown {
			return f
		}
		if f := FormatFromMime(kind.Extension); f != Unknown {
			return f
		}
	}
	if bytes.HasPrefix(data, tvgMagic) {
		return TVG
	}
	head := bytes.TrimLeft(data[:min(len(data), 512)], " \t\r\n\ufeff")
	switch {
	case len(head) == 0:
		return Unknown
	case head[0] == '{':
		return Lottie
	case bytes.Contains(head, []byte("<svg")):
		return SVG
	}
	return Unknown
}
