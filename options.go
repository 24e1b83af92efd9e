package tvg

import "log/slog"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	eng := tvg.NewEngine(tvg.WithThreads(4), tvg.WithLogger(slog.Default()))
type EngineOption func(*engineOptions)

type engineOptions struct {
	threads    int
	log        *slog.Logger
	imageCache bool
	idleImages int
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		imageCache: true,
		idleImages: 16,
	}
}

// WithThreads sets the number of worker threads. 0 runs all work on the
// calling goroutine and a negative count uses GOMAXPROCS.
func WithThreads(n int) EngineOption {
	return func(o *engineOptions) {
		o.threads = n
	}
}

// WithLogger sets the engine's logger. Without it the engine uses the
// package logger current at creation time.
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.log = l
	}
}

// WithImageCache enables or disables sharing of decoded pictures between
// Picture instances loading the same source. Enabled by default.
func WithImageCache(enabled bool) EngineOption {
	return func(o *engineOptions) {
		o.imageCache = enabled
	}
}

// SaverOption configures a Saver.
type SaverOption func(*saverOptions)

type saverOptions struct {
	background    [4]uint8
	hasBackground bool
	interlace     bool
}

// WithBackground fills the saved image with a straight-alpha color before
// the paint is drawn.
func WithBackground(r, g, b, a uint8) SaverOption {
	return func(o *saverOptions) {
		o.background = [4]uint8{r, g, b, a}
		o.hasBackground = true
	}
}

// WithInterlace writes Adam7 interlaced PNG files.
func WithInterlace(enabled bool) SaverOption {
	return func(o *saverOptions) {
		o.interlace = enabled
	}
}
