package tvg

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/tvg/internal/cache"
	"github.com/gogpu/tvg/internal/font"
	"github.com/gogpu/tvg/internal/loader"
	"github.com/gogpu/tvg/internal/parallel"
)

// Engine owns the worker pool and the font and picture caches shared by
// the canvases, pictures and texts it creates.
//
// Engine is safe for concurrent use.
type Engine struct {
	opts engineOptions
	log  *slog.Logger
	pool *parallel.Pool

	loader *loader.Loader
	fonts  *cache.Cache[string, *font.Font]
	images *cache.Cache[string, *loader.Asset]

	mu     sync.Mutex
	refs   int
	shared bool
}

var shared struct {
	sync.Mutex
	e *Engine
}

// NewEngine creates a private engine holding one reference.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = Logger()
	}
	idle := 0
	if o.imageCache {
		idle = o.idleImages
	}
	e := &Engine{
		opts:   o,
		log:    log,
		pool:   parallel.New(o.threads, log),
		loader: loader.New(log),
		fonts:  cache.New[string, *font.Font](0),
		images: cache.New[string, *loader.Asset](idle),
		refs:   1,
	}
	log.Info("tvg: engine started", "threads", e.pool.Workers())
	return e
}

// Init returns the process-wide engine, creating it with opts on the first
// call. Later calls add a reference and ignore opts; the thread count is
// frozen for the engine's lifetime. Every Init must be paired with a Term.
func Init(opts ...EngineOption) *Engine {
	shared.Lock()
	defer shared.Unlock()
	if shared.e != nil {
		shared.e.mu.Lock()
		shared.e.refs++
		shared.e.mu.Unlock()
		return shared.e
	}
	e := NewEngine(opts...)
	e.shared = true
	shared.e = e
	return e
}

// Term drops a reference. The last one stops the workers and empties the
// caches. Terminating a stopped engine fails with InsufficientCondition.
func (e *Engine) Term() error {
	if e.shared {
		shared.Lock()
		defer shared.Unlock()
	}
	e.mu.Lock()
	if e.refs == 0 {
		e.mu.Unlock()
		return fmt.Errorf("tvg: engine already terminated: %w", ErrInsufficientCondition)
	}
	e.refs--
	last := e.refs == 0
	e.mu.Unlock()
	if !last {
		return nil
	}

	e.pool.Close()
	e.fonts.Clear()
	e.images.Clear()
	if e.shared && shared.e == e {
		shared.e = nil
	}
	e.log.Info("tvg: engine stopped")
	return nil
}

// Threads returns the number of worker threads.
func (e *Engine) Threads() int { return e.pool.Workers() }

func (e *Engine) alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refs > 0
}

func (e *Engine) check() error {
	if !e.alive() {
		return fmt.Errorf("tvg: engine terminated: %w", ErrInsufficientCondition)
	}
	return nil
}

// LoadFont loads a font file. The font is registered under the file name
// without its extension.
func (e *Engine) LoadFont(path string) error {
	if err := e.check(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tvg: load font %s: %w: %w", path, ErrInvalidArgument, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return e.LoadFontData(name, data, false)
}

// LoadFontData registers font data under name, replacing any font of that
// name. Without copy the font reads data in place and the caller must keep
// it unchanged while the font is loaded.
func (e *Engine) LoadFontData(name string, data []byte, copy bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if name == "" || len(data) == 0 {
		return fmt.Errorf("tvg: load font %q: %w", name, ErrInvalidArgument)
	}
	if copy {
		data = bytes.Clone(data)
	}
	f, err := font.Parse(data)
	if err != nil {
		return wrap("load font "+name, err)
	}
	e.fonts.Put(name, f)
	e.log.Debug("tvg: font loaded", "name", name, "family", f.Family())
	return nil
}

// UnloadFont removes a font. Texts using it render nothing until another
// font of that name is loaded.
func (e *Engine) UnloadFont(name string) error {
	if !e.fonts.Remove(name) {
		return fmt.Errorf("tvg: unload font %q: %w", name, ErrInsufficientCondition)
	}
	return nil
}

func (e *Engine) font(name string) (*font.Font, bool) {
	return e.fonts.Peek(name)
}

// asset decodes a picture source through the image cache. key is empty
// for sources that must not be shared.
func (e *Engine) asset(key string, load func() (*loader.Asset, error)) (*loader.Asset, error) {
	if key == "" || !e.opts.imageCache {
		return load()
	}
	return e.images.Acquire(key, load)
}

func (e *Engine) releaseAsset(key string) {
	if key != "" && e.opts.imageCache {
		e.images.Release(key)
	}
}
