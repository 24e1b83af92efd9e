// Package tvg is a 2D vector graphics engine.
//
// # Overview
//
// Applications build a tree of paints (shapes, scenes, pictures and text),
// push it onto a canvas and render it either into a caller supplied
// []uint32 pixel buffer or into triangle meshes for a GPU target.
//
//	eng, _ := tvg.Init(tvg.WithThreads(4))
//	defer eng.Term()
//
//	buf := make([]uint32, 800*600)
//	c := eng.NewSwCanvas()
//	_ = c.SetTarget(buf, 800, 800, 600, tvg.ARGB8888)
//
//	s := tvg.NewShape()
//	s.AppendRect(10, 10, 200, 100, 8, 8, true)
//	s.SetFillColor(255, 0, 0, 255)
//	_ = c.Push(s)
//
//	_ = c.Draw(true)
//	_ = c.Sync()
//
// # Pipeline
//
// Update prepares every dirty paint: transforms are resolved, paths are
// dashed, trimmed and stroked, converted to 26.6 fixed point outlines and
// rasterized into run-length encoded coverage. Draw blends the prepared
// coverage into the target in horizontal bands, on the engine's worker
// pool. Sync waits for the draw to finish.
//
// # Pixels
//
// Pixels are 32-bit words with alpha in the top byte. The renderer works on
// premultiplied colors; the straight colorspaces (ABGR8888S, ARGB8888S) are
// premultiplied before drawing and converted back on Sync.
//
// # Errors
//
// Every error wraps exactly one of the Err* sentinels. ResultOf maps an
// error back to the Result code.
package tvg

// Version is the library version.
const Version = "0.1.0"
