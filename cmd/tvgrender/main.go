// Command tvgrender renders a TOML or YAML scene description to PNG.
//
// Usage:
//
//	tvgrender [-o out.png] [-threads n] [-quality q] [-v] scene.toml
//
// A scene lists paints drawn in order:
//
//	width = 200
//	height = 200
//	background = "white"
//
//	[[paints]]
//	type = "circle"
//	x = 100
//	y = 100
//	rx = 60
//	fill = "#ff8800"
//	stroke = { width = 4, color = "black", dash = [10, 5] }
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/tvg"
)

func main() {
	var (
		output  = flag.String("o", "", "output file (default: scene name with .png)")
		threads = flag.Int("threads", -1, "worker threads, 0 renders on the calling goroutine")
		quality = flag.Uint("quality", 100, "compression effort, 0 to 100")
		verbose = flag.Bool("v", false, "log engine activity to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scene.{toml,yaml}\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		tvg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	in := flag.Arg(0)
	out := *output
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
	}
	if err := run(in, out, *threads, uint32(min(*quality, 100))); err != nil {
		log.Fatalf("tvgrender: %v", err)
	}
	log.Printf("rendered %s to %s", in, out)
}

// run renders the scene file in to the PNG file out.
func run(in, out string, threads int, quality uint32) error {
	s, err := loadScene(in)
	if err != nil {
		return err
	}

	e := tvg.NewEngine(tvg.WithThreads(threads))
	defer e.Term()

	b := &builder{engine: e, dir: filepath.Dir(in)}
	root, err := b.build(s)
	if err != nil {
		return err
	}

	sv := e.NewSaver()
	if err := sv.Save(root, out, quality); err != nil {
		return err
	}
	return sv.Sync()
}
