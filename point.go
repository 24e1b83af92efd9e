package tvg

import "github.com/gogpu/tvg/internal/geom"

// Point represents a 2D point.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// PathCommand is a path drawing command. Each consumes a fixed number of
// points: PathClose 0, PathMoveTo 1, PathLineTo 1, PathCubicTo 3.
type PathCommand uint8

const (
	PathClose   = PathCommand(geom.Close)
	PathMoveTo  = PathCommand(geom.MoveTo)
	PathLineTo  = PathCommand(geom.LineTo)
	PathCubicTo = PathCommand(geom.CubicTo)
)

// FillRule decides which regions of a self-overlapping path are inside.
type FillRule uint8

const (
	// NonZero fills every region with a non-zero winding number.
	NonZero FillRule = iota
	// EvenOdd fills regions with an odd winding number.
	EvenOdd
)

// StrokeCap is the shape drawn at the ends of open sub-paths.
type StrokeCap uint8

const (
	CapButt StrokeCap = iota
	CapRound
	CapSquare
)

// StrokeJoin is the shape drawn where two stroked segments meet.
type StrokeJoin uint8

const (
	JoinMiter StrokeJoin = iota
	JoinRound
	JoinBevel
)

func toGeomCmds(cmds []PathCommand) []geom.Command {
	out := make([]geom.Command, len(cmds))
	for i, c := range cmds {
		out[i] = geom.Command(c)
	}
	return out
}

func toGeomPts(pts []Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = geom.Point(p)
	}
	return out
}
