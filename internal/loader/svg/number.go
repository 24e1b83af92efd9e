package svg

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/tvg/internal/geom"
)

// units in CSS pixels
var unitScale = map[string]float32{
	"":   1,
	"px": 1,
	"pt": 4.0 / 3,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
	"em": 16,
	"ex": 8,
}

func skipSeparators(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == ',' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return i
}

// parseLength parses a number with an optional unit. Percentages are taken
// of ref.
func parseLength(s string, ref float32) (float32, error) {
	b := []byte(strings.TrimSpace(s))
	v, n := strconv.ParseFloat(b)
	if n == 0 {
		return 0, fmt.Errorf("bad number %q", s)
	}
	unit := strings.TrimSpace(string(b[n:]))
	if unit == "%" {
		return float32(v) / 100 * ref, nil
	}
	k, ok := unitScale[unit]
	if !ok {
		return 0, fmt.Errorf("bad unit %q", s)
	}
	return float32(v) * k, nil
}

// parseNumbers appends the comma or space separated numbers of s to dst.
func parseNumbers(s string, dst []float32) ([]float32, error) {
	b := []byte(s)
	for i := skipSeparators(b); i < len(b); i += skipSeparators(b[i:]) {
		v, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return dst, fmt.Errorf("bad number at %d in %q", i, s)
		}
		dst = append(dst, float32(v))
		i += n
	}
	return dst, nil
}

// parseTransform parses a transform list; the leftmost transform is applied
// last.
func parseTransform(s string) (geom.Matrix, error) {
	m := geom.Identity()
	rest := strings.TrimSpace(s)
	var args []float32
	for rest != "" {
		name, after, ok := strings.Cut(rest, "(")
		if !ok {
			return m, fmt.Errorf("svg: bad transform %q", s)
		}
		inner, tail, ok := strings.Cut(after, ")")
		if !ok {
			return m, fmt.Errorf("svg: bad transform %q", s)
		}
		var err error
		if args, err = parseNumbers(inner, args[:0]); err != nil {
			return m, fmt.Errorf("svg: transform %q: %w", s, err)
		}
		t, err := transformOf(strings.TrimSpace(name), args)
		if err != nil {
			return m, err
		}
		m = m.Mul(t)
		rest = strings.TrimLeft(tail, " ,\t\r\n")
	}
	return m, nil
}

func transformOf(name string, a []float32) (geom.Matrix, error) {
	bad := func() (geom.Matrix, error) {
		return geom.Identity(), fmt.Errorf("%w: %s%v", errParamCount, name, a)
	}
	switch name {
	case "matrix":
		if len(a) != 6 {
			return bad()
		}
		return geom.Matrix{E11: a[0], E21: a[1], E12: a[2], E22: a[3], E13: a[4], E23: a[5], E33: 1}, nil
	case "translate":
		switch len(a) {
		case 1:
			return geom.Translation(a[0], 0), nil
		case 2:
			return geom.Translation(a[0], a[1]), nil
		}
	case "scale":
		switch len(a) {
		case 1:
			return geom.Scaling(a[0], a[0]), nil
		case 2:
			return geom.Scaling(a[0], a[1]), nil
		}
	case "rotate":
		switch len(a) {
		case 1:
			return geom.Rotation(a[0]), nil
		case 3:
			return geom.Translation(a[1], a[2]).Mul(geom.Rotation(a[0])).Mul(geom.Translation(-a[1], -a[2])), nil
		}
	case "skewX":
		if len(a) == 1 {
			return geom.Matrix{E11: 1, E12: math32.Tan(geom.Deg2Rad(a[0])), E22: 1, E33: 1}, nil
		}
	case "skewY":
		if len(a) == 1 {
			return geom.Matrix{E11: 1, E21: math32.Tan(geom.Deg2Rad(a[0])), E22: 1, E33: 1}, nil
		}
	default:
		return geom.Identity(), fmt.Errorf("svg: unknown transform %q", name)
	}
	return bad()
}
