package lottie

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// prop is an animatable property. Scalars, vectors, colors and path
// shapes all flatten to a []float32 value.
type prop struct {
	value  []float32
	closed bool
	keys   []keyframe
}

type keyframe struct {
	t     float32
	start []float32
	end   []float32 // explicit end value, older files only
	hold  bool
	ease  []ease.TweenFunc
}

// at returns the value at frame f. Components missing from a keyframe keep
// their previous value.
func (p *prop) at(f float32) []float32 {
	if len(p.keys) == 0 {
		return p.value
	}
	first, last := &p.keys[0], &p.keys[len(p.keys)-1]
	if len(p.keys) == 1 || f <= first.t {
		return first.start
	}
	if f >= last.t {
		if last.start == nil {
			return p.keys[len(p.keys)-2].endValue(last)
		}
		return last.start
	}

	i := 1
	for i < len(p.keys)-1 && p.keys[i].t <= f {
		i++
	}
	k, next := &p.keys[i-1], &p.keys[i]
	if k.hold {
		return k.start
	}
	end := k.endValue(next)
	d := next.t - k.t
	out := make([]float32, len(k.start))
	for j := range out {
		if j >= len(end) {
			out[j] = k.start[j]
			continue
		}
		fn := ease.Linear
		if len(k.ease) > 0 {
			fn = k.ease[min(j, len(k.ease)-1)]
		}
		out[j], _ = gween.New(k.start[j], end[j], d, fn).Set(f - k.t)
	}
	return out
}

func (k *keyframe) endValue(next *keyframe) []float32 {
	if k.end != nil {
		return k.end
	}
	return next.start
}

// scalar returns the first component at f, or def when the property is
// unset.
func (p *prop) scalar(f, def float32) float32 {
	if v := p.at(f); len(v) > 0 {
		return v[0]
	}
	return def
}

// vec2 returns the first two components at f, or def when unset.
func (p *prop) vec2(f float32, def [2]float32) [2]float32 {
	v := p.at(f)
	switch len(v) {
	case 0:
		return def
	case 1:
		return [2]float32{v[0], v[0]}
	}
	return [2]float32{v[0], v[1]}
}

func (p *prop) UnmarshalJSON(data []byte) error {
	var raw struct {
		K json.RawMessage `json:"k"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.K) == 0 {
		return nil
	}
	if isKeyframes(raw.K) {
		var frames []struct {
			T float32         `json:"t"`
			S json.RawMessage `json:"s"`
			E json.RawMessage `json:"e"`
			H int             `json:"h"`
			I *tangent        `json:"i"`
			O *tangent        `json:"o"`
		}
		if err := json.Unmarshal(raw.K, &frames); err != nil {
			return fmt.Errorf("keyframes: %w", err)
		}
		p.keys = make([]keyframe, len(frames))
		for n, fr := range frames {
			k := &p.keys[n]
			k.t, k.hold = fr.T, fr.H == 1
			var err error
			if len(fr.S) > 0 {
				if k.start, p.closed, err = decodeValue(fr.S); err != nil {
					return err
				}
			}
			if len(fr.E) > 0 {
				if k.end, _, err = decodeValue(fr.E); err != nil {
					return err
				}
			}
			if fr.O != nil && fr.I != nil {
				k.ease = easing(fr.O, fr.I)
			}
		}
		return nil
	}
	var err error
	p.value, p.closed, err = decodeValue(raw.K)
	return err
}

// isKeyframes reports whether k is an array of keyframe objects.
func isKeyframes(k json.RawMessage) bool {
	k = bytes.TrimSpace(k)
	if len(k) < 2 || k[0] != '[' {
		return false
	}
	return bytes.TrimSpace(k[1:])[0] == '{'
}

type pathValue struct {
	C bool         `json:"c"`
	V [][2]float32 `json:"v"`
	I [][2]float32 `json:"i"`
	O [][2]float32 `json:"o"`
}

// decodeValue flattens a number, a number array or a path shape. Path
// vertices flatten to x, y, in x, in y, out x, out y.
func decodeValue(data json.RawMessage) (v []float32, closed bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false, nil
	}
	switch data[0] {
	case '{':
		var pv pathValue
		if err := json.Unmarshal(data, &pv); err != nil {
			return nil, false, fmt.Errorf("path: %w", err)
		}
		return flattenPath(&pv), pv.C, nil
	case '[':
		if inner := bytes.TrimSpace(data[1:]); len(inner) > 0 && inner[0] == '{' {
			var pvs []pathValue
			if err := json.Unmarshal(data, &pvs); err != nil {
				return nil, false, fmt.Errorf("path: %w", err)
			}
			if len(pvs) == 0 {
				return nil, false, nil
			}
			return flattenPath(&pvs[0]), pvs[0].C, nil
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, false, err
		}
		return v, false, nil
	}
	var f float32
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false, err
	}
	return []float32{f}, false, nil
}

func flattenPath(pv *pathValue) []float32 {
	out := make([]float32, 0, 6*len(pv.V))
	for n, v := range pv.V {
		var in, o [2]float32
		if n < len(pv.I) {
			in = pv.I[n]
		}
		if n < len(pv.O) {
			o = pv.O[n]
		}
		out = append(out, v[0], v[1], in[0], in[1], o[0], o[1])
	}
	return out
}

// tangent is a keyframe easing handle. Each axis is a number or a
// per-component array.
type tangent struct {
	X json.RawMessage `json:"x"`
	Y json.RawMessage `json:"y"`
}

func (t *tangent) component(j int) (x, y float32) {
	return pick(t.X, j), pick(t.Y, j)
}

func pick(raw json.RawMessage, j int) float32 {
	var arr []float32
	if json.Unmarshal(raw, &arr) == nil && len(arr) > 0 {
		return arr[min(j, len(arr)-1)]
	}
	var f float32
	_ = json.Unmarshal(raw, &f)
	return f
}

func componentCount(raw json.RawMessage) int {
	var arr []float32
	if json.Unmarshal(raw, &arr) == nil {
		return max(len(arr), 1)
	}
	return 1
}

// easing builds per-component timing functions from the out tangent of a
// keyframe and the in tangent of the next.
func easing(out, in *tangent) []ease.TweenFunc {
	n := max(componentCount(out.X), componentCount(in.X))
	fns := make([]ease.TweenFunc, n)
	for j := range fns {
		x1, y1 := out.component(j)
		x2, y2 := in.component(j)
		fns[j] = cubicBezier(x1, y1, x2, y2)
	}
	return fns
}

// cubicBezier returns the CSS-style timing function through (0,0),
// (x1,y1), (x2,y2), (1,1).
func cubicBezier(x1, y1, x2, y2 float32) ease.TweenFunc {
	if x1 == y1 && x2 == y2 {
		return ease.Linear
	}
	x1, x2 = min(max(x1, 0), 1), min(max(x2, 0), 1)
	bez := func(a, b, u float32) float32 {
		v := 1 - u
		return 3*v*v*u*a + 3*v*u*u*b + u*u*u
	}
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		x := t / d
		// bisect on the monotone x(u)
		lo, hi := float32(0), float32(1)
		u := x
		for range 32 {
			if bx := bez(x1, x2, u); math32.Abs(bx-x) < 1e-5 {
				break
			} else if bx < x {
				lo = u
			} else {
				hi = u
			}
			u = (lo + hi) / 2
		}
		return b + c*bez(y1, y2, u)
	}
}
