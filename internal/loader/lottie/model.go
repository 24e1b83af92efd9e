package lottie

import (
	"encoding/json"
	"fmt"
)

type composition struct {
	Version   string   `json:"v"`
	FrameRate float32  `json:"fr"`
	InPoint   float32  `json:"ip"`
	OutPoint  float32  `json:"op"`
	W         float32  `json:"w"`
	H         float32  `json:"h"`
	Layers    []layer  `json:"layers"`
	Markers   []marker `json:"markers"`
}

type marker struct {
	Comment  string  `json:"cm"`
	Time     float32 `json:"tm"`
	Duration float32 `json:"dr"`
}

// Layer types.
const (
	layerPrecomp = 0
	layerSolid   = 1
	layerNull    = 3
	layerShape   = 4
)

type layer struct {
	Type      int       `json:"ty"`
	Name      string    `json:"nm"`
	Index     *int      `json:"ind"`
	Parent    *int      `json:"parent"`
	InPoint   float32   `json:"ip"`
	OutPoint  float32   `json:"op"`
	StartTime float32   `json:"st"`
	Stretch   float32   `json:"sr"`
	Hidden    bool      `json:"hd"`
	Transform transform `json:"ks"`
	Shapes    []shape   `json:"shapes"`

	SolidColor string  `json:"sc"`
	SolidW     float32 `json:"sw"`
	SolidH     float32 `json:"sh"`
}

// transform is a layer transform or a group's tr item.
type transform struct {
	Anchor   prop     `json:"a"`
	Position position `json:"p"`
	Scale    prop     `json:"s"`
	Rotation prop     `json:"r"`
	Opacity  prop     `json:"o"`
	Skew     prop     `json:"sk"`
	SkewAxis prop     `json:"sa"`
}

// position is a vector property that may be split into x and y.
type position struct {
	prop
	split bool
	x, y  prop
}

func (p *position) UnmarshalJSON(data []byte) error {
	var raw struct {
		S bool            `json:"s"`
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.S {
		return p.prop.UnmarshalJSON(data)
	}
	p.split = true
	if err := json.Unmarshal(raw.X, &p.x); err != nil {
		return err
	}
	return json.Unmarshal(raw.Y, &p.y)
}

func (p *position) vec2(f float32) [2]float32 {
	if p.split {
		return [2]float32{p.x.scalar(f, 0), p.y.scalar(f, 0)}
	}
	return p.prop.vec2(f, [2]float32{})
}

type dash struct {
	Name  string `json:"n"`
	Value prop   `json:"v"`
}

type gradientStops struct {
	Count int  `json:"p"`
	Stops prop `json:"k"`
}

// shape is one item of a shape layer or group. Which fields are set
// depends on Type.
type shape struct {
	Type   string
	Name   string
	Hidden bool

	Items []shape // gr

	Position  prop // rc, el, gradient start
	Size      prop // rc, el
	Roundness prop // rc
	Path      prop // sh

	Color    prop // fl, st
	Opacity  prop
	FillRule int
	Width    prop
	Cap      int
	Join     int
	Miter    float32
	Dashes   []dash

	GradientType int // 1 linear, 2 radial
	End          prop
	Highlight    prop
	Angle        prop
	Gradient     gradientStops

	TrimStart  prop
	TrimEnd    prop
	TrimOffset prop
	TrimMode   int

	Transform transform // tr
}

func (s *shape) UnmarshalJSON(data []byte) error {
	var head struct {
		Type   string `json:"ty"`
		Name   string `json:"nm"`
		Hidden bool   `json:"hd"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	s.Type, s.Name, s.Hidden = head.Type, head.Name, head.Hidden

	var err error
	switch s.Type {
	case "gr":
		var v struct {
			Items []shape `json:"it"`
		}
		err = json.Unmarshal(data, &v)
		s.Items = v.Items
	case "rc", "el":
		var v struct {
			P prop `json:"p"`
			S prop `json:"s"`
			R prop `json:"r"`
		}
		err = json.Unmarshal(data, &v)
		s.Position, s.Size, s.Roundness = v.P, v.S, v.R
	case "sh":
		var v struct {
			K prop `json:"ks"`
		}
		err = json.Unmarshal(data, &v)
		s.Path = v.K
	case "fl", "st", "gf", "gs":
		var v struct {
			C  prop          `json:"c"`
			O  prop          `json:"o"`
			R  int           `json:"r"`
			W  prop          `json:"w"`
			LC int           `json:"lc"`
			LJ int           `json:"lj"`
			ML float32       `json:"ml"`
			D  []dash        `json:"d"`
			T  int           `json:"t"`
			S  prop          `json:"s"`
			E  prop          `json:"e"`
			H  prop          `json:"h"`
			A  prop          `json:"a"`
			G  gradientStops `json:"g"`
		}
		err = json.Unmarshal(data, &v)
		s.Color, s.Opacity, s.FillRule = v.C, v.O, v.R
		s.Width, s.Cap, s.Join, s.Miter, s.Dashes = v.W, v.LC, v.LJ, v.ML, v.D
		s.GradientType, s.Position, s.End, s.Highlight, s.Angle, s.Gradient = v.T, v.S, v.E, v.H, v.A, v.G
	case "tm":
		var v struct {
			S prop `json:"s"`
			E prop `json:"e"`
			O prop `json:"o"`
			M int  `json:"m"`
		}
		err = json.Unmarshal(data, &v)
		s.TrimStart, s.TrimEnd, s.TrimOffset, s.TrimMode = v.S, v.E, v.O, v.M
	case "tr":
		err = json.Unmarshal(data, &s.Transform)
	}
	if err != nil {
		return fmt.Errorf("shape %q (%s): %w", s.Name, s.Type, err)
	}
	return nil
}
