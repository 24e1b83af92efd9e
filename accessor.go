package tvg

import "fmt"

// Accessor walks paint trees, for example to find the paint loaded from a
// named SVG element.
type Accessor struct{}

// NewAccessor returns an accessor.
func NewAccessor() *Accessor { return &Accessor{} }

// Set calls fn for p and every paint below it, depth first in draw order,
// until fn returns false. Picture content is visited; mask targets and
// clippers are not.
func (a *Accessor) Set(p Paint, fn func(Paint) bool) error {
	if p == nil || fn == nil {
		return fmt.Errorf("tvg: accessor: %w", ErrInvalidArgument)
	}
	walk(p, fn)
	return nil
}

func walk(p Paint, fn func(Paint) bool) bool {
	if !fn(p) {
		return false
	}
	switch v := p.(type) {
	case *Scene:
		for _, c := range v.children {
			if !walk(c, fn) {
				return false
			}
		}
	case *Picture:
		if v.content != nil {
			for _, c := range v.content.children {
				if !walk(c, fn) {
					return false
				}
			}
		}
	}
	return true
}

// ID returns the paint id for name, as assigned by loaders.
func (a *Accessor) ID(name string) uint32 { return AccessorID(name) }

// AccessorID hashes name with djb2.
func AccessorID(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}
