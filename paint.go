package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
)

// Type identifies the concrete kind of a Paint.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeShape
	TypeScene
	TypePicture
	TypeText
)

func (t Type) String() string {
	switch t {
	case TypeShape:
		return "Shape"
	case TypeScene:
		return "Scene"
	case TypePicture:
		return "Picture"
	case TypeText:
		return "Text"
	}
	return "Undefined"
}

// MaskMethod selects how a mask target modulates the paint it is set on.
type MaskMethod uint8

// Mask methods. Alpha and Luma variants scale the paint by the masker;
// Add through Darken combine the two alphas.
const (
	MaskNone MaskMethod = iota
	MaskAlpha
	MaskInverseAlpha
	MaskLuma
	MaskInverseLuma
	MaskAdd
	MaskSubtract
	MaskIntersect
	MaskDifference
	MaskLighten
	MaskDarken
)

func (m MaskMethod) String() string { return blend.MaskMethod(m).String() }

// BlendMethod selects how a paint combines with what is already drawn.
type BlendMethod uint8

// Blend methods. Hue, Saturation, Color, Luminosity and HardMix are
// reserved and render as Normal.
const (
	BlendNormal BlendMethod = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAdd
	BlendHardMix
)

func (m BlendMethod) String() string { return blend.Method(m).String() }

// Paint is a node of the paint tree: a *Shape, *Scene, *Picture or *Text.
//
// A paint has a single owner at a time: a canvas, a scene, or another
// paint using it as mask target or clipper.
type Paint interface {
	// Type returns the concrete kind.
	Type() Type
	// Duplicate returns a deep copy without owner, masks and clippers
	// included.
	Duplicate() Paint
	// Bounds returns the axis-aligned bounding box of the paint, in its
	// own space or, when transformed, after its transform.
	Bounds(transformed bool) (x, y, w, h float32, err error)

	Translate(x, y float32) error
	Scale(factor float32) error
	Rotate(degree float32) error
	SetTransform(m Matrix) error
	Transform() Matrix
	SetOpacity(o uint8)
	Opacity() uint8
	SetMask(target Paint, method MaskMethod) error
	Mask() (Paint, MaskMethod)
	SetClip(clipper *Shape) error
	Clip() *Shape
	SetBlend(m BlendMethod) error
	Blend() BlendMethod
	SetID(id uint32)
	ID() uint32
	Parent() Paint
	Ref() uint16
	Unref() uint16
	RefCount() uint16

	base() *paintBase
}

// paintBase holds the state every paint shares.
type paintBase struct {
	self Paint

	// decomposed transform, unless overridden by SetTransform
	tx, ty, scale, degree float32
	m                     geom.Matrix
	overriding            bool

	opacity    uint8
	blend      BlendMethod
	mask       Paint
	maskMethod MaskMethod
	clip       *Shape
	id         uint32

	parent Paint   // scene or picture holding this paint
	canvas *canvas // canvas holding this paint at the top level
	owner  Paint   // paint using this one as mask target or clipper
	refs   uint16

	dirty bool
	prep  prepared
}

func (b *paintBase) init(self Paint) {
	b.self = self
	b.scale = 1
	b.m = geom.Identity()
	b.opacity = 255
	b.dirty = true
}

func (b *paintBase) base() *paintBase { return b }

// markDirty flags the paint for the next update and propagates to
// whatever holds it.
func (b *paintBase) markDirty() {
	for p := b; p != nil; {
		p.dirty = true
		switch {
		case p.parent != nil:
			p = p.parent.base()
		case p.owner != nil:
			p = p.owner.base()
		default:
			p = nil
		}
	}
}

func (b *paintBase) attached() bool {
	return b.parent != nil || b.canvas != nil || b.owner != nil
}

// Translate sets the translation part of the transform.
func (b *paintBase) Translate(x, y float32) error {
	if b.overriding {
		return fmt.Errorf("tvg: translate after SetTransform: %w", ErrInsufficientCondition)
	}
	b.tx, b.ty = x, y
	b.markDirty()
	return nil
}

// Scale sets the uniform scale part of the transform.
func (b *paintBase) Scale(factor float32) error {
	if b.overriding {
		return fmt.Errorf("tvg: scale after SetTransform: %w", ErrInsufficientCondition)
	}
	b.scale = factor
	b.markDirty()
	return nil
}

// Rotate sets the rotation part of the transform, clockwise in degrees.
func (b *paintBase) Rotate(degree float32) error {
	if b.overriding {
		return fmt.Errorf("tvg: rotate after SetTransform: %w", ErrInsufficientCondition)
	}
	b.degree = degree
	b.markDirty()
	return nil
}

// SetTransform replaces the transform. Translate, Scale and Rotate fail
// afterwards.
func (b *paintBase) SetTransform(m Matrix) error {
	b.m = m.geom()
	b.overriding = true
	b.markDirty()
	return nil
}

// Transform returns the paint's transform.
func (b *paintBase) Transform() Matrix {
	return matrixOf(b.matrix())
}

func (b *paintBase) matrix() geom.Matrix {
	if b.overriding {
		return b.m
	}
	return geom.Translation(b.tx, b.ty).Mul(geom.Rotation(b.degree)).Mul(geom.Scaling(b.scale, b.scale))
}

func (b *paintBase) SetOpacity(o uint8) {
	if b.opacity != o {
		b.opacity = o
		b.markDirty()
	}
}

func (b *paintBase) Opacity() uint8 { return b.opacity }

// SetMask masks the paint by target. MaskNone detaches the current mask
// target, which may then be nil.
func (b *paintBase) SetMask(target Paint, method MaskMethod) error {
	if method > MaskDarken {
		return fmt.Errorf("tvg: mask method %d: %w", method, ErrInvalidArgument)
	}
	if method == MaskNone {
		b.detachMask()
		b.markDirty()
		return nil
	}
	if target == nil || target == b.self {
		return fmt.Errorf("tvg: mask target: %w", ErrInvalidArgument)
	}
	if target == b.mask {
		b.maskMethod = method
		b.markDirty()
		return nil
	}
	if err := b.adopt(target); err != nil {
		return err
	}
	b.detachMask()
	b.mask, b.maskMethod = target, method
	b.markDirty()
	return nil
}

// Mask returns the mask target and method.
func (b *paintBase) Mask() (Paint, MaskMethod) { return b.mask, b.maskMethod }

// SetClip clips the paint by the fill area of clipper. nil removes the
// clipper.
func (b *paintBase) SetClip(clipper *Shape) error {
	if clipper == nil {
		b.detachClip()
		b.markDirty()
		return nil
	}
	if Paint(clipper) == b.self {
		return fmt.Errorf("tvg: clipper: %w", ErrInvalidArgument)
	}
	if clipper == b.clip {
		return nil
	}
	if err := b.adopt(clipper); err != nil {
		return err
	}
	b.detachClip()
	b.clip = clipper
	b.markDirty()
	return nil
}

// Clip returns the clipper.
func (b *paintBase) Clip() *Shape { return b.clip }

// adopt takes ownership of a mask target or clipper.
func (b *paintBase) adopt(t Paint) error {
	tb := t.base()
	if tb.attached() {
		return fmt.Errorf("tvg: %v already has an owner: %w", t.Type(), ErrInsufficientCondition)
	}
	if references(t, b.self) {
		return fmt.Errorf("tvg: %v references its owner: %w", t.Type(), ErrInvalidArgument)
	}
	tb.owner = b.self
	tb.refs++
	return nil
}

func (b *paintBase) detachMask() {
	if b.mask != nil {
		release(b.mask)
	}
	b.mask, b.maskMethod = nil, MaskNone
}

func (b *paintBase) detachClip() {
	if b.clip != nil {
		release(b.clip)
	}
	b.clip = nil
}

func release(p Paint) {
	pb := p.base()
	pb.owner, pb.parent, pb.canvas = nil, nil, nil
	if pb.refs > 0 {
		pb.refs--
	}
}

// references reports whether p reaches target through children, mask
// targets or clippers.
func references(p, target Paint) bool {
	if p == target {
		return true
	}
	b := p.base()
	if b.mask != nil && references(b.mask, target) {
		return true
	}
	if b.clip != nil && references(b.clip, target) {
		return true
	}
	switch v := p.(type) {
	case *Scene:
		for _, c := range v.children {
			if references(c, target) {
				return true
			}
		}
	case *Picture:
		if v.content != nil {
			return references(v.content, target)
		}
	}
	return false
}

// SetBlend sets the blend method.
func (b *paintBase) SetBlend(m BlendMethod) error {
	if m > BlendHardMix {
		return fmt.Errorf("tvg: blend method %d: %w", m, ErrInvalidArgument)
	}
	if b.blend != m {
		b.blend = m
		b.markDirty()
	}
	return nil
}

func (b *paintBase) Blend() BlendMethod { return b.blend }

// SetID sets an application-defined identifier. Pictures loaded from
// files name their paints with Accessor.ID of the source element id.
func (b *paintBase) SetID(id uint32) { b.id = id }

func (b *paintBase) ID() uint32 { return b.id }

// Parent returns the scene or picture holding the paint, or nil.
func (b *paintBase) Parent() Paint { return b.parent }

// Ref adds a reference and returns the new count.
func (b *paintBase) Ref() uint16 {
	b.refs++
	return b.refs
}

// Unref drops a reference and returns the new count. The count never
// goes below zero.
func (b *paintBase) Unref() uint16 {
	if b.refs > 0 {
		b.refs--
	}
	return b.refs
}

// RefCount returns the number of references held.
func (b *paintBase) RefCount() uint16 { return b.refs }

// duplicate copies the shared attributes into dst, duplicating the mask
// target and the clipper.
func (b *paintBase) duplicate(dst *paintBase) {
	dst.tx, dst.ty, dst.scale, dst.degree = b.tx, b.ty, b.scale, b.degree
	dst.m, dst.overriding = b.m, b.overriding
	dst.opacity, dst.blend, dst.id = b.opacity, b.blend, b.id
	if b.mask != nil {
		t := b.mask.Duplicate()
		t.base().owner = dst.self
		t.base().refs = 1
		dst.mask, dst.maskMethod = t, b.maskMethod
	}
	if b.clip != nil {
		c := b.clip.Duplicate().(*Shape)
		c.owner = dst.self
		c.refs = 1
		dst.clip = c
	}
}

// bounds converts a local box to the Bounds result.
func (b *paintBase) bounds(box geom.BBox, transformed bool) (x, y, w, h float32, err error) {
	if box.Min.X > box.Max.X || box.Min.Y > box.Max.Y {
		return 0, 0, 0, 0, fmt.Errorf("tvg: bounds of empty %v: %w", b.self.Type(), ErrInsufficientCondition)
	}
	if transformed {
		box = box.Transform(b.matrix())
	}
	return box.Min.X, box.Min.Y, box.Width(), box.Height(), nil
}
