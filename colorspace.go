package tvg

import "fmt"

// Colorspace is the channel order and alpha model of a pixel buffer. Words
// always carry alpha in the top byte.
type Colorspace uint8

const (
	// ABGR8888 is premultiplied A, B, G, R from the most significant byte.
	ABGR8888 Colorspace = iota
	// ARGB8888 is premultiplied A, R, G, B from the most significant byte.
	ARGB8888
	// ABGR8888S is ABGR8888 with straight alpha.
	ABGR8888S
	// ARGB8888S is ARGB8888 with straight alpha.
	ARGB8888S
)

func (cs Colorspace) String() string {
	switch cs {
	case ABGR8888:
		return "ABGR8888"
	case ARGB8888:
		return "ARGB8888"
	case ABGR8888S:
		return "ABGR8888S"
	case ARGB8888S:
		return "ARGB8888S"
	}
	return fmt.Sprintf("Colorspace(%d)", uint8(cs))
}

func (cs Colorspace) valid() bool { return cs <= ARGB8888S }

// abgr reports whether red sits in the low byte.
func (cs Colorspace) abgr() bool { return cs == ABGR8888 || cs == ABGR8888S }

// straight reports whether the buffer holds un-premultiplied colors.
func (cs Colorspace) straight() bool { return cs == ABGR8888S || cs == ARGB8888S }
