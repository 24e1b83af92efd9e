package parallel

// Band is a half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Bands splits rows [y0, y1) into at most n bands of near-equal height,
// each at least minRows tall when possible.
func Bands(y0, y1, n, minRows int) []Band {
	h := y1 - y0
	if h <= 0 {
		return nil
	}
	n = max(n, 1)
	if minRows > 0 {
		n = min(n, max(h/minRows, 1))
	}
	n = min(n, h)
	out := make([]Band, 0, n)
	for i := range n {
		out = append(out, Band{Y0: y0 + h*i/n, Y1: y0 + h*(i+1)/n})
	}
	return out
}
