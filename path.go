package ripple

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// defaultCurveSegments is the number of line pieces each curve is
// flattened into.
const defaultCurveSegments = 32

// TextPath is a flattened 2D polyline measured by arc length. Text is laid
// out along it by distance from the first point.
type TextPath struct {
	points []Vec2
	cumLen []float64 // cumulative length at each point
}

// NewTextPath builds a path from an already flattened polyline.
func NewTextPath(points []Vec2) *TextPath {
	p := &TextPath{points: append([]Vec2(nil), points...)}
	p.measure()
	return p
}

// measure computes cumulative arc length for every point.
func (p *TextPath) measure() {
	n := len(p.points)
	p.cumLen = make([]float64, n)
	for i := 1; i < n; i++ {
		dx := p.points[i].X - p.points[i-1].X
		dy := p.points[i].Y - p.points[i-1].Y
		p.cumLen[i] = p.cumLen[i-1] + math.Sqrt(dx*dx+dy*dy)
	}
}

// Length returns the total arc length.
func (p *TextPath) Length() float64 {
	if len(p.cumLen) == 0 {
		return 0
	}
	return p.cumLen[len(p.cumLen)-1]
}

// Points returns the flattened polyline. The returned slice MUST NOT be mutated.
func (p *TextPath) Points() []Vec2 {
	return p.points
}

// Translate returns a copy of the path shifted by (dx, dy).
func (p *TextPath) Translate(dx, dy float64) *TextPath {
	out := &TextPath{
		points: make([]Vec2, len(p.points)),
		cumLen: append([]float64(nil), p.cumLen...),
	}
	for i, pt := range p.points {
		out.points[i] = Vec2{pt.X + dx, pt.Y + dy}
	}
	return out
}

// Reverse returns a copy of the path running from its last point to its
// first.
func (p *TextPath) Reverse() *TextPath {
	pts := make([]Vec2, len(p.points))
	for i, pt := range p.points {
		pts[len(pts)-1-i] = pt
	}
	return NewTextPath(pts)
}

// PointAt returns the position and tangent angle (radians) at arc length d.
// ok is false when d lies outside [0, Length()].
func (p *TextPath) PointAt(d float64) (pos Vec2, angle float64, ok bool) {
	n := len(p.points)
	if n < 2 || d < 0 || d > p.Length() {
		return Vec2{}, 0, false
	}
	// Binary search for the segment containing d.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if p.cumLen[mid] <= d {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := p.points[lo], p.points[hi]
	seg := p.cumLen[hi] - p.cumLen[lo]
	t := 0.0
	if seg > 1e-12 {
		t = (d - p.cumLen[lo]) / seg
	}
	pos = Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
	angle = math.Atan2(b.Y-a.Y, b.X-a.X)
	return pos, angle, true
}

// ParseSVGPath flattens an absolute SVG path made of M, L, Q and T commands
// (the subset used by the marquee curves) into a TextPath.
func ParseSVGPath(d string) (*TextPath, error) {
	toks := tokenizeSVGPath(d)
	var (
		pts      []Vec2
		cur      Vec2
		lastCtrl Vec2
		hasCtrl  bool
		cmd      byte
	)
	num := func(i *int) (float64, error) {
		if *i >= len(toks) {
			return 0, fmt.Errorf("ripple: svg path %q: missing number", d)
		}
		v, err := strconv.ParseFloat(toks[*i], 64)
		if err != nil {
			return 0, fmt.Errorf("ripple: svg path %q: %w", d, err)
		}
		*i++
		return v, nil
	}
	pair := func(i *int) (Vec2, error) {
		x, err := num(i)
		if err != nil {
			return Vec2{}, err
		}
		y, err := num(i)
		return Vec2{x, y}, err
	}

	for i := 0; i < len(toks); {
		if c := toks[i]; len(c) == 1 && unicode.IsLetter(rune(c[0])) {
			cmd = c[0]
			i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("ripple: svg path %q: expected command", d)
		}

		switch cmd {
		case 'M':
			p, err := pair(&i)
			if err != nil {
				return nil, err
			}
			cur = p
			pts = append(pts, cur)
			hasCtrl = false
			cmd = 'L' // subsequent pairs are implicit line-tos
		case 'L':
			p, err := pair(&i)
			if err != nil {
				return nil, err
			}
			cur = p
			pts = append(pts, cur)
			hasCtrl = false
		case 'Q', 'T':
			var ctrl Vec2
			if cmd == 'Q' {
				c, err := pair(&i)
				if err != nil {
					return nil, err
				}
				ctrl = c
			} else if hasCtrl {
				ctrl = Vec2{2*cur.X - lastCtrl.X, 2*cur.Y - lastCtrl.Y}
			} else {
				ctrl = cur
			}
			end, err := pair(&i)
			if err != nil {
				return nil, err
			}
			pts = appendQuad(pts, cur, ctrl, end, defaultCurveSegments)
			cur = end
			lastCtrl = ctrl
			hasCtrl = true
		default:
			return nil, fmt.Errorf("ripple: svg path %q: unsupported command %q", d, cmd)
		}
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("ripple: svg path %q: needs at least two points", d)
	}
	return NewTextPath(pts), nil
}

// appendQuad appends a flattened quadratic Bézier from a (exclusive) to b.
func appendQuad(pts []Vec2, a, c, b Vec2, segs int) []Vec2 {
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		pts = append(pts, Vec2{
			X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
			Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
		})
	}
	return pts
}

// tokenizeSVGPath splits path data into command letters and numbers.
func tokenizeSVGPath(d string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for _, r := range d {
		switch {
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			toks = append(toks, string(r))
		case r == ',' || unicode.IsSpace(r):
			flush()
		case r == '-' && b.Len() > 0 && !strings.HasSuffix(b.String(), "e"):
			flush()
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return toks
}
