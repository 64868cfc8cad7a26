package ripple

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// MarqueeConfig configures a MarqueeLoop.
type MarqueeConfig struct {
	// Phrase is one repetition of the scrolling text, trailing separator
	// included, e.g. "REFRESHING • DELICIOUS • ".
	Phrase string
	// Repeat is K: the run starts Repeat pattern widths before the path so
	// the leading edge is always covered. Default 8.
	Repeat int
	// Copies is the minimum number of phrase repetitions in the run. It is
	// raised automatically when the paths need more. Default 12.
	Copies int
	// StepPerFrame is the distance advanced per reference frame, in
	// view-box pixels. Default 0.5.
	StepPerFrame float64
	// ReferenceFPS converts StepPerFrame into a speed. Default 60.
	ReferenceFPS float64
	// FrameLocked advances by exactly StepPerFrame each frame, whatever the
	// frame time, as the page this was modelled on did.
	FrameLocked bool
	// Color tints the glyphs. Zero means white.
	Color Color
	// ViewBox is the coordinate space of the paths. Default 1400×600.
	ViewBox Vec2
}

func (c *MarqueeConfig) defaults() {
	if c.Repeat <= 0 {
		c.Repeat = 8
	}
	if c.Copies <= 0 {
		c.Copies = 12
	}
	if c.StepPerFrame == 0 {
		c.StepPerFrame = 0.5
	}
	if c.ReferenceFPS <= 0 {
		c.ReferenceFPS = 60
	}
	if c.Color == (Color{}) {
		c.Color = ColorWhite
	}
	if c.ViewBox == (Vec2{}) {
		c.ViewBox = Vec2{1400, 600}
	}
}

// Marquee scrolls a repeated phrase along one or more paths forever. The
// start offset is (distance mod W) − W·K for pattern width W, so the text
// wraps every W pixels with no visible jump.
//
// The loop owns its own frame-request chain on a FrameScheduler: each
// callback advances the distance and requests the next frame. Stop cancels
// the pending request, so no callback runs after teardown.
type Marquee struct {
	cfg          MarqueeConfig
	font         Font
	patternWidth float64
	spans        []glyphSpan
	paths        []*TextPath
	copies       int

	distance float64
	running  bool
	sched    *FrameScheduler
	token    CancelToken

	// Viewport is the screen rectangle the view box is scaled to cover.
	Viewport Rect
	// Band, if set, is filled behind the text.
	Band *Band
	// ShowPaths strokes the text paths, for lining up the view box.
	ShowPaths bool

	glyphs *glyphCache
}

// NewMarquee measures the phrase once with font and prepares the run for
// the given paths. A nil font or failed measurement yields a zero pattern
// width: the marquee then draws the phrase once at the start of each path and
// never moves.
func NewMarquee(cfg MarqueeConfig, font Font, paths ...*TextPath) *Marquee {
	cfg.defaults()
	m := &Marquee{cfg: cfg, font: font, paths: paths}
	m.patternWidth = measureWidth(font, cfg.Phrase)
	if m.patternWidth > 0 {
		m.spans = layoutPhrase(font, cfg.Phrase)
	}
	m.copies = m.requiredCopies()
	if ttf, ok := font.(*TTFFont); ok {
		m.glyphs = newGlyphCache(ttf)
	}
	return m
}

// requiredCopies returns how many repetitions cover the longest path plus
// the K·W lead-in, with one spare for the fractional wrap.
func (m *Marquee) requiredCopies() int {
	n := m.cfg.Copies
	if m.patternWidth <= 0 {
		return n
	}
	var longest float64
	for _, p := range m.paths {
		longest = math.Max(longest, p.Length())
	}
	need := m.cfg.Repeat + int(math.Ceil(longest/m.patternWidth)) + 1
	if need > n {
		n = need
	}
	return n
}

// Config returns the effective configuration, defaults applied.
func (m *Marquee) Config() MarqueeConfig { return m.cfg }

// PatternWidth returns the measured width of one phrase repetition.
func (m *Marquee) PatternWidth() float64 { return m.patternWidth }

// Distance returns the accumulated scroll distance.
func (m *Marquee) Distance() float64 { return m.distance }

// Running reports whether the frame chain is active.
func (m *Marquee) Running() bool { return m.running }

// Copies returns the number of phrase repetitions in the rendered run.
func (m *Marquee) Copies() int { return m.copies }

// RunText returns the full rendered string.
func (m *Marquee) RunText() string {
	return strings.Repeat(m.cfg.Phrase, m.copies)
}

// Offset returns the start offset of the run along each path. Zero when the
// pattern width is unavailable.
func (m *Marquee) Offset() float64 {
	return marqueeOffset(m.distance, m.patternWidth, m.cfg.Repeat)
}

// marqueeOffset computes (distance mod width) − width·k.
func marqueeOffset(distance, width float64, k int) float64 {
	if width <= 0 {
		return 0
	}
	return math.Mod(distance, width) - width*float64(k)
}

// Advance moves the marquee forward by one frame of dt seconds. In the
// default mode the step scales with dt so the speed is independent of the
// frame rate.
func (m *Marquee) Advance(dt float64) {
	if m.patternWidth <= 0 {
		return
	}
	step := m.cfg.StepPerFrame
	if !m.cfg.FrameLocked {
		step *= dt * m.cfg.ReferenceFPS
	}
	if step > 0 {
		m.distance += step
	}
}

// Start begins the frame chain on s. Starting a running marquee is a no-op.
func (m *Marquee) Start(s *FrameScheduler) {
	if m.running {
		return
	}
	m.running = true
	m.sched = s
	m.distance = 0
	m.token = s.Request(m.tick)
}

// Stop cancels the pending frame request and discards the accumulated
// distance. Safe to call when not running.
func (m *Marquee) Stop() {
	if !m.running {
		return
	}
	m.sched.Cancel(m.token)
	m.token = CancelToken{}
	m.sched = nil
	m.running = false
	m.distance = 0
}

// Dispose stops the loop and releases glyph bitmaps.
func (m *Marquee) Dispose() {
	m.Stop()
	if m.glyphs != nil {
		m.glyphs.dispose()
	}
}

// tick is one link of the frame chain.
func (m *Marquee) tick(f *Frame) {
	if !m.running {
		return
	}
	m.Advance(f.Delta)
	m.token = m.sched.Request(m.tick)
}

// CharAt returns the rune rendered at arc length d along a path, or false
// when d falls outside the run or the pattern width is unknown. Because the
// run is periodic in the pattern width, CharAt(d) == CharAt(d+W) wherever
// both lie inside it.
func (m *Marquee) CharAt(d float64) (rune, bool) {
	w := m.patternWidth
	if w <= 0 || len(m.spans) == 0 {
		return 0, false
	}
	x := d - m.Offset()
	if x < 0 || x >= w*float64(m.copies) {
		return 0, false
	}
	local := math.Mod(x, w)
	i := sort.Search(len(m.spans), func(i int) bool {
		return m.spans[i].x+m.spans[i].adv > local
	})
	if i >= len(m.spans) {
		i = len(m.spans) - 1
	}
	return m.spans[i].r, true
}

// viewTransform returns the scale and translation that maps the view box
// onto the viewport, covering it and centring the overflow.
func (m *Marquee) viewTransform() (scale, tx, ty float64) {
	vb := m.cfg.ViewBox
	vp := m.Viewport
	if vb.X <= 0 || vb.Y <= 0 {
		return 1, vp.X, vp.Y
	}
	scale = math.Max(vp.Width/vb.X, vp.Height/vb.Y)
	tx = vp.X + (vp.Width-vb.X*scale)/2
	ty = vp.Y + (vp.Height-vb.Y*scale)/2
	return scale, tx, ty
}

// Draw renders the band and the glyph run along every path, clipped to
// the viewport.
func (m *Marquee) Draw(screen *ebiten.Image) {
	vp := m.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	clip := image.Rect(int(vp.X), int(vp.Y), int(math.Ceil(vp.X+vp.Width)), int(math.Ceil(vp.Y+vp.Height)))
	clip = clip.Intersect(screen.Bounds())
	if clip.Empty() {
		return
	}
	dst := screen.SubImage(clip).(*ebiten.Image)

	scale, tx, ty := m.viewTransform()
	if m.Band != nil {
		m.Band.draw(dst, scale, tx, ty)
	}
	if m.ShowPaths {
		m.strokePaths(dst, scale, tx, ty)
	}
	if m.glyphs == nil {
		return
	}
	if m.patternWidth <= 0 {
		m.drawStatic(dst, scale, tx, ty)
		return
	}

	off := m.Offset()
	w := m.patternWidth
	var op ebiten.DrawImageOptions
	for _, p := range m.paths {
		length := p.Length()
		// Skip repetitions that end before the path starts.
		first := int(math.Floor(-off/w)) - 1
		if first < 0 {
			first = 0
		}
	copies:
		for c := first; c < m.copies; c++ {
			base := off + float64(c)*w
			for _, s := range m.spans {
				mid := base + s.x + s.adv/2
				if mid < 0 {
					continue
				}
				if mid > length {
					break copies
				}
				sprite, ok := m.glyphs.sprite(s.r, s.adv)
				if !ok {
					continue
				}
				pos, angle, _ := p.PointAt(mid)
				op.GeoM.Reset()
				op.GeoM.Translate(-sprite.originX-s.adv/2, -sprite.originY)
				op.GeoM.Rotate(angle)
				op.GeoM.Translate(pos.X, pos.Y)
				op.GeoM.Scale(scale, scale)
				op.GeoM.Translate(tx, ty)
				op.ColorScale.Reset()
				op.ColorScale.ScaleWithColor(m.cfg.Color.toRGBA())
				op.Filter = ebiten.FilterLinear
				dst.DrawImage(sprite.img, &op)
			}
		}
	}
}

// drawStatic draws the phrase once, unrotated, at the start of each path.
// Used when the pattern width is unknown and the loop cannot run.
func (m *Marquee) drawStatic(dst *ebiten.Image, scale, tx, ty float64) {
	for _, p := range m.paths {
		pos, _, ok := p.PointAt(0)
		if !ok {
			continue
		}
		op := &text.DrawOptions{}
		op.LayoutOptions.SecondaryAlign = text.AlignEnd
		op.GeoM.Translate(pos.X, pos.Y)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(tx, ty)
		op.ColorScale.ScaleWithColor(m.cfg.Color.toRGBA())
		text.Draw(dst, m.cfg.Phrase, m.glyphs.font.face, op)
	}
}

// strokePaths draws each text path as a thin polyline.
func (m *Marquee) strokePaths(dst *ebiten.Image, scale, tx, ty float64) {
	clr := color.RGBA{0xff, 0xff, 0x00, 0xff}
	for _, p := range m.paths {
		pts := p.Points()
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			vector.StrokeLine(dst,
				float32(a.X*scale+tx), float32(a.Y*scale+ty),
				float32(b.X*scale+tx), float32(b.Y*scale+ty),
				1, clr, true)
		}
	}
}

// --- Band ---

// Band is a filled strip between two curves with a vertical three-stop
// gradient, drawn behind the marquee text.
type Band struct {
	top, bottom []Vec2
	Top, Mid    Color
	Bottom      Color
	verts       []ebiten.Vertex
	indices     []uint16
	builtFor    [3]float64
	built       bool
}

// bandSamples is the number of columns the strip is split into.
const bandSamples = 96

// NewBand resamples top and bottom to the same number of points by arc
// length fraction.
func NewBand(top, bottom *TextPath, topColor, midColor, bottomColor Color) *Band {
	return &Band{
		top:    resample(top, bandSamples),
		bottom: resample(bottom, bandSamples),
		Top:    topColor,
		Mid:    midColor,
		Bottom: bottomColor,
	}
}

// resample returns n+1 points evenly spaced along p, or nil for an empty
// path.
func resample(p *TextPath, n int) []Vec2 {
	if p == nil || len(p.points) == 0 {
		return nil
	}
	out := make([]Vec2, n+1)
	l := p.Length()
	for i := 0; i <= n; i++ {
		pos, _, ok := p.PointAt(l * float64(i) / float64(n))
		if !ok {
			pos = p.points[len(p.points)-1]
		}
		out[i] = pos
	}
	return out
}

// build lays out three vertex rows (top, middle, bottom) per column and two
// quads per column span, in view-box space transformed to the screen.
func (b *Band) build(scale, tx, ty float64) {
	key := [3]float64{scale, tx, ty}
	if b.built && b.builtFor == key {
		return
	}
	n := len(b.top)
	if cap(b.verts) < n*3 {
		b.verts = make([]ebiten.Vertex, n*3)
	}
	b.verts = b.verts[:n*3]
	b.indices = b.indices[:0]

	vert := func(p Vec2, c Color) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(p.X*scale + tx), DstY: float32(p.Y*scale + ty),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(c.R * c.A), ColorG: float32(c.G * c.A),
			ColorB: float32(c.B * c.A), ColorA: float32(c.A),
		}
	}
	for i := 0; i < n; i++ {
		t, bt := b.top[i], b.bottom[i]
		mid := Vec2{(t.X + bt.X) / 2, (t.Y + bt.Y) / 2}
		b.verts[i*3+0] = vert(t, b.Top)
		b.verts[i*3+1] = vert(mid, b.Mid)
		b.verts[i*3+2] = vert(bt, b.Bottom)
	}
	for i := 0; i < n-1; i++ {
		for row := 0; row < 2; row++ {
			a := uint16(i*3 + row)
			c := uint16((i+1)*3 + row)
			b.indices = append(b.indices, a, a+1, c, c, a+1, c+1)
		}
	}
	b.builtFor = key
	b.built = true
}

func (b *Band) draw(dst *ebiten.Image, scale, tx, ty float64) {
	if len(b.top) < 2 || len(b.bottom) != len(b.top) {
		return
	}
	b.build(scale, tx, ty)
	dst.DrawTriangles(b.verts, b.indices, ensureWhitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
