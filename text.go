package ripple

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font is the interface for text measurement.
type Font interface {
	MeasureString(text string) (width, height float64)
	LineHeight() float64
}

// --- TTFFont ---

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face   *text.GoTextFace
	source *text.GoTextFaceSource
	size   float64
	lh     float64 // cached line height
	ascent float64
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("ripple: failed to parse TTF data: %w", err)
	}

	face := &text.GoTextFace{
		Source: source,
		Size:   size,
	}

	// Compute line height from metrics
	m := face.Metrics()
	lh := m.HAscent + m.HDescent + m.HLineGap

	return &TTFFont{
		face:   face,
		source: source,
		size:   size,
		lh:     lh,
		ascent: m.HAscent,
	}, nil
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	w, h := text.Measure(s, f.face, f.lh)
	return w, h
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Ascent returns the distance from the top of the line box to the baseline.
func (f *TTFFont) Ascent() float64 {
	return f.ascent
}

// Size returns the font size in pixels.
func (f *TTFFont) Size() float64 {
	return f.size
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

// --- Measurement ---

// measureWidth returns the advance width of s in f, or 0 when no usable
// measurement is available (nil font, or a non-finite or negative result).
// Callers treat 0 as "measurement unavailable" and degrade to static text.
func measureWidth(f Font, s string) float64 {
	if f == nil {
		if globalDebug {
			log.Printf("[ripple] measure %q: no font, falling back to zero width", s)
		}
		return 0
	}
	w, _ := f.MeasureString(s)
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		if globalDebug {
			log.Printf("[ripple] measure %q: unusable width %v, falling back to zero", s, w)
		}
		return 0
	}
	return w
}

// glyphSpan is one rune of a laid-out phrase: its left edge and advance.
type glyphSpan struct {
	r   rune
	x   float64
	adv float64
}

// layoutPhrase positions each rune of s by measuring successive prefixes,
// so kerning between neighbours is included. The last span ends at the
// full phrase width.
func layoutPhrase(f Font, s string) []glyphSpan {
	spans := make([]glyphSpan, 0, utf8.RuneCountInString(s))
	prev := 0.0
	for i, r := range s {
		end := measureWidth(f, s[:i+utf8.RuneLen(r)])
		spans = append(spans, glyphSpan{r: r, x: prev, adv: end - prev})
		prev = end
	}
	return spans
}

// --- Glyph sprites ---

const glyphPad = 2

// glyphSprite is a pre-rendered bitmap of a single rune.
type glyphSprite struct {
	img     *ebiten.Image
	originX float64 // pixel in img of the glyph's left baseline point
	originY float64
}

// glyphCache renders each distinct rune once and reuses the bitmap.
type glyphCache struct {
	font    *TTFFont
	sprites map[rune]glyphSprite
}

func newGlyphCache(f *TTFFont) *glyphCache {
	return &glyphCache{font: f, sprites: make(map[rune]glyphSprite)}
}

// sprite returns the bitmap for r, rendering it on first use. Whitespace
// has no bitmap.
func (c *glyphCache) sprite(r rune, adv float64) (glyphSprite, bool) {
	if r == ' ' {
		return glyphSprite{}, false
	}
	if s, ok := c.sprites[r]; ok {
		return s, s.img != nil
	}
	w := int(math.Ceil(adv)) + glyphPad*2
	h := int(math.Ceil(c.font.lh)) + glyphPad*2
	if w <= glyphPad*2 || h <= glyphPad*2 {
		c.sprites[r] = glyphSprite{}
		return glyphSprite{}, false
	}
	img := ebiten.NewImage(w, h)
	op := &text.DrawOptions{}
	op.GeoM.Translate(glyphPad, glyphPad)
	text.Draw(img, string(r), c.font.face, op)
	s := glyphSprite{img: img, originX: glyphPad, originY: glyphPad + c.font.ascent}
	c.sprites[r] = s
	return s, true
}

// dispose releases every cached bitmap.
func (c *glyphCache) dispose() {
	for r, s := range c.sprites {
		if s.img != nil {
			s.img.Deallocate()
		}
		delete(c.sprites, r)
	}
}
