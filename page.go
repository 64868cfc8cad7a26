package ripple

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BoldTTF is the bundled bold face used for titles and the marquee.
var BoldTTF = gobold.TTF

// Render layers used by the page.
const (
	LayerRibbon uint8 = 0
	LayerCan    uint8 = 1
)

// pageSection is one laid-out band of the page.
type pageSection struct {
	cfg      SectionConfig
	rect     Rect
	title    *TTFFont
	subtitle *TTFFont
}

// Page builds a Scene from a Config and keeps it laid out as the page
// scrolls: sections move up by the scroll offset, the ribbon's camera and
// the marquee follow their sections, and the can stays fixed on top.
//
// Pass order: section backgrounds, ribbon, marquee, section text, can.
type Page struct {
	Scene    *Scene
	Ribbon   *WaveField
	Timeline *ScrollTimeline
	Marquee  *Marquee

	cfg        Config
	sections   []pageSection
	ribbonIdx  int
	marqueeIdx int
	ribbonCam  *Camera
	canCam     *Camera
	width      float64
	height     float64
	bgVerts    []ebiten.Vertex
	bgIndices  []uint16
}

// NewPage validates cfg and assembles the scene. The marquee is started on
// the scene's frame scheduler.
func NewPage(cfg Config) (*Page, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Page{
		cfg:    cfg,
		width:  float64(cfg.Window.Width),
		height: float64(cfg.Window.Height),
	}
	s := NewScene()
	p.Scene = s
	s.SetScroller(NewScroller(cfg.Scroll, p.height))
	s.OnResize = p.resize

	if err := p.buildSections(); err != nil {
		return nil, err
	}
	p.buildRibbon()
	if err := p.buildCan(); err != nil {
		return nil, err
	}
	if err := p.buildMarquee(); err != nil {
		return nil, err
	}

	s.AddOverlay(OverlayFunc(p.drawBackgrounds))
	s.AddLayer(LayerRibbon, p.ribbonCam)
	s.SetLayerLighting(LayerRibbon, cfg.Ribbon.Lighting.Lighting())
	s.AddOverlay(p.Marquee)
	s.AddOverlay(OverlayFunc(p.drawText))
	s.AddLayer(LayerCan, p.canCam)
	s.SetLayerLighting(LayerCan, cfg.Can.Lighting.Lighting())

	// Layout runs first so the engines and the marquee see this frame's
	// viewports.
	s.AddEngine(p)
	s.AddEngine(p.Ribbon)
	s.AddEngine(p.Timeline)

	p.layout(0)
	p.Marquee.Start(s.Frames())
	return p, nil
}

// Config returns the page configuration.
func (p *Page) Config() Config { return p.cfg }

// SectionRect returns the current screen rectangle of the named section.
func (p *Page) SectionRect(name string) (Rect, bool) {
	for _, sec := range p.sections {
		if sec.cfg.Name == name {
			return sec.rect, true
		}
	}
	return Rect{}, false
}

// Dispose stops the marquee and releases its glyph bitmaps.
func (p *Page) Dispose() {
	p.Marquee.Dispose()
}

func (p *Page) buildSections() error {
	p.sections = make([]pageSection, len(p.cfg.Sections))
	for i, sc := range p.cfg.Sections {
		sec := pageSection{cfg: sc}
		if sc.Title != "" && sc.TextSize > 0 {
			f, err := LoadTTFFont(BoldTTF, sc.TextSize)
			if err != nil {
				return err
			}
			sec.title = f
		}
		if sc.Subtitle != "" && sc.TextSize > 0 {
			f, err := LoadTTFFont(goregular.TTF, sc.TextSize*0.4)
			if err != nil {
				return err
			}
			sec.subtitle = f
		}
		p.sections[i] = sec
		if sc.Name == p.cfg.Ribbon.Section {
			p.ribbonIdx = i
		}
		if sc.Name == p.cfg.Marquee.Section {
			p.marqueeIdx = i
		}
	}
	return nil
}

func (p *Page) buildRibbon() {
	rc := p.cfg.Ribbon
	grid := NewVertexGrid(rc.Grid.Width, rc.Grid.Height, rc.Grid.Cols, rc.Grid.Rows)
	mesh := NewWaveMesh("ribbon", grid)
	mesh.Color = rc.Color
	mesh.RenderLayer = LayerRibbon
	p.Scene.Root().AddChild(mesh)

	p.Ribbon = NewWaveField(rc.Wave, grid, mesh.Handle())
	p.ribbonCam = NewCamera(rc.Camera.Position, rc.Camera.FOV, Rect{})
}

func (p *Page) buildCan() error {
	cc := p.cfg.Can
	tl, spin, err := p.cfg.Timeline.Build()
	if err != nil {
		return err
	}

	group := NewContainer("can")
	spinner := NewContainer("can-spin")
	body := NewMesh("can-body", NewCylinder(cc.Radius, cc.Height, cc.Radial, cc.HeightSegs))
	body.Color = cc.Color
	body.RenderLayer = LayerCan
	group.AddChild(spinner)
	spinner.AddChild(body)
	group.SetTransform(tl.Initial())
	p.Scene.Root().AddChild(group)

	p.Timeline = NewScrollTimeline(tl, group.Handle(), spinner.Handle(), spin)
	p.Timeline.OnSegment = func(ev SegmentEvent) {
		if globalDebug {
			log.Printf("[ripple] segment %q %s at %.3f", ev.Label, ev.Kind, ev.Time)
		}
	}
	p.canCam = NewCamera(cc.Camera.Position, cc.Camera.FOV, Rect{})
	return nil
}

func (p *Page) buildMarquee() error {
	mc := p.cfg.Marquee
	font, err := LoadTTFFont(BoldTTF, mc.FontSize)
	if err != nil {
		return err
	}
	paths := make([]*TextPath, 0, len(mc.Paths))
	for i, pc := range mc.Paths {
		tp, err := pc.Build()
		if err != nil {
			return fmt.Errorf("ripple: marquee path %d: %w", i, err)
		}
		paths = append(paths, tp)
	}
	p.Marquee = NewMarquee(MarqueeConfig{
		Phrase:       mc.Phrase,
		Repeat:       mc.Repeat,
		Copies:       mc.Copies,
		StepPerFrame: mc.StepPerFrame,
		FrameLocked:  mc.FrameLocked,
		Color:        mc.Color,
		ViewBox:      mc.ViewBox,
	}, font, paths...)

	if b := mc.Band; b != nil {
		top, err := b.Top.Build()
		if err != nil {
			return fmt.Errorf("ripple: band top: %w", err)
		}
		bottom, err := b.Bottom.Build()
		if err != nil {
			return fmt.Errorf("ripple: band bottom: %w", err)
		}
		op := b.Opacity
		if op <= 0 {
			op = 1
		}
		var c [3]Color
		for i, bc := range b.Colors {
			c[i] = bc.WithAlpha(bc.A * op)
		}
		p.Marquee.Band = NewBand(top, bottom, c[0], c[1], c[2])
	}
	if p.Marquee.PatternWidth() <= 0 {
		log.Printf("[ripple] marquee: phrase could not be measured, text stays static")
	}
	return nil
}

// Update implements Engine: it lays the page out for this frame's progress.
func (p *Page) Update(f *Frame) {
	p.layout(f.Progress)
}

// resize is the Scene's OnResize hook.
func (p *Page) resize(w, h int) {
	p.width, p.height = float64(w), float64(h)
	p.layout(p.Scene.Scroller().Progress())
}

// layout moves every section up by the scroll offset and points the ribbon
// camera and the marquee at their sections.
func (p *Page) layout(progress float64) {
	vh := p.height
	offset := clamp01(progress) * float64(len(p.sections)-1) * vh
	for i := range p.sections {
		p.sections[i].rect = Rect{X: 0, Y: float64(i)*vh - offset, Width: p.width, Height: vh}
	}
	p.ribbonCam.SetViewport(p.sections[p.ribbonIdx].rect)
	p.Marquee.Viewport = p.sections[p.marqueeIdx].rect
	p.canCam.SetViewport(Rect{Width: p.width, Height: vh})
}

// drawBackgrounds fills each visible section with its vertical gradient.
func (p *Page) drawBackgrounds(screen *ebiten.Image) {
	p.bgVerts = p.bgVerts[:0]
	p.bgIndices = p.bgIndices[:0]
	for _, sec := range p.sections {
		r := sec.rect
		if r.Y+r.Height <= 0 || r.Y >= p.height {
			continue
		}
		base := uint16(len(p.bgVerts))
		p.bgVerts = append(p.bgVerts,
			gradientVertex(r.X, r.Y, sec.cfg.Top),
			gradientVertex(r.X+r.Width, r.Y, sec.cfg.Top),
			gradientVertex(r.X, r.Y+r.Height, sec.cfg.Bottom),
			gradientVertex(r.X+r.Width, r.Y+r.Height, sec.cfg.Bottom),
		)
		p.bgIndices = append(p.bgIndices, base, base+2, base+1, base+1, base+2, base+3)
	}
	if len(p.bgIndices) == 0 {
		return
	}
	screen.DrawTriangles(p.bgVerts, p.bgIndices, ensureWhitePixel(), nil)
}

func gradientVertex(x, y float64, c Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: float32(x), DstY: float32(y),
		SrcX: 0.5, SrcY: 0.5,
		ColorR: float32(c.R * c.A), ColorG: float32(c.G * c.A),
		ColorB: float32(c.B * c.A), ColorA: float32(c.A),
	}
}

// drawText draws each visible section's title and subtitle centred in the
// left two thirds of the section.
func (p *Page) drawText(screen *ebiten.Image) {
	for _, sec := range p.sections {
		r := sec.rect
		if sec.title == nil || r.Y+r.Height <= 0 || r.Y >= p.height {
			continue
		}
		cx := r.X + r.Width/3
		cy := r.Y + r.Height/2
		op := &text.DrawOptions{}
		op.LayoutOptions.PrimaryAlign = text.AlignCenter
		op.LayoutOptions.SecondaryAlign = text.AlignEnd
		op.GeoM.Translate(cx, cy)
		op.ColorScale.ScaleWithColor(sec.cfg.Text.toRGBA())
		text.Draw(screen, sec.cfg.Title, sec.title.Face(), op)

		if sec.subtitle == nil {
			continue
		}
		op = &text.DrawOptions{}
		op.LayoutOptions.PrimaryAlign = text.AlignCenter
		op.GeoM.Translate(cx, cy+sec.subtitle.LineHeight()/2)
		op.ColorScale.ScaleWithColor(sec.cfg.Text.toRGBA())
		text.Draw(screen, sec.cfg.Subtitle, sec.subtitle.Face(), op)
	}
}
