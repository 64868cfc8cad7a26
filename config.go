package ripple

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Config.Validate and LoadConfig.
var ErrInvalidConfig = errors.New("ripple: invalid config")

// Config describes the whole page: window, the three animated parts and
// the scrolling sections they sit in.
type Config struct {
	Window   WindowConfig    `yaml:"window"`
	Scroll   ScrollConfig    `yaml:"scroll"`
	Sections []SectionConfig `yaml:"sections"`
	Ribbon   RibbonConfig    `yaml:"ribbon"`
	Can      CanConfig       `yaml:"can"`
	Timeline TimelineConfig  `yaml:"timeline"`
	Marquee  MarqueeSection  `yaml:"marquee"`
}

// WindowConfig configures the OS window.
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
	TPS       int    `yaml:"tps"`
}

// SectionConfig is one full-viewport band of the page, top to bottom.
type SectionConfig struct {
	Name string `yaml:"name"`
	// Top and Bottom are the background gradient ends. Equal colors give a
	// flat fill.
	Top      Color   `yaml:"top"`
	Bottom   Color   `yaml:"bottom"`
	Title    string  `yaml:"title"`
	Subtitle string  `yaml:"subtitle"`
	TextSize float64 `yaml:"text_size"`
	Text     Color   `yaml:"text"`
}

// CameraConfig places a perspective camera looking at the origin.
type CameraConfig struct {
	Position Vec3    `yaml:"position"`
	FOV      float64 `yaml:"fov"`
}

// LightConfig is one directional light.
type LightConfig struct {
	Position  Vec3    `yaml:"position"`
	Color     Color   `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
}

// LightingConfig is a layer's light rig.
type LightingConfig struct {
	Ambient          Color         `yaml:"ambient"`
	AmbientIntensity float64       `yaml:"ambient_intensity"`
	Directional      []LightConfig `yaml:"directional"`
}

// GridConfig sizes the ribbon's vertex grid.
type GridConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Cols   int     `yaml:"cols"`
	Rows   int     `yaml:"rows"`
}

// RibbonConfig is the waving surface in the hero section.
type RibbonConfig struct {
	Section  string         `yaml:"section"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Grid     GridConfig     `yaml:"grid"`
	Wave     WaveParams     `yaml:"wave"`
	Color    Color          `yaml:"color"`
}

// CanConfig is the scroll-choreographed object, drawn over the whole window.
type CanConfig struct {
	Camera     CameraConfig   `yaml:"camera"`
	Lighting   LightingConfig `yaml:"lighting"`
	Radius     float64        `yaml:"radius"`
	Height     float64        `yaml:"height"`
	Radial     int            `yaml:"radial_segments"`
	HeightSegs int            `yaml:"height_segments"`
	Color      Color          `yaml:"color"`
}

// SegmentConfig is the YAML form of a Segment.
type SegmentConfig struct {
	Label    string  `yaml:"label"`
	Property string  `yaml:"property"` // "position" or "rotation"
	Axes     string  `yaml:"axes"`     // any of "x", "y", "z", e.g. "xy"
	To       Vec3    `yaml:"to"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Ease     string  `yaml:"ease"`
	ArmsSpin bool    `yaml:"arms_spin"`
}

// SpinSection is the YAML form of a SpinConfig.
type SpinSection struct {
	Axis   string  `yaml:"axis"`
	Period float64 `yaml:"period"`
}

// TimelineConfig drives the can from scroll progress.
type TimelineConfig struct {
	Initial  Transform       `yaml:"initial"`
	Segments []SegmentConfig `yaml:"segments"`
	Spin     SpinSection     `yaml:"spin"`
}

// PathConfig is an SVG path in view-box units, optionally shifted.
type PathConfig struct {
	D         string `yaml:"d"`
	Translate Vec2   `yaml:"translate"`
	Reverse   bool   `yaml:"reverse"`
}

// BandConfig is the gradient strip behind the marquee.
type BandConfig struct {
	Top     PathConfig `yaml:"top"`
	Bottom  PathConfig `yaml:"bottom"`
	Colors  [3]Color   `yaml:"colors"`
	Opacity float64    `yaml:"opacity"`
}

// MarqueeSection configures the looping text.
type MarqueeSection struct {
	Section      string       `yaml:"section"`
	Phrase       string       `yaml:"phrase"`
	FontSize     float64      `yaml:"font_size"`
	Repeat       int          `yaml:"repeat"`
	Copies       int          `yaml:"copies"`
	StepPerFrame float64      `yaml:"step_per_frame"`
	FrameLocked  bool         `yaml:"frame_locked"`
	Color        Color        `yaml:"color"`
	ViewBox      Vec2         `yaml:"view_box"`
	Paths        []PathConfig `yaml:"paths"`
	Band         *BandConfig  `yaml:"band"`
}

// DefaultConfig returns the page as designed: a white ribbon on a red hero,
// a dark middle section, a marquee over a red band, and a can that flies in
// and starts spinning as the page scrolls.
func DefaultConfig() Config {
	const wavePath = "M0 200 Q 175 150 350 200 T 700 200 T 1050 200 T 1400 200"
	red500 := MustParseColor("#ef4444")
	red600 := MustParseColor("#dc2626")
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "ripple", Resizable: true, TPS: 60},
		Scroll: DefaultScrollConfig(),
		Sections: []SectionConfig{
			{
				Name: "hero", Top: red500, Bottom: red500,
				Title: "Ripple", Subtitle: "It's a demo page",
				TextSize: 96, Text: MustParseColor("#fef2f2"),
			},
			{
				Name: "dev", Top: red500, Bottom: Color{A: 1},
				Title: "The Dev", Subtitle: "Procedural surfaces, scroll timelines and looping type",
				TextSize: 72, Text: ColorWhite,
			},
			{Name: "marquee", Top: Color{A: 1}, Bottom: Color{A: 1}},
		},
		Ribbon: RibbonConfig{
			Section: "hero",
			Camera:  CameraConfig{Position: Vec3{0, 0, 8}, FOV: 50},
			Lighting: LightingConfig{
				Ambient: ColorWhite, AmbientIntensity: 2 / math.Pi,
				Directional: []LightConfig{
					{Position: Vec3{10, 10, 5}, Color: ColorWhite, Intensity: 2 / math.Pi},
					{Position: Vec3{-10, -10, -5}, Color: ColorWhite, Intensity: 2 / math.Pi},
				},
			},
			Grid:  GridConfig{Width: 20, Height: 5.5, Cols: 70, Rows: 3},
			Wave:  DefaultWaveParams(),
			Color: ColorWhite,
		},
		Can: CanConfig{
			Camera: CameraConfig{Position: Vec3{-5, 0, 10}, FOV: 20},
			Lighting: LightingConfig{
				Ambient: ColorWhite, AmbientIntensity: 0.45,
				Directional: []LightConfig{
					{Position: Vec3{5, 8, 10}, Color: ColorWhite, Intensity: 0.7},
				},
			},
			Radius: 1, Height: 1, Radial: 32, HeightSegs: 32,
			Color: MustParseColor("#f97316"),
		},
		Timeline: TimelineConfig{
			Initial: Transform{Position: Vec3{2, 0, 0}},
			Segments: []SegmentConfig{
				{Label: "position move", Property: "position", Axes: "xyz", To: Vec3{0.5, 0, 3}, Start: 0, Duration: 1, Ease: "power1.in"},
				{Label: "rotation", Property: "rotation", Axes: "xy", To: Vec3{math.Pi / 4, -math.Pi / 4, 0}, Start: 0, Duration: 1, Ease: "power1.in", ArmsSpin: true},
				{Label: "position return", Property: "position", Axes: "xyz", To: Vec3{}, Start: 5, Duration: 1, Ease: "power1.out"},
				{Label: "rotation return", Property: "rotation", Axes: "x", To: Vec3{}, Start: 5, Duration: 1, Ease: "power1.out"},
			},
			Spin: SpinSection{Axis: "y", Period: 16},
		},
		Marquee: MarqueeSection{
			Section:      "marquee",
			Phrase:       "REFRESHING • DELICIOUS • ICONIC • CLASSIC • ",
			FontSize:     40,
			Repeat:       8,
			Copies:       12,
			StepPerFrame: 0.5,
			Color:        ColorWhite,
			ViewBox:      Vec2{1400, 600},
			Paths: []PathConfig{
				{D: wavePath},
				{D: "M0 400 Q 175 350 350 400 T 700 400 T 1050 400 T 1400 400", Translate: Vec2{0, 30}},
			},
			Band: &BandConfig{
				Top:     PathConfig{D: wavePath},
				Bottom:  PathConfig{D: "M1400 400 Q 1225 450 1050 400 T 700 400 T 350 400 T 0 400", Reverse: true},
				Colors:  [3]Color{red600.WithAlpha(0.8), red500.WithAlpha(0.9), red600.WithAlpha(0.8)},
				Opacity: 0.6,
			},
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig, so a file only needs the
// fields it changes, then validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("ripple: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("ripple: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks ranges and that every named section, ease and path
// resolves. It compiles the timeline to catch overlaps early.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS < 0 {
		return bad("window tps %d", c.Window.TPS)
	}
	if c.Scroll.Pages < 1 {
		return bad("scroll pages %v < 1", c.Scroll.Pages)
	}
	if c.Scroll.Damping < 0 {
		return bad("scroll damping %v < 0", c.Scroll.Damping)
	}
	if len(c.Sections) == 0 {
		return bad("no sections")
	}
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.Name == "" {
			return bad("section without a name")
		}
		if seen[s.Name] {
			return bad("duplicate section %q", s.Name)
		}
		seen[s.Name] = true
	}
	if !seen[c.Ribbon.Section] {
		return bad("ribbon section %q not found", c.Ribbon.Section)
	}
	if !seen[c.Marquee.Section] {
		return bad("marquee section %q not found", c.Marquee.Section)
	}
	if c.Ribbon.Grid.Width <= 0 || c.Ribbon.Grid.Height <= 0 {
		return bad("ribbon grid size %vx%v", c.Ribbon.Grid.Width, c.Ribbon.Grid.Height)
	}
	if verts := (c.Ribbon.Grid.Cols + 1) * (c.Ribbon.Grid.Rows + 1); verts > math.MaxUint16 {
		return bad("ribbon grid has %d vertices, max %d", verts, math.MaxUint16)
	}
	for _, cam := range []CameraConfig{c.Ribbon.Camera, c.Can.Camera} {
		if cam.FOV <= 0 || cam.FOV >= 180 {
			return bad("camera fov %v", cam.FOV)
		}
	}
	if c.Can.Radius <= 0 || c.Can.Height <= 0 {
		return bad("can size %vx%v", c.Can.Radius, c.Can.Height)
	}
	if _, _, err := c.Timeline.Build(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Marquee.FontSize <= 0 {
		return bad("marquee font size %v", c.Marquee.FontSize)
	}
	if len(c.Marquee.Paths) == 0 {
		return bad("marquee has no paths")
	}
	for _, p := range c.Marquee.Paths {
		if _, err := p.Build(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if b := c.Marquee.Band; b != nil {
		if _, err := b.Top.Build(); err != nil {
			return fmt.Errorf("%w: band: %w", ErrInvalidConfig, err)
		}
		if _, err := b.Bottom.Build(); err != nil {
			return fmt.Errorf("%w: band: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Build compiles the segments into a Timeline and resolves the spin.
func (tc TimelineConfig) Build() (*Timeline, SpinConfig, error) {
	segs := make([]Segment, 0, len(tc.Segments))
	for i, sc := range tc.Segments {
		s, err := sc.Segment()
		if err != nil {
			return nil, SpinConfig{}, fmt.Errorf("segment %d: %w", i, err)
		}
		segs = append(segs, s)
	}
	tl, err := NewTimeline(tc.Initial, segs)
	if err != nil {
		return nil, SpinConfig{}, err
	}
	spin := SpinConfig{Period: tc.Spin.Period}
	if tc.Spin.Axis != "" {
		axis, err := ParseAxes(tc.Spin.Axis)
		if err != nil {
			return nil, SpinConfig{}, fmt.Errorf("spin: %w", err)
		}
		if axis != AxisX && axis != AxisY && axis != AxisZ {
			return nil, SpinConfig{}, fmt.Errorf("spin: %w: axis %q must be a single axis", ErrInvalidSegment, tc.Spin.Axis)
		}
		spin.Axis = axis
	}
	return tl, spin, nil
}

// Segment converts the YAML form, resolving the property, axes and ease.
func (sc SegmentConfig) Segment() (Segment, error) {
	var prop Property
	switch strings.ToLower(sc.Property) {
	case "position", "":
		prop = PropertyPosition
	case "rotation":
		prop = PropertyRotation
	default:
		return Segment{}, fmt.Errorf("%w: property %q", ErrInvalidSegment, sc.Property)
	}
	axes, err := ParseAxes(sc.Axes)
	if err != nil {
		return Segment{}, err
	}
	fn, err := EaseByName(sc.Ease)
	if err != nil {
		return Segment{}, err
	}
	return Segment{
		Label:    sc.Label,
		Property: prop,
		Axes:     axes,
		To:       sc.To,
		Start:    sc.Start,
		Duration: sc.Duration,
		Ease:     fn,
		ArmsSpin: sc.ArmsSpin,
	}, nil
}

// ParseAxes parses an axis set such as "x", "xy" or "xyz".
func ParseAxes(s string) (Axis, error) {
	var a Axis
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'x':
			a |= AxisX
		case 'y':
			a |= AxisY
		case 'z':
			a |= AxisZ
		default:
			return 0, fmt.Errorf("%w: axes %q", ErrInvalidSegment, s)
		}
	}
	if a == 0 {
		return 0, fmt.Errorf("%w: no axes", ErrInvalidSegment)
	}
	return a, nil
}

// Build parses, optionally reverses, and translates the path.
func (pc PathConfig) Build() (*TextPath, error) {
	p, err := ParseSVGPath(pc.D)
	if err != nil {
		return nil, err
	}
	if pc.Reverse {
		p = p.Reverse()
	}
	if pc.Translate != (Vec2{}) {
		p = p.Translate(pc.Translate.X, pc.Translate.Y)
	}
	return p, nil
}

// Lighting converts the YAML form.
func (lc LightingConfig) Lighting() Lighting {
	l := Lighting{Ambient: lc.Ambient, AmbientIntensity: lc.AmbientIntensity}
	for _, d := range lc.Directional {
		l.Directional = append(l.Directional, DirectionalLight(d))
	}
	return l
}

// --- YAML encodings ---

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("ripple: color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("ripple: color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// MustParseColor is ParseColor for constants. It panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) Hex() string {
	b := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }
	if b(c.A) == 255 {
		return fmt.Sprintf("#%02x%02x%02x", b(c.R), b(c.G), b(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", b(c.R), b(c.G), b(c.B), b(c.A))
}

// UnmarshalYAML decodes a hex string.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color as a hex string.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// UnmarshalYAML decodes a [x, y, z] sequence.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var xs []float64
	if err := value.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: want [x, y, z], got %d values", value.Line, len(xs))
	}
	*v = Vec3{xs[0], xs[1], xs[2]}
	return nil
}

// MarshalYAML encodes the vector as a flow sequence.
func (v Vec3) MarshalYAML() (any, error) {
	return flowSeq(v.X, v.Y, v.Z), nil
}

// UnmarshalYAML decodes a [x, y] sequence.
func (v *Vec2) UnmarshalYAML(value *yaml.Node) error {
	var xs []float64
	if err := value.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 2 {
		return fmt.Errorf("line %d: want [x, y], got %d values", value.Line, len(xs))
	}
	*v = Vec2{xs[0], xs[1]}
	return nil
}

// MarshalYAML encodes the vector as a flow sequence.
func (v Vec2) MarshalYAML() (any, error) {
	return flowSeq(v.X, v.Y), nil
}

func flowSeq(xs ...float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, x := range xs {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(x, 'g', -1, 64),
		})
	}
	return n
}
