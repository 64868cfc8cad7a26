package ripple

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDefaultTimelineSpin(t *testing.T) {
	_, spin, err := DefaultConfig().Timeline.Build()
	if err != nil {
		t.Fatal(err)
	}
	if spin.Axis != AxisY || spin.Period != 16 {
		t.Errorf("spin = %+v, want y every 16s", spin)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero window", func(c *Config) { c.Window.Width = 0 }},
		{"negative tps", func(c *Config) { c.Window.TPS = -1 }},
		{"pages below one", func(c *Config) { c.Scroll.Pages = 0.5 }},
		{"no sections", func(c *Config) { c.Sections = nil }},
		{"duplicate section", func(c *Config) { c.Sections[1].Name = "hero" }},
		{"unnamed section", func(c *Config) { c.Sections[2].Name = "" }},
		{"missing ribbon section", func(c *Config) { c.Ribbon.Section = "nowhere" }},
		{"missing marquee section", func(c *Config) { c.Marquee.Section = "nowhere" }},
		{"grid too dense", func(c *Config) { c.Ribbon.Grid.Cols, c.Ribbon.Grid.Rows = 400, 400 }},
		{"flat fov", func(c *Config) { c.Can.Camera.FOV = 0 }},
		{"zero can", func(c *Config) { c.Can.Radius = 0 }},
		{"bad ease", func(c *Config) { c.Timeline.Segments[0].Ease = "elastic.out" }},
		{"bad axes", func(c *Config) { c.Timeline.Segments[0].Axes = "w" }},
		{"bad property", func(c *Config) { c.Timeline.Segments[0].Property = "scale" }},
		{"overlap", func(c *Config) { c.Timeline.Segments[2].Start = 0.5 }},
		{"multi-axis spin", func(c *Config) { c.Timeline.Spin.Axis = "xy" }},
		{"no font size", func(c *Config) { c.Marquee.FontSize = 0 }},
		{"no paths", func(c *Config) { c.Marquee.Paths = nil }},
		{"bad path", func(c *Config) { c.Marquee.Paths[0].D = "L 1 1" }},
		{"bad band", func(c *Config) { c.Marquee.Band.Bottom.D = "M 0 0" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.yaml")
	src := `
window:
  width: 800
  title: small
marquee:
  phrase: "HELLO • "
  frame_locked: true
  color: "#ff0000"
can:
  camera:
    position: [1, 2, 3]
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 720 || cfg.Window.Title != "small" {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Marquee.Phrase != "HELLO • " || !cfg.Marquee.FrameLocked {
		t.Errorf("marquee = %+v", cfg.Marquee)
	}
	if cfg.Marquee.Color != (Color{1, 0, 0, 1}) {
		t.Errorf("marquee color = %+v", cfg.Marquee.Color)
	}
	if cfg.Marquee.FontSize != 40 {
		t.Errorf("untouched font size = %v, want default 40", cfg.Marquee.FontSize)
	}
	if cfg.Can.Camera.Position != (Vec3{1, 2, 3}) || cfg.Can.Camera.FOV != 20 {
		t.Errorf("can camera = %+v", cfg.Can.Camera)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	dir := t.TempDir()
	for name, src := range map[string]string{
		"vec":      "can:\n  camera:\n    position: [1, 2]\n",
		"color":    "marquee:\n  color: red\n",
		"invalid":  "window:\n  width: -5\n",
		"not yaml": "window: [\n",
	} {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: LoadConfig succeeded", name)
		}
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	want := DefaultConfig()
	data, err := want.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, data)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("decoded config invalid: %v", err)
	}
	if got.Window != want.Window || got.Scroll != want.Scroll {
		t.Errorf("window/scroll = %+v %+v", got.Window, got.Scroll)
	}
	if len(got.Timeline.Segments) != len(want.Timeline.Segments) {
		t.Fatalf("segments = %d", len(got.Timeline.Segments))
	}
	for i := range want.Timeline.Segments {
		if got.Timeline.Segments[i] != want.Timeline.Segments[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got.Timeline.Segments[i], want.Timeline.Segments[i])
		}
	}
	if got.Marquee.Paths[1] != want.Marquee.Paths[1] {
		t.Errorf("path = %+v", got.Marquee.Paths[1])
	}
	if got.Can.Color != want.Can.Color {
		t.Errorf("can color = %+v, want %+v", got.Can.Color, want.Can.Color)
	}
}

func TestMarshalUsesFlowVectors(t *testing.T) {
	data, err := yaml.Marshal(CameraConfig{Position: Vec3{0, 0, 8}, FOV: 50})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "position: [0, 0, 8]") {
		t.Errorf("yaml = %q", data)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", Color{1, 1, 1, 1}},
		{"#000000", Color{0, 0, 0, 1}},
		{"#ff000080", Color{1, 0, 0, 128.0 / 255}},
		{" #00ff00 ", Color{0, 1, 0, 1}},
		{"0000ff", Color{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "#ff", "#ggg", "#12345"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestColorHex(t *testing.T) {
	for _, s := range []string{"#f97316", "#dc2626cc", "#000000"} {
		if got := MustParseColor(s).Hex(); got != s {
			t.Errorf("Hex round trip %q = %q", s, got)
		}
	}
	if got := (Color{2, -1, 0.5, 1}).Hex(); got != "#ff0080" {
		t.Errorf("clamped Hex = %q", got)
	}
}

func TestMustParseColorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParseColor("nope")
}

func TestParseAxes(t *testing.T) {
	for in, want := range map[string]Axis{"x": AxisX, "XY": AxisX | AxisY, "zyx": AxisAll, "yy": AxisY} {
		got, err := ParseAxes(in)
		if err != nil || got != want {
			t.Errorf("ParseAxes(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "w", "x y"} {
		if _, err := ParseAxes(bad); !errors.Is(err, ErrInvalidSegment) {
			t.Errorf("ParseAxes(%q) err = %v", bad, err)
		}
	}
}

func TestPathConfigBuild(t *testing.T) {
	p, err := PathConfig{D: "M0 0 L 10 0", Translate: Vec2{0, 30}, Reverse: true}.Build()
	if err != nil {
		t.Fatal(err)
	}
	pts := p.Points()
	if pts[0] != (Vec2{10, 30}) || pts[1] != (Vec2{0, 30}) {
		t.Errorf("points = %+v", pts)
	}
}

func TestLightingConfig(t *testing.T) {
	l := DefaultConfig().Ribbon.Lighting.Lighting()
	if len(l.Directional) != 2 {
		t.Fatalf("directional = %d, want 2", len(l.Directional))
	}
	if math.Abs(l.Directional[0].Intensity-2/math.Pi) > 1e-12 {
		t.Errorf("intensity = %v", l.Directional[0].Intensity)
	}
}
