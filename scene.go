package ripple

import (
	"fmt"
	"image"
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Overlay draws 2D content in its slot of the scene's pass order.
type Overlay interface {
	Draw(screen *ebiten.Image)
}

// OverlayFunc adapts a plain function to Overlay.
type OverlayFunc func(screen *ebiten.Image)

// Draw implements Overlay.
func (f OverlayFunc) Draw(screen *ebiten.Image) { f(screen) }

// drawPass is one step of Scene.Draw: either an overlay or the mesh nodes of
// one render layer seen through that layer's camera.
type drawPass struct {
	overlay  Overlay
	layer    uint8
	camera   *Camera
	lighting *Lighting // nil uses Scene.Lighting
}

// Scene is the top-level object that owns the node tree, the engines, the
// cameras and lights, the scroll source and the frame scheduler.
//
// Every frame, Update advances time and scroll, drains frame requests, runs
// each engine with the same Frame, then refreshes world transforms; Draw
// renders from that state, pass by pass in registration order. Nothing runs
// between Update and Draw.
type Scene struct {
	root  *Node
	nodes map[Handle]*Node

	engines []Engine
	passes  []drawPass
	frames  FrameScheduler

	scroller *Scroller
	Lighting Lighting

	// ClearColor fills the screen before drawing. Zero leaves it untouched.
	ClearColor Color

	// OnResize, if set, is called when the window's layout size changes.
	// Without it every layer camera is resized to the full window.
	OnResize func(width, height int)

	elapsed    float64
	frameCount uint64
	updateFunc func() error
	pollInput  bool
	width      int
	height     int

	// Render state
	meshOrder []meshDraw

	// Diagnostics
	debug              bool
	ScreenshotDir      string
	screenshotQueue    []string
	screenshotsWritten []string
	testRunner         *TestRunner
}

// meshDraw pairs a projected mesh node with its mean depth.
type meshDraw struct {
	node  *Node
	depth float64
}

// NewScene creates a new scene with a pre-created, mounted root container.
func NewScene() *Scene {
	s := &Scene{
		nodes:         make(map[Handle]*Node),
		ScreenshotDir: "screenshots",
	}
	s.root = NewContainer("root")
	s.mount(s.root)
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Node resolves a handle to a mounted node. Implements NodeResolver.
func (s *Scene) Node(h Handle) (*Node, bool) {
	n, ok := s.nodes[h]
	if !ok || n.disposed {
		return nil, false
	}
	return n, true
}

// mount registers n and its subtree.
func (s *Scene) mount(n *Node) {
	n.scene = s
	s.nodes[n.ID] = n
	for _, c := range n.children {
		s.mount(c)
	}
}

// unmount deregisters n and its subtree.
func (s *Scene) unmount(n *Node) {
	delete(s.nodes, n.ID)
	n.scene = nil
	for _, c := range n.children {
		s.unmount(c)
	}
}

// AddEngine registers a per-frame engine. Engines run in registration order.
func (s *Scene) AddEngine(e Engine) {
	s.engines = append(s.engines, e)
}

// AddOverlay appends a 2D pass to the draw order.
func (s *Scene) AddOverlay(o Overlay) {
	s.passes = append(s.passes, drawPass{overlay: o})
}

// AddLayer appends a mesh pass that draws every visible mesh node whose
// RenderLayer is layer, projected by cam and clipped to cam.Viewport. If the
// layer already has a pass its camera is replaced in place.
func (s *Scene) AddLayer(layer uint8, cam *Camera) {
	for i := range s.passes {
		if s.passes[i].overlay == nil && s.passes[i].layer == layer {
			s.passes[i].camera = cam
			return
		}
	}
	s.passes = append(s.passes, drawPass{layer: layer, camera: cam})
}

// SetLayerLighting gives layer its own light rig instead of Scene.Lighting.
// The layer must already have been added.
func (s *Scene) SetLayerLighting(layer uint8, l Lighting) {
	for i := range s.passes {
		if s.passes[i].overlay == nil && s.passes[i].layer == layer {
			s.passes[i].lighting = &l
			return
		}
	}
}

// SetCamera sets the camera of render layer 0.
func (s *Scene) SetCamera(c *Camera) { s.AddLayer(0, c) }

// Camera returns the camera of render layer 0, or nil.
func (s *Scene) Camera() *Camera { return s.LayerCamera(0) }

// LayerCamera returns the camera drawing layer, or nil.
func (s *Scene) LayerCamera(layer uint8) *Camera {
	for _, p := range s.passes {
		if p.overlay == nil && p.layer == layer {
			return p.camera
		}
	}
	return nil
}

// SetScroller sets the scroll source that feeds Frame.Progress.
func (s *Scene) SetScroller(sc *Scroller) { s.scroller = sc }

// Scroller returns the scroll source.
func (s *Scene) Scroller() *Scroller { return s.scroller }

// Frames returns the scheduler drained at the start of every frame.
func (s *Scene) Frames() *FrameScheduler { return &s.frames }

// Elapsed returns seconds of scene time.
func (s *Scene) Elapsed() float64 { return s.elapsed }

// FrameCount returns the number of completed updates.
func (s *Scene) FrameCount() uint64 { return s.frameCount }

// SetUpdateFunc registers a callback run once per frame before the engines.
func (s *Scene) SetUpdateFunc(fn func() error) { s.updateFunc = fn }

// Update advances the scene by one tick at Ebitengine's TPS.
func (s *Scene) Update() error {
	return s.Step(1.0 / float64(ebiten.TPS()))
}

// Step advances the scene by dt seconds.
func (s *Scene) Step(dt float64) error {
	s.elapsed += dt
	s.frameCount++

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if s.scroller != nil {
		if s.pollInput {
			s.scroller.Update(dt)
		} else {
			s.scroller.update(dt, scrollInput{})
		}
	}
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}

	f := Frame{Elapsed: s.elapsed, Delta: dt, Nodes: s}
	if s.scroller != nil {
		f.Progress = s.scroller.Progress()
	}
	s.frames.Run(&f)
	for _, e := range s.engines {
		e.Update(&f)
	}

	updateWorldTransform(s.root, identityMat4, false)
	return nil
}

// Draw runs every pass in order: overlays draw directly, mesh layers draw
// their nodes back to front.
func (s *Scene) Draw(screen *ebiten.Image) {
	var t0 time.Time
	var stats debugStats
	if s.debug {
		t0 = time.Now()
	}

	if s.ClearColor != (Color{}) {
		screen.Fill(s.ClearColor.toRGBA())
	}

	for _, p := range s.passes {
		if p.overlay != nil {
			p.overlay.Draw(screen)
			continue
		}
		if p.camera == nil {
			continue
		}
		light := p.lighting
		if light == nil {
			light = &s.Lighting
		}
		s.drawLayer(screen, p.layer, p.camera, light, &stats)
	}

	if s.debug {
		stats.drawTime = time.Since(t0)
		s.debugLog(stats)
	}

	s.flushScreenshots(screen)
}

// drawLayer projects, sorts and submits one render layer.
func (s *Scene) drawLayer(screen *ebiten.Image, layer uint8, cam *Camera, light *Lighting, stats *debugStats) {
	vp := cam.Viewport
	clip := image.Rect(int(vp.X), int(vp.Y), int(math.Ceil(vp.X+vp.Width)), int(math.Ceil(vp.Y+vp.Height)))
	clip = clip.Intersect(screen.Bounds())
	if clip.Empty() {
		return
	}
	dst := screen.SubImage(clip).(*ebiten.Image)

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	s.meshOrder = s.meshOrder[:0]
	s.collectMeshes(s.root, layer, cam, light)
	sort.SliceStable(s.meshOrder, func(i, j int) bool {
		return s.meshOrder[i].depth > s.meshOrder[j].depth
	})
	if s.debug {
		stats.projectTime += time.Since(t0)
	}
	for _, m := range s.meshOrder {
		drawMesh(dst, m.node)
		stats.meshCount++
		stats.triangleCount += len(m.node.meshBuf.tris)
	}
}

// collectMeshes projects every visible mesh node of layer under n.
func (s *Scene) collectMeshes(n *Node, layer uint8, cam *Camera, light *Lighting) {
	if !n.Visible {
		return
	}
	if n.Type == NodeTypeMesh && n.RenderLayer == layer && n.Geometry != nil && n.Geometry.VertexCount() > 0 {
		d := projectMesh(n, cam, light)
		s.meshOrder = append(s.meshOrder, meshDraw{node: n, depth: d})
	}
	for _, c := range n.children {
		s.collectMeshes(c, layer, cam, light)
	}
}

// layout implements the sizing half of ebiten.Game.
func (s *Scene) layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != s.width || outsideHeight != s.height {
		s.width, s.height = outsideWidth, outsideHeight
		if s.scroller != nil {
			s.scroller.SetViewportHeight(float64(outsideHeight))
		}
		if s.OnResize != nil {
			s.OnResize(outsideWidth, outsideHeight)
		} else {
			full := Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
			for _, p := range s.passes {
				if p.camera != nil {
					p.camera.SetViewport(full)
				}
			}
		}
	}
	return outsideWidth, outsideHeight
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth warnings are printed, and per-frame timing stats
// are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// and engine code (which lack a Scene pointer) can check it cheaply.
var globalDebug bool

// --- Run ---

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	ShowFPS   bool
	Resizable bool
	// TPS overrides Ebitengine's tick rate when positive.
	TPS int
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
	fps   *fpsOverlay
}

func (g *game) Update() error {
	if err := g.scene.Update(); err != nil {
		return err
	}
	if g.fps != nil {
		g.fps.update(1.0 / float64(ebiten.TPS()))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.fps != nil {
		g.fps.Draw(screen)
	}
}

func (g *game) Layout(w, h int) (int, int) {
	return g.scene.layout(w, h)
}

// Run opens a window and drives the scene until the window closes or an
// update returns an error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("ripple: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	scene.pollInput = true
	g := &game{scene: scene}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}
	return ebiten.RunGame(g)
}
