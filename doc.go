// Package ripple renders a scroll-driven page on [Ebitengine]: a surface
// that waves procedurally, an object choreographed by scroll position, and
// text that loops forever along curves.
//
// # Quick start
//
// [NewPage] builds everything from a [Config]; [Run] opens the window:
//
//	page, err := ripple.NewPage(ripple.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer page.Dispose()
//	ripple.Run(page.Scene, ripple.RunConfig{Title: "ripple", Width: 1280, Height: 720})
//
// # Engines
//
// Three engines do the animation. Each implements [Engine] and receives the
// same [Frame] every tick: elapsed time, frame delta, scroll progress and a
// handle resolver.
//
//   - [WaveField] writes a sum of sines into the Z of every vertex of a
//     [VertexGrid], recomputes normals and sways its host node.
//   - [ScrollTimeline] resolves a [Timeline] of eased [Segment]s at the
//     current progress and writes the target transform. Reaching the end of
//     the segment marked ArmsSpin latches a [SpinState] once, for good.
//   - [Marquee] advances a distance on its own [FrameScheduler] chain and
//     lays a repeated phrase along [TextPath]s at (distance mod W) − W·K.
//
// Engines hold node [Handle]s rather than pointers. A handle that does not
// resolve (node not mounted yet, or disposed) makes the engine skip the
// frame.
//
// # Scene
//
// A [Scene] owns the node tree, the engines and an ordered list of draw
// passes: 2D overlays and 3D mesh layers, each layer with its own [Camera]
// and [Lighting]. A [Scroller] turns wheel, key and drag input into damped
// progress.
//
// # Configuration
//
// [Config] is YAML ([LoadConfig]); [DefaultConfig] reproduces the page as
// designed. Ease names follow GSAP ("power1.in", "sine.inOut") and map to
// [gween] curves via [EaseByName].
//
// # Diagnostics
//
// [Scene.SetDebugMode] logs per-frame stats and panics on use of disposed
// nodes. [LoadTestScript] drives scrolling and [Scene.Screenshot] captures
// from a JSON script.
//
// # ECS
//
// The separate github.com/phanxgames/ripple/ecs module forwards timeline
// segment events into a Donburi world.
//
// ripple is single-threaded: every method must be called from the
// Ebitengine update or draw goroutine.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package ripple
