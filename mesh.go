package ripple

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// DirectionalLight illuminates every surface from a fixed direction.
type DirectionalLight struct {
	// Position is where the light sits; it shines toward the origin, so only
	// the direction of Position matters.
	Position  Vec3
	Color     Color
	Intensity float64
}

// Lighting is the scene's light rig: one ambient term plus any number of
// directional lights. Shading is Lambertian and evaluated per vertex.
type Lighting struct {
	Ambient          Color
	AmbientIntensity float64
	Directional      []DirectionalLight
}

// shade returns the light color reaching a surface with world normal n.
func (l *Lighting) shade(n Vec3) (r, g, b float64) {
	r = l.Ambient.R * l.AmbientIntensity
	g = l.Ambient.G * l.AmbientIntensity
	b = l.Ambient.B * l.AmbientIntensity
	for i := range l.Directional {
		d := &l.Directional[i]
		lambert := n.Dot(d.Position.Normalize())
		if lambert <= 0 {
			continue
		}
		k := lambert * d.Intensity
		r += d.Color.R * k
		g += d.Color.G * k
		b += d.Color.B * k
	}
	return r, g, b
}

// meshTri is one projected triangle awaiting depth sort.
type meshTri struct {
	i0, i1, i2 uint16
	depth      float64
}

// meshScratch holds per-node projection buffers, grown to a high-water mark
// and reused every frame.
type meshScratch struct {
	verts   []ebiten.Vertex
	depth   []float64
	visible []bool
	tris    []meshTri
	indices []uint16
}

// grow resizes the per-vertex buffers to n entries (never shrinks capacity).
func (b *meshScratch) grow(n int) {
	if cap(b.verts) < n {
		b.verts = make([]ebiten.Vertex, n)
		b.depth = make([]float64, n)
		b.visible = make([]bool, n)
	}
	b.verts = b.verts[:n]
	b.depth = b.depth[:n]
	b.visible = b.visible[:n]
}

// --- White pixel singleton ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured meshes.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// projectMesh transforms, shades and projects every vertex of n's geometry
// and collects the visible triangles sorted back to front. Returns the mean
// triangle depth, used to order mesh nodes against each other.
func projectMesh(n *Node, cam *Camera, light *Lighting) float64 {
	geo := n.Geometry
	buf := &n.meshBuf
	count := geo.VertexCount()
	buf.grow(count)

	tint := n.Color
	for i := 0; i < count; i++ {
		wp := n.worldMatrix.TransformPoint(geo.Position(i))
		wn := n.worldMatrix.TransformDir(geo.Normal(i)).Normalize()
		if n.DoubleSided && wn.Dot(cam.viewDirection(wp)) > 0 {
			wn = wn.Scale(-1)
		}
		screen, depth, ok := cam.Project(wp)
		buf.visible[i] = ok
		buf.depth[i] = depth

		lr, lg, lb := light.shade(wn)
		buf.verts[i] = ebiten.Vertex{
			DstX:   float32(screen.X),
			DstY:   float32(screen.Y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: float32(math.Min(tint.R*lr, 1) * tint.A),
			ColorG: float32(math.Min(tint.G*lg, 1) * tint.A),
			ColorB: float32(math.Min(tint.B*lb, 1) * tint.A),
			ColorA: float32(tint.A),
		}
	}

	idx := geo.Indices()
	buf.tris = buf.tris[:0]
	var total float64
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		if !buf.visible[a] || !buf.visible[b] || !buf.visible[c] {
			continue
		}
		if !n.DoubleSided && screenArea(buf.verts[a], buf.verts[b], buf.verts[c]) >= 0 {
			continue
		}
		d := (buf.depth[a] + buf.depth[b] + buf.depth[c]) / 3
		buf.tris = append(buf.tris, meshTri{a, b, c, d})
		total += d
	}
	sort.Slice(buf.tris, func(i, j int) bool {
		return buf.tris[i].depth > buf.tris[j].depth
	})

	buf.indices = buf.indices[:0]
	for _, t := range buf.tris {
		buf.indices = append(buf.indices, t.i0, t.i1, t.i2)
	}
	if len(buf.tris) == 0 {
		return math.Inf(1)
	}
	return total / float64(len(buf.tris))
}

// screenArea returns twice the signed screen-space area of a triangle.
// Counter-clockwise triangles in world space come out negative because
// screen Y points down.
func screenArea(a, b, c ebiten.Vertex) float32 {
	return (b.DstX-a.DstX)*(c.DstY-a.DstY) - (c.DstX-a.DstX)*(b.DstY-a.DstY)
}

// drawMesh submits the node's sorted triangles built by projectMesh.
func drawMesh(target *ebiten.Image, n *Node) {
	buf := &n.meshBuf
	if len(buf.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	target.DrawTriangles(buf.verts, buf.indices, ensureWhitePixel(), op)
}
