package ripple

import "math"

// --- StaticGeometry ---

// StaticGeometry is an immutable triangle mesh built once by a helper such
// as NewCylinder. It satisfies Geometry.
type StaticGeometry struct {
	positions []Vec3
	normals   []Vec3
	indices   []uint16
}

// VertexCount returns the number of vertices.
func (g *StaticGeometry) VertexCount() int { return len(g.positions) }

// Position returns vertex i's position.
func (g *StaticGeometry) Position(i int) Vec3 { return g.positions[i] }

// Normal returns vertex i's normal.
func (g *StaticGeometry) Normal(i int) Vec3 { return g.normals[i] }

// Indices returns the triangle list. The returned slice MUST NOT be mutated.
func (g *StaticGeometry) Indices() []uint16 { return g.indices }

func (g *StaticGeometry) addVertex(p, n Vec3) uint16 {
	g.positions = append(g.positions, p)
	g.normals = append(g.normals, n)
	return uint16(len(g.positions) - 1)
}

// --- Cylinder ---

// NewCylinder builds a capped cylinder around the Y axis, centred on the
// origin. radial is the number of segments around the circumference
// (minimum 3) and heightSegs the number of rings along the side (minimum
// 1). Triangles wind counter-clockwise seen from outside.
func NewCylinder(radius, height float64, radial, heightSegs int) *StaticGeometry {
	if radial < 3 {
		radial = 3
	}
	if heightSegs < 1 {
		heightSegs = 1
	}
	g := &StaticGeometry{}

	// Side. The seam column is duplicated so each ring has radial+1 vertices.
	ring := radial + 1
	for j := 0; j <= heightSegs; j++ {
		y := height/2 - float64(j)/float64(heightSegs)*height
		for i := 0; i <= radial; i++ {
			theta := 2 * math.Pi * float64(i) / float64(radial)
			sin, cos := math.Sincos(theta)
			g.addVertex(Vec3{radius * sin, y, radius * cos}, Vec3{sin, 0, cos})
		}
	}
	for j := 0; j < heightSegs; j++ {
		for i := 0; i < radial; i++ {
			a := uint16(j*ring + i)
			b := uint16((j+1)*ring + i)
			c := b + 1
			d := a + 1
			g.indices = append(g.indices, a, b, d, b, c, d)
		}
	}

	g.addCap(radius, height/2, radial, 1)
	g.addCap(radius, -height/2, radial, -1)
	return g
}

// addCap appends a triangle fan closing the cylinder at y, facing up when
// sign is positive and down otherwise.
func (g *StaticGeometry) addCap(radius, y float64, radial int, sign float64) {
	n := Vec3{Y: sign}
	centre := g.addVertex(Vec3{Y: y}, n)
	first := uint16(len(g.positions))
	for i := 0; i <= radial; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(radial))
		g.addVertex(Vec3{radius * sin, y, radius * cos}, n)
	}
	for i := 0; i < radial; i++ {
		a, b := first+uint16(i), first+uint16(i)+1
		if sign > 0 {
			g.indices = append(g.indices, centre, a, b)
		} else {
			g.indices = append(g.indices, centre, b, a)
		}
	}
}

// --- Plane ---

// NewPlaneGeometry builds a flat width×height rectangle in the XY plane
// facing +Z, split into cols×rows cells, with the same vertex layout as a
// VertexGrid. Use it for surfaces that never deform.
func NewPlaneGeometry(width, height float64, cols, rows int) *StaticGeometry {
	grid := NewVertexGrid(width, height, cols, rows)
	return &StaticGeometry{
		positions: grid.positions,
		normals:   grid.normals,
		indices:   grid.indices,
	}
}
