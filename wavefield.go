package ripple

import "math"

// --- VertexGrid ---

// VertexGrid is a regular (cols+1)×(rows+1) grid of vertices on a plane,
// centred on the origin. X and Y are fixed at creation; only Z and the
// derived normals change afterwards. Vertices are stored row-major starting
// at the top edge (Y = +height/2), left to right.
type VertexGrid struct {
	cols, rows    int
	width, height float64
	positions     []Vec3
	normals       []Vec3
	indices       []uint16
}

// NewVertexGrid creates a flat grid of width×height units split into cols×rows
// cells. cols and rows are clamped to at least 1.
func NewVertexGrid(width, height float64, cols, rows int) *VertexGrid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	vcols := cols + 1
	vrows := rows + 1
	g := &VertexGrid{
		cols:      cols,
		rows:      rows,
		width:     width,
		height:    height,
		positions: make([]Vec3, vcols*vrows),
		normals:   make([]Vec3, vcols*vrows),
		indices:   make([]uint16, cols*rows*6),
	}

	cellW := width / float64(cols)
	cellH := height / float64(rows)
	for r := 0; r < vrows; r++ {
		y := height/2 - float64(r)*cellH
		for c := 0; c < vcols; c++ {
			idx := r*vcols + c
			g.positions[idx] = Vec3{X: float64(c)*cellW - width/2, Y: y}
			g.normals[idx] = Vec3{Z: 1}
		}
	}

	// Two counter-clockwise triangles per cell, facing +Z.
	ii := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := uint16(r*vcols + c)
			b := uint16((r+1)*vcols + c)
			cc := b + 1
			d := a + 1
			g.indices[ii+0] = a
			g.indices[ii+1] = b
			g.indices[ii+2] = d
			g.indices[ii+3] = b
			g.indices[ii+4] = cc
			g.indices[ii+5] = d
			ii += 6
		}
	}
	return g
}

// Cols returns the number of grid cells across.
func (g *VertexGrid) Cols() int { return g.cols }

// Rows returns the number of grid cells down.
func (g *VertexGrid) Rows() int { return g.rows }

// View returns a read-only view of the grid for renderers.
func (g *VertexGrid) View() GridView {
	return GridView{g: g}
}

// computeNormals recomputes per-vertex normals by accumulating the
// unnormalised (area-weighted) normal of every adjacent face, then
// normalising. A vertex whose accumulated normal vanishes gets +Z.
func (g *VertexGrid) computeNormals() {
	for i := range g.normals {
		g.normals[i] = Vec3{}
	}
	for i := 0; i+2 < len(g.indices); i += 3 {
		a, b, c := g.indices[i], g.indices[i+1], g.indices[i+2]
		pa, pb, pc := g.positions[a], g.positions[b], g.positions[c]
		fn := pc.Sub(pb).Cross(pa.Sub(pb))
		g.normals[a] = g.normals[a].Add(fn)
		g.normals[b] = g.normals[b].Add(fn)
		g.normals[c] = g.normals[c].Add(fn)
	}
	for i, n := range g.normals {
		if n.Len() < 1e-12 {
			g.normals[i] = Vec3{Z: 1}
			continue
		}
		g.normals[i] = n.Normalize()
	}
}

// GridView is a read-only window onto a VertexGrid. It satisfies Geometry.
type GridView struct {
	g *VertexGrid
}

// Valid reports whether the view refers to a grid.
func (v GridView) Valid() bool { return v.g != nil }

// VertexCount returns the number of vertices.
func (v GridView) VertexCount() int {
	if v.g == nil {
		return 0
	}
	return len(v.g.positions)
}

// Position returns vertex i's current position.
func (v GridView) Position(i int) Vec3 { return v.g.positions[i] }

// Normal returns vertex i's current normal.
func (v GridView) Normal(i int) Vec3 { return v.g.normals[i] }

// Indices returns the triangle list. The returned slice MUST NOT be mutated.
func (v GridView) Indices() []uint16 {
	if v.g == nil {
		return nil
	}
	return v.g.indices
}

// Cols returns the number of grid cells across.
func (v GridView) Cols() int { return v.g.cols }

// Rows returns the number of grid cells down.
func (v GridView) Rows() int { return v.g.rows }

// --- WaveParams ---

// Harmonic is one sinusoid of the displacement sum:
//
//	Amplitude · sin(FreqX·x + FreqY·y + FreqT·t·speed + Phase)
type Harmonic struct {
	Amplitude float64 `yaml:"amplitude"`
	FreqX     float64 `yaml:"freq_x"`
	FreqY     float64 `yaml:"freq_y"`
	FreqT     float64 `yaml:"freq_t"`
	Phase     float64 `yaml:"phase"`
}

// WaveParams defines the ribbon's displacement function and sway.
type WaveParams struct {
	// Speed scales time for every harmonic and for the tilt.
	Speed     float64    `yaml:"speed"`
	Harmonics []Harmonic `yaml:"harmonics"`
	// TiltRate and TiltAmplitude drive the host's Z rotation:
	// sin(t·Speed·TiltRate)·TiltAmplitude.
	TiltRate      float64 `yaml:"tilt_rate"`
	TiltAmplitude float64 `yaml:"tilt_amplitude"`
}

// DefaultWaveParams returns the rolling ribbon used on the hero section.
// The time frequencies 0.6, 0.8, 1 and 1.5 against the spatial frequencies
// keep the surface from settling into a standing wave.
func DefaultWaveParams() WaveParams {
	return WaveParams{
		Speed: 0.2,
		Harmonics: []Harmonic{
			{Amplitude: 0.3, FreqX: 0.5, FreqT: 0.8},
			{Amplitude: 0.2, FreqY: 0.3, FreqT: 0.6},
			{Amplitude: 0.8, FreqX: 0.5, FreqT: 1},
			{Amplitude: 0.5, FreqY: 0.3, FreqT: 1.5},
			{Amplitude: 0.7, FreqX: 0.2, FreqY: 0.2, FreqT: 1},
		},
		TiltRate:      0.2,
		TiltAmplitude: 0.1,
	}
}

// Displacement returns z(x, y, t).
func (p WaveParams) Displacement(x, y, t float64) float64 {
	ts := t * p.Speed
	var z float64
	for i := range p.Harmonics {
		h := &p.Harmonics[i]
		z += h.Amplitude * math.Sin(h.FreqX*x+h.FreqY*y+h.FreqT*ts+h.Phase)
	}
	return z
}

// Bound returns Σ|Amplitude|, the largest |z| Displacement can produce.
func (p WaveParams) Bound() float64 {
	var b float64
	for _, h := range p.Harmonics {
		b += math.Abs(h.Amplitude)
	}
	return b
}

// Tilt returns the host rotation about Z at time t.
func (p WaveParams) Tilt(t float64) float64 {
	return math.Sin(t*p.Speed*p.TiltRate) * p.TiltAmplitude
}

// --- WaveField ---

// WaveField displaces a VertexGrid it exclusively owns, every frame, and
// sways the host node. It keeps no state besides the last time applied, so
// restarting from t = 0 only resets phase.
type WaveField struct {
	params WaveParams
	grid   *VertexGrid
	target Handle
	last   float64
}

// NewWaveField creates a wave engine writing grid and tilting the node
// identified by target.
func NewWaveField(params WaveParams, grid *VertexGrid, target Handle) *WaveField {
	return &WaveField{params: params, grid: grid, target: target}
}

// NewWaveMesh creates a double-sided mesh node that displays grid.
func NewWaveMesh(name string, grid *VertexGrid) *Node {
	n := NewMesh(name, grid.View())
	n.DoubleSided = true
	return n
}

// Params returns the displacement parameters.
func (w *WaveField) Params() WaveParams { return w.params }

// View returns the read-only grid view.
func (w *WaveField) View() GridView { return w.grid.View() }

// Elapsed returns the time of the last applied frame.
func (w *WaveField) Elapsed() float64 { return w.last }

// Update implements Engine. When the target node is not mounted (or there is
// no grid) the frame is skipped and retried next frame.
func (w *WaveField) Update(f *Frame) {
	if w.grid == nil {
		return
	}
	node, ok := f.Nodes.Node(w.target)
	if !ok {
		return
	}
	w.Apply(f.Elapsed)
	node.Rotation.Z = w.params.Tilt(f.Elapsed)
	node.MarkDirty()
}

// Apply writes z(x, y, t) into every vertex and recomputes normals.
func (w *WaveField) Apply(t float64) {
	if w.grid == nil {
		return
	}
	for i := range w.grid.positions {
		p := &w.grid.positions[i]
		p.Z = w.params.Displacement(p.X, p.Y, t)
	}
	w.grid.computeNormals()
	w.last = t
}
