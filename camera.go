package ripple

import "math"

const defaultNear = 0.1

// Camera is a perspective camera looking from Position toward Target,
// rendering into Viewport.
type Camera struct {
	// Position is the camera's world-space eye position.
	Position Vec3
	// Target is the world-space point the camera looks at.
	Target Vec3
	// Up is the world-space up direction (default +Y).
	Up Vec3
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Near is the near clip distance; points closer than this are not projected.
	Near float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	viewMatrix Mat4
	dirty      bool
}

// NewCamera creates a camera at pos looking at the origin with the given
// vertical field of view (degrees).
func NewCamera(pos Vec3, fov float64, viewport Rect) *Camera {
	return &Camera{
		Position: pos,
		Up:       Vec3{0, 1, 0},
		FOV:      fov,
		Near:     defaultNear,
		Viewport: viewport,
		dirty:    true,
	}
}

// MarkDirty forces the view matrix to be recomputed on next use. Call after
// changing Position, Target or Up directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// SetViewport changes the output rectangle, e.g. after a window resize.
func (c *Camera) SetViewport(vp Rect) {
	c.Viewport = vp
}

// computeViewMatrix returns the world-to-camera matrix, recomputing it if
// dirty. The camera looks down its local -Z axis.
func (c *Camera) computeViewMatrix() Mat4 {
	if !c.dirty {
		return c.viewMatrix
	}
	f := c.Target.Sub(c.Position).Normalize()
	up := c.Up
	if up == (Vec3{}) {
		up = Vec3{0, 1, 0}
	}
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	c.viewMatrix = Mat4{
		s.X, s.Y, s.Z, -s.Dot(c.Position),
		u.X, u.Y, u.Z, -u.Dot(c.Position),
		-f.X, -f.Y, -f.Z, f.Dot(c.Position),
		0, 0, 0, 1,
	}
	c.dirty = false
	return c.viewMatrix
}

// Project maps a world-space point to viewport pixels. depth is the distance
// along the view axis (larger is farther). ok is false for points behind the
// near plane.
func (c *Camera) Project(world Vec3) (screen Vec2, depth float64, ok bool) {
	p := c.computeViewMatrix().TransformPoint(world)
	depth = -p.Z
	near := c.Near
	if near <= 0 {
		near = defaultNear
	}
	if depth < near {
		return Vec2{}, depth, false
	}
	vp := c.Viewport
	aspect := 1.0
	if vp.Height > 0 {
		aspect = vp.Width / vp.Height
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	ndcX := f * p.X / depth / aspect
	ndcY := f * p.Y / depth
	screen = Vec2{
		X: vp.X + (ndcX+1)/2*vp.Width,
		Y: vp.Y + (1-ndcY)/2*vp.Height,
	}
	return screen, depth, true
}

// viewDirection returns the unit vector from the camera toward world.
func (c *Camera) viewDirection(world Vec3) Vec3 {
	return world.Sub(c.Position).Normalize()
}
