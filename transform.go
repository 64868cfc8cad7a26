package ripple

import "math"

// Mat4 is a row-major 4x4 matrix acting on column vectors: p' = M·p.
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| m12 m13 m14 m15 |
type Mat4 [16]float64

// identityMat4 is the identity matrix.
var identityMat4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Mul returns m·o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row*4+col] = m[row*4+0]*o[0*4+col] +
				m[row*4+1]*o[1*4+col] +
				m[row*4+2]*o[2*4+col] +
				m[row*4+3]*o[3*4+col]
		}
	}
	return r
}

// TransformPoint applies m to the point p (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// TransformDir applies the upper 3x3 of m to the direction d (w = 0).
// Correct for normals only when the scale is uniform, which is the case for
// every node ripple builds.
func (m Mat4) TransformDir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[1]*d.Y + m[2]*d.Z,
		m[4]*d.X + m[5]*d.Y + m[6]*d.Z,
		m[8]*d.X + m[9]*d.Y + m[10]*d.Z,
	}
}

// rotationMat4 returns the rotation matrix for Euler angles in XYZ order,
// i.e. Rx·Ry·Rz.
func rotationMat4(r Vec3) Mat4 {
	sx, cx := math.Sincos(r.X)
	sy, cy := math.Sincos(r.Y)
	sz, cz := math.Sincos(r.Z)
	return Mat4{
		cy * cz, -cy * sz, sy, 0,
		cx*sz + sx*sy*cz, cx*cz - sx*sy*sz, -sx * cy, 0,
		sx*sz - cx*sy*cz, sx*cz + cx*sy*sz, cx * cy, 0,
		0, 0, 0, 1,
	}
}

// computeLocalMatrix composes the node's local matrix.
//
// Composition order:
//
//	Scale -> Rotate (X, Y, Z) -> Translate(Position)
func computeLocalMatrix(n *Node) Mat4 {
	m := rotationMat4(n.Rotation)
	for row := 0; row < 3; row++ {
		m[row*4+0] *= n.Scale.X
		m[row*4+1] *= n.Scale.Y
		m[row*4+2] *= n.Scale.Z
	}
	m[3] = n.Position.X
	m[7] = n.Position.Y
	m[11] = n.Position.Z
	return m
}

// updateWorldTransform recomputes a node's worldMatrix.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parent Mat4, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldMatrix = parent.Mul(computeLocalMatrix(n))
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldMatrix, recompute)
	}
}
