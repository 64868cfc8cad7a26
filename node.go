package ripple

// Handle is an opaque reference to a Node. Engines hold handles rather than
// node pointers and resolve them through Scene.Node each frame, so a node
// can be mounted, unmounted or disposed without the engine noticing more
// than a skipped frame.
type Handle uint32

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeMesh                      // renders Geometry as shaded triangles
)

// Geometry is the read-only view of a triangle mesh the renderer consumes.
// Implementations own their buffers; the returned index slice MUST NOT be
// mutated by the caller.
type Geometry interface {
	VertexCount() int
	Position(i int) Vec3
	Normal(i int) Vec3
	Indices() []uint16
}

// nodeIDCounter is a plain counter. ripple is single-threaded.
var nodeIDCounter uint32

func nextNodeID() Handle {
	nodeIDCounter++
	return Handle(nodeIDCounter)
}

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   Handle
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node
	scene    *Scene // non-nil while mounted under a scene root

	// Transform (local). Rotation is Euler XYZ in radians.
	Position Vec3
	Rotation Vec3
	Scale    Vec3

	// Computed (unexported, updated by updateWorldTransform)
	worldMatrix    Mat4
	transformDirty bool

	Visible bool
	// RenderLayer selects the mesh pass (and so the camera) that draws the node.
	RenderLayer uint8

	// Mesh fields (NodeTypeMesh)
	Geometry    Geometry
	Color       Color
	DoubleSided bool
	meshBuf     meshScratch // reused projection buffers

	// Metadata
	UserData any

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3{1, 1, 1}
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.worldMatrix = identityMat4
}

// NewContainer creates a group node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewMesh creates a mesh node that renders geo with per-vertex lighting.
func NewMesh(name string, geo Geometry) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Geometry: geo}
	nodeDefaults(n)
	return n
}

// Handle returns the node's handle. Zero after Dispose.
func (n *Node) Handle() Handle {
	return n.ID
}

// Mounted reports whether the node is attached under a scene root.
func (n *Node) Mounted() bool {
	return n.scene != nil && !n.disposed
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("ripple: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("ripple: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if n.scene != nil {
		n.scene.mount(child)
	}
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node and unmounts its subtree.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("ripple: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
	if child.scene != nil {
		child.scene.unmount(child)
	}
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// --- Transform setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(p Vec3) {
	n.Position = p
	n.transformDirty = true
}

// SetRotation sets the node's Euler rotation (radians) and marks it dirty.
func (n *Node) SetRotation(r Vec3) {
	n.Rotation = r
	n.transformDirty = true
}

// SetTransform copies position and rotation from t and marks the node dirty.
func (n *Node) SetTransform(t Transform) {
	n.Position = t.Position
	n.Rotation = t.Rotation
	n.transformDirty = true
}

// Transform returns the node's local position and rotation.
func (n *Node) Transform() Transform {
	return Transform{Position: n.Position, Rotation: n.Rotation}
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldMatrix returns the node's world matrix as of the last scene update.
func (n *Node) WorldMatrix() Mat4 {
	return n.worldMatrix
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Handles held by engines stop
// resolving from this point on.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.scene = nil
	n.Geometry = nil
	n.meshBuf = meshScratch{}
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
