package ripple

import "testing"

func TestNewContainerDefaults(t *testing.T) {
	assertNodeDefaults(t, NewContainer("c"), "c", NodeTypeContainer)
}

func TestNewMeshDefaults(t *testing.T) {
	geo := NewCylinder(1, 1, 8, 1)
	n := NewMesh("m", geo)
	assertNodeDefaults(t, n, "m", NodeTypeMesh)
	if n.Geometry != geo {
		t.Error("Geometry not set")
	}
	if n.RenderLayer != 0 {
		t.Errorf("RenderLayer = %d, want 0", n.RenderLayer)
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %d, want %d", n.Type, typ)
	}
	if n.ID == 0 || n.Handle() != n.ID {
		t.Errorf("ID = %d, Handle = %d", n.ID, n.Handle())
	}
	if n.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("Scale = %+v, want ones", n.Scale)
	}
	if n.Color != ColorWhite {
		t.Errorf("Color = %+v, want white", n.Color)
	}
	if !n.Visible {
		t.Error("Visible = false")
	}
	if !n.transformDirty {
		t.Error("new node should be dirty")
	}
	if n.Mounted() {
		t.Error("new node should not be mounted")
	}
}

func TestUniqueIDs(t *testing.T) {
	seen := make(map[Handle]bool)
	for i := 0; i < 100; i++ {
		n := NewContainer("")
		if seen[n.ID] {
			t.Fatalf("duplicate ID %d", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	if child.Parent != parent {
		t.Error("child.Parent not set")
	}
	if len(parent.Children()) != 1 || parent.Children()[0] != child {
		t.Errorf("children = %v", parent.Children())
	}
}

func TestAddChildReparent(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	child := NewContainer("child")
	a.AddChild(child)
	b.AddChild(child)
	if len(a.Children()) != 0 {
		t.Error("child still listed under the old parent")
	}
	if child.Parent != b {
		t.Error("child.Parent not updated")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	a.AddChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on cycle")
		}
	}()
	b.AddChild(a)
}

func TestAddChildSelfPanic(t *testing.T) {
	a := NewContainer("a")
	defer func() {
		if recover() == nil {
			t.Error("expected panic adding a node to itself")
		}
	}()
	a.AddChild(a)
}

func TestAddChildNilPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil child")
		}
	}()
	NewContainer("a").AddChild(nil)
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	a.RemoveChild(b)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewContainer("n")
	n.RemoveFromParent()
	if n.Parent != nil {
		t.Error("Parent should stay nil")
	}
}

func TestMountFollowsTree(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	leaf := NewContainer("leaf")
	group.AddChild(leaf)
	if leaf.Mounted() {
		t.Fatal("leaf mounted before its group joined the scene")
	}

	s.Root().AddChild(group)
	if !group.Mounted() || !leaf.Mounted() {
		t.Fatal("subtree not mounted")
	}
	if n, ok := s.Node(leaf.Handle()); !ok || n != leaf {
		t.Error("leaf handle does not resolve")
	}

	late := NewContainer("late")
	leaf.AddChild(late)
	if _, ok := s.Node(late.Handle()); !ok {
		t.Error("child added under a mounted node does not resolve")
	}

	group.RemoveFromParent()
	for _, n := range []*Node{group, leaf, late} {
		if n.Mounted() {
			t.Errorf("%s still mounted", n.Name)
		}
		if _, ok := s.Node(n.Handle()); ok {
			t.Errorf("%s still resolves after unmount", n.Name)
		}
	}
}

func TestDisposeStopsResolving(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	s.Root().AddChild(parent)
	ph, ch := parent.Handle(), child.Handle()

	parent.Dispose()
	if !parent.IsDisposed() || !child.IsDisposed() {
		t.Fatal("subtree not disposed")
	}
	if parent.Handle() != 0 || child.Handle() != 0 {
		t.Error("disposed handles should be zero")
	}
	if _, ok := s.Node(ph); ok {
		t.Error("disposed parent resolves")
	}
	if _, ok := s.Node(ch); ok {
		t.Error("disposed child resolves")
	}
	if len(s.Root().Children()) != 0 {
		t.Error("disposed node still under root")
	}
	parent.Dispose()
}

func TestNodeTransformRoundTrip(t *testing.T) {
	n := NewContainer("n")
	want := Transform{Position: Vec3{1, 2, 3}, Rotation: Vec3{0.1, 0.2, 0.3}}
	n.SetTransform(want)
	if n.Transform() != want {
		t.Errorf("Transform = %+v, want %+v", n.Transform(), want)
	}
}
