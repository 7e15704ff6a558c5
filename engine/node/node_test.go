package node

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type countingPayload struct{ n int }

func (p *countingPayload) Dispose() { p.n++ }

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func TestNew(t *testing.T) {
	n := New()
	if n.Kind() != KindGroup {
		t.Fatalf("New: Kind\nhave %v\nwant %v", n.Kind(), KindGroup)
	}
	if n.Rotation() != mgl32.QuatIdent() {
		t.Fatalf("New: Rotation\nhave %v\nwant %v", n.Rotation(), mgl32.QuatIdent())
	}
	if n.Scale() != (mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("New: Scale\nhave %v\nwant %v", n.Scale(), mgl32.Vec3{1, 1, 1})
	}
	if !n.Visible() || n.Parent() != nil || len(n.Children()) != 0 || n.Payload() != nil {
		t.Fatal("New: expected a visible detached node without payload")
	}

	n = New(WithName("earth"), WithKind(KindMesh), WithPosition(1, 2, 3), WithUniformScale(2))
	if n.Name() != "earth" || n.Kind() != KindMesh {
		t.Fatalf("New: options\nhave %s/%v\nwant earth/mesh", n.Name(), n.Kind())
	}
	if n.Position() != (mgl32.Vec3{1, 2, 3}) || n.Scale() != (mgl32.Vec3{2, 2, 2}) {
		t.Fatalf("New: transform\nhave %v %v\nwant [1 2 3] [2 2 2]", n.Position(), n.Scale())
	}
}

func TestAddChild(t *testing.T) {
	root := New(WithName("root"))
	a := New(WithName("a"))
	b := New(WithName("b"))

	if err := root.AddChild(a); err != nil {
		t.Fatalf("AddChild(a): %v", err)
	}
	if err := root.AddChild(b); err != nil {
		t.Fatalf("AddChild(b): %v", err)
	}
	if have := names(root.Children()); len(have) != 2 || have[0] != "a" || have[1] != "b" {
		t.Fatalf("Children\nhave %v\nwant [a b]", have)
	}
	if a.Parent() != root {
		t.Fatal("a.Parent: expected root")
	}

	// reparent b under a
	if err := a.AddChild(b); err != nil {
		t.Fatalf("a.AddChild(b): %v", err)
	}
	if have := names(root.Children()); len(have) != 1 || have[0] != "a" {
		t.Fatalf("root.Children after reparent\nhave %v\nwant [a]", have)
	}
	if b.Parent() != a {
		t.Fatal("b.Parent: expected a")
	}
}

func TestAddChildCycle(t *testing.T) {
	root := New()
	child := New()
	grandchild := New()
	_ = root.AddChild(child)
	_ = child.AddChild(grandchild)

	if err := root.AddChild(root); !errors.Is(err, ErrCycle) {
		t.Fatalf("root.AddChild(root)\nhave %v\nwant %v", err, ErrCycle)
	}
	if err := grandchild.AddChild(root); !errors.Is(err, ErrCycle) {
		t.Fatalf("grandchild.AddChild(root)\nhave %v\nwant %v", err, ErrCycle)
	}
	if root.Parent() != nil {
		t.Fatal("root.Parent: rejected edit must leave the graph unchanged")
	}
}

func TestRemoveChild(t *testing.T) {
	root := New()
	a := New()
	other := New()
	_ = root.AddChild(a)

	if root.RemoveChild(other) {
		t.Fatal("RemoveChild(other): expected false for a non-child")
	}
	if !root.RemoveChild(a) {
		t.Fatal("RemoveChild(a): expected true")
	}
	if a.Parent() != nil || len(root.Children()) != 0 {
		t.Fatal("RemoveChild(a): expected a detached")
	}
	if root.RemoveChild(a) {
		t.Fatal("RemoveChild(a) twice: expected false")
	}
}

func TestForEach(t *testing.T) {
	root := New(WithName("root"))
	a := New(WithName("a"))
	b := New(WithName("b"))
	a1 := New(WithName("a1"))
	b1 := New(WithName("b1"))
	_ = root.AddChild(a)
	_ = root.AddChild(b)
	_ = a.AddChild(a1)
	_ = b.AddChild(b1)

	var have []string
	root.ForEach(func(n Node) bool {
		have = append(have, n.Name())
		return true
	})
	want := []string{"a", "b", "a1", "b1"}
	if len(have) != len(want) {
		t.Fatalf("ForEach\nhave %v\nwant %v", have, want)
	}
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("ForEach\nhave %v\nwant %v", have, want)
		}
	}

	count := 0
	root.ForEach(func(Node) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("ForEach with early stop\nhave %d visits\nwant 2", count)
	}

	if root.Find("b1") != b1 || root.Find("root") != root || root.Find("nope") != nil {
		t.Fatal("Find: unexpected result")
	}
}

func TestWorldMatrix(t *testing.T) {
	parent := New(WithPosition(10, 0, 0))
	parent.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	child := New(WithPosition(0, 0, 1))
	_ = parent.AddChild(child)

	p := child.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	// +Z rotated 90 degrees about Y becomes +X
	want := mgl32.Vec4{11, 0, 0, 1}
	if p.Sub(want).Len() > 1e-5 {
		t.Fatalf("WorldMatrix origin\nhave %v\nwant %v", p, want)
	}
}

func TestDispose(t *testing.T) {
	root := New()
	p1 := &countingPayload{}
	p2 := &countingPayload{}
	a := New(WithPayload(p1))
	b := New(WithPayload(p2))
	_ = root.AddChild(a)
	_ = a.AddChild(b)

	a.Dispose()
	a.Dispose()
	b.Dispose()

	if p1.n != 1 || p2.n != 1 {
		t.Fatalf("Dispose: payload releases\nhave %d/%d\nwant 1/1", p1.n, p2.n)
	}
	if !a.Disposed() || !b.Disposed() || root.Disposed() {
		t.Fatal("Dispose: unexpected Disposed state")
	}
	if len(root.Children()) != 0 {
		t.Fatal("Dispose: expected the subtree detached from root")
	}
	if err := root.AddChild(a); !errors.Is(err, ErrDisposed) {
		t.Fatalf("AddChild(disposed)\nhave %v\nwant %v", err, ErrDisposed)
	}
}
