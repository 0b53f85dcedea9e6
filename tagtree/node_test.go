package tagtree

import "testing"

func TestGetNode_FindsDescendant(t *testing.T) {
	root := NewContainer("root")
	child := root.AddChild(NewContainer("child"))
	child.NamespaceIndex, child.Identifier = 2, 42
	grandchild := child.AddChild(&Node{Name: "leaf", Kind: ScalarLeaf})
	grandchild.NamespaceIndex, grandchild.Identifier = 2, 43

	if got := root.GetNode(2, 43); got != grandchild {
		t.Fatalf("GetNode did not find the grandchild: got %v", got)
	}
	if got := root.GetNode(2, 42); got != child {
		t.Fatalf("GetNode did not find the child: got %v", got)
	}
	if got := root.GetNode(9, 9); got != nil {
		t.Fatalf("GetNode should return nil for an unknown id, got %v", got)
	}
}

func TestContains_FirstMatchByName(t *testing.T) {
	root := NewContainer("root")
	root.AddChild(NewContainer("MotionDevices"))
	second := root.AddChild(NewContainer("MotionDevices"))

	got := root.Contains("MotionDevices")
	if got == second {
		t.Fatalf("Contains must return the first match, not a later duplicate")
	}
	if root.Contains("Missing") != nil {
		t.Fatalf("Contains should return nil for a name with no child")
	}
}

func TestRemoveChild_DetachesSubtree(t *testing.T) {
	root := NewContainer("root")
	root.AddChild(NewContainer("A"))
	root.AddChild(NewContainer("B"))

	if !root.RemoveChild("A") {
		t.Fatalf("RemoveChild should report success")
	}
	if root.Contains("A") != nil {
		t.Fatalf("A should be detached")
	}
	if root.Contains("B") == nil {
		t.Fatalf("B should remain")
	}
}
