package specload

import (
	"testing"

	"github.com/CaptainPineapple/melsec-gateway/config"
	"github.com/CaptainPineapple/melsec-gateway/r3"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

func newUnconnectedRobotLoader(t *testing.T) (*RobotLoader, *tagserver.InMemory, *tagtree.Node, tagserver.NodeID) {
	t.Helper()
	client := r3.NewClient("test-robot", "127.0.0.1", 10001)
	server := tagserver.NewInMemory()
	root := tagtree.NewContainer("test-robot")
	rootID := tagserver.NodeID{Namespace: 3, Identifier: 1}
	root.NamespaceIndex, root.Identifier = rootID.Namespace, rootID.Identifier
	if err := server.AddContainer(tagserver.NodeID{}, rootID, "test-robot"); err != nil {
		t.Fatalf("AddContainer root: %v", err)
	}
	return NewRobotLoader("test-robot", client, server, 3), server, root, rootID
}

func rawCount(n int) []byte {
	return []byte(string(rune('0' + n)))
}

func TestRobotLoader_FolderWithLiteralCountCreatesNChildren(t *testing.T) {
	loader, _, root, rootID := newUnconnectedRobotLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{
			Type:  "Folder",
			Name:  "Fixed",
			Count: rawCount(3),
			FolderChild: &config.SchemaNode{
				Type: "Object",
				Name: "Item_{i}",
			},
		},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-robot"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	folder := root.Contains("Fixed")
	if folder == nil {
		t.Fatalf("Folder container missing")
	}
	if len(folder.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(folder.Children))
	}
	for i, name := range []string{"Item_1", "Item_2", "Item_3"} {
		if folder.Children[i].Name != name {
			t.Fatalf("child %d = %q, want %q", i, folder.Children[i].Name, name)
		}
	}
}

func TestRobotLoader_ObjectConditionProbeFailureSkipsSubtree(t *testing.T) {
	loader, _, root, rootID := newUnconnectedRobotLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{
			Type: "Object",
			Name: "Optional",
			Condition: &config.RobotReadCommand{
				Command: "1;1;EXISTS",
				Match:   "YES",
			},
			Children: []config.SchemaNode{{Type: "Property", Name: "X", Value: "present"}},
		},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-robot"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if root.Contains("Optional") != nil {
		t.Fatalf("Object with a failing Condition probe (no live connection) must be skipped entirely")
	}
}

func TestRobotLoader_PropertyLiteralValueWithPlaceholder(t *testing.T) {
	loader, server, root, rootID := newUnconnectedRobotLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{Type: "Property", Name: "Label", Value: "Axis{i}"},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-robot"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	leaf := root.Contains("Label")
	if leaf == nil {
		t.Fatalf("Property leaf missing")
	}
	id := tagserver.NodeID{Namespace: leaf.NamespaceIndex, Identifier: leaf.Identifier}
	value, err := server.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if value != "Axis0" {
		t.Fatalf("got %v, want Axis0 ({i} substituted with id=0 at schema top level)", value)
	}
}

func TestRobotLoader_UserNodeGraftsUnderSlashPath(t *testing.T) {
	loader, _, root, rootID := newUnconnectedRobotLoader(t)
	schema := config.SchemaDocument{}
	entry := config.ClientEntry{
		Name: "test-robot",
		UserNodes: []config.UserNode{
			{
				Name:        "Custom",
				Parent:      "Extras/Nested",
				Type:        "Device",
				Datatype:    "Double",
				ReadCommand: []byte(`{"Command":"2;1;VAL{i}","Match":"VAL=(.+)"}`),
			},
		},
	}
	if err := loader.Build(root, rootID, schema, entry); err != nil {
		t.Fatalf("Build: %v", err)
	}
	extras := root.Contains("Extras")
	if extras == nil {
		t.Fatalf("Extras container should be auto-created")
	}
	nested := extras.Contains("Nested")
	if nested == nil || nested.Contains("Custom") == nil {
		t.Fatalf("Custom leaf should be grafted under Extras/Nested")
	}
}
