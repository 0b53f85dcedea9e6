package specload

import (
	"testing"

	"github.com/CaptainPineapple/melsec-gateway/config"
	"github.com/CaptainPineapple/melsec-gateway/slmp"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

func newUnconnectedPLCLoader(t *testing.T) (*PLCLoader, *tagserver.InMemory, *tagtree.Node, tagserver.NodeID) {
	t.Helper()
	client := slmp.NewLocalClient("test-plc", "127.0.0.1", 5007)
	server := tagserver.NewInMemory()
	root := tagtree.NewContainer("test-plc")
	rootID := tagserver.NodeID{Namespace: 2, Identifier: 1}
	root.NamespaceIndex, root.Identifier = rootID.Namespace, rootID.Identifier
	if err := server.AddContainer(tagserver.NodeID{}, rootID, "test-plc"); err != nil {
		t.Fatalf("AddContainer root: %v", err)
	}
	return NewPLCLoader("test-plc", client, server, 2), server, root, rootID
}

func TestPLCLoader_ObjectDedupReusesExistingContainer(t *testing.T) {
	loader, _, root, rootID := newUnconnectedPLCLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{Type: "Object", Name: "Group", Children: []config.SchemaNode{
			{Type: "Object", Name: "Inner", Children: nil},
		}},
		{Type: "Object", Name: "Group", Children: []config.SchemaNode{
			{Type: "Object", Name: "Other", Children: nil},
		}},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-plc"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	groups := 0
	for _, c := range root.Children {
		if c.Name == "Group" {
			groups++
		}
	}
	if groups != 1 {
		t.Fatalf("got %d Group containers, want 1 (duplicates should be deduped)", groups)
	}
	group := root.Contains("Group")
	if group.Contains("Inner") == nil || group.Contains("Other") == nil {
		t.Fatalf("both schema entries' children should graft into the single Group container")
	}
}

func TestPLCLoader_UnknownDeviceSkipsBindingButKeepsTag(t *testing.T) {
	loader, server, root, rootID := newUnconnectedPLCLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{Type: "Device", Name: "Bogus", Datatype: "Word",
			ReadCommand: []byte(`{"Device":"NotADevice","Head no":10}`)},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-plc"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	leaf := root.Contains("Bogus")
	if leaf == nil {
		t.Fatalf("tag should still be registered despite the unresolvable device string")
	}
	id := tagserver.NodeID{Namespace: leaf.NamespaceIndex, Identifier: leaf.Identifier}
	if !server.Exists(id) {
		t.Fatalf("leaf should be published in the tag server")
	}
	if _, err := server.Read(id); err == nil {
		t.Fatalf("an unbound leaf should report a read failure, not a value")
	}
}

func TestPLCLoader_PropertyProbeFailureStillRegistersLeaf(t *testing.T) {
	loader, server, root, rootID := newUnconnectedPLCLoader(t)
	schema := config.SchemaDocument{Nodes: []config.SchemaNode{
		{Type: "Property", Name: "FirmwareVersion",
			ReadCommand: []byte(`{"Device":"D","Head no":0,"Length":4}`)},
	}}
	if err := loader.Build(root, rootID, schema, config.ClientEntry{Name: "test-plc"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	leaf := root.Contains("FirmwareVersion")
	if leaf == nil {
		t.Fatalf("Property leaf should be registered even when the initial probe fails")
	}
	id := tagserver.NodeID{Namespace: leaf.NamespaceIndex, Identifier: leaf.Identifier}
	value, err := server.Read(id)
	if err != nil {
		t.Fatalf("Property always has a read binding (cached probe value): %v", err)
	}
	if value != "" {
		t.Fatalf("got %v, want empty string fallback for a failed probe", value)
	}
}
