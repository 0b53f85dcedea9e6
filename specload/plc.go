package specload

import (
	"strconv"

	"github.com/CaptainPineapple/melsec-gateway/config"
	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/slmp"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

// PLCLoader builds and publishes a PLC device's tag subtree from its
// specification schema and clients.json UserNodes, per §4.4.
type PLCLoader struct {
	Client     *slmp.Client
	Server     tagserver.Server
	Namespace  uint16
	log        *logging.Entry
	ids        *idAllocator
}

// NewPLCLoader builds a loader bound to one PLC connection.
func NewPLCLoader(name string, client *slmp.Client, server tagserver.Server, namespace uint16) *PLCLoader {
	return &PLCLoader{Client: client, Server: server, Namespace: namespace, log: logging.WithDevice(name)}
}

// Build materialises root's children from the schema's Nodes and the
// matching client entry's UserNodes, publishing everything under rootID.
func (l *PLCLoader) Build(root *tagtree.Node, rootID tagserver.NodeID, schema config.SchemaDocument, entry config.ClientEntry) error {
	l.ids = newIDAllocator(l.Namespace, rootID.Identifier+1)
	for _, node := range schema.Nodes {
		l.parseNode(root, rootID, node)
	}
	for _, user := range entry.UserNodes {
		l.parseUserNode(root, rootID, user)
	}
	return nil
}

func (l *PLCLoader) parseNode(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode) {
	switch node.Type {
	case "Object":
		child, childID := l.containerFor(parent, parentID, node.Name)
		for _, c := range node.Children {
			l.parseNode(child, childID, c)
		}
	case "Property":
		l.addProperty(parent, parentID, node.Name, node.ReadCommand)
	case "Device", "GlobalLabel":
		l.addDeviceLeaf(parent, parentID, node)
	default:
		l.log.WithField("type", node.Type).Warn("specload: unknown PLC node type")
	}
}

func (l *PLCLoader) parseUserNode(root *tagtree.Node, rootID tagserver.NodeID, user config.UserNode) {
	parent, parentID := l.graftPath(root, rootID, user.Parent)
	node := config.SchemaNode{
		Name:         user.Name,
		Type:         user.Type,
		Datatype:     user.Datatype,
		ReadCommand:  user.ReadCommand,
		WriteCommand: user.WriteCommand,
		Writeable:    user.Writeable,
	}
	if user.Count > 0 {
		node.Count = []byte(strconv.Itoa(user.Count))
	}
	l.parseNode(parent, parentID, node)
}

// graftPath walks a '/'-separated path under root, creating any missing
// container along the way, and returns the final container.
func (l *PLCLoader) graftPath(root *tagtree.Node, rootID tagserver.NodeID, path string) (*tagtree.Node, tagserver.NodeID) {
	parent, parentID := root, rootID
	for _, segment := range splitPath(path) {
		parent, parentID = l.containerFor(parent, parentID, segment)
	}
	return parent, parentID
}

func (l *PLCLoader) containerFor(parent *tagtree.Node, parentID tagserver.NodeID, name string) (*tagtree.Node, tagserver.NodeID) {
	if existing := parent.Contains(name); existing != nil {
		return existing, tagserver.NodeID{Namespace: existing.NamespaceIndex, Identifier: existing.Identifier}
	}
	id := l.ids.alloc()
	child := tagtree.NewContainer(name)
	child.NamespaceIndex, child.Identifier = id.Namespace, id.Identifier
	parent.AddChild(child)
	if err := l.Server.AddContainer(parentID, id, name); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddContainer failed")
	}
	return child, id
}

func (l *PLCLoader) addProperty(parent *tagtree.Node, parentID tagserver.NodeID, name string, readCommand []byte) {
	cmd, err := config.DecodePLCCommand(readCommand)
	if err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: malformed Property ReadCommand")
		return
	}
	device, ext := slmp.ConvertDeviceName(cmd.Device)
	length := uint16(1)
	if cmd.Length != nil {
		length = *cmd.Length
	}
	command := slmp.NewDeviceCommand(device, ext, cmd.HeadNo, length)
	value, err := slmp.GetString(l.Client, command, length*2)
	if err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: Property probe failed")
		value = ""
	}

	id := l.ids.alloc()
	leaf := &tagtree.Node{Name: name, Kind: tagtree.ScalarLeaf, Datatype: "String"}
	leaf.NamespaceIndex, leaf.Identifier = id.Namespace, id.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) { return value, nil })
	if err := l.Server.AddVariable(parentID, id, name, false, read, nil); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddVariable failed")
	}
}

func (l *PLCLoader) addDeviceLeaf(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode) {
	cmd, err := config.DecodePLCCommand(node.ReadCommand)
	if err != nil {
		l.log.WithError(err).WithField("name", node.Name).Warn("specload: malformed ReadCommand")
		return
	}

	var command slmp.Command
	if node.Type == "GlobalLabel" {
		command = slmp.NewLabelCommand(cmd.Label)
	} else {
		device, ext := slmp.ConvertDeviceName(cmd.Device)
		if device == slmp.DeviceNone {
			l.log.WithField("device", cmd.Device).WithField("name", node.Name).
				Warn("specload: device string is not a valid SLMP device; tag kept without a binding")
			l.registerUnbound(parent, parentID, node)
			return
		}
		length := uint16(1)
		if cmd.Length != nil {
			length = *cmd.Length
		}
		command = slmp.NewDeviceCommand(device, ext, cmd.HeadNo, length)
	}

	count, _ := node.CountLiteral()
	writeable := node.Writeable && count <= 1
	length := uint16(1)
	if cmd.Length != nil {
		length = *cmd.Length
	}

	id := l.ids.alloc()
	kind := tagtree.ScalarLeaf
	if count > 1 {
		kind = tagtree.ArrayLeaf
	}
	leaf := &tagtree.Node{Name: node.Name, Kind: kind, Datatype: node.Datatype, Count: count, Writeable: writeable}
	leaf.NamespaceIndex, leaf.Identifier = id.Namespace, id.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) {
		return readPLCValue(l.Client, command, node.Datatype, count, length)
	})
	var write tagserver.WriteFunc
	if writeable {
		write = func(value any) error {
			return writePLCValue(l.Client, command, node.Datatype, value)
		}
	}
	if err := l.Server.AddVariable(parentID, id, node.Name, writeable, read, write); err != nil {
		l.log.WithError(err).WithField("name", node.Name).Warn("specload: AddVariable failed")
	}
}

// registerUnbound publishes a leaf with no read/write binding, for a
// Device entry whose configured device string failed to resolve. A read
// against it fails, since the leaf has no read binding.
func (l *PLCLoader) registerUnbound(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode) {
	id := l.ids.alloc()
	leaf := &tagtree.Node{Name: node.Name, Kind: tagtree.ScalarLeaf, Datatype: node.Datatype}
	leaf.NamespaceIndex, leaf.Identifier = id.Namespace, id.Identifier
	parent.AddChild(leaf)
	if err := l.Server.AddVariable(parentID, id, node.Name, false, nil, nil); err != nil {
		l.log.WithError(err).WithField("name", node.Name).Warn("specload: AddVariable failed")
	}
}

func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				out = append(out, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		out = append(out, path[start:])
	}
	return out
}

