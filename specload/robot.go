package specload

import (
	"regexp"
	"strconv"

	"github.com/CaptainPineapple/melsec-gateway/config"
	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/r3"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

// RobotLoader builds and publishes a robot device's tag subtree from its
// specification schema and clients.json UserNodes, per §4.4.
type RobotLoader struct {
	Client    *r3.Client
	Server    tagserver.Server
	Namespace uint16
	log       *logging.Entry
	ids       *idAllocator
}

// NewRobotLoader builds a loader bound to one robot connection.
func NewRobotLoader(name string, client *r3.Client, server tagserver.Server, namespace uint16) *RobotLoader {
	return &RobotLoader{Client: client, Server: server, Namespace: namespace, log: logging.WithDevice(name)}
}

// Build materialises root's children from the schema's Nodes, starting
// both ambient counters at 1, then grafts the matching client entry's
// UserNodes.
func (l *RobotLoader) Build(root *tagtree.Node, rootID tagserver.NodeID, schema config.SchemaDocument, entry config.ClientEntry) error {
	l.ids = newIDAllocator(l.Namespace, rootID.Identifier+1)
	for _, node := range schema.Nodes {
		l.parseNode(root, rootID, node, 1, 1, 0)
	}
	for _, user := range entry.UserNodes {
		l.parseUserNode(root, rootID, user)
	}
	return nil
}

func (l *RobotLoader) containerFor(parent *tagtree.Node, parentID tagserver.NodeID, name string, folder bool) (*tagtree.Node, tagserver.NodeID) {
	id := l.ids.alloc()
	child := tagtree.NewContainer(name)
	child.NamespaceIndex, child.Identifier = id.Namespace, id.Identifier
	parent.AddChild(child)
	if err := l.Server.AddContainer(parentID, id, name); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddContainer failed")
	}
	return child, id
}

func (l *RobotLoader) parseNode(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, mechaNo, taskSlotNo, id int) {
	name := r3.FormatName(node.Name, id)

	switch node.Type {
	case "Folder":
		l.parseFolder(parent, parentID, node, name, mechaNo, taskSlotNo)
	case "Object":
		l.parseObject(parent, parentID, node, name, mechaNo, taskSlotNo, id)
	case "Property":
		l.addProperty(parent, parentID, node, name, mechaNo, taskSlotNo, id)
	case "EnumProperty":
		l.addEnumProperty(parent, parentID, node, name, mechaNo, taskSlotNo, id)
	default:
		l.addLeaf(parent, parentID, node, name, mechaNo, taskSlotNo, id)
	}
}

func (l *RobotLoader) parseFolder(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, name string, mechaNo, taskSlotNo int) {
	if name == "AdditionalComponents" && mechaNo != 1 {
		return
	}
	folder, folderID := l.containerFor(parent, parentID, name, node.DisplayType != "Object")

	count, err := l.folderCount(node, mechaNo, taskSlotNo)
	if err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: Folder count probe failed")
		return
	}
	if node.FolderChild == nil {
		return
	}
	for i := 1; i <= count; i++ {
		l.parseNode(folder, folderID, *node.FolderChild, mechaNo, taskSlotNo, i)
		if name == "MotionDevices" {
			mechaNo++
		} else if name == "TaskControls" {
			taskSlotNo++
		}
	}
}

func (l *RobotLoader) folderCount(node config.SchemaNode, mechaNo, taskSlotNo int) (int, error) {
	if literal, ok := node.CountLiteral(); ok {
		return literal, nil
	}
	probe, ok := node.CountProbe()
	if !ok {
		return 0, nil
	}
	return countFromProbe(l.Client, probe.Command, probe.Match, probe.Datatype, mechaNo, taskSlotNo)
}

func (l *RobotLoader) parseObject(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, name string, mechaNo, taskSlotNo, id int) {
	if node.Condition != nil {
		cmd := r3.NewCommand(node.Condition.Command, node.Condition.Match)
		cmd.MechaNo, cmd.TaskSlotNo, cmd.ID = mechaNo, taskSlotNo, id
		outgoing, match := r3.FormatRead(cmd, 0)
		answer, err := l.Client.Get(outgoing)
		if err != nil {
			l.log.WithError(err).WithField("name", name).Warn("specload: Object condition probe failed")
			return
		}
		re, err := regexp.Compile(match)
		if err != nil || !re.MatchString(answer) {
			return
		}
	}
	obj, objID := l.containerFor(parent, parentID, name, false)
	for _, child := range node.Children {
		l.parseNode(obj, objID, child, mechaNo, taskSlotNo, id)
	}
}

func (l *RobotLoader) addProperty(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, name string, mechaNo, taskSlotNo, id int) {
	var value string
	switch {
	case node.Value != "":
		value = r3.FormatName(node.Value, id)
	case name == "Model" && isMotionDeviceParent(parent.Name) && parent.Name != "MotionDevice_1":
		value = "USER"
	default:
		probe, err := config.DecodeRobotCommand(node.ReadCommand)
		if err != nil {
			l.log.WithError(err).WithField("name", name).Warn("specload: malformed Property ReadCommand")
			return
		}
		cmd := r3.NewCommand(probe.Command, probe.Match)
		cmd.MechaNo, cmd.TaskSlotNo, cmd.ID = mechaNo, taskSlotNo, id
		outgoing, match := r3.FormatRead(cmd, 0)
		value, err = l.Client.GetMatch(outgoing, match)
		if err != nil {
			l.log.WithError(err).WithField("name", name).Warn("specload: Property probe failed")
			value = ""
		}
	}

	nodeID := l.ids.alloc()
	leaf := &tagtree.Node{Name: name, Kind: tagtree.ScalarLeaf, Datatype: "String"}
	leaf.NamespaceIndex, leaf.Identifier = nodeID.Namespace, nodeID.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) { return value, nil })
	if err := l.Server.AddVariable(parentID, nodeID, name, false, read, nil); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddVariable failed")
	}
}

func isMotionDeviceParent(name string) bool {
	re := regexp.MustCompile("MotionDevice_")
	return re.MatchString(name)
}

func (l *RobotLoader) addEnumProperty(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, name string, mechaNo, taskSlotNo, id int) {
	probe, err := config.DecodeRobotCommand(node.ReadCommand)
	if err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: malformed EnumProperty ReadCommand")
		return
	}
	cmd := r3.NewCommand(probe.Command, probe.Match)
	cmd.MechaNo, cmd.TaskSlotNo, cmd.ID, cmd.Cases = mechaNo, taskSlotNo, id, convertCases(node.Cases)

	nodeID := l.ids.alloc()
	leaf := &tagtree.Node{Name: name, Kind: tagtree.ScalarLeaf, Datatype: "Enum"}
	leaf.NamespaceIndex, leaf.Identifier = nodeID.Namespace, nodeID.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) {
		result, err := readRobotEnum(l.Client, cmd, name)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
	if err := l.Server.AddVariable(parentID, nodeID, name, false, read, nil); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddVariable failed")
	}
}

func (l *RobotLoader) addLeaf(parent *tagtree.Node, parentID tagserver.NodeID, node config.SchemaNode, name string, mechaNo, taskSlotNo, id int) {
	readProbe, err := config.DecodeRobotCommand(node.ReadCommand)
	if err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: malformed ReadCommand")
		return
	}
	count, _ := node.CountLiteral()
	isTuple := node.Datatype == "Position" || node.Datatype == "Joint"
	isArray := isTuple || count > 0
	writeable := node.Writeable && count == 0 && !isTuple

	readCmd := r3.NewCommand(readProbe.Command, readProbe.Match)
	readCmd.MechaNo, readCmd.TaskSlotNo, readCmd.ID = mechaNo, taskSlotNo, id

	nodeID := l.ids.alloc()
	kind := tagtree.ScalarLeaf
	if isArray {
		kind = tagtree.ArrayLeaf
	}
	leaf := &tagtree.Node{Name: name, Kind: kind, Datatype: node.Datatype, Count: count, Writeable: writeable}
	leaf.NamespaceIndex, leaf.Identifier = nodeID.Namespace, nodeID.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) {
		if isArray {
			return readRobotArray(l.Client, readCmd, node.Datatype, count)
		}
		return readRobotScalar(l.Client, readCmd, 0, node.Datatype)
	})

	var write tagserver.WriteFunc
	if writeable {
		writeProbe, err := config.DecodeRobotCommand(node.WriteCommand)
		if err == nil {
			writeCmd := r3.NewCommand(writeProbe.Command, "")
			writeCmd.MechaNo, writeCmd.TaskSlotNo, writeCmd.ID = mechaNo, taskSlotNo, id
			write = func(value any) error { return writeRobotScalar(l.Client, writeCmd, value) }
		}
	}
	if err := l.Server.AddVariable(parentID, nodeID, name, writeable, read, write); err != nil {
		l.log.WithError(err).WithField("name", name).Warn("specload: AddVariable failed")
	}
}

// parseUserNode grafts a user-configured leaf under a '/'-separated path,
// parsing its mecha/task-slot numbers from a leading "{mecha};{slot};" in
// the command string (defaulting to 1;1 per §4.4). That prefix is removed
// from the stored command, since FormatRead/FormatWrite add it back.
func (l *RobotLoader) parseUserNode(root *tagtree.Node, rootID tagserver.NodeID, user config.UserNode) {
	parent, parentID := root, rootID
	for _, segment := range splitPath(user.Parent) {
		parent, parentID = l.containerFor(parent, parentID, segment, false)
	}

	readProbe, err := config.DecodeRobotCommand(user.ReadCommand)
	if err != nil {
		l.log.WithError(err).WithField("name", user.Name).Warn("specload: malformed UserNode ReadCommand")
		return
	}
	mechaNo, taskSlotNo := parseLeadingMechaSlot(readProbe.Command)

	count := user.Count
	switch user.Datatype {
	case "Position":
		count = 10
	case "Joint":
		count = 8
	}
	writeable := user.Writeable && count == 0

	readCmd := r3.NewCommand(leadingMechaSlotPattern.ReplaceAllString(readProbe.Command, ""), readProbe.Match)
	readCmd.MechaNo, readCmd.TaskSlotNo = mechaNo, taskSlotNo

	nodeID := l.ids.alloc()
	kind := tagtree.ScalarLeaf
	if count > 0 {
		kind = tagtree.ArrayLeaf
	}
	leaf := &tagtree.Node{Name: user.Name, Kind: kind, Datatype: user.Datatype, Count: count, Writeable: writeable}
	leaf.NamespaceIndex, leaf.Identifier = nodeID.Namespace, nodeID.Identifier
	parent.AddChild(leaf)

	read := tagserver.ReadFunc(func() (any, error) {
		if count > 0 {
			return readRobotArray(l.Client, readCmd, user.Datatype, count)
		}
		return readRobotScalar(l.Client, readCmd, 0, user.Datatype)
	})

	var write tagserver.WriteFunc
	if writeable {
		writeProbe, err := config.DecodeRobotCommand(user.WriteCommand)
		if err == nil {
			wMecha, wSlot := parseLeadingMechaSlot(writeProbe.Command)
			writeCmd := r3.NewCommand(leadingMechaSlotPattern.ReplaceAllString(writeProbe.Command, ""), "")
			writeCmd.MechaNo, writeCmd.TaskSlotNo = wMecha, wSlot
			write = func(value any) error { return writeRobotScalar(l.Client, writeCmd, value) }
		}
	}
	if err := l.Server.AddVariable(parentID, nodeID, user.Name, writeable, read, write); err != nil {
		l.log.WithError(err).WithField("name", user.Name).Warn("specload: AddVariable failed")
	}
}

func convertCases(cases []config.EnumCase) []r3.EnumCase {
	out := make([]r3.EnumCase, len(cases))
	for i, c := range cases {
		out[i] = r3.EnumCase{Key: c.Key, Name: c.EnumString, Value: c.Value}
	}
	return out
}

var leadingMechaSlotPattern = regexp.MustCompile(`^(\d{1,2});(\d{1,2});`)

func parseLeadingMechaSlot(command string) (mechaNo, taskSlotNo int) {
	m := leadingMechaSlotPattern.FindStringSubmatch(command)
	if m == nil {
		return 1, 1
	}
	mechaNo, _ = strconv.Atoi(m[1])
	taskSlotNo, _ = strconv.Atoi(m[2])
	return mechaNo, taskSlotNo
}
