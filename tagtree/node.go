// Package tagtree implements the in-memory node tree that mirrors a
// device's PLC/Robot specification as containers, scalar leaves and array
// leaves, independent of the tag-server surface that publishes it.
package tagtree

// Kind classifies a Node.
type Kind int

const (
	// Container is a non-leaf node grouping children (an Object or a
	// Folder's generated children).
	Container Kind = iota
	// ScalarLeaf is a single read/write or read-only value.
	ScalarLeaf
	// ArrayLeaf is a fixed-length array of values.
	ArrayLeaf
)

// Node is one element of the tag tree. Children are owned: deleting a node
// recursively detaches its whole subtree. NamespaceIndex/Identifier is the
// (namespace, id) pair the tag server uses to look the node up. ReadBinding
// and WriteBinding are opaque per-protocol slots; specload registers its
// read/write closures with the tag server and leaves these fields nil.
type Node struct {
	Name            string
	Kind            Kind
	Datatype        string
	Count           int
	NamespaceIndex  uint16
	Identifier      uint32
	Writeable       bool
	ReadBinding     any
	WriteBinding    any
	Children        []*Node
}

// NewContainer builds an empty container node.
func NewContainer(name string) *Node {
	return &Node{Name: name, Kind: Container}
}

// AddChild appends child to n's owned children and returns it for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// GetNode performs a depth-first search for the descendant (including n
// itself) whose (namespace, id) pair matches. It returns nil if none is
// found.
func (n *Node) GetNode(namespace uint16, id uint32) *Node {
	if n.NamespaceIndex == namespace && n.Identifier == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.GetNode(namespace, id); found != nil {
			return found
		}
	}
	return nil
}

// Contains returns n's first child named name, or nil. It is used both to
// deduplicate Object containers sharing a name and to locate the parent of
// a '/'-separated user-node path.
func (n *Node) Contains(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// RemoveChild detaches the first child named name from n, returning true
// if a child was removed.
func (n *Node) RemoveChild(name string) bool {
	for i, child := range n.Children {
		if child.Name == name {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}
