// Package tagserver defines the facade specload and supervisor use to
// publish and retract tags on the external tag-server collaborator. The
// external server itself (OPC-UA or otherwise) is out of scope; InMemory
// exists so the rest of the module and its tests have something concrete
// to drive.
package tagserver

import (
	"fmt"
	"sync"
)

// ReadFunc produces a leaf's current value on demand.
type ReadFunc func() (any, error)

// WriteFunc applies a value written to a leaf.
type WriteFunc func(value any) error

// NodeID identifies a published tag within one namespace.
type NodeID struct {
	Namespace  uint16
	Identifier uint32
}

// Server is the narrow surface specload and supervisor need: create
// containers and variables, and tear a subtree down on disconnect or
// reconfiguration.
type Server interface {
	AddContainer(parent NodeID, id NodeID, name string) error
	AddVariable(parent NodeID, id NodeID, name string, writeable bool, read ReadFunc, write WriteFunc) error
	DeleteNode(id NodeID) error
}

type entry struct {
	name      string
	parent    NodeID
	children  []NodeID
	read      ReadFunc
	write     WriteFunc
	writeable bool
}

// InMemory is a process-wide, mutex-guarded Server used by tests and by
// gatewayd's serve and `status` paths to hold the tree that would be
// published without requiring a live OPC-UA server.
type InMemory struct {
	mu    sync.Mutex
	nodes map[NodeID]*entry
}

// NewInMemory builds an empty InMemory tag server with an implicit root
// node at NodeID{}.
func NewInMemory() *InMemory {
	return &InMemory{nodes: map[NodeID]*entry{{}: {name: "root"}}}
}

func (s *InMemory) AddContainer(parent NodeID, id NodeID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.nodes[parent]
	if !ok {
		return fmt.Errorf("tagserver: unknown parent %+v", parent)
	}
	if _, exists := s.nodes[id]; exists {
		return fmt.Errorf("tagserver: node %+v already exists", id)
	}
	s.nodes[id] = &entry{name: name, parent: parent}
	p.children = append(p.children, id)
	return nil
}

func (s *InMemory) AddVariable(parent NodeID, id NodeID, name string, writeable bool, read ReadFunc, write WriteFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.nodes[parent]
	if !ok {
		return fmt.Errorf("tagserver: unknown parent %+v", parent)
	}
	if _, exists := s.nodes[id]; exists {
		return fmt.Errorf("tagserver: node %+v already exists", id)
	}
	s.nodes[id] = &entry{name: name, parent: parent, read: read, write: write, writeable: writeable}
	p.children = append(p.children, id)
	return nil
}

// DeleteNode recursively detaches id and its children from the tree.
func (s *InMemory) DeleteNode(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *InMemory) deleteLocked(id NodeID) error {
	e, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("tagserver: unknown node %+v", id)
	}
	for _, child := range e.children {
		if err := s.deleteLocked(child); err != nil {
			return err
		}
	}
	if p, ok := s.nodes[e.parent]; ok {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(s.nodes, id)
	return nil
}

// Read invokes the ReadFunc bound at id, for tests.
func (s *InMemory) Read(id NodeID) (any, error) {
	s.mu.Lock()
	e, ok := s.nodes[id]
	s.mu.Unlock()
	if !ok || e.read == nil {
		return nil, fmt.Errorf("tagserver: node %+v has no read binding", id)
	}
	return e.read()
}

// Write invokes the WriteFunc bound at id.
func (s *InMemory) Write(id NodeID, value any) error {
	s.mu.Lock()
	e, ok := s.nodes[id]
	s.mu.Unlock()
	if !ok || e.write == nil {
		return fmt.Errorf("tagserver: node %+v has no write binding", id)
	}
	if !e.writeable {
		return fmt.Errorf("tagserver: node %+v is read-only", id)
	}
	return e.write(value)
}

// Exists reports whether id is currently published.
func (s *InMemory) Exists(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}
