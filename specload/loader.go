// Package specload materialises a device's PLC or robot specification
// schema into a tagtree subtree, wiring each leaf's read/write bindings
// to a live protocol client and publishing every node through a
// tagserver.Server.
package specload

import (
	"sync"

	"github.com/CaptainPineapple/melsec-gateway/tagserver"
)

// idAllocator hands out strictly increasing node identifiers within one
// namespace, scoped to a single device's tree-build pass.
type idAllocator struct {
	mu        sync.Mutex
	namespace uint16
	next      uint32
}

func newIDAllocator(namespace uint16, start uint32) *idAllocator {
	return &idAllocator{namespace: namespace, next: start}
}

func (a *idAllocator) alloc() tagserver.NodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := tagserver.NodeID{Namespace: a.namespace, Identifier: a.next}
	a.next++
	return id
}
