// Package device holds the per-connection state a supervisor task owns:
// the protocol client, the device's tag subtree root, and its published
// node id.
package device

import (
	"context"
	"sync"

	"github.com/CaptainPineapple/melsec-gateway/tagserver"
	"github.com/CaptainPineapple/melsec-gateway/tagtree"
)

// ProtocolClient is the subset of *slmp.Client and *r3.Client the
// supervisor needs to manage a connection's lifecycle, independent of
// which wire protocol it speaks.
type ProtocolClient interface {
	Connect(ctx context.Context) error
	Close() error
	Connected() bool
	HealthCheck() error
}

// Record is one device's live state, exclusively owned by the
// supervisor task running its loop.
type Record struct {
	Name   string
	Client ProtocolClient

	mu       sync.Mutex
	root     *tagtree.Node
	rootID   tagserver.NodeID
	attached bool
}

// NewRecord builds a Record bound to an already-constructed protocol
// client and the node id under which its subtree root was (or will be)
// published.
func NewRecord(name string, client ProtocolClient, rootID tagserver.NodeID) *Record {
	return &Record{Name: name, Client: client, rootID: rootID}
}

// SetSubtree records the tag subtree built for this connection's
// current session, marking it attached.
func (r *Record) SetSubtree(root *tagtree.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = root
	r.attached = true
}

// ClearSubtree marks the device's subtree detached. It does not itself
// delete nodes from the tag server; the caller does that first.
func (r *Record) ClearSubtree() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = nil
	r.attached = false
}

// Subtree returns the currently attached root, or nil if none.
func (r *Record) Subtree() *tagtree.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root
}

// Attached reports whether a subtree is currently published for this
// device.
func (r *Record) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

// RootID returns the node id under which this device's root container is
// published in the tag server.
func (r *Record) RootID() tagserver.NodeID {
	return r.rootID
}
