// Package transport implements the blocking TCP socket abstraction shared
// by the SLMP and R3 protocol clients. It has no knowledge of either wire
// format; it only moves bytes with a configurable receive timeout.
package transport

import (
	"fmt"
	"net"
	"time"
)

// TCP is a blocking, non-reentrant TCP connection. Callers that issue a
// send/recv pair must hold their own lock across both calls; TCP performs
// no internal serialization.
type TCP struct {
	conn        net.Conn
	recvTimeout time.Duration
}

// Connect dials addr:port and remembers recvTimeout for future Recv calls.
// A recvTimeout of zero disables the read deadline, matching the
// underlying socket's "no timeout" default.
func (t *TCP) Connect(addr string, port int, recvTimeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", addr, port), 3*time.Second)
	if err != nil {
		return err
	}
	t.conn = conn
	t.recvTimeout = recvTimeout
	return nil
}

// Send writes b in full and returns the number of bytes written.
func (t *TCP) Send(b []byte) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("transport: not connected")
	}
	return t.conn.Write(b)
}

// Recv reads into buf, blocking up to the configured receive timeout, and
// returns the number of bytes read.
func (t *TCP) Recv(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("transport: not connected")
	}
	if t.recvTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.recvTimeout)); err != nil {
			return 0, err
		}
	} else {
		if err := t.conn.SetReadDeadline(time.Time{}); err != nil {
			return 0, err
		}
	}
	return t.conn.Read(buf)
}

// Close releases the underlying socket. Close is safe to call more than
// once.
func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Connected reports whether Connect has succeeded and Close has not since
// been called. It does not perform any I/O.
func (t *TCP) Connected() bool {
	return t.conn != nil
}
