package slmp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/transport"
)

// recvTimeout bounds how long a request waits for a PLC response before the
// connection is considered dead.
const recvTimeout = 3 * time.Second

const responseBufferSize = 4096

// Client is a thread-safe SLMP 3E client bound to a single PLC station. All
// requests acquire the client's mutex for the full round trip, since the
// underlying connection is not safe for concurrent send/recv.
type Client struct {
	mu   sync.Mutex
	tcp  transport.TCP
	cfg  frameConfig
	host string
	port int
	log  *logging.Entry
}

// NewClient builds an SLMP client for a PLC reachable at host:port. The
// network/station/moduleIO/multidrop fields address the destination station
// within the target network and are written into every request header as
// given; NewLocalClient supplies the conventional directly-connected-CPU
// values.
func NewClient(name, host string, port int, networkNo, stationNo byte, moduleIO uint16, multidrop byte) *Client {
	return &Client{
		cfg: frameConfig{
			networkNo:        networkNo,
			stationNo:        stationNo,
			moduleIO:         moduleIO,
			multidropStation: multidrop,
		},
		host: host,
		port: port,
		log:  logging.WithDevice(name),
	}
}

// NewLocalClient builds a client using the conventional defaults for a
// directly connected CPU: network 0x00, station 0xFF, module I/O 0x03FF,
// multidrop 0x00.
func NewLocalClient(name, host string, port int) *Client {
	return NewClient(name, host, port, 0x00, 0xFF, 0x03FF, 0x00)
}

// Connect dials the PLC. It is safe to call again after Close.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tcp.Connect(c.host, c.port, recvTimeout); err != nil {
		c.log.WithError(err).Warn("slmp connect failed")
		return err
	}
	c.log.Info("slmp connected")
	return nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcp.Close()
}

// Connected reports whether the last Connect succeeded and the socket has
// not since been closed, either by Close or after a send/receive failure.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tcp.Connected()
}

// HealthCheck issues a one-word read of D0 and reports whether the PLC
// answered without a transport error.
func (c *Client) HealthCheck() error {
	_, err := c.readRequest(DeviceD, ExtensionNone, 0, 1)
	return err
}

// request sends a fully built frame and returns its validated payload.
func (c *Client) request(command RequestCommand, subcommand Subcommand, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestLocked(command, subcommand, payload)
}

func (c *Client) requestLocked(command RequestCommand, subcommand Subcommand, payload []byte) ([]byte, error) {
	if !c.tcp.Connected() {
		return nil, fmt.Errorf("slmp: not connected")
	}
	frame := buildFrame(c.cfg, command, subcommand, payload)
	if _, err := c.tcp.Send(frame); err != nil {
		c.disconnectLocked()
		return nil, err
	}
	buf := make([]byte, responseBufferSize)
	n, err := c.tcp.Recv(buf)
	if err != nil {
		c.disconnectLocked()
		return nil, err
	}
	resp, err := parseResponse(buf[:n])
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) disconnectLocked() {
	c.tcp.Close()
	c.log.Warn("slmp disconnected")
}

// readRequestLocked issues a device read and returns the raw payload bytes.
func (c *Client) readRequestLocked(device Device, extension DeviceExtension, headNo uint32, count uint16) ([]byte, error) {
	if extension != ExtensionNone {
		payload := buildReadPayloadExtended(device, extension, headNo, count)
		return c.requestLocked(CommandRead, SubWordLongDeviceExtension, payload)
	}
	payload := buildReadPayload(device, headNo, count)
	return c.requestLocked(CommandRead, SubWord, payload)
}

func (c *Client) readRequest(device Device, extension DeviceExtension, headNo uint32, count uint16) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readRequestLocked(device, extension, headNo, count)
}

func (c *Client) bitReadRequest(device Device, headNo uint32, count uint16) ([]byte, error) {
	payload := buildReadPayload(device, headNo, count)
	return c.request(CommandRead, SubBit, payload)
}

func (c *Client) writeRequest(device Device, extension DeviceExtension, headNo uint32, data []byte) error {
	var payload []byte
	if extension != ExtensionNone {
		payload = buildWritePayloadWordExtended(device, extension, headNo, data)
	} else {
		payload = buildWritePayloadWord(device, headNo, data)
	}
	_, err := c.request(CommandWrite, subWriteSubcommand(extension), payload)
	return err
}

func subWriteSubcommand(extension DeviceExtension) Subcommand {
	if extension != ExtensionNone {
		return SubWordLongDeviceExtension
	}
	return SubWord
}

func (c *Client) bitWriteRequest(device Device, headNo uint32, bits []bool) error {
	payload := buildWritePayloadBit(device, headNo, bits)
	_, err := c.request(CommandWrite, SubBit, payload)
	return err
}
