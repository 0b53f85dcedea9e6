package r3

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CaptainPineapple/melsec-gateway/internal/logging"
	"github.com/CaptainPineapple/melsec-gateway/transport"
)

const (
	bufferSize  = 400
	recvTimeout = 3 * time.Second
)

// Client is a thread-safe R3 ASCII client bound to a single robot
// controller.
type Client struct {
	mu   sync.Mutex
	tcp  transport.TCP
	host string
	port int
	log  *logging.Entry
}

// NewClient builds a client for a robot controller reachable at host:port.
// 10001 is the controller's conventional R3 ASCII port.
func NewClient(name, host string, port int) *Client {
	return &Client{host: host, port: port, log: logging.WithDevice(name)}
}

// Connect dials the controller.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tcp.Connect(c.host, c.port, recvTimeout); err != nil {
		c.log.WithError(err).Warn("r3 connect failed")
		return err
	}
	c.log.Info("r3 connected")
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

// HealthCheck issues a harmless status query and reports whether the
// controller answered without a transport error.
func (c *Client) HealthCheck() error {
	_, err := c.answer("1;1;IFPAUSE")
	return err
}

// answer sends a command line and returns the payload following the
// QoK/Qok acknowledgement prefix.
func (c *Client) answer(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tcp.Connected() {
		return "", fmt.Errorf("r3: not connected")
	}
	if _, err := c.tcp.Send([]byte(command)); err != nil {
		c.disconnectLocked()
		return "", err
	}
	buf := make([]byte, bufferSize)
	n, err := c.tcp.Recv(buf)
	if err != nil {
		c.disconnectLocked()
		return "", err
	}
	raw := string(buf[:n])
	if len(raw) < 3 || (raw[:3] != "QoK" && raw[:3] != "Qok") {
		return "", fmt.Errorf("r3: unexpected answer to %q: %q", command, raw)
	}
	return raw[3:], nil
}

func (c *Client) disconnectLocked() {
	c.tcp.Close()
	c.log.Warn("r3 disconnected")
}

// Execute sends command and reports whether the controller acknowledged it.
func (c *Client) Execute(command string) error {
	_, err := c.answer(command)
	return err
}

// Get returns the raw answer payload for command, with no pattern match
// applied.
func (c *Client) Get(command string) (string, error) {
	return c.answer(command)
}

// GetMatch extracts the first capture group of match against command's
// answer.
func (c *Client) GetMatch(command, match string) (string, error) {
	answer, err := c.answer(command)
	if err != nil {
		return "", err
	}
	return ExtractMatch(answer, match)
}

// GetHexInt64 extracts a hexadecimal capture group and parses it as an
// integer.
func (c *Client) GetHexInt64(command, match string) (int64, error) {
	answer, err := c.answer(command)
	if err != nil {
		return 0, err
	}
	return ParseHexInt64(answer, match)
}

// GetInt64 extracts a decimal capture group and parses it as an integer.
func (c *Client) GetInt64(command, match string) (int64, error) {
	answer, err := c.answer(command)
	if err != nil {
		return 0, err
	}
	return ParseInt64(answer, match)
}

// GetUint64 extracts a decimal capture group and parses it as an unsigned
// integer.
func (c *Client) GetUint64(command, match string) (uint64, error) {
	answer, err := c.answer(command)
	if err != nil {
		return 0, err
	}
	return ParseUint64(answer, match)
}

// GetFloat64 extracts a capture group and parses it as a float, returning
// 0 when the capture is empty (mirroring the original's std::stod fallback
// for an empty capture).
func (c *Client) GetFloat64(command, match string) (float64, error) {
	answer, err := c.answer(command)
	if err != nil {
		return 0, err
	}
	return ParseFloat64(answer, match)
}

// GetBool evaluates a single-bit flag. When match is empty it reports
// whether the controller returned any non-empty, non-zero answer at all;
// otherwise it reads a hex integer and tests bit `position`.
func (c *Client) GetBool(command, match string, position int) (bool, error) {
	answer, err := c.answer(command)
	if err != nil {
		return false, err
	}
	return ParseBool(answer, match, position)
}

// GetPosition reads command, matches its answer, then parses a
// "(x,y,z,...)" or "(x,y,z,...)(fl1,fl2)" tuple into a fixed-size array.
func (c *Client) GetPosition(command, match string, size int) ([]float64, error) {
	answer, err := c.GetMatch(command, match)
	if err != nil {
		return nil, err
	}
	return ParsePosition(answer, size)
}

// GetEnum evaluates an EnumProperty's case table against command's answer.
func (c *Client) GetEnum(command string, cases []EnumCase) (EnumCase, error) {
	answer, err := c.answer(command)
	if err != nil {
		return EnumCase{}, err
	}
	return EvaluateEnum(answer, cases)
}
