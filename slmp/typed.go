package slmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Numeric is the set of scalar types the typed device-access surface can
// marshal directly onto the wire.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

func sizeOf[T Numeric]() int {
	var v T
	return binary.Size(v)
}

func wordCount(byteLen int) uint16 {
	return uint16((byteLen + 1) / 2)
}

// Get reads a scalar numeric value addressed by cmd.
func Get[T Numeric](c *Client, cmd Command) (T, error) {
	var zero T
	if cmd.IsLabel {
		return LabelGet[T](c, cmd.Label)
	}
	size := sizeOf[T]()
	data, err := c.readRequest(cmd.Device, cmd.Extension, cmd.HeadNo, wordCount(size))
	if err != nil {
		return zero, err
	}
	if len(data) < size {
		return zero, fmt.Errorf("slmp: short read: got %d bytes, want %d", len(data), size)
	}
	var v T
	if err := binary.Read(bytes.NewReader(data[:size]), binary.LittleEndian, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// GetArray reads n consecutive numeric values starting at cmd.HeadNo.
func GetArray[T Numeric](c *Client, cmd Command, n int) ([]T, error) {
	size := sizeOf[T]()
	data, err := c.readRequest(cmd.Device, cmd.Extension, cmd.HeadNo, wordCount(size*n))
	if err != nil {
		return nil, err
	}
	if len(data) < size*n {
		return nil, fmt.Errorf("slmp: short read: got %d bytes, want %d", len(data), size*n)
	}
	out := make([]T, n)
	r := bytes.NewReader(data)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Write writes a scalar numeric value addressed by cmd.
func Write[T Numeric](c *Client, cmd Command, value T) error {
	if cmd.IsLabel {
		return labelWrite[T](c, cmd.Label, value)
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	return c.writeRequest(cmd.Device, cmd.Extension, cmd.HeadNo, data)
}

// GetBool reads a word device and reports it as true iff the value is
// non-zero, matching SLMP's convention for boolean-typed word devices.
func GetBool(c *Client, cmd Command) (bool, error) {
	v, err := Get[uint16](c, cmd)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// GetBit reads a single bit device.
func GetBit(c *Client, cmd Command) (bool, error) {
	data, err := c.bitReadRequest(cmd.Device, cmd.HeadNo, 1)
	if err != nil {
		return false, err
	}
	if len(data) < 1 {
		return false, fmt.Errorf("slmp: short bit read")
	}
	return unpackBits(data, 1)[0], nil
}

// GetBitArray reads n consecutive bit devices.
func GetBitArray(c *Client, cmd Command, n int) ([]bool, error) {
	data, err := c.bitReadRequest(cmd.Device, cmd.HeadNo, uint16(n))
	if err != nil {
		return nil, err
	}
	if len(data) < (n+1)/2 {
		return nil, fmt.Errorf("slmp: short bit read: got %d bytes, want %d", len(data), (n+1)/2)
	}
	return unpackBits(data, n), nil
}

// WriteBit writes a single bit device.
func WriteBit(c *Client, cmd Command, value bool) error {
	return c.bitWriteRequest(cmd.Device, cmd.HeadNo, []bool{value})
}

// WriteBitArray writes n consecutive bit devices.
func WriteBitArray(c *Client, cmd Command, values []bool) error {
	return c.bitWriteRequest(cmd.Device, cmd.HeadNo, values)
}

// GetString reads a fixed-width string device, or a global label when cmd
// is label-addressed. length is the configured character count for a
// device read; it is ignored for labels, whose value carries its own
// declared length on the wire.
func GetString(c *Client, cmd Command, length uint16) (string, error) {
	if cmd.IsLabel {
		return LabelGetString(c, cmd.Label)
	}
	data, err := c.readRequest(cmd.Device, cmd.Extension, cmd.HeadNo, wordCount(int(length)))
	if err != nil {
		return "", err
	}
	if len(data) < int(length) {
		return "", fmt.Errorf("slmp: short string read")
	}
	return trimTrailingNul(data[:length]), nil
}

// WriteString writes a fixed-width string device, or a global label when
// cmd is label-addressed, zero-padding a device write to an even byte
// count.
func WriteString(c *Client, cmd Command, value string) error {
	if cmd.IsLabel {
		return LabelWriteString(c, cmd.Label, value)
	}
	data := []byte(value)
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	return c.writeRequest(cmd.Device, cmd.Extension, cmd.HeadNo, data)
}

// GetStringArray reads n consecutive fixed-width string devices in one
// request and slices the result per element.
func GetStringArray(c *Client, cmd Command, n int, length uint16) ([]string, error) {
	elemWords := wordCount(int(length))
	data, err := c.readRequest(cmd.Device, cmd.Extension, cmd.HeadNo, elemWords*uint16(n))
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		start := i * int(length)
		end := start + int(length)
		if end > len(data) {
			return nil, fmt.Errorf("slmp: short string array read")
		}
		out[i] = trimTrailingNul(data[start:end])
	}
	return out, nil
}

func trimTrailingNul(b []byte) string {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
