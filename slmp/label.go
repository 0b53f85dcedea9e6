package slmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// encodeLabelName converts a global label name to the UTF-16LE byte
// sequence SLMP expects, preceded by its 2-byte code-unit count.
func encodeLabelName(name string) []byte {
	units := utf16.Encode([]rune(name))
	buf := make([]byte, 2+len(units)*2)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2+i*2:4+i*2], u)
	}
	return buf
}

// buildLabelReadPayload builds a random label read request for a single
// label: label count(2)=1, reserved(2)=0, then the encoded label name.
func buildLabelReadPayload(name string) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint16(p[0:2], 1)
	return append(p, encodeLabelName(name)...)
}

// buildLabelWritePayload builds a random label write request for a single
// label, appending the value's raw little-endian bytes after the label
// name and its byte-length prefix.
func buildLabelWritePayload(name string, value []byte) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint16(p[0:2], 1)
	p = append(p, encodeLabelName(name)...)
	length := make([]byte, 2)
	binary.LittleEndian.PutUint16(length, uint16(len(value)))
	p = append(p, length...)
	return append(p, value...)
}

func labelReadRaw(c *Client, name string) ([]byte, error) {
	payload := buildLabelReadPayload(name)
	resp, err := c.request(CommandRandomLabelRead, SubWord, payload)
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("slmp: malformed random label read response")
	}
	count := binary.LittleEndian.Uint16(resp[0:2])
	if count < 1 {
		return nil, fmt.Errorf("slmp: label %q not returned", name)
	}
	if len(resp) < 4 {
		return nil, fmt.Errorf("slmp: truncated random label read response")
	}
	dataLen := binary.LittleEndian.Uint16(resp[2:4])
	if len(resp) < int(4+dataLen) {
		return nil, fmt.Errorf("slmp: truncated random label read payload")
	}
	return resp[4 : 4+dataLen], nil
}

// LabelGet reads a global label's value as a scalar numeric type.
func LabelGet[T Numeric](c *Client, name string) (T, error) {
	var zero T
	data, err := labelReadRaw(c, name)
	if err != nil {
		return zero, err
	}
	size := sizeOf[T]()
	if len(data) < size {
		return zero, fmt.Errorf("slmp: short label read")
	}
	var v T
	if err := binary.Read(bytes.NewReader(data[:size]), binary.LittleEndian, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// LabelGetString reads a global label's value as a string.
func LabelGetString(c *Client, name string) (string, error) {
	data, err := labelReadRaw(c, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func labelWrite[T Numeric](c *Client, name string, value T) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return err
	}
	return labelWriteRaw(c, name, buf.Bytes())
}

// LabelWrite writes a scalar numeric value to a global label.
func LabelWrite[T Numeric](c *Client, name string, value T) error {
	return labelWrite(c, name, value)
}

// LabelWriteString writes a string value to a global label.
func LabelWriteString(c *Client, name string, value string) error {
	return labelWriteRaw(c, name, []byte(value))
}

func labelWriteRaw(c *Client, name string, value []byte) error {
	payload := buildLabelWritePayload(name, value)
	_, err := c.request(CommandRandomLabelWrite, SubWord, payload)
	return err
}
