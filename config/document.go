// Package config loads the gateway's two JSON-with-comments configuration
// documents: clients.json (device inventory) and the per-device
// PLC/Robot specification schemas.
package config

import "encoding/json"

// ClientsDocument is the top-level shape of clients.json.
type ClientsDocument struct {
	Clients []ClientEntry `json:"Clients"`
}

// ClientEntry describes one device to connect to.
type ClientEntry struct {
	Type string `json:"Type"`
	Name string `json:"Name"`
	IP   string `json:"Ip"`
	Port int    `json:"Port"`

	// PLC only.
	NetworkNo          *uint8  `json:"Destination network No.,omitempty"`
	StationNo          *uint8  `json:"Destination station No.,omitempty"`
	ModuleIO           *uint16 `json:"Destination Module I/O,omitempty"`
	MultidropStationNo *uint8  `json:"Destination multidrop station No.,omitempty"`

	UserNodes []UserNode `json:"UserNodes,omitempty"`
}

// IsPLC reports whether the entry's Type selects the PLC loader.
func (c ClientEntry) IsPLC() bool { return c.Type == "PLC" }

// IsRobot reports whether the entry's Type selects the robot loader.
func (c ClientEntry) IsRobot() bool { return c.Type == "Robot" }

// UserNode grafts one extra leaf into a device's materialised tree,
// outside the shared PLC/robot specification schema.
// UserNode grafts one extra leaf into a device's materialised tree,
// outside the shared PLC/robot specification schema. ReadCommand and
// WriteCommand are kept raw because their shape is protocol-specific: an
// object `{Device, "Head no", Length}` or `{Label}` for a PLC, an object
// `{Command, Match}` for a robot. specload decodes them once it knows
// which protocol owns the entry.
type UserNode struct {
	Name         string          `json:"Name"`
	Parent       string          `json:"Parent"`
	Type         string          `json:"Type"`
	Datatype     string          `json:"Datatype"`
	ReadCommand  json.RawMessage `json:"ReadCommand"`
	WriteCommand json.RawMessage `json:"WriteCommand,omitempty"`
	Writeable    bool            `json:"Writeable,omitempty"`
	Count        int             `json:"Count,omitempty"`
}
