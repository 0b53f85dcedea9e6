package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadClients_ParsesCommentsAndPLCFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clients.json")
	contents := `{
  // device inventory
  "Clients": [
    {
      "Type": "PLC",
      "Name": "plc-1",
      "Ip": "10.0.0.1",
      "Port": 5000,
      "Destination network No.": 0,
      "Destination station No.": 255,
      "Destination Module I/O": 1023,
      "Destination multidrop station No.": 0
    },
    {
      "Type": "Robot",
      "Name": "robot-1",
      "Ip": "10.0.0.2",
      "Port": 10001,
      "UserNodes": [
        { "Name": "Custom", "Parent": "Extras", "Type": "Device",
          "Datatype": "Double", "ReadCommand": {"Command": "1;1;VAL{i}", "Match": "VAL=(.+)"} }
      ]
    }
  ]
}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := LoadClients(path)
	if err != nil {
		t.Fatalf("LoadClients: %v", err)
	}
	if len(doc.Clients) != 2 {
		t.Fatalf("got %d clients, want 2", len(doc.Clients))
	}
	plc := doc.Clients[0]
	if !plc.IsPLC() || plc.NetworkNo == nil || *plc.NetworkNo != 0 || plc.StationNo == nil || *plc.StationNo != 255 {
		t.Fatalf("plc entry decoded wrong: %+v", plc)
	}
	robot := doc.Clients[1]
	if !robot.IsRobot() || len(robot.UserNodes) != 1 {
		t.Fatalf("robot entry decoded wrong: %+v", robot)
	}
	cmd, err := DecodeRobotCommand(robot.UserNodes[0].ReadCommand)
	if err != nil {
		t.Fatalf("DecodeRobotCommand: %v", err)
	}
	if cmd.Command != "1;1;VAL{i}" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestLoadSchema_CountLiteralAndProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robot-specification.json")
	contents := `{
  "Nodes": [
    { "Type": "Folder", "Name": "Fixed", "Count": 3, "FolderChild": {"Type": "Object", "Name": "X_{i}", "Children": []} },
    { "Type": "Folder", "Name": "Dynamic", "Count": {"Command": "1;1;CNT", "Match": "CNT=(.+)", "Datatype": "HexUInt"},
      "FolderChild": {"Type": "Object", "Name": "Y_{i}", "Children": []} }
  ]
}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(doc.Nodes))
	}
	if v, ok := doc.Nodes[0].CountLiteral(); !ok || v != 3 {
		t.Fatalf("Fixed.Count literal = %v, %v", v, ok)
	}
	if _, ok := doc.Nodes[0].CountProbe(); ok {
		t.Fatalf("Fixed.Count should not decode as a probe")
	}
	probe, ok := doc.Nodes[1].CountProbe()
	if !ok {
		t.Fatalf("Dynamic.Count should decode as a probe")
	}
	if probe.Command != "1;1;CNT" || probe.Datatype != "HexUInt" {
		t.Fatalf("got %+v", probe)
	}
}
