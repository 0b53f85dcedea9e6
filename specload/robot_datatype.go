package specload

import (
	"fmt"
	"math/bits"
	"regexp"

	"github.com/CaptainPineapple/melsec-gateway/r3"
)

var rhAxisPattern = regexp.MustCompile("^[rR][hH]")

// motionProfileOverride and motionDeviceCategoryOverride are the two
// hard-coded EnumProperty overrides §4.4 requires to fire before the
// schema's declared Cases are consulted. They need mecha/id node
// identity, which is why they live here rather than in package r3.
func motionProfileOverride(name string, mechaNo, id int, answer string) (r3.EnumCase, bool) {
	if name != "MotionProfile" || mechaNo != 1 || id != 3 || !rhAxisPattern.MatchString(answer) {
		return r3.EnumCase{}, false
	}
	return r3.EnumCase{Name: "LINEAR", Value: 3}, true
}

func motionDeviceCategoryOverride(name string, mechaNo int) (r3.EnumCase, bool) {
	if name != "MotionDeviceCategory" || mechaNo == 1 {
		return r3.EnumCase{}, false
	}
	return r3.EnumCase{Name: "OTHER", Value: 0}, true
}

// readRobotScalar dispatches a leaf's read by its declared Datatype,
// mirroring robot.h's read_robot_value type switch.
func readRobotScalar(client *r3.Client, cmd r3.Command, j int, datatype string) (any, error) {
	outgoing, match := r3.FormatRead(cmd, j)
	switch datatype {
	case "Double":
		return client.GetFloat64(outgoing, match)
	case "Float":
		return client.GetFloat64(outgoing, match)
	case "Int32", "Int64":
		return client.GetInt64(outgoing, match)
	case "UInt32", "UInt64":
		return client.GetUint64(outgoing, match)
	case "HexInt32":
		return client.GetHexInt64(outgoing, match)
	case "Bool":
		return client.GetBool(outgoing, match, cmd.Position)
	case "String", "LocalizedText":
		return client.GetMatch(outgoing, match)
	default:
		return nil, fmt.Errorf("specload: unknown robot datatype %q", datatype)
	}
}

// readRobotEnum evaluates an EnumProperty: the hard-coded overrides,
// then the declared case table in order.
func readRobotEnum(client *r3.Client, cmd r3.Command, name string) (r3.EnumCase, error) {
	outgoing, match := r3.FormatRead(cmd, 0)
	answer, err := client.GetMatch(outgoing, match)
	if err != nil {
		return r3.EnumCase{}, err
	}
	if ov, ok := motionProfileOverride(name, cmd.MechaNo, cmd.ID, answer); ok {
		return ov, nil
	}
	if ov, ok := motionDeviceCategoryOverride(name, cmd.MechaNo); ok {
		return ov, nil
	}
	return r3.EvaluateEnum(answer, cmd.Cases)
}

// readRobotArray dispatches Position/Joint and homogeneous element
// arrays, mirroring read_robot_array_value.
func readRobotArray(client *r3.Client, cmd r3.Command, datatype string, count int) (any, error) {
	switch datatype {
	case "Position":
		outgoing, match := r3.FormatRead(cmd, 0)
		return client.GetPosition(outgoing, match, 10)
	case "Joint":
		outgoing, match := r3.FormatRead(cmd, 0)
		return client.GetPosition(outgoing, match, 8)
	case "Double":
		out := make([]float64, count)
		for i := 0; i < count; i++ {
			outgoing, match := r3.FormatRead(cmd, i+1)
			v, err := client.GetFloat64(outgoing, match)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "Int32":
		out := make([]int64, count)
		for i := 0; i < count; i++ {
			outgoing, match := r3.FormatRead(cmd, i+1)
			v, err := client.GetInt64(outgoing, match)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "String":
		out := make([]string, count)
		for i := 0; i < count; i++ {
			outgoing, match := r3.FormatRead(cmd, i+1)
			v, err := client.GetMatch(outgoing, match)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("specload: unknown robot array datatype %q", datatype)
	}
}

// writeRobotScalar dispatches a writeable leaf's write, mirroring
// write_robot_value.
func writeRobotScalar(client *r3.Client, cmd r3.Command, value any) error {
	v, ok := toFloat64(value)
	if !ok {
		return fmt.Errorf("specload: robot write: unsupported value type %T", value)
	}
	outgoing := r3.FormatWrite(cmd, trimFloat(v))
	return client.Execute(outgoing)
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// countFromProbe evaluates a Folder's {Command, Match, Datatype} count
// probe under the ambient mecha/task-slot numbers.
func countFromProbe(client *r3.Client, command, match, datatype string, mechaNo, taskSlotNo int) (int, error) {
	cmd := r3.NewCommand(command, match)
	cmd.MechaNo, cmd.TaskSlotNo = mechaNo, taskSlotNo
	outgoing, m := r3.FormatRead(cmd, 0)
	switch datatype {
	case "BitCount":
		v, err := client.GetHexInt64(outgoing, m)
		if err != nil {
			return 0, err
		}
		return bits.OnesCount64(uint64(v)), nil
	case "HexUInt":
		v, err := client.GetHexInt64(outgoing, m)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	default:
		v, err := client.GetInt64(outgoing, m)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	}
}
