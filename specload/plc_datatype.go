package specload

import (
	"fmt"

	"github.com/CaptainPineapple/melsec-gateway/slmp"
)

// readPLCValue dispatches a configured leaf's read by its declared
// Datatype and count, mirroring plc.h's read_plc_value/read_plc_array_value
// type switches.
func readPLCValue(client *slmp.Client, cmd slmp.Command, datatype string, count int, length uint16) (any, error) {
	if count > 1 {
		return readPLCArray(client, cmd, datatype, count, length)
	}
	switch datatype {
	case "Bool":
		return slmp.GetBool(client, cmd)
	case "Word":
		return slmp.Get[uint16](client, cmd)
	case "DWord":
		return slmp.Get[uint32](client, cmd)
	case "Int":
		return slmp.Get[int16](client, cmd)
	case "DInt":
		return slmp.Get[int32](client, cmd)
	case "Float":
		return slmp.Get[float32](client, cmd)
	case "Double":
		return slmp.Get[float64](client, cmd)
	case "String":
		return slmp.GetString(client, cmd, length)
	default:
		return nil, fmt.Errorf("specload: unknown PLC datatype %q", datatype)
	}
}

func readPLCArray(client *slmp.Client, cmd slmp.Command, datatype string, count int, length uint16) (any, error) {
	switch datatype {
	case "Bool":
		return slmp.GetBitArray(client, cmd, count)
	case "Word":
		return slmp.GetArray[uint16](client, cmd, count)
	case "DWord":
		return slmp.GetArray[uint32](client, cmd, count)
	case "Int":
		return slmp.GetArray[int16](client, cmd, count)
	case "DInt":
		return slmp.GetArray[int32](client, cmd, count)
	case "Float":
		return slmp.GetArray[float32](client, cmd, count)
	case "Double":
		return slmp.GetArray[float64](client, cmd, count)
	case "String":
		return slmp.GetStringArray(client, cmd, count, length)
	default:
		return nil, fmt.Errorf("specload: unknown PLC array datatype %q", datatype)
	}
}

// writePLCValue dispatches a writeable leaf's write by its declared
// Datatype. Arrays are never writeable (§3: writeable requires count<=1).
func writePLCValue(client *slmp.Client, cmd slmp.Command, datatype string, value any) error {
	switch datatype {
	case "Bool":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("specload: write Bool: got %T", value)
		}
		return slmp.Write(client, cmd, boolToWord(v))
	case "Word":
		return writeNumeric[uint16](client, cmd, value)
	case "DWord":
		return writeNumeric[uint32](client, cmd, value)
	case "Int":
		return writeNumeric[int16](client, cmd, value)
	case "DInt":
		return writeNumeric[int32](client, cmd, value)
	case "Float":
		return writeNumeric[float32](client, cmd, value)
	case "Double":
		return writeNumeric[float64](client, cmd, value)
	case "String":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("specload: write String: got %T", value)
		}
		return slmp.WriteString(client, cmd, v)
	default:
		return fmt.Errorf("specload: unknown PLC write datatype %q", datatype)
	}
}

func boolToWord(v bool) uint16 {
	if v {
		return 1
	}
	return 0
}

func writeNumeric[T slmp.Numeric](client *slmp.Client, cmd slmp.Command, value any) error {
	v, ok := toFloat64(value)
	if !ok {
		return fmt.Errorf("specload: write: unsupported value type %T", value)
	}
	return slmp.Write(client, cmd, T(v))
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
