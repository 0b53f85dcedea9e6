// Package slmp implements the SLMP (SeamLess Message Protocol) 3E binary
// frame client used to talk to Mitsubishi MELSEC PLCs over TCP.
package slmp

import (
	"fmt"
	"regexp"
	"strconv"
)

// RequestCommand selects the SLMP command word of a request frame.
type RequestCommand uint16

const (
	CommandRead             RequestCommand = 0x0401
	CommandWrite            RequestCommand = 0x1401
	CommandArrayLabelRead    RequestCommand = 0x041A
	CommandArrayLabelWrite   RequestCommand = 0x141A
	CommandRandomLabelRead   RequestCommand = 0x041C
	CommandRandomLabelWrite  RequestCommand = 0x141B
)

// DeviceExtension selects the multi-CPU / start I/O addressing mode for a
// device access. None means a plain, non-extended device reference.
type DeviceExtension uint16

const (
	ExtensionNone   DeviceExtension = 0x0100
	ExtensionCPUNo1 DeviceExtension = 0x03E0
	ExtensionCPUNo2 DeviceExtension = 0x03E1
	ExtensionCPUNo3 DeviceExtension = 0x03E2
	ExtensionCPUNo4 DeviceExtension = 0x03E3
)

// Subcommand selects the word/bit access width of a request.
type Subcommand uint16

const (
	SubBit                     Subcommand = 0x0001
	SubBitLong                 Subcommand = 0x0003
	SubWord                    Subcommand = 0x0000
	SubWordLong                Subcommand = 0x0002
	SubWordLongDeviceExtension Subcommand = 0x0082
)

// Device identifies an SLMP device memory area.
type Device uint16

const (
	DeviceNone Device = 0x00
	DeviceSM   Device = 0x91
	DeviceSD   Device = 0xA9
	DeviceX    Device = 0x9C
	DeviceY    Device = 0x9D
	DeviceM    Device = 0x90
	DeviceL    Device = 0x92
	DeviceF    Device = 0x93
	DeviceV    Device = 0x94
	DeviceB    Device = 0xA0
	DeviceD    Device = 0xA8
	DeviceW    Device = 0xB4
	DeviceTS   Device = 0xC1
	DeviceTC   Device = 0xC0
	DeviceTN   Device = 0xC2
	DeviceSB   Device = 0xA1
	DeviceSW   Device = 0xB5
	DeviceDX   Device = 0xA2
	DeviceDY   Device = 0xA3
	DeviceZ    Device = 0xCC
	DeviceR    Device = 0xAF
	DeviceZR   Device = 0xB0
	DeviceG    Device = 0x00AB
	DeviceHG   Device = 0x002E
)

// Endcode is the SLMP response end code. Zero means success.
type Endcode uint16

const (
	EndSuccess            Endcode = 0x0000
	EndInvalidEndCode      Endcode = 0x0001
	EndUnableToWrite       Endcode = 0x0055
	EndWrongCommand        Endcode = 0xC059
	EndWrongFormat         Endcode = 0xC05C
	EndWrongLength         Endcode = 0xC061
	EndBusy                Endcode = 0xCEE0
	EndExceedReqLength     Endcode = 0xCEE1
	EndExceedRespLength    Endcode = 0xCEE2
	EndServerNotFound      Endcode = 0xCF10
	EndWrongConfigItem     Endcode = 0xCF20
	EndPrmIDNotFound       Endcode = 0xCF30
	EndNotStartExclWrite   Endcode = 0xCF31
	EndRelayFailure        Endcode = 0xCF70
	EndTimeoutError        Endcode = 0xCF71
	EndInvalidGlobalLabel  Endcode = 0x40C0
)

// Error reports a non-zero SLMP end code returned by a device.
type Error struct {
	Endcode Endcode
}

func (e *Error) Error() string {
	return fmt.Sprintf("slmp: device returned end code 0x%04X", uint16(e.Endcode))
}

var startIOPattern = regexp.MustCompile(`^U([0-9A-Fa-f]{2,3})`)

// ConvertDeviceName maps a schema device-name string (e.g. "D", "M", "U3E0",
// "U3F") to its SLMP device code and extension. It returns (DeviceNone,
// ExtensionNone) for names it does not recognize, mirroring the original
// C++ client: the caller is expected to warn and skip binding rather than
// fail the whole specification load.
func ConvertDeviceName(name string) (Device, DeviceExtension) {
	switch name {
	case "SM":
		return DeviceSM, ExtensionNone
	case "SD":
		return DeviceSD, ExtensionNone
	case "X":
		return DeviceX, ExtensionNone
	case "Y":
		return DeviceY, ExtensionNone
	case "M":
		return DeviceM, ExtensionNone
	case "L":
		return DeviceL, ExtensionNone
	case "F":
		return DeviceF, ExtensionNone
	case "V":
		return DeviceV, ExtensionNone
	case "B":
		return DeviceB, ExtensionNone
	case "D":
		return DeviceD, ExtensionNone
	case "W":
		return DeviceW, ExtensionNone
	case "TS":
		return DeviceTS, ExtensionNone
	case "TC":
		return DeviceTC, ExtensionNone
	case "TN":
		return DeviceTN, ExtensionNone
	case "SB":
		return DeviceSB, ExtensionNone
	case "SW":
		return DeviceSW, ExtensionNone
	case "DX":
		return DeviceDX, ExtensionNone
	case "DY":
		return DeviceDY, ExtensionNone
	case "Z":
		return DeviceZ, ExtensionNone
	case "R":
		return DeviceR, ExtensionNone
	case "ZR":
		return DeviceZR, ExtensionNone
	case "U3E0":
		return DeviceG, ExtensionCPUNo1
	case "U3E1":
		return DeviceG, ExtensionCPUNo2
	case "U3E2":
		return DeviceG, ExtensionCPUNo3
	case "U3E3":
		return DeviceG, ExtensionCPUNo4
	}

	if m := startIOPattern.FindStringSubmatch(name); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 16)
		if err == nil {
			return DeviceG, DeviceExtension(v)
		}
	}

	return DeviceNone, ExtensionNone
}
