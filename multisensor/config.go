package multisensor

import (
	"time"

	"vl6180x-multi/vl6180x"
)

// PinMode selects the numbering scheme used for enable lines.
type PinMode int

const (
	// PinModeBCM numbers lines by Broadcom GPIO channel.
	PinModeBCM PinMode = iota
	// PinModeBoard numbers lines by physical position on the 40-pin header.
	PinModeBoard
)

func (m PinMode) String() string {
	switch m {
	case PinModeBCM:
		return "bcm"
	case PinModeBoard:
		return "board"
	default:
		return "invalid"
	}
}

// DefaultBootstrapDelay is the settle time between releasing a sensor from
// reset and the first bus transaction addressed to it. Going below this makes
// the bus transceiver NAK the bootstrap write.
const DefaultBootstrapDelay = 100 * time.Millisecond

// DeviceSpec describes one physical sensor: the line that releases it from
// reset, the unique address it is to be reassigned to, and its range
// calibration offset. List order defines enable order.
type DeviceSpec struct {
	EnableLine int
	Address    byte
	Offset     int8
}

// Config is the sequencing input. EnableLines and Addresses are parallel
// ordered lists, one entry per sensor. Offsets is optional and defaults to
// zero for every sensor. DefaultAddress defaults to the VL6180X factory
// address, BootstrapDelay to DefaultBootstrapDelay.
//
// Target addresses are assumed distinct; the sequencer does not reject
// duplicates.
type Config struct {
	EnableLines []int
	Addresses   []byte
	Offsets     []int8
	PinMode     PinMode

	DefaultAddress byte
	BootstrapDelay time.Duration
}

// specs validates the configuration and normalizes it into one DeviceSpec
// per sensor. Any violation is a KindConfig error, raised before a single
// pin or bus action.
func (c Config) specs() ([]DeviceSpec, byte, time.Duration, error) {
	const op = "configure"

	if len(c.Addresses) != len(c.EnableLines) {
		return nil, 0, 0, configErrorf(op, "%d enable lines but %d addresses", len(c.EnableLines), len(c.Addresses))
	}
	if c.Offsets != nil && len(c.Offsets) != len(c.EnableLines) {
		return nil, 0, 0, configErrorf(op, "%d enable lines but %d offsets", len(c.EnableLines), len(c.Offsets))
	}
	if c.PinMode != PinModeBCM && c.PinMode != PinModeBoard {
		return nil, 0, 0, configErrorf(op, "unsupported pin mode %d", int(c.PinMode))
	}

	defaultAddress := c.DefaultAddress
	if defaultAddress == 0 {
		defaultAddress = vl6180x.DefaultAddress
	}
	if defaultAddress > 0x7f {
		return nil, 0, 0, configErrorf(op, "default address 0x%02x out of 7-bit range", defaultAddress)
	}

	delay := c.BootstrapDelay
	if delay == 0 {
		delay = DefaultBootstrapDelay
	}

	specs := make([]DeviceSpec, len(c.EnableLines))
	for i, line := range c.EnableLines {
		if c.Addresses[i] > 0x7f {
			return nil, 0, 0, configErrorf(op, "address 0x%02x out of 7-bit range", c.Addresses[i])
		}

		specs[i] = DeviceSpec{EnableLine: line, Address: c.Addresses[i]}
		if c.Offsets != nil {
			specs[i].Offset = c.Offsets[i]
		}
	}

	return specs, defaultAddress, delay, nil
}
