// Package multisensor puts multiple identical VL6180X sensors on one I2C
// bus. Every VL6180X answers at the same factory address after reset, so a
// bus with more than one of them is unusable until each has been moved to
// its own address. The sequencer holds all sensors in reset, then releases
// them one at a time over per-sensor enable lines, reprogramming each to its
// target address before the next one is allowed onto the bus.
package multisensor

import (
	"time"

	"vl6180x-multi/i2c"
	"vl6180x-multi/vl6180x"
)

// Bus is the shared-bus capability the sequencer consumes: one scan for
// currently-responding addresses, and register connections by address.
type Bus interface {
	Scan() ([]byte, error)
	vl6180x.Bus
}

// NewSession adapts an i2c bus session to the Bus interface consumed by the
// sequencer and the driver.
func NewSession(bus *i2c.Bus) Bus { return &session{bus: bus} }

type session struct {
	bus *i2c.Bus
}

func (s *session) Scan() ([]byte, error) { return s.bus.Scan() }

func (s *session) Device(address byte) (vl6180x.Conn, error) { return s.bus.Device(address) }

// Sequencer drives sensors from "all held in reset" to "all live at
// distinct addresses".
type Sequencer struct {
	bus  Bus
	pins EnableLines
}

func NewSequencer(bus Bus, pins EnableLines) *Sequencer {
	return &Sequencer{bus: bus, pins: pins}
}

// Initialize runs the address-reallocation sequence and returns the
// collection of live sensors, in configuration order.
//
// The run is strictly sequential: at most one sensor is ever out of reset
// before it has been reassigned. A transport failure on one sensor records a
// Failure and moves on; the returned error is non-nil only for a bad
// configuration or a failed bus scan, both of which abort before any sensor
// is touched. BootstrapDelay is a plain blocking sleep and the run has no
// overall timeout: a wedged bus transaction blocks indefinitely.
func (q *Sequencer) Initialize(cfg Config) (*Collection, error) {
	specs, defaultAddress, delay, err := cfg.specs()
	if err != nil {
		return nil, err
	}

	// Every enable line low: a clean all-in-reset starting point.
	if err := q.pins.Setup(cfg.PinMode, cfg.EnableLines); err != nil {
		return nil, err
	}

	busy, err := q.bus.Scan()
	if err != nil {
		return nil, transportError("scan", err)
	}
	busySet := make(map[byte]bool, len(busy))
	for _, address := range busy {
		busySet[address] = true
	}

	collection := &Collection{}
	failed := make(map[int]bool)

	// A target address already answering on the bus means a prior run
	// already reassigned that sensor; it only needs a handle. Note that the
	// scan cannot tell such a sensor apart from an unrelated device that
	// happens to sit on the same address.
	for i, spec := range specs {
		if busySet[spec.Address] {
			continue
		}

		if err := q.reassign(spec, defaultAddress, delay); err != nil {
			failed[i] = true
			collection.Failures = append(collection.Failures, Failure{Index: i, Spec: spec, Err: err})
		}
	}

	for i, spec := range specs {
		if failed[i] {
			continue
		}

		device, err := q.openDevice(i, spec)
		if err != nil {
			collection.Failures = append(collection.Failures, Failure{Index: i, Spec: spec, Err: err})
			continue
		}
		collection.Devices = append(collection.Devices, device)
	}

	return collection, nil
}

// reassign releases one sensor from reset and moves it from the default
// address to its target address. On failure the enable line stays asserted:
// the sensor is left powered, and dropping it back into reset would put a
// second device on the default address during a later retry anyway.
func (q *Sequencer) reassign(spec DeviceSpec, defaultAddress byte, delay time.Duration) error {
	if err := q.pins.Assert(spec.EnableLine); err != nil {
		return err
	}
	time.Sleep(delay)

	sensor, err := vl6180x.Open(q.bus, defaultAddress)
	if err != nil {
		return transportError("bootstrap", err)
	}
	defer sensor.Close()

	if err := sensor.SetAddress(spec.Address); err != nil {
		return transportError("reassign", err)
	}

	return nil
}

func (q *Sequencer) openDevice(index int, spec DeviceSpec) (*Device, error) {
	sensor, err := vl6180x.Open(q.bus, spec.Address)
	if err != nil {
		return nil, transportError("open", err)
	}

	if err := sensor.SetOffset(spec.Offset); err != nil {
		_ = sensor.Close()
		return nil, transportError("offset", err)
	}

	return &Device{Index: index, Address: spec.Address, Offset: spec.Offset, sensor: sensor}, nil
}
