// Package vl6180x drives the ST VL6180X time-of-flight distance and ambient
// light sensor over I2C: single-shot range and lux readings, part-to-part
// range offset calibration, and reprogramming of the device bus address.
package vl6180x

import (
	"fmt"
	"time"
)

// DefaultAddress is the address every VL6180X answers to after reset.
const DefaultAddress byte = 0x29

// Conn is a register-level connection to one address on an I2C bus.
// *i2c.Device satisfies it.
type Conn interface {
	ReadReg(reg uint16) (byte, error)
	ReadReg16(reg uint16) (uint16, error)
	WriteReg(reg uint16, value byte) error
	Close() error
}

// Bus hands out register-level connections by address.
type Bus interface {
	Device(address byte) (Conn, error)
}

// Sample polling is bounded so a wedged sensor surfaces an error instead of
// hanging its caller.
const (
	pollAttempts = 500
	pollInterval = time.Millisecond
)

// Detect reports whether a VL6180X answers at the given address. It issues a
// single identification read and leaves the device untouched.
func Detect(bus Bus, address byte) error {
	conn, err := bus.Device(address)
	if err != nil {
		return err
	}
	defer conn.Close()

	id, err := conn.ReadReg(regIdentificationModelID)
	if err != nil {
		return fmt.Errorf("vl6180x: no device at 0x%02x: %w", address, err)
	}
	if id != modelID {
		return fmt.Errorf("vl6180x: device at 0x%02x reports model 0x%02x, not a VL6180X", address, id)
	}

	return nil
}

// Sensor is one VL6180X bound to an address on a shared bus.
type Sensor struct {
	Address byte

	conn Conn
}

// Open connects to the sensor at the given address, verifies its identity
// and, when the device is fresh out of reset, loads the ST mandatory
// settings. It fails if nothing answers at the address.
func Open(bus Bus, address byte) (*Sensor, error) {
	conn, err := bus.Device(address)
	if err != nil {
		return nil, err
	}

	s := &Sensor{Address: address, conn: conn}
	if err := s.setup(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Sensor) setup() error {
	id, err := s.conn.ReadReg(regIdentificationModelID)
	if err != nil {
		return fmt.Errorf("vl6180x: no device at 0x%02x: %w", s.Address, err)
	}
	if id != modelID {
		return fmt.Errorf("vl6180x: device at 0x%02x reports model 0x%02x, not a VL6180X", s.Address, id)
	}

	fresh, err := s.conn.ReadReg(regSystemFreshOutOfReset)
	if err != nil {
		return err
	}
	if fresh&0x01 == 0 {
		return nil // already configured on a previous run
	}

	for _, entry := range settings {
		if err := s.conn.WriteReg(entry[0], byte(entry[1])); err != nil {
			return fmt.Errorf("vl6180x: load settings at 0x%02x: %w", s.Address, err)
		}
	}

	return s.conn.WriteReg(regSystemFreshOutOfReset, 0x00)
}

// SetAddress reprograms the device to a new 7-bit bus address. The device
// answers only at the new address from the moment the write completes; the
// current connection is stale afterwards and should be closed.
func (s *Sensor) SetAddress(newAddress byte) error {
	if newAddress > 0x7f {
		return fmt.Errorf("vl6180x: address 0x%02x out of 7-bit range", newAddress)
	}

	if err := s.conn.WriteReg(regI2CSlaveDeviceAddress, newAddress); err != nil {
		return err
	}

	s.Address = newAddress
	return nil
}

// SetOffset programs the part-to-part range offset, a signed millimeter
// adjustment added to every range measurement.
func (s *Sensor) SetOffset(offset int8) error {
	return s.conn.WriteReg(regSysrangePartToPartRangeOffset, byte(offset))
}

// ReadRange performs a single-shot range measurement and returns the
// distance in millimeters.
func (s *Sensor) ReadRange() (byte, error) {
	if err := s.waitDeviceReady(); err != nil {
		return 0, err
	}

	if err := s.conn.WriteReg(regSysrangeStart, 0x01); err != nil {
		return 0, err
	}

	if err := s.waitSampleReady(0x07, 0x04); err != nil {
		return 0, err
	}

	distance, err := s.conn.ReadReg(regResultRangeVal)
	if err != nil {
		return 0, err
	}

	return distance, s.clearInterrupts()
}

// RangeStatus returns the error code of the last range measurement, 0 when
// the measurement was valid.
func (s *Sensor) RangeStatus() (byte, error) {
	status, err := s.conn.ReadReg(regResultRangeStatus)
	if err != nil {
		return 0, err
	}
	return status >> 4, nil
}

// ReadLux performs a single-shot ambient light measurement with the given
// analogue gain and a 100ms integration period.
func (s *Sensor) ReadLux(gain Gain) (float64, error) {
	factor, ok := gainFactor[gain]
	if !ok {
		return 0, fmt.Errorf("vl6180x: invalid ALS gain 0x%02x", byte(gain))
	}

	cfg, err := s.conn.ReadReg(regSystemInterruptConfig)
	if err != nil {
		return 0, err
	}
	cfg &^= 0x38
	cfg |= 0x20 // ALS interrupt on new sample ready
	if err := s.conn.WriteReg(regSystemInterruptConfig, cfg); err != nil {
		return 0, err
	}

	if err := s.conn.WriteReg(regSysalsIntegrationPeriodHi, 0x00); err != nil {
		return 0, err
	}
	if err := s.conn.WriteReg(regSysalsIntegrationPeriodLo, 100); err != nil {
		return 0, err
	}
	if err := s.conn.WriteReg(regSysalsAnalogueGain, 0x40|byte(gain)); err != nil {
		return 0, err
	}

	if err := s.conn.WriteReg(regSysalsStart, 0x01); err != nil {
		return 0, err
	}

	if err := s.waitSampleReady(0x38, 0x20); err != nil {
		return 0, err
	}

	raw, err := s.conn.ReadReg16(regResultAlsVal)
	if err != nil {
		return 0, err
	}
	if err := s.clearInterrupts(); err != nil {
		return 0, err
	}

	// 0.32 lux per count at gain 1 and 100ms integration.
	return 0.32 * float64(raw) / factor, nil
}

// Close releases the bus connection. The sensor keeps its address and
// settings.
func (s *Sensor) Close() error {
	return s.conn.Close()
}

func (s *Sensor) waitDeviceReady() error {
	for i := 0; i < pollAttempts; i++ {
		status, err := s.conn.ReadReg(regResultRangeStatus)
		if err != nil {
			return err
		}
		if status&0x01 != 0 {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("vl6180x: device at 0x%02x not ready", s.Address)
}

func (s *Sensor) waitSampleReady(mask, want byte) error {
	for i := 0; i < pollAttempts; i++ {
		status, err := s.conn.ReadReg(regResultInterruptStatusGpio)
		if err != nil {
			return err
		}
		if status&mask == want {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("vl6180x: timed out waiting for sample at 0x%02x", s.Address)
}

func (s *Sensor) clearInterrupts() error {
	return s.conn.WriteReg(regSystemInterruptClear, 0x07)
}
