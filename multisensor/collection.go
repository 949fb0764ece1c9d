package multisensor

import (
	"fmt"

	"vl6180x-multi/vl6180x"
)

// Device is one sequenced sensor, live at its target address. Index is the
// position in the original configuration, which is stable even when earlier
// sensors failed to sequence.
type Device struct {
	Index   int
	Address byte
	Offset  int8

	sensor *vl6180x.Sensor
}

// Range reads a single-shot distance in millimeters.
func (d *Device) Range() (byte, error) {
	distance, err := d.sensor.ReadRange()
	if err != nil {
		return 0, queryError("range", err)
	}
	return distance, nil
}

// RangeStatus reads the error code of the last range measurement.
func (d *Device) RangeStatus() (byte, error) {
	status, err := d.sensor.RangeStatus()
	if err != nil {
		return 0, queryError("range status", err)
	}
	return status, nil
}

// Lux reads the ambient light level with the given analogue gain.
func (d *Device) Lux(gain vl6180x.Gain) (float64, error) {
	lux, err := d.sensor.ReadLux(gain)
	if err != nil {
		return 0, queryError("lux", err)
	}
	return lux, nil
}

// Close releases the sensor's bus connection.
func (d *Device) Close() error { return d.sensor.Close() }

// Failure records one sensor that could not be sequenced. The sequencing run
// carries on past it; the sensor is simply absent from Devices.
type Failure struct {
	Index int
	Spec  DeviceSpec
	Err   error
}

// Collection is the outcome of a sequencing run: the sensors that are live,
// in configuration order, and the ones that failed. Whether a partial result
// is fatal is the caller's call.
type Collection struct {
	Devices  []*Device
	Failures []Failure
}

// Len returns the number of live sensors.
func (c *Collection) Len() int { return len(c.Devices) }

// Range reads a distance from the sensor at the given collection position.
// An out-of-range index and a transport failure both come back as KindQuery
// errors; they are told apart by the wrapped cause (ErrBadIndex for the
// former).
func (c *Collection) Range(index int) (byte, error) {
	device, err := c.device(index)
	if err != nil {
		return 0, err
	}
	return device.Range()
}

// RangeStatus reads the last range measurement status from the sensor at the
// given collection position.
func (c *Collection) RangeStatus(index int) (byte, error) {
	device, err := c.device(index)
	if err != nil {
		return 0, err
	}
	return device.RangeStatus()
}

// Lux reads the ambient light level from the sensor at the given collection
// position.
func (c *Collection) Lux(index int, gain vl6180x.Gain) (float64, error) {
	device, err := c.device(index)
	if err != nil {
		return 0, err
	}
	return device.Lux(gain)
}

// Close releases every sensor in the collection.
func (c *Collection) Close() error {
	var first error
	for _, device := range c.Devices {
		if err := device.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Collection) device(index int) (*Device, error) {
	if index < 0 || index >= len(c.Devices) {
		return nil, queryError("device", fmt.Errorf("%w: %d of %d", ErrBadIndex, index, len(c.Devices)))
	}
	return c.Devices[index], nil
}
