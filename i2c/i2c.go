// Package i2c provides a session on a Linux I2C bus: per-address device
// connections, a bus scan, and mutual exclusion around every transaction.
//
// The bus is a shared, address-based medium. All connections created from one
// Bus serialize their transfers through the bus mutex, so devices obtained
// from the same session may be used from multiple goroutines.
package i2c

import (
	"fmt"
	"os"
	"sync"

	expi2c "golang.org/x/exp/io/i2c"
)

// 7-bit address range probed by Scan, matching the i2cdetect default.
const (
	scanFirstAddress = 0x03
	scanLastAddress  = 0x77
)

// conn is the raw byte-level connection underneath a Device. It is the
// surface of *golang.org/x/exp/io/i2c.Device that this package uses, carved
// out so tests can substitute a fake transport.
type conn interface {
	Read(buf []byte) error
	Write(buf []byte) error
	Close() error
}

type openFunc func(address byte) (conn, error)

// Bus is a session on one I2C bus.
type Bus struct {
	dev string

	mu    sync.Mutex
	open  openFunc
	conns map[*Device]struct{}
}

// Open opens a session on /dev/i2c-<busNumber>.
func Open(busNumber int) (*Bus, error) {
	if busNumber < 0 {
		return nil, fmt.Errorf("i2c: invalid bus number %d", busNumber)
	}

	dev := fmt.Sprintf("/dev/i2c-%d", busNumber)
	if _, err := os.Stat(dev); err != nil {
		return nil, fmt.Errorf("i2c: bus %s not available: %w", dev, err)
	}

	bus := &Bus{
		dev:   dev,
		conns: make(map[*Device]struct{}),
	}
	bus.open = func(address byte) (conn, error) {
		return expi2c.Open(&expi2c.Devfs{Dev: dev}, int(address))
	}

	return bus, nil
}

// Close releases every connection still open on this session.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var first error
	for d := range b.conns {
		if err := d.closeLocked(); err != nil && first == nil {
			first = err
		}
	}
	b.conns = nil

	return first
}

// Scan probes every address in the 0x03..0x77 range with a one-byte read and
// returns the addresses that answered, in ascending order. Addresses that are
// claimed by a kernel driver or do not acknowledge are skipped.
func (b *Bus) Scan() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var present []byte
	buf := make([]byte, 1)

	for address := byte(scanFirstAddress); address <= scanLastAddress; address++ {
		c, err := b.open(address)
		if err != nil {
			continue
		}

		if err := c.Read(buf); err == nil {
			present = append(present, address)
		}
		_ = c.Close()
	}

	return present, nil
}

// Device binds a connection to one address on the bus. Binding succeeds even
// when nothing answers there; presence is only established by the first
// transfer.
func (b *Bus) Device(address byte) (*Device, error) {
	if address > 0x7f {
		return nil, fmt.Errorf("i2c: address 0x%02x out of 7-bit range", address)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conns == nil {
		return nil, fmt.Errorf("i2c: bus %s is closed", b.dev)
	}

	c, err := b.open(address)
	if err != nil {
		return nil, fmt.Errorf("i2c: open device 0x%02x on %s: %w", address, b.dev, err)
	}

	d := &Device{bus: b, conn: c, address: address}
	b.conns[d] = struct{}{}

	return d, nil
}

// Device is a connection to one address on a shared bus. The VL6180X family
// uses 16-bit register indices, sent big-endian on the wire.
type Device struct {
	bus     *Bus
	conn    conn
	address byte
	closed  bool
}

// Address returns the 7-bit address this connection is bound to.
func (d *Device) Address() byte { return d.address }

// ReadReg reads one byte from a 16-bit register index.
func (d *Device) ReadReg(reg uint16) (byte, error) {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()

	if err := d.conn.Write([]byte{byte(reg >> 8), byte(reg)}); err != nil {
		return 0, fmt.Errorf("i2c: select register 0x%03x at 0x%02x: %w", reg, d.address, err)
	}

	buf := make([]byte, 1)
	if err := d.conn.Read(buf); err != nil {
		return 0, fmt.Errorf("i2c: read register 0x%03x at 0x%02x: %w", reg, d.address, err)
	}

	return buf[0], nil
}

// ReadReg16 reads a big-endian 16-bit value from a 16-bit register index.
func (d *Device) ReadReg16(reg uint16) (uint16, error) {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()

	if err := d.conn.Write([]byte{byte(reg >> 8), byte(reg)}); err != nil {
		return 0, fmt.Errorf("i2c: select register 0x%03x at 0x%02x: %w", reg, d.address, err)
	}

	buf := make([]byte, 2)
	if err := d.conn.Read(buf); err != nil {
		return 0, fmt.Errorf("i2c: read register 0x%03x at 0x%02x: %w", reg, d.address, err)
	}

	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// WriteReg writes one byte to a 16-bit register index.
func (d *Device) WriteReg(reg uint16, value byte) error {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()

	if err := d.conn.Write([]byte{byte(reg >> 8), byte(reg), value}); err != nil {
		return fmt.Errorf("i2c: write register 0x%03x at 0x%02x: %w", reg, d.address, err)
	}

	return nil
}

// Close releases the connection. The session stays usable.
func (d *Device) Close() error {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()

	delete(d.bus.conns, d)
	return d.closeLocked()
}

func (d *Device) closeLocked() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.conn.Close()
}
