package i2c

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	present bool
	regs    map[uint16]byte
	writes  [][]byte
	pending uint16
	closed  bool
}

func newFakeConn(regs map[uint16]byte) *fakeConn {
	if regs == nil {
		regs = make(map[uint16]byte)
	}
	return &fakeConn{present: true, regs: regs}
}

func (c *fakeConn) Write(buf []byte) error {
	if !c.present {
		return errors.New("remote I/O error")
	}

	c.writes = append(c.writes, append([]byte(nil), buf...))

	if len(buf) >= 2 {
		c.pending = uint16(buf[0])<<8 | uint16(buf[1])
	}
	if len(buf) == 3 {
		c.regs[c.pending] = buf[2]
	}
	return nil
}

func (c *fakeConn) Read(buf []byte) error {
	if !c.present {
		return errors.New("remote I/O error")
	}
	for i := range buf {
		buf[i] = c.regs[c.pending+uint16(i)]
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func fakeBus(present map[byte]*fakeConn) *Bus {
	bus := &Bus{dev: "fake", conns: make(map[*Device]struct{})}
	bus.open = func(address byte) (conn, error) {
		if c, ok := present[address]; ok {
			return c, nil
		}
		return &fakeConn{}, nil
	}
	return bus
}

func TestScanReportsRespondingAddresses(t *testing.T) {
	bus := fakeBus(map[byte]*fakeConn{
		0x02: newFakeConn(nil), // below the probed range
		0x29: newFakeConn(nil),
		0x52: newFakeConn(nil),
		0x30: newFakeConn(nil),
		0x78: newFakeConn(nil), // above the probed range
	})

	found, err := bus.Scan()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x29, 0x30, 0x52}, found)
}

func TestScanIsNonMutating(t *testing.T) {
	c := newFakeConn(map[uint16]byte{0x0062: 42})
	bus := fakeBus(map[byte]*fakeConn{0x29: c})

	_, err := bus.Scan()
	require.NoError(t, err)

	// A probe is a bare read, never a register write.
	assert.Empty(t, c.writes)
	assert.Equal(t, byte(42), c.regs[0x0062])
}

func TestDeviceRegisterEncoding(t *testing.T) {
	c := newFakeConn(map[uint16]byte{
		0x0062: 42,
		0x0050: 0x01,
		0x0051: 0x44,
	})
	bus := fakeBus(map[byte]*fakeConn{0x29: c})

	d, err := bus.Device(0x29)
	require.NoError(t, err)

	require.NoError(t, d.WriteReg(0x212, 0x30))
	assert.Equal(t, []byte{0x02, 0x12, 0x30}, c.writes[len(c.writes)-1])
	assert.Equal(t, byte(0x30), c.regs[0x0212])

	v, err := d.ReadReg(0x062)
	require.NoError(t, err)
	assert.Equal(t, byte(42), v)
	assert.Equal(t, []byte{0x00, 0x62}, c.writes[len(c.writes)-1])

	v16, err := d.ReadReg16(0x050)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0144), v16)
}

func TestDeviceRejectsOutOfRangeAddress(t *testing.T) {
	bus := fakeBus(nil)

	_, err := bus.Device(0x80)
	assert.Error(t, err)
}

func TestDeviceReportsTransferErrors(t *testing.T) {
	c := &fakeConn{} // nothing answering
	bus := fakeBus(map[byte]*fakeConn{0x29: c})

	d, err := bus.Device(0x29)
	require.NoError(t, err)

	_, err = d.ReadReg(0x000)
	assert.Error(t, err)
	assert.Error(t, d.WriteReg(0x212, 0x30))
}

func TestBusCloseReleasesConnections(t *testing.T) {
	c1 := newFakeConn(nil)
	c2 := newFakeConn(nil)
	bus := fakeBus(map[byte]*fakeConn{0x30: c1, 0x31: c2})

	d1, err := bus.Device(0x30)
	require.NoError(t, err)
	_, err = bus.Device(0x31)
	require.NoError(t, err)

	require.NoError(t, d1.Close())
	require.NoError(t, bus.Close())

	assert.True(t, c1.closed)
	assert.True(t, c2.closed)

	// Closing a device twice must not close the descriptor twice.
	require.NoError(t, d1.Close())

	_, err = bus.Device(0x30)
	assert.Error(t, err, "a closed session must not hand out devices")
}
