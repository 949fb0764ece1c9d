package multisensor

import (
	"github.com/stianeikeland/go-rpio/v4"
)

// EnableLines controls the per-sensor reset/enable signals. Setup configures
// every line as an output driven low, which holds all sensors in reset.
// Assert releases one sensor from reset; Deassert puts it back.
type EnableLines interface {
	Setup(mode PinMode, lines []int) error
	Assert(line int) error
	Deassert(line int) error
}

// RPiPins drives enable lines through the Raspberry Pi GPIO block. The
// caller owns the rpio lifecycle: rpio.Open before sequencing, rpio.Close
// when the bus is released.
type RPiPins struct {
	mode PinMode
}

func (p *RPiPins) Setup(mode PinMode, lines []int) error {
	p.mode = mode

	for _, line := range lines {
		pin, err := p.pin(line)
		if err != nil {
			return err
		}
		pin.Output()
		pin.Low()
	}

	return nil
}

func (p *RPiPins) Assert(line int) error {
	pin, err := p.pin(line)
	if err != nil {
		return err
	}
	pin.High()
	return nil
}

func (p *RPiPins) Deassert(line int) error {
	pin, err := p.pin(line)
	if err != nil {
		return err
	}
	pin.Low()
	return nil
}

func (p *RPiPins) pin(line int) (rpio.Pin, error) {
	channel := line
	if p.mode == PinModeBoard {
		bcm, ok := boardToBCM[line]
		if !ok {
			return 0, configErrorf("pins", "physical pin %d has no GPIO channel", line)
		}
		channel = bcm
	}

	if channel < 0 || channel > 27 {
		return 0, configErrorf("pins", "GPIO channel %d out of range", channel)
	}

	return rpio.Pin(channel), nil
}

// Physical 40-pin header position to Broadcom GPIO channel.
var boardToBCM = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14,
	10: 15, 11: 17, 12: 18, 13: 27,
	15: 22, 16: 23, 18: 24, 19: 10,
	21: 9, 22: 25, 23: 11, 24: 8,
	26: 7, 27: 0, 28: 1, 29: 5,
	31: 6, 32: 12, 33: 13, 35: 19,
	36: 16, 37: 26, 38: 20, 40: 21,
}
