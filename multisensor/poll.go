package multisensor

import (
	"github.com/yuvalrakavy/goPool"
)

// RangeReading is one polled distance measurement. Err is set when the
// reading failed; the poller keeps going either way.
type RangeReading struct {
	Index    int
	Address  byte
	Distance byte
	Err      error
}

// StartRangeReadings polls every sensor in the collection round-robin and
// delivers the readings on the returned channel until the pool terminates.
// The channel is closed when the poller exits.
//
// Start polling only after Initialize has returned; the bus session
// serializes the individual transactions, so one-off queries on the
// collection remain safe while the poller runs.
func (c *Collection) StartRangeReadings(pool *goPool.GoPool) <-chan RangeReading {
	readings := make(chan RangeReading)

	go func() {
		defer close(readings)
		pool.Enter()
		defer pool.Leave()

		if len(c.Devices) == 0 {
			<-pool.Done
			return
		}

		for {
			for _, device := range c.Devices {
				distance, err := device.Range()
				reading := RangeReading{
					Index:    device.Index,
					Address:  device.Address,
					Distance: distance,
					Err:      err,
				}

				select {
				case <-pool.Done:
					return
				case readings <- reading:
				}
			}
		}
	}()

	return readings
}
