package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/stianeikeland/go-rpio/v4"
	"github.com/yuvalrakavy/goPool"

	"vl6180x-multi/i2c"
	"vl6180x-multi/multisensor"
)

func main() {
	busNumber := pflag.Int("bus", 1, "I2C bus number")
	lines := pflag.IntSlice("lines", nil, "enable line per sensor, in enable order")
	addresses := pflag.StringSlice("addresses", nil, "target address per sensor (e.g. 0x30)")
	offsets := pflag.IntSlice("offsets", nil, "range calibration offset per sensor")
	board := pflag.Bool("board", false, "number enable lines by physical header position")
	delay := pflag.Duration("delay", multisensor.DefaultBootstrapDelay, "settle time after releasing a sensor from reset")
	pflag.Parse()

	if len(*lines) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	cfg := multisensor.Config{
		EnableLines:    *lines,
		BootstrapDelay: *delay,
	}
	if *board {
		cfg.PinMode = multisensor.PinModeBoard
	}

	for _, arg := range *addresses {
		address, err := strconv.ParseInt(arg, 0, 8)
		if err != nil {
			log.Fatal("invalid address ", arg, ": ", err)
		}
		cfg.Addresses = append(cfg.Addresses, byte(address))
	}
	for _, offset := range *offsets {
		cfg.Offsets = append(cfg.Offsets, int8(offset))
	}

	if err := rpio.Open(); err != nil {
		panic(err)
	}
	defer rpio.Close()

	bus, err := i2c.Open(*busNumber)
	if err != nil {
		panic(err)
	}
	defer bus.Close()

	log.Println("Initializing VL6180x sensors...")

	sequencer := multisensor.NewSequencer(multisensor.NewSession(bus), &multisensor.RPiPins{})

	collection, err := sequencer.Initialize(cfg)
	if err != nil {
		panic(err)
	}
	defer collection.Close()

	for _, failure := range collection.Failures {
		log.Printf("Sensor %d at address 0x%02x failed: %v", failure.Index, failure.Spec.Address, failure.Err)
	}

	log.Println("Found ", collection.Len(), "sensors.")

	pool := goPool.Make()

	readings := collection.StartRangeReadings(pool)

	go func() {
		for reading := range readings {
			if reading.Err != nil {
				log.Println("Sensor", reading.Index, "read error:", reading.Err)
				continue
			}

			fmt.Printf("\rSensor %d (0x%02x): %3d mm        ", reading.Index, reading.Address, reading.Distance)
		}
	}()

	reader := bufio.NewReader(os.Stdin)
	if _, err = reader.ReadString('\n'); err != nil {
		panic(err)
	}

	fmt.Println("\nTerminating pool")
	pool.Terminate()
}
