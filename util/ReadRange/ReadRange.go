package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"vl6180x-multi/i2c"
	"vl6180x-multi/multisensor"
	"vl6180x-multi/vl6180x"
)

func main() {

	if len(os.Args) < 2 {
		fmt.Println("Usage: ReadRange <Sensor Address>")
		return
	}

	sensorAddress, err := strconv.ParseInt(os.Args[1], 0, 8)
	if err != nil {
		panic(err)
	}

	bus, err := i2c.Open(1)
	if err != nil {
		panic(err)
	}

	defer bus.Close()

	session := multisensor.NewSession(bus)

	if err = vl6180x.Detect(session, byte(sensorAddress)); err != nil {
		fmt.Printf("Address 0x%02x has no valid VL6180X sensor\n", sensorAddress)
		return
	}

	sensor, err := vl6180x.Open(session, byte(sensorAddress))
	if err != nil {
		panic(err)
	}
	defer sensor.Close()

	done := make(chan interface{})

	go func(done <-chan interface{}) {
		for {
			select {
			case <-done:
				return

			default:
				if distance, err := sensor.ReadRange(); err != nil {
					panic(err)
				} else {
					fmt.Println("  Sensor", sensor.Address, " range ", distance)
				}
			}
		}
	}(done)

	reader := bufio.NewReader(os.Stdin)
	if _, err = reader.ReadString('\n'); err != nil {
		panic(err)
	}

	close(done)
}
