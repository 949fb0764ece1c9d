package main

import (
	"fmt"
	"os"
	"strconv"

	"vl6180x-multi/i2c"
	"vl6180x-multi/multisensor"
	"vl6180x-multi/vl6180x"
)

func showUsage() {
	fmt.Println("Usage:")
	fmt.Println("  SetSensorAddress                             -- Show VL6180X on bus")
	fmt.Println("  SetSensorAddress <new-address>               -- Set sensor address")
	fmt.Println("  SetSensorAddress <old-address> <new-address> -- Change sensor address from <old> to <new> address")
}

func main() {
	if len(os.Args) > 1 && os.Args[1][0] == '-' {
		showUsage()
		os.Exit(1)
	}

	bus, err := i2c.Open(1)
	if err != nil {
		panic(err)
	}

	defer bus.Close()

	session := multisensor.NewSession(bus)

	sensors, err := scanSensors(session)
	if err != nil {
		panic(err)
	}

	if len(sensors) == 0 {
		fmt.Println("No VL6180X sensors were found")
	} else {
		if len(os.Args) < 2 {
			var noun = "sensor"

			if len(sensors) > 1 {
				noun = "sensors"
			}

			fmt.Printf("Found %d VL6180X %s on the bus:\n", len(sensors), noun)

			for _, address := range sensors {
				fmt.Printf("  at address: 0x%02x\n", address)
			}
		} else if len(os.Args) < 4 {
			if err = programAddress(session, os.Args[1:], sensors); err != nil {
				fmt.Println(err)
			}
		} else {
			showUsage()
		}
	}
}

func programAddress(session multisensor.Bus, args []string, sensors []byte) error {
	var (
		oldAddress      byte
		err             error
		newAddressIndex int
	)

	if len(args) == 2 { // Old and new address were provided
		if oldAddress, err = parseAddress(args[0]); err != nil {
			return err
		}

		if !onBus(sensors, oldAddress) {
			return fmt.Errorf("bus has no sensor with address 0x%02x, wrong old sensor address was specified", oldAddress)
		}

		newAddressIndex = 1
	} else {
		if len(sensors) > 1 {
			return fmt.Errorf("bus has more than one sensor, please explicitly specify the address you want to change (i.e. SetSensorAddress <old-address> <new-address>)")
		}

		oldAddress = sensors[0]
		newAddressIndex = 0
	}

	newAddress, err := parseAddress(args[newAddressIndex])
	if err != nil {
		return err
	}

	if onBus(sensors, newAddress) {
		return fmt.Errorf("sensor with address 0x%02x is already on the bus", newAddress)
	}

	sensorToProgram, err := vl6180x.Open(session, oldAddress)
	if err != nil {
		return err
	}
	defer sensorToProgram.Close()

	if err = sensorToProgram.SetAddress(newAddress); err != nil {
		return err
	}

	fmt.Printf("Sensor with address 0x%02x was reprogrammed to address 0x%02x\n", oldAddress, newAddress)
	return nil
}

func scanSensors(session multisensor.Bus) ([]byte, error) {
	present, err := session.Scan()
	if err != nil {
		return nil, err
	}

	sensors := make([]byte, 0, len(present))

	for _, address := range present {
		if vl6180x.Detect(session, address) == nil {
			sensors = append(sensors, address)
		}
	}

	return sensors, nil
}

func parseAddress(s string) (byte, error) {
	addressArgValue, err := strconv.ParseInt(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(addressArgValue), nil
}

func onBus(sensors []byte, address byte) bool {
	for _, sensor := range sensors {
		if sensor == address {
			return true
		}
	}

	return false
}
