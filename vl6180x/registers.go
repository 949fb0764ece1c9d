package vl6180x

// Register indices from the ST VL6180X datasheet. The device uses 16-bit
// register addressing.
const (
	regIdentificationModelID = 0x000
	regSystemInterruptConfig = 0x014
	regSystemInterruptClear  = 0x015
	regSystemFreshOutOfReset = 0x016

	regSysrangeStart                 = 0x018
	regSysrangePartToPartRangeOffset = 0x024

	regSysalsStart               = 0x038
	regSysalsAnalogueGain        = 0x03f
	regSysalsIntegrationPeriodHi = 0x040
	regSysalsIntegrationPeriodLo = 0x041

	regResultRangeStatus         = 0x04d
	regResultInterruptStatusGpio = 0x04f
	regResultAlsVal              = 0x050
	regResultRangeVal            = 0x062

	// Writing a 7-bit address here immediately moves the device to that
	// address.
	regI2CSlaveDeviceAddress = 0x212
)

// IDENTIFICATION__MODEL_ID value every VL6180X reports.
const modelID = 0xb4

// Gain selects the ALS analogue gain for lux measurements.
type Gain byte

const (
	Gain20   Gain = 0x00
	Gain10   Gain = 0x01
	Gain5    Gain = 0x02
	Gain2_5  Gain = 0x03
	Gain1_67 Gain = 0x04
	Gain1_25 Gain = 0x05
	Gain1    Gain = 0x06
	Gain40   Gain = 0x07
)

var gainFactor = map[Gain]float64{
	Gain1:    1.0,
	Gain1_25: 1.25,
	Gain1_67: 1.67,
	Gain2_5:  2.5,
	Gain5:    5.0,
	Gain10:   10.0,
	Gain20:   20.0,
	Gain40:   40.0,
}

// Mandatory private registers from ST application note AN4545, followed by
// the recommended public defaults. Loaded once after reset.
var settings = [][2]uint16{
	{0x0207, 0x01},
	{0x0208, 0x01},
	{0x0096, 0x00},
	{0x0097, 0xfd},
	{0x00e3, 0x00},
	{0x00e4, 0x04},
	{0x00e5, 0x02},
	{0x00e6, 0x01},
	{0x00e7, 0x03},
	{0x00f5, 0x02},
	{0x00d9, 0x05},
	{0x00db, 0xce},
	{0x00dc, 0x03},
	{0x00dd, 0xf8},
	{0x009f, 0x00},
	{0x00a3, 0x3c},
	{0x00b7, 0x00},
	{0x00bb, 0x3c},
	{0x00b2, 0x09},
	{0x00ca, 0x09},
	{0x0198, 0x01},
	{0x01b0, 0x17},
	{0x01ad, 0x00},
	{0x00ff, 0x05},
	{0x0100, 0x05},
	{0x0199, 0x05},
	{0x01a6, 0x1b},
	{0x01ac, 0x3e},
	{0x01a7, 0x1f},
	{0x0030, 0x00},

	{0x0011, 0x10}, // GPIO1 as sample-ready interrupt output
	{0x010a, 0x30}, // averaging sample period
	{0x003f, 0x46}, // ALS gain
	{0x0031, 0xff}, // auto calibration period
	{0x0041, 0x63}, // ALS integration time 100ms
	{0x002e, 0x01}, // perform temperature calibration of the ranging sensor
	{0x001b, 0x09}, // ranging inter-measurement period 100ms
	{0x003e, 0x31}, // ALS inter-measurement period 500ms
	{0x0014, 0x24}, // interrupt on new sample ready
}
