// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2302

import (
	"fmt"

	"github.com/GermanBionicSystems/singlewire/common"
	"periph.io/x/conn/v3/physic"
)

// FrameBits is the number of bits the sensor sends for one reading.
const FrameBits = 40

// Frame is the payload sent by the sensor, most significant bit first.
//
//	Frame[0:2]  relative humidity, big endian, 0.1%RH
//	Frame[2:4]  temperature, big endian, 0.1°C, bit 15 is the sign
//	Frame[4]    checksum
type Frame [5]byte

// bitPosition returns where the bit received at index i is stored.
func bitPosition(i int) (byteIndex int, bit uint) {
	return i / 8, uint(7 - i%8)
}

// set sets the bit received at index i.
func (f *Frame) set(i int) {
	b, bit := bitPosition(i)
	f[b] |= 1 << bit
}

// rawHumidity returns the humidity in tenths of %RH.
func (f Frame) rawHumidity() uint16 {
	return uint16(f[0])<<8 | uint16(f[1])
}

// rawTemperature returns the temperature in tenths of °C. The sensor sends a
// sign flag and a magnitude, not a two's complement value.
func (f Frame) rawTemperature() int32 {
	t := int32(f[2]&0x7f)<<8 | int32(f[3])
	if f[2]&0x80 != 0 {
		return -t
	}
	return t
}

// Humidity returns the relative humidity in percent.
func (f Frame) Humidity() float64 {
	return float64(f.rawHumidity()) / 10
}

// Temperature returns the temperature in degrees Celsius.
func (f Frame) Temperature() float64 {
	return float64(f.rawTemperature()) / 10
}

// Checksum returns the checksum computed over the data bytes.
func (f Frame) Checksum() byte {
	return common.Sum8(f[:4])
}

// Valid returns true if the checksum byte matches the data bytes.
func (f Frame) Valid() bool {
	return f.Checksum() == f[4]
}

// Env stores the temperature and humidity in e. Pressure is not modified.
func (f Frame) Env(e *physic.Env) {
	e.Humidity = physic.RelativeHumidity(f.rawHumidity()) * physic.MilliRH
	e.Temperature = physic.ZeroCelsius + (physic.Celsius/10)*physic.Temperature(f.rawTemperature())
}

func (f Frame) String() string {
	return fmt.Sprintf("%.1f%%RH %.1f°C (% x)", f.Humidity(), f.Temperature(), f[:])
}
