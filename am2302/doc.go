// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package am2302 controls an AOSONG AM2302 (DHT22) temperature/humidity
// sensor over its single-wire bus.
//
// The sensor has no clock line. The host pulls the data line low for 3ms and
// high for 25us, then releases it. The sensor answers with an 80us low and an
// 80us high pulse and sends 40 bits. Every bit starts with a 50us low pulse
// and the length of the following high pulse is the value: 26-28us is a 0,
// 70us is a 1.
//
// The 40 bits are 16 bits of relative humidity in tenths of a percent, 16
// bits of temperature in tenths of a degree Celsius where the top bit is the
// sign, and an 8 bit checksum that is the low byte of the sum of the first
// four bytes.
//
// The interval between two reads must be at least 2 seconds. Read does not
// enforce it.
//
// # Timing
//
// Pulse widths are measured by busy polling the pin. The Go runtime is
// preemptible and garbage collected so it cannot guarantee microsecond
// accuracy. A scheduler pause or a GC during a read shows up as a timeout or
// a checksum mismatch. The reading that was committed last is kept in that
// case and the next read may succeed.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/Digital+humidity+and+temperature+sensor+AM2302.pdf
package am2302
