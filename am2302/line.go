// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2302

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Direction is the direction of the data line as seen from the host.
type Direction int

const (
	// Input releases the line so the sensor can drive it.
	Input Direction = iota
	// Output drives the line from the host.
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "In"
	case Output:
		return "Out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Line is the data line the sensor is connected to.
//
// Implementations must not be shared between devices; a read owns the line
// for up to 9ms.
type Line interface {
	fmt.Stringer

	// SetDirection switches the line between Input and Output.
	SetDirection(dir Direction) error
	// SetLevel sets the level driven while the line is an Output.
	SetLevel(l gpio.Level) error
	// MeasureLevel polls the line every microsecond while it reads l and
	// returns how long it stayed there. It returns -1 and false if the line
	// still reads l after timeout microseconds.
	MeasureLevel(timeout int, l gpio.Level) (int, bool)
	// Delay busy waits for us microseconds.
	Delay(us int)
}

// PinLine implements Line on a GPIO pin. The pin needs a pull-up, either the
// internal one or the usual 4.7kΩ resistor.
type PinLine struct {
	p     gpio.PinIO
	level gpio.Level
	out   bool
}

// NewPinLine returns a Line that drives p. The line is idle high.
func NewPinLine(p gpio.PinIO) *PinLine {
	return &PinLine{p: p, level: gpio.High}
}

// SetDirection implements Line.
func (l *PinLine) SetDirection(dir Direction) error {
	switch dir {
	case Input:
		l.out = false
		return l.p.In(gpio.PullUp, gpio.NoEdge)
	case Output:
		l.out = true
		return l.p.Out(l.level)
	default:
		return fmt.Errorf("am2302: invalid direction %s", dir)
	}
}

// SetLevel implements Line. While the line is an input the level is kept and
// driven at the next switch to Output.
func (l *PinLine) SetLevel(v gpio.Level) error {
	l.level = v
	if !l.out {
		return nil
	}
	return l.p.Out(v)
}

// MeasureLevel implements Line. The elapsed time is taken from the monotonic
// clock so the time spent reading the pin is accounted for.
func (l *PinLine) MeasureLevel(timeout int, v gpio.Level) (int, bool) {
	limit := time.Duration(timeout) * time.Microsecond
	start := time.Now()
	for l.p.Read() == v {
		if time.Since(start) > limit {
			return -1, false
		}
	}
	return int(time.Since(start) / time.Microsecond), true
}

// Delay implements Line by spinning on the monotonic clock.
func (l *PinLine) Delay(us int) {
	d := time.Duration(us) * time.Microsecond
	for start := time.Now(); time.Since(start) < d; {
	}
}

func (l *PinLine) String() string {
	return l.p.String()
}

var _ Line = &PinLine{}
