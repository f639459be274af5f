// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package am2302test is meant to be used to test drivers over a fake AM2302
// data line.
package am2302test

import (
	"sync"

	"github.com/GermanBionicSystems/singlewire/am2302"
	"periph.io/x/conn/v3/gpio"
)

// Nominal pulse widths of the sensor, in microseconds.
const (
	ResponseMicros = 80
	BitLowMicros   = 50
	ZeroMicros     = 27
	OneMicros      = 70
)

// Pulse is the sensor holding the line at Level for Micros microseconds.
type Pulse struct {
	Level  gpio.Level
	Micros int
}

// OpKind identifies a write recorded by Playback.
type OpKind int

const (
	// OpDirection is a call to SetDirection.
	OpDirection OpKind = iota
	// OpLevel is a call to SetLevel.
	OpLevel
	// OpDelay is a call to Delay.
	OpDelay
)

// Op is a write from the driver to the line.
type Op struct {
	Kind   OpKind
	Dir    am2302.Direction
	Level  gpio.Level
	Micros int
}

// Measure is a call to MeasureLevel.
type Measure struct {
	Timeout int
	Level   gpio.Level
}

// Playback implements am2302.Line and plays back one pulse train per read.
//
// A read starts when the line is switched to Input; it consumes the next
// entry of Reads. Once the pulse train is exhausted or when Reads has no
// entry left the line stays at Idle forever. Time only advances in
// MeasureLevel.
type Playback struct {
	sync.Mutex
	// Reads holds the pulse train sent by the sensor for each read.
	Reads [][]Pulse
	// Count is the number of reads started so far.
	Count int
	// Idle is the level of the released line when the sensor is silent.
	Idle gpio.Level
	// Ops records every write.
	Ops []Op
	// Measures records every measurement.
	Measures []Measure

	input  bool
	driven gpio.Level
	pulses []Pulse
	offset int
}

// SetDirection implements am2302.Line.
func (p *Playback) SetDirection(dir am2302.Direction) error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, Op{Kind: OpDirection, Dir: dir})
	p.pulses = nil
	p.offset = 0
	p.input = dir == am2302.Input
	if p.input {
		if p.Count < len(p.Reads) {
			p.pulses = append([]Pulse(nil), p.Reads[p.Count]...)
		}
		p.Count++
	}
	return nil
}

// SetLevel implements am2302.Line.
func (p *Playback) SetLevel(l gpio.Level) error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, Op{Kind: OpLevel, Level: l})
	p.driven = l
	return nil
}

// MeasureLevel implements am2302.Line.
func (p *Playback) MeasureLevel(timeout int, l gpio.Level) (int, bool) {
	p.Lock()
	defer p.Unlock()
	p.Measures = append(p.Measures, Measure{Timeout: timeout, Level: l})
	elapsed := 0
	for {
		level, remaining := p.head()
		if level != l {
			return elapsed, true
		}
		if remaining < 0 || elapsed+remaining > timeout {
			if remaining >= 0 {
				p.offset += timeout - elapsed
			}
			return -1, false
		}
		elapsed += remaining
		p.pulses = p.pulses[1:]
		p.offset = 0
	}
}

// Delay implements am2302.Line.
func (p *Playback) Delay(us int) {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, Op{Kind: OpDelay, Micros: us})
}

// head returns the current level of the line and how long it stays there,
// -1 meaning forever.
func (p *Playback) head() (gpio.Level, int) {
	if !p.input {
		return p.driven, -1
	}
	if len(p.pulses) == 0 {
		return p.Idle, -1
	}
	return p.pulses[0].Level, p.pulses[0].Micros - p.offset
}

func (p *Playback) String() string {
	return "playback"
}

// Encode returns the pulse train the sensor sends for f: the response, 40
// bits and the final low pulse before it releases the line.
func Encode(f am2302.Frame) []Pulse {
	pulses := make([]Pulse, 0, 2+2*am2302.FrameBits+1)
	pulses = append(pulses, Pulse{gpio.Low, ResponseMicros}, Pulse{gpio.High, ResponseMicros})
	for i := 0; i < am2302.FrameBits; i++ {
		width := ZeroMicros
		if f[i/8]&(0x80>>(i%8)) != 0 {
			width = OneMicros
		}
		pulses = append(pulses, Pulse{gpio.Low, BitLowMicros}, Pulse{gpio.High, width})
	}
	return append(pulses, Pulse{gpio.Low, BitLowMicros})
}

var _ am2302.Line = &Playback{}
