// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2302

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestBitPosition(t *testing.T) {
	expected := [FrameBits][2]int{
		{0, 7}, {0, 6}, {0, 5}, {0, 4}, {0, 3}, {0, 2}, {0, 1}, {0, 0},
		{1, 7}, {1, 6}, {1, 5}, {1, 4}, {1, 3}, {1, 2}, {1, 1}, {1, 0},
		{2, 7}, {2, 6}, {2, 5}, {2, 4}, {2, 3}, {2, 2}, {2, 1}, {2, 0},
		{3, 7}, {3, 6}, {3, 5}, {3, 4}, {3, 3}, {3, 2}, {3, 1}, {3, 0},
		{4, 7}, {4, 6}, {4, 5}, {4, 4}, {4, 3}, {4, 2}, {4, 1}, {4, 0},
	}
	for i, want := range expected {
		b, bit := bitPosition(i)
		if b != want[0] || int(bit) != want[1] {
			t.Errorf("bitPosition(%d)=(%d,%d) expected (%d,%d)", i, b, bit, want[0], want[1])
		}
	}
}

func TestFrameSet(t *testing.T) {
	var f Frame
	for _, i := range []int{6, 8, 12, 13, 23, 25, 27, 28, 29, 30, 31, 32, 33, 34, 36, 37, 38} {
		f.set(i)
	}
	if expected := (Frame{0x02, 0x8c, 0x01, 0x5f, 0xee}); f != expected {
		t.Errorf("expected % x, got % x", expected[:], f[:])
	}
}

func TestFrameDecode(t *testing.T) {
	var tests = []struct {
		name        string
		f           Frame
		humidity    float64
		temperature float64
		valid       bool
	}{
		{name: "datasheet", f: Frame{0x02, 0x8c, 0x01, 0x5f, 0xee}, humidity: 65.2, temperature: 35.1, valid: true},
		{name: "negative", f: Frame{0x00, 0x00, 0x80, 0x65, 0xe5}, humidity: 0, temperature: -10.1, valid: true},
		{name: "negative zero", f: Frame{0x01, 0xf4, 0x80, 0x00, 0x75}, humidity: 50, temperature: 0, valid: true},
		{name: "max", f: Frame{0x03, 0xe8, 0x03, 0x20, 0x0e}, humidity: 100, temperature: 80, valid: true},
		{name: "corrupt", f: Frame{0x02, 0x8c, 0x01, 0x5f, 0xef}, humidity: 65.2, temperature: 35.1, valid: false},
		{name: "zero", f: Frame{}, humidity: 0, temperature: 0, valid: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if h := test.f.Humidity(); h != test.humidity {
				t.Errorf("Humidity()=%v expected %v", h, test.humidity)
			}
			if tc := test.f.Temperature(); tc != test.temperature {
				t.Errorf("Temperature()=%v expected %v", tc, test.temperature)
			}
			if v := test.f.Valid(); v != test.valid {
				t.Errorf("Valid()=%t expected %t", v, test.valid)
			}
		})
	}
}

// The checksum only depends on the sum of the data bytes.
func TestFrameValidSumOnly(t *testing.T) {
	a := Frame{0x02, 0x8c, 0x01, 0x5f, 0xee}
	b := Frame{0x5f, 0x01, 0x8c, 0x02, 0xee}
	c := Frame{0x03, 0x8b, 0x01, 0x5f, 0xee}
	for _, f := range []Frame{a, b, c} {
		if !f.Valid() {
			t.Errorf("% x should be valid", f[:])
		}
	}
	if a.Humidity() == b.Humidity() {
		t.Error("reordered bytes must decode differently")
	}
}

func TestFrameEnv(t *testing.T) {
	e := physic.Env{Pressure: 101 * physic.KiloPascal}
	Frame{0x00, 0x00, 0x80, 0x65, 0xe5}.Env(&e)
	if expected := physic.ZeroCelsius - 10_100*physic.MilliKelvin; e.Temperature != expected {
		t.Errorf("expected %s, got %s", expected, e.Temperature)
	}
	if e.Humidity != 0 {
		t.Errorf("expected 0%%RH, got %s", e.Humidity)
	}
	if e.Pressure != 101*physic.KiloPascal {
		t.Error("pressure must not be modified")
	}

	Frame{0x02, 0x8c, 0x01, 0x5f, 0xee}.Env(&e)
	if expected := physic.ZeroCelsius + 35_100*physic.MilliKelvin; e.Temperature != expected {
		t.Errorf("expected %s, got %s", expected, e.Temperature)
	}
	if expected := 65*physic.PercentRH + 2*physic.MilliRH; e.Humidity != expected {
		t.Errorf("expected %s, got %s", expected, e.Humidity)
	}
}

func TestFrameString(t *testing.T) {
	f := Frame{0x02, 0x8c, 0x01, 0x5f, 0xee}
	if s := f.String(); s != "65.2%RH 35.1°C (02 8c 01 5f ee)" {
		t.Error(s)
	}
}
