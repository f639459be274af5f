// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2302

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTimeout is matched by errors.Is when the line did not change level
	// in time. Causes are a wiring fault, a missing or cold sensor, or
	// scheduling jitter on the host.
	ErrTimeout = errors.New("am2302: sensor timeout")
	// ErrChecksum is matched by errors.Is when all 40 bits were received but
	// the checksum does not match.
	ErrChecksum = errors.New("am2302: checksum mismatch")
)

// Phase identifies the pulse that was being measured when a read timed out.
type Phase int

const (
	// PhaseAckLow is the low half of the sensor response.
	PhaseAckLow Phase = iota
	// PhaseAckHigh is the high half of the sensor response.
	PhaseAckHigh
	// PhaseBitLow is the low pulse that starts every bit.
	PhaseBitLow
	// PhaseBitHigh is the high pulse that carries the bit value.
	PhaseBitHigh
)

func (p Phase) String() string {
	switch p {
	case PhaseAckLow:
		return "response low"
	case PhaseAckHigh:
		return "response high"
	case PhaseBitLow:
		return "bit low"
	case PhaseBitHigh:
		return "bit high"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// TimeoutError is returned when the line stayed at one level longer than
// allowed.
type TimeoutError struct {
	Phase Phase
	// Bit is the index of the bit being received, 0 to 39. It is -1 during
	// the sensor response.
	Bit int
	// Timeout is the limit in microseconds that was exceeded.
	Timeout int
}

func (e *TimeoutError) Error() string {
	if e.Bit < 0 {
		return fmt.Sprintf("am2302: sensor timeout: %s longer than %dus", e.Phase, e.Timeout)
	}
	return fmt.Sprintf("am2302: sensor timeout: %s of bit %d longer than %dus", e.Phase, e.Bit, e.Timeout)
}

// Is makes errors.Is(err, ErrTimeout) true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ChecksumError is returned when the received frame is corrupt.
type ChecksumError struct {
	Frame Frame
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("am2302: checksum mismatch: received 0x%02x, computed 0x%02x", e.Frame[4], e.Frame.Checksum())
}

// Is makes errors.Is(err, ErrChecksum) true.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}

// logError returns the default error handler. It only reports.
func logError(log logrus.FieldLogger) func(error) {
	return func(err error) {
		switch {
		case errors.Is(err, ErrTimeout):
			log.WithError(err).Error("sensor timeout")
		case errors.Is(err, ErrChecksum):
			log.WithError(err).Error("checksum mismatch")
		default:
			log.WithError(err).Error("read failed")
		}
	}
}
