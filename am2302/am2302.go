// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package am2302

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// MinInterval is the shortest interval between two reads the sensor
// supports.
const MinInterval = 2 * time.Second

// Timings of the protocol, in microseconds.
const (
	wakeDuration    = 3000
	requestDuration = 25
	ackTimeout      = 85
	bitLowTimeout   = 56
	bitHighTimeout  = 75
	// A high pulse longer than this is a 1.
	oneThreshold = 40
)

// Opts holds the configuration options for the device.
type Opts struct {
	// OnError is called with every error returned by Read. It is a side
	// channel and has no effect on the read. The default logs the error to
	// Logger.
	OnError func(err error)
	// Logger is used by the default OnError. Default is
	// logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{}

// Dev represents an AM2302 sensor on a single-wire line.
//
// The last valid reading is kept. A failed read leaves it untouched.
type Dev struct {
	line    Line
	onError func(error)

	mu   sync.Mutex
	last Frame

	stopMu sync.Mutex
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New returns a device that talks to the sensor on p. The Opts can be nil.
func New(p gpio.PinIO, opts *Opts) (*Dev, error) {
	if p == nil {
		return nil, errors.New("am2302: nil pin")
	}
	return NewLine(NewPinLine(p), opts)
}

// NewLine returns a device that talks to the sensor through l. The Opts can
// be nil.
func NewLine(l Line, opts *Opts) (*Dev, error) {
	if l == nil {
		return nil, errors.New("am2302: nil line")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{line: l, onError: opts.OnError}
	if d.onError == nil {
		log := opts.Logger
		if log == nil {
			log = logrus.StandardLogger()
		}
		d.onError = logError(log.WithField("device", d.String()))
	}
	return d, nil
}

// Read queries the sensor and commits the reading if it is valid. It returns
// an error matching ErrTimeout or ErrChecksum on a failed transfer. A read
// takes up to 9ms and cannot be interrupted.
//
// The caller must wait at least MinInterval between two reads.
func (d *Dev) Read() error {
	return d.read(nil)
}

// read runs a read and, when e is not nil, stores the reading it committed
// in e. OnError is called after the device is unlocked so it may use the
// accessors.
func (d *Dev) read(e *physic.Env) error {
	err := d.readLocked(e)
	if err != nil {
		d.onError(err)
	}
	return err
}

func (d *Dev) readLocked(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.readFrame()
	if err != nil {
		return err
	}
	if !f.Valid() {
		return &ChecksumError{Frame: f}
	}
	d.last = f
	if e != nil {
		f.Env(e)
	}
	return nil
}

// readFrame sends the start signal and samples the 40 bits.
func (d *Dev) readFrame() (Frame, error) {
	var f Frame
	if err := d.start(); err != nil {
		return f, fmt.Errorf("am2302: start signal: %w", err)
	}
	if _, ok := d.line.MeasureLevel(ackTimeout, gpio.Low); !ok {
		return f, &TimeoutError{Phase: PhaseAckLow, Bit: -1, Timeout: ackTimeout}
	}
	if _, ok := d.line.MeasureLevel(ackTimeout, gpio.High); !ok {
		return f, &TimeoutError{Phase: PhaseAckHigh, Bit: -1, Timeout: ackTimeout}
	}
	for i := 0; i < FrameBits; i++ {
		if _, ok := d.line.MeasureLevel(bitLowTimeout, gpio.Low); !ok {
			return Frame{}, &TimeoutError{Phase: PhaseBitLow, Bit: i, Timeout: bitLowTimeout}
		}
		us, ok := d.line.MeasureLevel(bitHighTimeout, gpio.High)
		if !ok {
			return Frame{}, &TimeoutError{Phase: PhaseBitHigh, Bit: i, Timeout: bitHighTimeout}
		}
		// The frame starts zeroed; only 1s are written.
		if us > oneThreshold {
			f.set(i)
		}
	}
	return f, nil
}

// start pulls the line low to wake the sensor, then high to request data,
// then releases it.
func (d *Dev) start() error {
	if err := d.line.SetDirection(Output); err != nil {
		return err
	}
	if err := d.line.SetLevel(gpio.Low); err != nil {
		return err
	}
	d.line.Delay(wakeDuration)
	if err := d.line.SetLevel(gpio.High); err != nil {
		return err
	}
	d.line.Delay(requestDuration)
	return d.line.SetDirection(Input)
}

// Humidity returns the relative humidity in percent of the last valid
// reading, 0 if there was none.
func (d *Dev) Humidity() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Humidity()
}

// Temperature returns the temperature in degrees Celsius of the last valid
// reading, 0 if there was none.
func (d *Dev) Temperature() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Temperature()
}

// Sense implements physic.SenseEnv. It reads the sensor and returns the
// temperature and humidity. Pressure is not modified. On error e is not
// modified.
func (d *Dev) Sense(e *physic.Env) error {
	return d.read(e)
}

// SenseContinuous implements physic.SenseEnv. It returns a channel that
// receives a reading every interval. Failed reads are skipped. The minimum
// interval is MinInterval. Call Halt() to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < MinInterval {
		return nil, fmt.Errorf("am2302: invalid interval %s, minimum %s", interval, MinInterval)
	}
	d.stopMu.Lock()
	defer d.stopMu.Unlock()
	if d.stop != nil {
		return nil, errors.New("am2302: sense continuous already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	ch := make(chan physic.Env)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Celsius / 10
	e.Pressure = 0
	e.Humidity = physic.MilliRH
}

// Halt stops a running SenseContinuous() and waits for its channel to be
// closed. A Read in progress is not interrupted.
func (d *Dev) Halt() error {
	d.stopMu.Lock()
	stop := d.stop
	d.stop = nil
	d.stopMu.Unlock()
	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("am2302{%s}", d.line)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
