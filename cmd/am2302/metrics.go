// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/GermanBionicSystems/singlewire/am2302"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	humidity    prometheus.Gauge
	temperature prometheus.Gauge
	reads       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "am2302_humidity_percent",
			Help: "Relative humidity of the last valid reading (units: % RH)",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "am2302_temperature_celsius",
			Help: "Temperature of the last valid reading (units: degrees Celsius)",
		}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "am2302_reads_total",
			Help: "Sensor reads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.humidity, m.temperature, m.reads)
	return m
}

// observe records the result of a read. The gauges keep the last valid
// reading.
func (m *metrics) observe(dev *am2302.Dev, err error) {
	m.reads.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	m.humidity.Set(dev.Humidity())
	m.temperature.Set(dev.Temperature())
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, am2302.ErrTimeout):
		return "timeout"
	case errors.Is(err, am2302.ErrChecksum):
		return "checksum"
	default:
		return "error"
	}
}
