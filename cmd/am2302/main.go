// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// am2302 reads an AM2302 (DHT22) sensor periodically, logs the readings and
// serves them as Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/singlewire/am2302"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type exporter struct {
	dev *am2302.Dev
	m   *metrics
	log logrus.FieldLogger
}

// poll reads the sensor once. Failures are logged by the driver.
func (x *exporter) poll() {
	err := x.dev.Read()
	x.m.observe(x.dev, err)
	if err == nil {
		x.log.WithFields(logrus.Fields{
			"humidity":    x.dev.Humidity(),
			"temperature": x.dev.Temperature(),
		}).Debug("reading")
	}
}

// run polls the sensor every interval until ctx is done. A failed read is
// not retried before the next tick.
func (x *exporter) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	x.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x.poll()
		}
	}
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	if _, err := host.Init(); err != nil {
		log.Fatalf("failed to initialize periph: %s", err)
	}
	p := gpioreg.ByName(cfg.Pin)
	if p == nil {
		log.Fatalf("unknown pin %q", cfg.Pin)
	}
	dev, err := am2302.New(p, &am2302.Opts{Logger: log})
	if err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	x := &exporter{dev: dev, m: newMetrics(reg), log: log.WithField("device", dev.String())}

	var srv *http.Server
	if cfg.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
		srv = &http.Server{Addr: cfg.ListenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.WithFields(logrus.Fields{
		"pin":      cfg.Pin,
		"interval": cfg.Interval,
		"listen":   cfg.ListenAddress,
	}).Info("started")
	x.run(ctx, cfg.Interval)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err)
		}
	}
	log.Info("stopped")
}
