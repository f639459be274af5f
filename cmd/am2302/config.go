// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/GermanBionicSystems/singlewire/am2302"
	"github.com/sirupsen/logrus"
)

type config struct {
	Pin           string
	Interval      time.Duration
	ListenAddress string
	LogLevel      logrus.Level
}

func defaultConfig() config {
	return config{
		Pin:           "GPIO4",
		Interval:      3 * time.Second,
		ListenAddress: ":9302",
		LogLevel:      logrus.InfoLevel,
	}
}

type fileConfig struct {
	Pin           string `toml:"pin"`
	Interval      string `toml:"interval"`
	ListenAddress string `toml:"listen_address"`
	LogLevel      string `toml:"log_level"`
}

// loadConfig overrides cfg with the keys defined in the TOML file at path.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("pin") {
		cfg.Pin = strings.TrimSpace(raw.Pin)
	}
	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return config{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}
	if meta.IsDefined("listen_address") {
		cfg.ListenAddress = strings.TrimSpace(raw.ListenAddress)
	}
	if meta.IsDefined("log_level") {
		lvl, err := logrus.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// parseFlags builds the configuration: defaults, then the config file, then
// the flags set on the command line.
func parseFlags(args []string) (config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("am2302", flag.ContinueOnError)
	path := fs.String("config", "", "path to a TOML config file")
	pin := fs.String("pin", cfg.Pin, "GPIO pin the sensor data line is connected to")
	interval := fs.Duration("interval", cfg.Interval, "time between two sensor reads")
	listen := fs.String("listen-address", cfg.ListenAddress, "address to serve /metrics on, empty to disable")
	level := fs.String("log-level", cfg.LogLevel.String(), "log level")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if *path != "" {
		var err error
		if cfg, err = loadConfig(*path, cfg); err != nil {
			return config{}, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pin":
			cfg.Pin = *pin
		case "interval":
			cfg.Interval = *interval
		case "listen-address":
			cfg.ListenAddress = *listen
		case "log-level":
			lvl, perr := logrus.ParseLevel(*level)
			if perr != nil {
				err = fmt.Errorf("parse -log-level: %w", perr)
			}
			cfg.LogLevel = lvl
		}
	})
	if err != nil {
		return config{}, err
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Pin == "" {
		return errors.New("pin is required")
	}
	if c.Interval < am2302.MinInterval {
		return fmt.Errorf("interval %s is shorter than %s", c.Interval, am2302.MinInterval)
	}
	return nil
}
