// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package singlewire is a container for the AM2302 (DHT22) single-wire
// sensor driver and the program that exports its readings.
package singlewire
