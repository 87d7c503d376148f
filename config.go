// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap/zapcore"

	"github.com/glassbox-media/mallinfo-override/internal/logging"
	"github.com/glassbox-media/mallinfo-override/internal/monitor"
)

// configEnv names the environment variable carrying the override's JSON
// configuration. The shim lives inside a foreign process, so the environment
// is the only configuration channel it can rely on.
const configEnv = "MALLINFO_OVERRIDE_CONFIG"

// overrideConfiguration is a type to represent the configuration of the
// override and its diagnostic monitor.
type overrideConfiguration struct {
	logLevel            zapcore.Level
	monitorEnabled      bool
	monitorInterval     time.Duration
	monitorStartupDelay time.Duration
}

func defaultOverrideConfiguration() overrideConfiguration {
	return overrideConfiguration{
		logLevel:            zapcore.DebugLevel,
		monitorInterval:     monitor.DefaultInterval,
		monitorStartupDelay: monitor.DefaultStartupDelay,
	}
}

// parseOverrideConfiguration parses the env JSON. On any error the returned
// configuration is still usable (the defaults): a bad environment must never
// keep the override from registering.
func parseOverrideConfiguration(data []byte) (overrideConfiguration, error) {
	config := defaultOverrideConfiguration()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return config, nil
	}

	if !gjson.ValidBytes(data) {
		return config, fmt.Errorf("invalid json: %q", data)
	}

	jsonData := gjson.ParseBytes(data)
	if v := jsonData.Get("log_level"); v.Exists() {
		config.logLevel = logging.ParseLevel(v.String())
	}
	if v := jsonData.Get("monitor.enabled"); v.Exists() {
		config.monitorEnabled = v.Bool()
	}
	if v := jsonData.Get("monitor.interval_seconds"); v.Exists() && v.Int() > 0 {
		config.monitorInterval = time.Duration(v.Int()) * time.Second
	}
	if v := jsonData.Get("monitor.startup_delay_seconds"); v.Exists() && v.Int() >= 0 {
		config.monitorStartupDelay = time.Duration(v.Int()) * time.Second
	}
	return config, nil
}
