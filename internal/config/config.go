// Copyright 2024 The spahost Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the spahost host settings from the environment.
package config

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the settings of a spahost process. It is set once at startup
// and never changed afterwards.
type Config struct {
	Addr              string        `env:"SPAHOST_ADDR" envDefault:":8080"`
	Port              string        `env:"PORT"` // set by hosting platforms; overrides the port in Addr.
	Root              string        `env:"SPAHOST_ROOT" envDefault:"."`
	Fallback          string        `env:"SPAHOST_FALLBACK" envDefault:"index.html"`
	LogLevel          string        `env:"SPAHOST_LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"SPAHOST_LOG_FORMAT" envDefault:"text"`
	BaseRewriting     bool          `env:"SPAHOST_BASE_REWRITING" envDefault:"false"`
	ReadHeaderTimeout time.Duration `env:"SPAHOST_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SPAHOST_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load returns the configuration found in the process environment.
func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom returns the configuration found in the specified environment
// variables, with defaults for the missing ones.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, errors.Wrap(err, "parsing environment")
	}
	if cfg.Port != "" {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid listen address %q", cfg.Addr)
		}
		cfg.Addr = net.JoinHostPort(host, cfg.Port)
	}
	return &cfg, nil
}

// Validate checks the configuration for settings that would only fail later.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("static root must not be empty")
	}
	if c.Fallback == "" {
		return errors.New("fallback document must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.ReadHeaderTimeout <= 0 {
		return errors.Errorf("read header timeout must be positive, not %s", c.ReadHeaderTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.Errorf("shutdown timeout must be positive, not %s", c.ShutdownTimeout)
	}
	return nil
}

// Logger returns a new logrus logger writing to out, as configured. The
// configuration must have been validated before.
func (c *Config) Logger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
