/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registrar hands out EmailRouting instances sharing one client provider.
type Registrar struct {
	config *Config

	once      sync.Once
	singleton *EmailRouting
	err       error
}

// NewRegistrar creates a Registrar for the provided configuration.
func NewRegistrar(c *Config) *Registrar {
	return &Registrar{
		config: c,
	}
}

// Singleton returns the process wide instance, creating it on first use.
func (registrar *Registrar) Singleton() (*EmailRouting, error) {
	registrar.once.Do(func() {
		registrar.singleton, registrar.err = New(registrar.config)
	})
	return registrar.singleton, registrar.err
}

// Scoped returns a new instance for a single scope such as a request. When
// logger is nil, the configured logger is used.
func (registrar *Registrar) Scoped(logger logrus.FieldLogger) (*EmailRouting, error) {
	c := *registrar.config
	if logger != nil {
		c.Logger = logger
	}
	return New(&c)
}
