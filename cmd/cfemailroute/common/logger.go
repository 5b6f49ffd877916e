/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package common

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger writing text lines to stderr.
func NewLogger(disableTimestamp bool, logLevelString string) (logrus.FieldLogger, error) {
	logLevel, err := logrus.ParseLevel(logLevelString)
	if err != nil {
		return nil, fmt.Errorf("invalid log-level: %w", err)
	}

	return &logrus.Logger{
		Out: os.Stderr,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: disableTimestamp,
			FullTimestamp:    true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logLevel,
	}, nil
}
