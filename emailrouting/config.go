/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"github.com/sirupsen/logrus"
)

// Config bundles configuration settings.
type Config struct {
	Logger logrus.FieldLogger

	Provider ClientProvider
}
