/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"errors"
)

var (
	ErrMissingProvider             = errors.New("emailrouting: client provider not set")
	ErrDestinationAddressWithoutID = errors.New("emailrouting: destination address created without id")
)
