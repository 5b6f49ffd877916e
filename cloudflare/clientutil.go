/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"context"
	"sync"
)

// ClientUtil provides a shared, lazily constructed Client. It is safe for
// concurrent use.
type ClientUtil struct {
	config *Config

	mutex  sync.Mutex
	client *Client
}

// NewClientUtil creates a ClientUtil for the provided configuration. The
// client is built on the first Get call.
func NewClientUtil(config *Config) *ClientUtil {
	return &ClientUtil{
		config: config,
	}
}

// Get returns the shared client, constructing it if needed.
func (util *ClientUtil) Get(ctx context.Context) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	util.mutex.Lock()
	defer util.mutex.Unlock()

	if util.client == nil {
		client, err := New(util.config)
		if err != nil {
			return nil, err
		}
		util.client = client
		client.logger.Debugln("cloudflare client created")
	}

	return util.client, nil
}
