/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
)

func addressesPath(accountID string, addressID ...string) string {
	return endpoint(append([]string{"accounts", accountID, "email", "routing", "addresses"}, addressID...)...)
}

// CreateDestinationAddress registers a new destination address for the
// account. The provider sends a verification mail to it. A nil result with a
// nil error means the provider returned no record.
func (c *Client) CreateDestinationAddress(ctx context.Context, accountID string, params *CreateDestinationAddressParams) (*DestinationAddress, error) {
	if err := requireIdentifiers(accountID); err != nil {
		return nil, err
	}

	var address *DestinationAddress
	if _, err := c.do(ctx, http.MethodPost, addressesPath(accountID), nil, params, &address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteDestinationAddress removes a destination address. No request body is
// sent.
func (c *Client) DeleteDestinationAddress(ctx context.Context, accountID, addressID string) (*DestinationAddress, error) {
	if err := requireIdentifiers(accountID, addressID); err != nil {
		return nil, err
	}

	var address *DestinationAddress
	if _, err := c.do(ctx, http.MethodDelete, addressesPath(accountID, addressID), nil, nil, &address); err != nil {
		return nil, err
	}
	return address, nil
}

// ListDestinationAddresses returns all destination addresses of the account,
// following pagination.
func (c *Client) ListDestinationAddresses(ctx context.Context, accountID string) ([]DestinationAddress, error) {
	if err := requireIdentifiers(accountID); err != nil {
		return nil, err
	}

	var addresses []DestinationAddress
	err := c.list(ctx, addressesPath(accountID), func(raw json.RawMessage) error {
		var page []DestinationAddress
		if err := json.Unmarshal(raw, &page); err != nil {
			return err
		}
		addresses = append(addresses, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
