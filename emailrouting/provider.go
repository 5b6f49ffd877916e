/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"context"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
)

// API is the provider surface used by EmailRouting. It is implemented by
// *cloudflare.Client.
type API interface {
	CreateDestinationAddress(ctx context.Context, accountID string, params *cloudflare.CreateDestinationAddressParams) (*cloudflare.DestinationAddress, error)
	DeleteDestinationAddress(ctx context.Context, accountID, addressID string) (*cloudflare.DestinationAddress, error)
	ListDestinationAddresses(ctx context.Context, accountID string) ([]cloudflare.DestinationAddress, error)

	CreateEmailRoutingRule(ctx context.Context, zoneID string, params *cloudflare.CreateEmailRoutingRuleParams) (*cloudflare.EmailRoutingRule, error)
	DeleteEmailRoutingRule(ctx context.Context, zoneID, ruleID string) (*cloudflare.EmailRoutingRule, error)
	ListEmailRoutingRules(ctx context.Context, zoneID string) ([]cloudflare.EmailRoutingRule, error)

	ZoneDetails(ctx context.Context, zoneID string) (*cloudflare.Zone, error)
	CreateDNSRecord(ctx context.Context, zoneID string, params *cloudflare.DNSRecordParams) (*cloudflare.DNSRecord, error)

	GetEmailRoutingSettings(ctx context.Context, zoneID string) (*cloudflare.EmailRoutingSettings, error)
	GetEmailRoutingDNSRecords(ctx context.Context, zoneID string) ([]cloudflare.DNSRecord, error)
	EnableEmailRoutingDNS(ctx context.Context, zoneID string, params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error)
	DisableEmailRoutingDNS(ctx context.Context, zoneID string, params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error)
}

var _ API = (*cloudflare.Client)(nil)

// ClientProvider yields an authenticated API.
type ClientProvider interface {
	Get(ctx context.Context) (API, error)
}

// ClientProviderFunc adapts a function to ClientProvider.
type ClientProviderFunc func(ctx context.Context) (API, error)

// Get implements ClientProvider.
func (f ClientProviderFunc) Get(ctx context.Context) (API, error) {
	return f(ctx)
}

// StaticProvider returns a ClientProvider which always yields api.
func StaticProvider(api API) ClientProvider {
	return ClientProviderFunc(func(ctx context.Context) (API, error) {
		return api, nil
	})
}

// FromClientUtil returns a ClientProvider backed by the shared client of util.
func FromClientUtil(util *cloudflare.ClientUtil) ClientProvider {
	return ClientProviderFunc(func(ctx context.Context) (API, error) {
		client, err := util.Get(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
