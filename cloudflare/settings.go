/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"context"
	"net/http"
)

// Provider error codes for DNS records which exist already.
const (
	CodeRecordAlreadyExists     = 81057
	CodeRecordSameSettingsExist = 81058
)

func routingPath(zoneID string, sub ...string) string {
	return endpoint(append([]string{"zones", zoneID, "email", "routing"}, sub...)...)
}

// GetEmailRoutingSettings fetches the email routing settings of the zone.
func (c *Client) GetEmailRoutingSettings(ctx context.Context, zoneID string) (*EmailRoutingSettings, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var settings *EmailRoutingSettings
	if _, err := c.do(ctx, http.MethodGet, routingPath(zoneID), nil, nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetEmailRoutingDNSRecords returns the DNS records the provider requires for
// email routing of the zone.
func (c *Client) GetEmailRoutingDNSRecords(ctx context.Context, zoneID string) ([]DNSRecord, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var records dnsRecordList
	if _, err := c.do(ctx, http.MethodGet, routingPath(zoneID, "dns"), nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnableEmailRoutingDNS enables email routing for the zone and lets the
// provider add the required DNS records.
func (c *Client) EnableEmailRoutingDNS(ctx context.Context, zoneID string, params *EmailRoutingDNSParams) (*EmailRoutingSettings, error) {
	return c.emailRoutingDNS(ctx, http.MethodPost, zoneID, params)
}

// DisableEmailRoutingDNS disables email routing for the zone and removes the
// DNS records added for it.
func (c *Client) DisableEmailRoutingDNS(ctx context.Context, zoneID string, params *EmailRoutingDNSParams) (*EmailRoutingSettings, error) {
	return c.emailRoutingDNS(ctx, http.MethodDelete, zoneID, params)
}

func (c *Client) emailRoutingDNS(ctx context.Context, method, zoneID string, params *EmailRoutingDNSParams) (*EmailRoutingSettings, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var settings *EmailRoutingSettings
	if _, err := c.do(ctx, method, routingPath(zoneID, "dns"), nil, params, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}
