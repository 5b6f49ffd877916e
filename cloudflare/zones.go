/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"context"
	"net/http"
)

// ZoneDetails fetches a zone.
func (c *Client) ZoneDetails(ctx context.Context, zoneID string) (*Zone, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var zone *Zone
	if _, err := c.do(ctx, http.MethodGet, endpoint("zones", zoneID), nil, nil, &zone); err != nil {
		return nil, err
	}
	return zone, nil
}

// CreateDNSRecord adds a DNS record to the zone.
func (c *Client) CreateDNSRecord(ctx context.Context, zoneID string, params *DNSRecordParams) (*DNSRecord, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var record *DNSRecord
	if _, err := c.do(ctx, http.MethodPost, endpoint("zones", zoneID, "dns_records"), nil, params, &record); err != nil {
		return nil, err
	}
	return record, nil
}
