/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"context"
)

// Manager is the email routing interface.
type Manager interface {
	AddDestinationAddress(ctx context.Context, accountID, email string) (*DestinationAddress, error)
	RemoveDestinationAddress(ctx context.Context, accountID, addressID string) (*DestinationAddress, error)
	ListDestinationAddresses(ctx context.Context, accountID string) ([]DestinationAddress, error)
	GetDestinationAddressIDByEmail(ctx context.Context, accountID, email string) (string, bool, error)

	CreateCustomAddress(ctx context.Context, zoneID, customEmail, destinationEmail string) (*Rule, error)
	RemoveCustomAddress(ctx context.Context, zoneID, ruleID string) (*Rule, error)
	ListRoutingRules(ctx context.Context, zoneID string) ([]Rule, error)
	CreateCustomAddressWithEmail(ctx context.Context, accountID, zoneID, customEmail, destinationEmail string) (*Rule, error)

	SetupEmailRoutingDNS(ctx context.Context, zoneID string) *DNSResult
	DisableEmailRouting(ctx context.Context, zoneID string) *DNSResult
	ProvisionEmailRoutingDNSRecords(ctx context.Context, zoneID string) *DNSResult

	GetRoutingSettings(ctx context.Context, zoneID string) (*Settings, error)
	GetRoutingDNSRecords(ctx context.Context, zoneID string) ([]DNSRecord, error)
}

var _ Manager = (*EmailRouting)(nil)
