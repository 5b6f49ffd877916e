/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
)

// stubAPI records calls and answers from its function fields. Unset
// functions answer with zero values.
type stubAPI struct {
	mutex sync.Mutex
	calls []string

	createAddress func(params *cloudflare.CreateDestinationAddressParams) (*cloudflare.DestinationAddress, error)
	listAddresses func() ([]cloudflare.DestinationAddress, error)
	createRule    func(params *cloudflare.CreateEmailRoutingRuleParams) (*cloudflare.EmailRoutingRule, error)
	zoneDetails   func() (*cloudflare.Zone, error)
	enableDNS     func(params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error)
	disableDNS    func(params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error)
	dnsRecords    func() ([]cloudflare.DNSRecord, error)
	createRecord  func(params *cloudflare.DNSRecordParams) (*cloudflare.DNSRecord, error)
}

func (stub *stubAPI) record(call string) {
	stub.mutex.Lock()
	defer stub.mutex.Unlock()
	stub.calls = append(stub.calls, call)
}

func (stub *stubAPI) Calls() []string {
	stub.mutex.Lock()
	defer stub.mutex.Unlock()
	return append([]string(nil), stub.calls...)
}

func (stub *stubAPI) CreateDestinationAddress(ctx context.Context, accountID string, params *cloudflare.CreateDestinationAddressParams) (*cloudflare.DestinationAddress, error) {
	stub.record("CreateDestinationAddress")
	if stub.createAddress == nil {
		return &cloudflare.DestinationAddress{ID: "d1", Email: params.Email}, nil
	}
	return stub.createAddress(params)
}

func (stub *stubAPI) DeleteDestinationAddress(ctx context.Context, accountID, addressID string) (*cloudflare.DestinationAddress, error) {
	stub.record("DeleteDestinationAddress")
	return &cloudflare.DestinationAddress{ID: addressID}, nil
}

func (stub *stubAPI) ListDestinationAddresses(ctx context.Context, accountID string) ([]cloudflare.DestinationAddress, error) {
	stub.record("ListDestinationAddresses")
	if stub.listAddresses == nil {
		return nil, nil
	}
	return stub.listAddresses()
}

func (stub *stubAPI) CreateEmailRoutingRule(ctx context.Context, zoneID string, params *cloudflare.CreateEmailRoutingRuleParams) (*cloudflare.EmailRoutingRule, error) {
	stub.record("CreateEmailRoutingRule")
	if stub.createRule == nil {
		return &cloudflare.EmailRoutingRule{
			Tag:      "r1",
			Name:     params.Name,
			Enabled:  params.Enabled,
			Matchers: params.Matchers,
			Actions:  params.Actions,
		}, nil
	}
	return stub.createRule(params)
}

func (stub *stubAPI) DeleteEmailRoutingRule(ctx context.Context, zoneID, ruleID string) (*cloudflare.EmailRoutingRule, error) {
	stub.record("DeleteEmailRoutingRule")
	return &cloudflare.EmailRoutingRule{ID: ruleID}, nil
}

func (stub *stubAPI) ListEmailRoutingRules(ctx context.Context, zoneID string) ([]cloudflare.EmailRoutingRule, error) {
	stub.record("ListEmailRoutingRules")
	return nil, nil
}

func (stub *stubAPI) ZoneDetails(ctx context.Context, zoneID string) (*cloudflare.Zone, error) {
	stub.record("ZoneDetails")
	if stub.zoneDetails == nil {
		return &cloudflare.Zone{ID: zoneID, Name: "example.com"}, nil
	}
	return stub.zoneDetails()
}

func (stub *stubAPI) CreateDNSRecord(ctx context.Context, zoneID string, params *cloudflare.DNSRecordParams) (*cloudflare.DNSRecord, error) {
	stub.record("CreateDNSRecord")
	if stub.createRecord == nil {
		return &cloudflare.DNSRecord{Type: params.Type, Name: params.Name, Content: params.Content}, nil
	}
	return stub.createRecord(params)
}

func (stub *stubAPI) GetEmailRoutingSettings(ctx context.Context, zoneID string) (*cloudflare.EmailRoutingSettings, error) {
	stub.record("GetEmailRoutingSettings")
	return &cloudflare.EmailRoutingSettings{Tag: zoneID, Name: "example.com", Enabled: true, Status: "ready"}, nil
}

func (stub *stubAPI) GetEmailRoutingDNSRecords(ctx context.Context, zoneID string) ([]cloudflare.DNSRecord, error) {
	stub.record("GetEmailRoutingDNSRecords")
	if stub.dnsRecords == nil {
		return nil, nil
	}
	return stub.dnsRecords()
}

func (stub *stubAPI) EnableEmailRoutingDNS(ctx context.Context, zoneID string, params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error) {
	stub.record("EnableEmailRoutingDNS")
	if stub.enableDNS == nil {
		return &cloudflare.EmailRoutingSettings{Tag: zoneID, Name: params.Name, Enabled: true}, nil
	}
	return stub.enableDNS(params)
}

func (stub *stubAPI) DisableEmailRoutingDNS(ctx context.Context, zoneID string, params *cloudflare.EmailRoutingDNSParams) (*cloudflare.EmailRoutingSettings, error) {
	stub.record("DisableEmailRoutingDNS")
	if stub.disableDNS == nil {
		return &cloudflare.EmailRoutingSettings{Tag: zoneID, Name: params.Name}, nil
	}
	return stub.disableDNS(params)
}

func newTestLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func newStubbed(stub *stubAPI) *EmailRouting {
	r, err := New(&Config{
		Logger:   newTestLogger(),
		Provider: StaticProvider(stub),
	})
	if err != nil {
		panic(err)
	}
	return r
}
