/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"fmt"

	"github.com/jinzhu/copier"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
)

// All conversions between the provider wire types and the types of this
// package happen here.

func copySlice(to, from interface{}, n int) error {
	if n == 0 {
		return nil
	}
	return copier.Copy(to, from)
}

func identifier(id, tag string) string {
	if id != "" {
		return id
	}
	return tag
}

func toDestinationAddress(address *cloudflare.DestinationAddress) *DestinationAddress {
	if address == nil {
		return nil
	}
	return &DestinationAddress{
		ID:       identifier(address.ID, address.Tag),
		Email:    address.Email,
		Verified: address.Verified,
		Created:  address.Created,
	}
}

func toDestinationAddresses(addresses []cloudflare.DestinationAddress) []DestinationAddress {
	result := make([]DestinationAddress, 0, len(addresses))
	for idx := range addresses {
		result = append(result, *toDestinationAddress(&addresses[idx]))
	}
	return result
}

func toRule(rule *cloudflare.EmailRoutingRule) (*Rule, error) {
	if rule == nil {
		return nil, nil
	}
	result := &Rule{
		ID:       identifier(rule.ID, rule.Tag),
		Name:     rule.Name,
		Enabled:  rule.Enabled == nil || *rule.Enabled,
		Priority: rule.Priority,
	}
	if err := copySlice(&result.Matchers, rule.Matchers, len(rule.Matchers)); err != nil {
		return nil, fmt.Errorf("failed to map rule matchers: %w", err)
	}
	if err := copySlice(&result.Actions, rule.Actions, len(rule.Actions)); err != nil {
		return nil, fmt.Errorf("failed to map rule actions: %w", err)
	}
	return result, nil
}

func toRules(rules []cloudflare.EmailRoutingRule) ([]Rule, error) {
	result := make([]Rule, 0, len(rules))
	for idx := range rules {
		rule, err := toRule(&rules[idx])
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}
	return result, nil
}

func fromRule(rule *Rule) (*cloudflare.CreateEmailRoutingRuleParams, error) {
	enabled := rule.Enabled
	params := &cloudflare.CreateEmailRoutingRuleParams{
		Name:     rule.Name,
		Enabled:  &enabled,
		Priority: rule.Priority,
	}
	if err := copySlice(&params.Matchers, rule.Matchers, len(rule.Matchers)); err != nil {
		return nil, fmt.Errorf("failed to map rule matchers: %w", err)
	}
	if err := copySlice(&params.Actions, rule.Actions, len(rule.Actions)); err != nil {
		return nil, fmt.Errorf("failed to map rule actions: %w", err)
	}
	return params, nil
}

func toZone(zone *cloudflare.Zone) *Zone {
	if zone == nil {
		return nil
	}
	return &Zone{
		ID:   zone.ID,
		Name: zone.Name,
	}
}

func toSettings(settings *cloudflare.EmailRoutingSettings) *Settings {
	if settings == nil {
		return nil
	}
	return &Settings{
		ID:         identifier(settings.ID, settings.Tag),
		Name:       settings.Name,
		Enabled:    settings.Enabled,
		Status:     settings.Status,
		SkipWizard: settings.SkipWizard != nil && *settings.SkipWizard,
	}
}

func toDNSRecords(records []cloudflare.DNSRecord) []DNSRecord {
	result := make([]DNSRecord, 0, len(records))
	for _, record := range records {
		result = append(result, DNSRecord{
			Type:     record.Type,
			Name:     record.Name,
			Content:  record.Content,
			TTL:      record.TTL,
			Priority: record.Priority,
		})
	}
	return result
}

func fromDNSRecord(record *DNSRecord) *cloudflare.DNSRecordParams {
	params := &cloudflare.DNSRecordParams{
		Type:    record.Type,
		Name:    record.Name,
		Content: record.Content,
		TTL:     1,
		Proxied: false,
	}
	if record.Type == "MX" {
		params.Priority = record.Priority
	}
	return params
}
