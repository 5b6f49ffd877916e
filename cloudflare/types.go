/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rule matcher and action values understood by the email routing API.
const (
	MatcherTypeLiteral = "literal"
	MatcherTypeAll     = "all"
	MatcherFieldTo     = "to"

	ActionTypeForward = "forward"
	ActionTypeDrop    = "drop"
	ActionTypeWorker  = "worker"
)

type apiResponse struct {
	Success    bool            `json:"success"`
	Errors     []ResponseInfo  `json:"errors"`
	Messages   []ResponseInfo  `json:"messages"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info"`
}

// ResultInfo carries the pagination block of list responses.
type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// DestinationAddress is an account scoped email routing destination.
type DestinationAddress struct {
	ID       string     `json:"id,omitempty"`
	Tag      string     `json:"tag,omitempty"`
	Email    string     `json:"email,omitempty"`
	Verified *time.Time `json:"verified,omitempty"`
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

// CreateDestinationAddressParams is the body of a destination create call.
type CreateDestinationAddressParams struct {
	Email string `json:"email"`
}

// EmailRoutingRuleMatcher selects inbound mail.
type EmailRoutingRuleMatcher struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// EmailRoutingRuleAction is applied to matched mail.
type EmailRoutingRuleAction struct {
	Type  string   `json:"type"`
	Value []string `json:"value,omitempty"`
}

// EmailRoutingRule is a zone scoped routing rule.
type EmailRoutingRule struct {
	ID       string                    `json:"id,omitempty"`
	Tag      string                    `json:"tag,omitempty"`
	Name     string                    `json:"name,omitempty"`
	Enabled  *bool                     `json:"enabled,omitempty"`
	Priority int                       `json:"priority,omitempty"`
	Matchers []EmailRoutingRuleMatcher `json:"matchers,omitempty"`
	Actions  []EmailRoutingRuleAction  `json:"actions,omitempty"`
}

// CreateEmailRoutingRuleParams is the body of a rule create call.
type CreateEmailRoutingRuleParams struct {
	Name     string                    `json:"name,omitempty"`
	Enabled  *bool                     `json:"enabled,omitempty"`
	Priority int                       `json:"priority,omitempty"`
	Matchers []EmailRoutingRuleMatcher `json:"matchers"`
	Actions  []EmailRoutingRuleAction  `json:"actions"`
}

// Zone holds the subset of zone details used here.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// EmailRoutingSettings describes the email routing state of a zone.
type EmailRoutingSettings struct {
	ID         string     `json:"id,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	Name       string     `json:"name,omitempty"`
	Enabled    bool       `json:"enabled"`
	Status     string     `json:"status,omitempty"`
	SkipWizard *bool      `json:"skip_wizard,omitempty"`
	Created    *time.Time `json:"created,omitempty"`
	Modified   *time.Time `json:"modified,omitempty"`
}

// EmailRoutingDNSParams is the body of the enable and disable DNS calls.
type EmailRoutingDNSParams struct {
	Name string `json:"name"`
}

// DNSRecord is a DNS record as returned by the API.
type DNSRecord struct {
	ID       string  `json:"id,omitempty"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl,omitempty"`
	Priority *uint16 `json:"priority,omitempty"`
	Proxied  *bool   `json:"proxied,omitempty"`
}

// DNSRecordParams is the body of a DNS record create call.
type DNSRecordParams struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl"`
	Proxied  bool    `json:"proxied"`
	Priority *uint16 `json:"priority,omitempty"`
}

// dnsRecordList decodes the required email routing DNS records. Older API
// revisions return a bare array, newer ones an object with a records list.
type dnsRecordList []DNSRecord

func (list *dnsRecordList) UnmarshalJSON(data []byte) error {
	var records []DNSRecord
	if err := json.Unmarshal(data, &records); err == nil {
		*list = records
		return nil
	}

	var wrapped struct {
		Records []DNSRecord `json:"records"`
		Record  []DNSRecord `json:"record"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unexpected dns records payload: %w", err)
	}
	if wrapped.Records != nil {
		*list = wrapped.Records
	} else {
		*list = wrapped.Record
	}
	return nil
}
