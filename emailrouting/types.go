/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"time"
)

// DestinationAddress is an external mailbox inbound mail can be forwarded to.
// It is scoped to an account and must be verified before it receives mail.
type DestinationAddress struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Verified *time.Time `json:"verified,omitempty" yaml:"verified,omitempty"`
	Created  *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// Rule matches inbound mail of a zone and applies its actions.
type Rule struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Enabled  bool      `json:"enabled"`
	Priority int       `json:"priority"`
	Matchers []Matcher `json:"matchers"`
	Actions  []Action  `json:"actions"`
}

// Matcher selects inbound mail, by literal envelope-to address or all mail.
type Matcher struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Action is applied to matched mail.
type Action struct {
	Type  string   `json:"type"`
	Value []string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Zone is a DNS domain managed by the provider.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Settings is the email routing state of a zone.
type Settings struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Status     string `json:"status"`
	SkipWizard bool   `json:"skip_wizard" yaml:"skip_wizard"`
}

// DNSRecord is a record email routing needs in a zone.
type DNSRecord struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl"`
	Priority *uint16 `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// ReasonCode classifies the outcome of a DNS operation.
type ReasonCode string

const (
	ReasonNone              ReasonCode = ""
	ReasonZoneNotFound      ReasonCode = "zone-not-found"
	ReasonAlreadyConfigured ReasonCode = "already-configured"
	ReasonTransportError    ReasonCode = "transport-error"
	ReasonProviderRejected  ReasonCode = "provider-rejected"
	ReasonInvalidResponse   ReasonCode = "invalid-response"
	ReasonCanceled          ReasonCode = "canceled"
)

// DNSResult is returned by the DNS operations instead of an error.
type DNSResult struct {
	Success bool       `json:"success"`
	Reason  ReasonCode `json:"reason,omitempty" yaml:"reason,omitempty"`
	Err     error      `json:"-" yaml:"-"`

	Zone     *Zone     `json:"zone,omitempty" yaml:"zone,omitempty"`
	Settings *Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
	Created  int       `json:"created,omitempty" yaml:"created,omitempty"`
	Skipped  int       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Message returns the message of the underlying error, if any.
func (result *DNSResult) Message() string {
	if result.Err == nil {
		return ""
	}
	return result.Err.Error()
}
