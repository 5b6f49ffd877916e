/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package emailrouting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"stash.kopano.io/kgol/cfemailrouting/cloudflare"
)

// EmailRouting forwards email routing operations to the provider API. It
// holds no state of its own and is safe for concurrent use.
type EmailRouting struct {
	config *Config

	logger   logrus.FieldLogger
	provider ClientProvider
}

// New constructs an EmailRouting from the provided configuration.
func New(c *Config) (*EmailRouting, error) {
	if c.Provider == nil {
		return nil, ErrMissingProvider
	}

	r := &EmailRouting{
		config: c,

		logger:   c.Logger,
		provider: c.Provider,
	}
	if r.logger == nil {
		r.logger = logrus.StandardLogger()
	}

	return r, nil
}

func (r *EmailRouting) api(ctx context.Context) (API, error) {
	api, err := r.provider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cloudflare client: %w", err)
	}
	if api == nil {
		return nil, fmt.Errorf("failed to get cloudflare client: %w", ErrMissingProvider)
	}
	return api, nil
}

// AddDestinationAddress registers email as destination address of the
// account. The result is nil when the provider returns no record.
func (r *EmailRouting) AddDestinationAddress(ctx context.Context, accountID, email string) (*DestinationAddress, error) {
	logger := r.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"email":      email,
	})

	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	created, err := api.CreateDestinationAddress(ctx, accountID, &cloudflare.CreateDestinationAddressParams{
		Email: email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create destination address: %w", err)
	}

	address := toDestinationAddress(created)
	if address != nil {
		logger = logger.WithField("address_id", address.ID)
	}
	logger.Infoln("destination address created")

	return address, nil
}

// RemoveDestinationAddress removes the destination address addressID.
func (r *EmailRouting) RemoveDestinationAddress(ctx context.Context, accountID, addressID string) (*DestinationAddress, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := api.DeleteDestinationAddress(ctx, accountID, addressID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete destination address: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"address_id": addressID,
	}).Infoln("destination address removed")

	return toDestinationAddress(removed), nil
}

// ListDestinationAddresses returns all destination addresses of the account.
func (r *EmailRouting) ListDestinationAddresses(ctx context.Context, accountID string) ([]DestinationAddress, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	addresses, err := api.ListDestinationAddresses(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination addresses: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"count":      len(addresses),
	}).Debugln("destination addresses listed")

	return toDestinationAddresses(addresses), nil
}

func (r *EmailRouting) findDestinationAddress(ctx context.Context, accountID, email string) (*DestinationAddress, error) {
	addresses, err := r.ListDestinationAddresses(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for idx := range addresses {
		// A record without identifier cannot be forwarded to.
		if addresses[idx].ID == "" {
			continue
		}
		if strings.EqualFold(addresses[idx].Email, email) {
			return &addresses[idx], nil
		}
	}
	return nil, nil
}

// GetDestinationAddressIDByEmail looks up the id of the destination address
// with the given email, ignoring case. The first match wins.
func (r *EmailRouting) GetDestinationAddressIDByEmail(ctx context.Context, accountID, email string) (string, bool, error) {
	address, err := r.findDestinationAddress(ctx, accountID, email)
	if err != nil {
		return "", false, err
	}

	logger := r.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"email":      email,
	})
	if address == nil {
		logger.Debugln("destination address not found")
		return "", false, nil
	}
	logger.WithField("address_id", address.ID).Debugln("destination address found")

	return address.ID, true, nil
}

// CreateCustomAddress creates an enabled rule forwarding mail for
// customEmail to destinationEmail. The rule is named after customEmail.
// Rule content is left to the provider to validate.
func (r *EmailRouting) CreateCustomAddress(ctx context.Context, zoneID, customEmail, destinationEmail string) (*Rule, error) {
	params, err := fromRule(&Rule{
		Name:    customEmail,
		Enabled: true,
		Matchers: []Matcher{{
			Type:  cloudflare.MatcherTypeLiteral,
			Field: cloudflare.MatcherFieldTo,
			Value: customEmail,
		}},
		Actions: []Action{{
			Type:  cloudflare.ActionTypeForward,
			Value: []string{destinationEmail},
		}},
	})
	if err != nil {
		return nil, err
	}

	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	created, err := api.CreateEmailRoutingRule(ctx, zoneID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create routing rule: %w", err)
	}

	rule, err := toRule(created)
	if err != nil {
		return nil, err
	}

	logger := r.logger.WithFields(logrus.Fields{
		"zone_id":           zoneID,
		"custom_email":      customEmail,
		"destination_email": destinationEmail,
	})
	if rule != nil {
		logger = logger.WithField("rule_id", rule.ID)
	}
	logger.Infoln("routing rule created")

	return rule, nil
}

// RemoveCustomAddress removes the routing rule ruleID.
func (r *EmailRouting) RemoveCustomAddress(ctx context.Context, zoneID, ruleID string) (*Rule, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := api.DeleteEmailRoutingRule(ctx, zoneID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete routing rule: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"zone_id": zoneID,
		"rule_id": ruleID,
	}).Infoln("routing rule removed")

	return toRule(removed)
}

// ListRoutingRules returns all routing rules of the zone.
func (r *EmailRouting) ListRoutingRules(ctx context.Context, zoneID string) ([]Rule, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := api.ListEmailRoutingRules(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routing rules: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"zone_id": zoneID,
		"count":   len(rules),
	}).Debugln("routing rules listed")

	return toRules(rules)
}

// CreateCustomAddressWithEmail makes sure destinationEmail is a destination
// address of the account and then creates the rule forwarding customEmail to
// it. The steps run in order and are not atomic; concurrent calls for the
// same destination may both create it.
func (r *EmailRouting) CreateCustomAddressWithEmail(ctx context.Context, accountID, zoneID, customEmail, destinationEmail string) (*Rule, error) {
	logger := r.logger.WithFields(logrus.Fields{
		"account_id":        accountID,
		"zone_id":           zoneID,
		"custom_email":      customEmail,
		"destination_email": destinationEmail,
	})

	destination, err := r.findDestinationAddress(ctx, accountID, destinationEmail)
	if err != nil {
		return nil, err
	}

	if destination == nil {
		logger.Debugln("destination address missing, creating")
		destination, err = r.AddDestinationAddress(ctx, accountID, destinationEmail)
		if err != nil {
			return nil, err
		}
		if destination == nil || destination.ID == "" {
			logger.Errorln("destination address created without id, not creating rule")
			return nil, fmt.Errorf("%w: %s", ErrDestinationAddressWithoutID, destinationEmail)
		}
	} else {
		logger.WithField("address_id", destination.ID).Debugln("using existing destination address")
	}

	forwardTo := destination.Email
	if forwardTo == "" {
		forwardTo = destinationEmail
	}

	return r.CreateCustomAddress(ctx, zoneID, customEmail, forwardTo)
}

// SetupEmailRoutingDNS enables email routing for the zone, letting the
// provider add its DNS records. Failures are reported in the result.
func (r *EmailRouting) SetupEmailRoutingDNS(ctx context.Context, zoneID string) *DNSResult {
	return r.emailRoutingDNS(ctx, zoneID, true)
}

// DisableEmailRouting disables email routing for the zone and removes its DNS
// records. Failures are reported in the result.
func (r *EmailRouting) DisableEmailRouting(ctx context.Context, zoneID string) *DNSResult {
	return r.emailRoutingDNS(ctx, zoneID, false)
}

func (r *EmailRouting) emailRoutingDNS(ctx context.Context, zoneID string, enable bool) *DNSResult {
	logger := r.logger.WithFields(logrus.Fields{
		"zone_id": zoneID,
		"enable":  enable,
	})

	api, err := r.api(ctx)
	if err != nil {
		return r.dnsFailure(logger, "failed to get cloudflare client", err)
	}

	zone, err := api.ZoneDetails(ctx, zoneID)
	if err != nil {
		return r.dnsFailure(logger, "failed to get zone details", err)
	}
	if zone == nil || zone.Name == "" {
		return r.dnsFailure(logger, "zone details without name", fmt.Errorf("%w: zone %s has no name", cloudflare.ErrInvalidResponse, zoneID))
	}
	logger = logger.WithField("zone_name", zone.Name)

	params := &cloudflare.EmailRoutingDNSParams{
		Name: zone.Name,
	}
	var settings *cloudflare.EmailRoutingSettings
	if enable {
		settings, err = api.EnableEmailRoutingDNS(ctx, zoneID, params)
	} else {
		settings, err = api.DisableEmailRoutingDNS(ctx, zoneID, params)
	}
	if err != nil {
		failure := r.dnsFailure(logger, "failed to update email routing dns", err)
		failure.Zone = toZone(zone)
		return failure
	}

	if enable {
		logger.Infoln("email routing dns enabled")
	} else {
		logger.Infoln("email routing dns disabled")
	}

	return &DNSResult{
		Success:  true,
		Zone:     toZone(zone),
		Settings: toSettings(settings),
	}
}

// ProvisionEmailRoutingDNSRecords creates the DNS records email routing needs
// one by one as regular zone records. Records the provider reports as
// existing are counted as skipped.
func (r *EmailRouting) ProvisionEmailRoutingDNSRecords(ctx context.Context, zoneID string) *DNSResult {
	logger := r.logger.WithField("zone_id", zoneID)

	api, err := r.api(ctx)
	if err != nil {
		return r.dnsFailure(logger, "failed to get cloudflare client", err)
	}

	required, err := api.GetEmailRoutingDNSRecords(ctx, zoneID)
	if err != nil {
		return r.dnsFailure(logger, "failed to get required email routing dns records", err)
	}

	result := &DNSResult{}
	for _, record := range toDNSRecords(required) {
		recordLogger := logger.WithFields(logrus.Fields{
			"type":    record.Type,
			"name":    record.Name,
			"content": record.Content,
		})
		if _, err = api.CreateDNSRecord(ctx, zoneID, fromDNSRecord(&record)); err != nil {
			var apiErr *cloudflare.APIError
			if errors.As(err, &apiErr) && apiErr.HasCode(cloudflare.CodeRecordAlreadyExists, cloudflare.CodeRecordSameSettingsExist) {
				recordLogger.Debugln("dns record exists already, skipped")
				result.Skipped++
				continue
			}
			failure := r.dnsFailure(recordLogger, "failed to create dns record", err)
			failure.Created = result.Created
			failure.Skipped = result.Skipped
			return failure
		}
		recordLogger.Infoln("dns record created")
		result.Created++
	}

	result.Success = true
	logger.WithFields(logrus.Fields{
		"created": result.Created,
		"skipped": result.Skipped,
	}).Infoln("email routing dns records provisioned")

	return result
}

func (r *EmailRouting) dnsFailure(logger logrus.FieldLogger, msg string, err error) *DNSResult {
	reason := classify(err)
	logger.WithError(err).WithField("reason", reason).Errorln(msg)
	return &DNSResult{
		Success: false,
		Reason:  reason,
		Err:     err,
	}
}

// classify maps an error of a DNS operation to its reason code.
func classify(err error) ReasonCode {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonCanceled
	}
	if errors.Is(err, cloudflare.ErrInvalidResponse) {
		return ReasonInvalidResponse
	}
	if cloudflare.IsTransportError(err) {
		return ReasonTransportError
	}

	var apiErr *cloudflare.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return ReasonZoneNotFound
		case apiErr.StatusCode == http.StatusConflict,
			apiErr.HasCode(cloudflare.CodeRecordAlreadyExists, cloudflare.CodeRecordSameSettingsExist),
			apiErr.HasMessage("already"):
			return ReasonAlreadyConfigured
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return ReasonTransportError
		}
		return ReasonProviderRejected
	}

	return ReasonProviderRejected
}

// GetRoutingSettings returns the email routing settings of the zone.
func (r *EmailRouting) GetRoutingSettings(ctx context.Context, zoneID string) (*Settings, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := api.GetEmailRoutingSettings(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to get email routing settings: %w", err)
	}

	r.logger.WithField("zone_id", zoneID).Debugln("email routing settings fetched")

	return toSettings(settings), nil
}

// GetRoutingDNSRecords returns the DNS records email routing needs in the
// zone.
func (r *EmailRouting) GetRoutingDNSRecords(ctx context.Context, zoneID string) ([]DNSRecord, error) {
	api, err := r.api(ctx)
	if err != nil {
		return nil, err
	}

	records, err := api.GetEmailRoutingDNSRecords(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to get email routing dns records: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"zone_id": zoneID,
		"count":   len(records),
	}).Debugln("email routing dns records fetched")

	return toDNSRecords(records), nil
}
