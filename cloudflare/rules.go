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

func rulesPath(zoneID string, ruleID ...string) string {
	return endpoint(append([]string{"zones", zoneID, "email", "routing", "rules"}, ruleID...)...)
}

// CreateEmailRoutingRule adds a routing rule to the zone.
func (c *Client) CreateEmailRoutingRule(ctx context.Context, zoneID string, params *CreateEmailRoutingRuleParams) (*EmailRoutingRule, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var rule *EmailRoutingRule
	if _, err := c.do(ctx, http.MethodPost, rulesPath(zoneID), nil, params, &rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteEmailRoutingRule removes a routing rule. No request body is sent.
func (c *Client) DeleteEmailRoutingRule(ctx context.Context, zoneID, ruleID string) (*EmailRoutingRule, error) {
	if err := requireIdentifiers(zoneID, ruleID); err != nil {
		return nil, err
	}

	var rule *EmailRoutingRule
	if _, err := c.do(ctx, http.MethodDelete, rulesPath(zoneID, ruleID), nil, nil, &rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListEmailRoutingRules returns all routing rules of the zone, following
// pagination.
func (c *Client) ListEmailRoutingRules(ctx context.Context, zoneID string) ([]EmailRoutingRule, error) {
	if err := requireIdentifiers(zoneID); err != nil {
		return nil, err
	}

	var rules []EmailRoutingRule
	err := c.list(ctx, rulesPath(zoneID), func(raw json.RawMessage) error {
		var page []EmailRoutingRule
		if err := json.Unmarshal(raw, &page); err != nil {
			return err
		}
		rules = append(rules, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}
