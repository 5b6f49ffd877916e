/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package utils

import (
	"fmt"
	"strings"
)

// GetDomainFromEmail returns the domain part as defined in RFC 5322 of the
// provided email address.
func GetDomainFromEmail(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at > 0 && at < len(email)-1 {
		return email[at+1:], nil
	}

	return "", fmt.Errorf("no local part and domain in value: %v", email)
}

// IsEmailInDomain reports whether the domain of email is domain, ignoring
// case and a trailing dot.
func IsEmailInDomain(email, domain string) bool {
	emailDomain, err := GetDomainFromEmail(email)
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSuffix(emailDomain, "."), strings.TrimSuffix(domain, "."))
}
