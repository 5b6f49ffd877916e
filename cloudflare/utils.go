/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"net/http"

	"stash.kopano.io/kgol/cfemailrouting/version"
)

var defaultUserAgent = "cfemailrouting/" + version.Version

func withUserAgent(req *http.Request, userAgent string) *http.Request {
	req.Header.Set("User-Agent", userAgent)
	return req
}
