/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

package cloudflare

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stash.kopano.io/kgol/cfemailrouting/internal/cftest"
)

func newTestLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()

	u, err := url.Parse(baseURL)
	require.NoError(t, err)

	client, err := New(&Config{
		Logger:     newTestLogger(),
		BaseURL:    u,
		APIToken:   cftest.Token,
		MaxRetries: maxRetries,
	})
	require.NoError(t, err)
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(&Config{})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(&Config{APIEmail: "admin@example.com"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthHeaders(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		header = req.Header.Clone()
		_, _ = io.WriteString(rw, `{"success":true,"result":{"id":"z1","name":"example.com"}}`)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)

	client, err := New(&Config{Logger: newTestLogger(), BaseURL: u, APIToken: "secret"})
	require.NoError(t, err)
	_, err = client.ZoneDetails(context.Background(), "z1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", header.Get("Authorization"))
	assert.Empty(t, header.Get("X-Auth-Key"))
	assert.Contains(t, header.Get("User-Agent"), "cfemailrouting/")

	client, err = New(&Config{Logger: newTestLogger(), BaseURL: u, APIEmail: "admin@example.com", APIKey: "key"})
	require.NoError(t, err)
	_, err = client.ZoneDetails(context.Background(), "z1")
	require.NoError(t, err)
	assert.Empty(t, header.Get("Authorization"))
	assert.Equal(t, "admin@example.com", header.Get("X-Auth-Email"))
	assert.Equal(t, "key", header.Get("X-Auth-Key"))
}

func TestRetryOnServiceUnavailable(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()
	server.AddZone("z1", "example.com")
	server.FailNext(1, http.StatusServiceUnavailable)

	client := newTestClient(t, server.BaseURL(), 2)

	zone, err := client.ZoneDetails(context.Background(), "z1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", zone.Name)
	assert.Equal(t, 2, server.Calls(http.MethodGet, "/zones/z1"))
}

func TestRetryRepeatsRequestBody(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()
	server.FailNext(1, http.StatusTooManyRequests)

	client := newTestClient(t, server.BaseURL(), 1)

	address, err := client.CreateDestinationAddress(context.Background(), "acct1", &CreateDestinationAddressParams{
		Email: "owner@personal.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@personal.com", address.Email)
	assert.Equal(t, 2, server.Calls(http.MethodPost, "/email/routing/addresses"))
}

func TestNoRetryOnBadRequest(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()
	server.AddZone("z1", "example.com")
	server.FailNext(1, http.StatusBadRequest)

	client := newTestClient(t, server.BaseURL(), 3)

	_, err := client.ZoneDetails(context.Background(), "z1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, apiErr.HasMessage("INJECTED"))
	assert.Equal(t, 1, server.Calls(http.MethodGet, "/zones/z1"))
}

func TestRetriesExhausted(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()
	server.AddZone("z1", "example.com")
	server.FailNext(5, http.StatusBadGateway)

	client := newTestClient(t, server.BaseURL(), -1)

	_, err := client.ZoneDetails(context.Background(), "z1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, 1, server.Calls(http.MethodGet, "/zones/z1"))
}

func TestCanceledContextIsNotRetried(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()

	client := newTestClient(t, server.BaseURL(), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ZoneDetails(ctx, "z1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsTransportError(err))
	assert.Empty(t, server.Log())
}

func TestListFollowsPagination(t *testing.T) {
	server := cftest.NewServer()
	defer server.Close()

	count := defaultPerPage*2 + 7
	for idx := 0; idx < count; idx++ {
		server.AddDestinationAddress("acct1", "user"+strconv.Itoa(idx)+"@example.com")
	}
	server.AddDestinationAddress("acct2", "other@example.com")

	client := newTestClient(t, server.BaseURL(), -1)

	addresses, err := client.ListDestinationAddresses(context.Background(), "acct1")
	require.NoError(t, err)
	require.Len(t, addresses, count)
	assert.Equal(t, "user0@example.com", addresses[0].Email)
	assert.Equal(t, "user"+strconv.Itoa(count-1)+"@example.com", addresses[count-1].Email)
	assert.Equal(t, 3, server.Calls(http.MethodGet, "/email/routing/addresses"))
}

func TestRequiredDNSRecordsResponseShapes(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		wrap := wrap
		t.Run("wrap="+strconv.FormatBool(wrap), func(t *testing.T) {
			server := cftest.NewServer()
			defer server.Close()
			server.AddZone("z1", "example.com")
			server.WrapDNSRecords(wrap)

			client := newTestClient(t, server.BaseURL(), -1)

			records, err := client.GetEmailRoutingDNSRecords(context.Background(), "z1")
			require.NoError(t, err)
			require.Len(t, records, 4)
			assert.Equal(t, "MX", records[0].Type)
			require.NotNil(t, records[0].Priority)
			assert.Equal(t, "TXT", records[3].Type)
		})
	}
}

func TestEmptyIdentifier(t *testing.T) {
	client := newTestClient(t, DefaultBaseURL, -1)

	_, err := client.DeleteDestinationAddress(context.Background(), "acct1", " ")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = client.ListEmailRoutingRules(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestErrorBodies(t *testing.T) {
	for _, tc := range []struct {
		name    string
		status  int
		body    string
		invalid bool
	}{
		{name: "html error page", status: http.StatusForbidden, body: "<html>denied</html>"},
		{name: "success false", status: http.StatusOK, body: `{"success":false,"errors":[{"code":1000,"message":"nope"}]}`},
		{name: "garbage", status: http.StatusOK, body: "not json", invalid: true},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				rw.WriteHeader(tc.status)
				_, _ = io.WriteString(rw, tc.body)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, -1)

			_, err := client.ZoneDetails(context.Background(), "z1")
			require.Error(t, err)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
		})
	}
}

func TestDeleteSendsNoBody(t *testing.T) {
	var length int64 = -2
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		length = int64(len(data))
		_, _ = io.WriteString(rw, `{"success":true,"result":{"id":"r1"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, -1)

	rule, err := client.DeleteEmailRoutingRule(context.Background(), "z1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", rule.ID)
	assert.Equal(t, int64(0), length)
}

func TestClientUtil(t *testing.T) {
	util := NewClientUtil(&Config{
		Logger:   newTestLogger(),
		APIToken: "secret",
	})

	first, err := util.Get(context.Background())
	require.NoError(t, err)
	second, err := util.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = util.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewClientUtil(&Config{}).Get(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestIdentifiersAreEscapedPerSegment(t *testing.T) {
	var requestURIs []string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		requestURIs = append(requestURIs, req.RequestURI)
		_, _ = io.WriteString(rw, `{"success":true,"result":{"id":"a1","email":"a@b.com"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/client/v4", -1)

	_, err := client.DeleteDestinationAddress(context.Background(), "acct1", "../../../../../zones/Z/dns_records/R")
	require.NoError(t, err)
	_, err = client.DeleteEmailRoutingRule(context.Background(), "zone 1", "a/b?c")
	require.NoError(t, err)

	require.Len(t, requestURIs, 2)
	assert.Equal(t, "/client/v4/accounts/acct1/email/routing/addresses/..%2F..%2F..%2F..%2F..%2Fzones%2FZ%2Fdns_records%2FR", requestURIs[0])
	assert.Equal(t, "/client/v4/zones/zone%201/email/routing/rules/a%2Fb%3Fc", requestURIs[1])
}

func TestDotSegmentIdentifiers(t *testing.T) {
	var called int
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		called++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, -1)

	_, err := client.DeleteDestinationAddress(context.Background(), "acct1", "..")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	_, err = client.DeleteEmailRoutingRule(context.Background(), ".", "r1")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	_, err = client.ZoneDetails(context.Background(), " .. ")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Zero(t, called)
}
