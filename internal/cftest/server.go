/*
 * SPDX-License-Identifier: AGPL-3.0-or-later
 * Copyright 2021 Kopano and its licensors
 */

// Package cftest provides an in-memory Cloudflare email routing API for tests.
package cftest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lithammer/shortuuid/v3"
	cmap "github.com/orcaman/concurrent-map"

	"stash.kopano.io/kgol/cfemailrouting/utils"
)

// PathPrefix is the API root served by the fake, mirroring the real one.
const PathPrefix = "/client/v4/"

// Token is the API token accepted by servers created with NewServer.
const Token = "cftest-token"

// Server is a fake Cloudflare API backed by concurrent maps.
type Server struct {
	*httptest.Server

	addresses cmap.ConcurrentMap
	rules     cmap.ConcurrentMap
	zones     cmap.ConcurrentMap

	seq int64

	callsMutex sync.Mutex
	calls      []string

	failCount  int32
	failStatus int32

	omitAddressIDs  utils.AtomicBool
	wrapDNSRecords  utils.AtomicBool
	emptyAddressIDs utils.AtomicBool
}

type address struct {
	ID       string     `json:"id,omitempty"`
	Tag      string     `json:"tag,omitempty"`
	Email    string     `json:"email"`
	Verified *time.Time `json:"verified,omitempty"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`

	account string
	seq     int64
}

type matcher struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

type action struct {
	Type  string   `json:"type"`
	Value []string `json:"value,omitempty"`
}

type rule struct {
	ID       string    `json:"id"`
	Tag      string    `json:"tag"`
	Name     string    `json:"name"`
	Enabled  bool      `json:"enabled"`
	Priority int       `json:"priority"`
	Matchers []matcher `json:"matchers"`
	Actions  []action  `json:"actions"`

	zone string
	seq  int64
}

// DNSRecord is a DNS record held by the fake.
type DNSRecord struct {
	ID       string  `json:"id,omitempty"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl"`
	Priority *uint16 `json:"priority,omitempty"`
	Proxied  *bool   `json:"proxied,omitempty"`
}

type zone struct {
	sync.Mutex

	ID      string
	Name    string
	Enabled bool
	Records []DNSRecord
}

type settings struct {
	ID      string `json:"id"`
	Tag     string `json:"tag"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
}

type info struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewServer starts a fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		addresses: cmap.New(),
		rules:     cmap.New(),
		zones:     cmap.New(),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// BaseURL returns the API root of the fake, suitable for cloudflare.Config.
func (s *Server) BaseURL() string {
	return s.URL + PathPrefix
}

// AddZone registers a zone.
func (s *Server) AddZone(id, name string) {
	s.zones.Set(id, &zone{
		ID:   id,
		Name: name,
	})
}

// AddDestinationAddress registers a destination address and returns its id.
func (s *Server) AddDestinationAddress(account, email string) string {
	a := s.newAddress(account, email)
	return a.ID
}

// ZoneRecords returns the DNS records created in the zone.
func (s *Server) ZoneRecords(id string) []DNSRecord {
	z, ok := s.getZone(id)
	if !ok {
		return nil
	}
	z.Lock()
	defer z.Unlock()
	return append([]DNSRecord(nil), z.Records...)
}

// ZoneEnabled reports whether email routing is enabled for the zone.
func (s *Server) ZoneEnabled(id string) bool {
	z, ok := s.getZone(id)
	if !ok {
		return false
	}
	z.Lock()
	defer z.Unlock()
	return z.Enabled
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n int, status int) {
	atomic.StoreInt32(&s.failStatus, int32(status))
	atomic.StoreInt32(&s.failCount, int32(n))
}

// OmitAddressIDs makes created destination addresses come back without id
// and tag.
func (s *Server) OmitAddressIDs(omit bool) {
	if omit {
		s.omitAddressIDs.SetTrue()
	} else {
		s.omitAddressIDs.SetFalse()
	}
}

// TagOnlyAddressIDs makes destination addresses carry their identifier in the
// tag field only, like older API revisions.
func (s *Server) TagOnlyAddressIDs(tagOnly bool) {
	if tagOnly {
		s.emptyAddressIDs.SetTrue()
	} else {
		s.emptyAddressIDs.SetFalse()
	}
}

// WrapDNSRecords switches the required DNS records response from a bare
// array to an object holding a records list.
func (s *Server) WrapDNSRecords(wrap bool) {
	if wrap {
		s.wrapDNSRecords.SetTrue()
	} else {
		s.wrapDNSRecords.SetFalse()
	}
}

// Calls returns the number of requests seen with method whose path ends with
// suffix.
func (s *Server) Calls(method, suffix string) int {
	s.callsMutex.Lock()
	defer s.callsMutex.Unlock()

	count := 0
	for _, call := range s.calls {
		parts := strings.SplitN(call, " ", 2)
		if parts[0] == method && strings.HasSuffix(parts[1], suffix) {
			count++
		}
	}
	return count
}

// Log returns all requests seen as "METHOD path" in order.
func (s *Server) Log() []string {
	s.callsMutex.Lock()
	defer s.callsMutex.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) record(req *http.Request) {
	s.callsMutex.Lock()
	s.calls = append(s.calls, req.Method+" "+req.URL.Path)
	s.callsMutex.Unlock()
}

func (s *Server) getZone(id string) (*zone, bool) {
	v, ok := s.zones.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*zone), true
}

func (s *Server) nextSeq() int64 {
	return atomic.AddInt64(&s.seq, 1)
}

func (s *Server) newAddress(account, email string) *address {
	now := time.Now().UTC().Truncate(time.Second)
	id := strings.ToLower(shortuuid.New())
	a := &address{
		ID:       id,
		Tag:      id,
		Email:    email,
		Created:  now,
		Modified: now,

		account: account,
		seq:     s.nextSeq(),
	}
	s.addresses.Set(account+"/"+id, a)
	return a
}

func (s *Server) presentAddress(a *address) *address {
	out := *a
	if s.emptyAddressIDs.IsSet() {
		out.ID = ""
	}
	return &out
}

func (s *Server) serveHTTP(rw http.ResponseWriter, req *http.Request) {
	s.record(req)

	if n := atomic.LoadInt32(&s.failCount); n > 0 {
		atomic.AddInt32(&s.failCount, -1)
		writeError(rw, int(atomic.LoadInt32(&s.failStatus)), 10000, "injected failure")
		return
	}

	if !authorized(req) {
		writeError(rw, http.StatusForbidden, 10000, "Authentication error")
		return
	}

	if !strings.HasPrefix(req.URL.Path, PathPrefix) {
		writeError(rw, http.StatusNotFound, 7000, "No route for that URI")
		return
	}
	segments := strings.Split(strings.Trim(strings.TrimPrefix(req.URL.Path, PathPrefix), "/"), "/")

	switch {
	case match(segments, "accounts", "*", "email", "routing", "addresses"):
		s.handleAddresses(rw, req, segments[1])
	case match(segments, "accounts", "*", "email", "routing", "addresses", "*"):
		s.handleAddress(rw, req, segments[1], segments[5])
	case match(segments, "zones", "*"):
		s.handleZone(rw, req, segments[1])
	case match(segments, "zones", "*", "email", "routing"):
		s.handleSettings(rw, req, segments[1])
	case match(segments, "zones", "*", "email", "routing", "rules"):
		s.handleRules(rw, req, segments[1])
	case match(segments, "zones", "*", "email", "routing", "rules", "*"):
		s.handleRule(rw, req, segments[1], segments[5])
	case match(segments, "zones", "*", "email", "routing", "dns"):
		s.handleRoutingDNS(rw, req, segments[1])
	case match(segments, "zones", "*", "dns_records"):
		s.handleDNSRecords(rw, req, segments[1])
	default:
		writeError(rw, http.StatusNotFound, 7000, "No route for that URI")
	}
}

func (s *Server) handleAddresses(rw http.ResponseWriter, req *http.Request, account string) {
	switch req.Method {
	case http.MethodGet:
		var list []*address
		for _, v := range s.addresses.Items() {
			a := v.(*address)
			if a.account == account {
				list = append(list, a)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
		presented := make([]interface{}, 0, len(list))
		for _, a := range list {
			presented = append(presented, s.presentAddress(a))
		}
		writePage(rw, req, presented)

	case http.MethodPost:
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Email == "" {
			writeError(rw, http.StatusBadRequest, 1001, "Invalid request body")
			return
		}
		for _, v := range s.addresses.Items() {
			a := v.(*address)
			if a.account == account && strings.EqualFold(a.Email, body.Email) {
				writeError(rw, http.StatusConflict, 2032, "Destination address already exists")
				return
			}
		}
		a := s.newAddress(account, body.Email)
		if s.omitAddressIDs.IsSet() {
			writeResult(rw, http.StatusOK, map[string]interface{}{"email": a.Email})
			return
		}
		writeResult(rw, http.StatusOK, s.presentAddress(a))

	default:
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

func (s *Server) handleAddress(rw http.ResponseWriter, req *http.Request, account, id string) {
	key := account + "/" + id
	v, ok := s.addresses.Get(key)
	if !ok {
		writeError(rw, http.StatusNotFound, 2020, "Destination address not found")
		return
	}

	switch req.Method {
	case http.MethodGet:
		writeResult(rw, http.StatusOK, s.presentAddress(v.(*address)))
	case http.MethodDelete:
		s.addresses.Remove(key)
		writeResult(rw, http.StatusOK, s.presentAddress(v.(*address)))
	default:
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

func (s *Server) handleZone(rw http.ResponseWriter, req *http.Request, id string) {
	z, ok := s.getZone(id)
	if !ok {
		writeError(rw, http.StatusNotFound, 1001, "Invalid zone identifier")
		return
	}
	writeResult(rw, http.StatusOK, map[string]interface{}{
		"id":     z.ID,
		"name":   z.Name,
		"status": "active",
	})
}

func (s *Server) zoneSettings(z *zone) *settings {
	status := "unconfigured"
	if z.Enabled {
		status = "ready"
	}
	return &settings{
		ID:      z.ID,
		Tag:     z.ID,
		Name:    z.Name,
		Enabled: z.Enabled,
		Status:  status,
	}
}

func (s *Server) handleSettings(rw http.ResponseWriter, req *http.Request, id string) {
	z, ok := s.getZone(id)
	if !ok {
		writeError(rw, http.StatusNotFound, 1001, "Invalid zone identifier")
		return
	}
	z.Lock()
	defer z.Unlock()
	writeResult(rw, http.StatusOK, s.zoneSettings(z))
}

func (s *Server) handleRules(rw http.ResponseWriter, req *http.Request, zoneID string) {
	z, ok := s.getZone(zoneID)
	if !ok {
		writeError(rw, http.StatusNotFound, 1001, "Invalid zone identifier")
		return
	}

	switch req.Method {
	case http.MethodGet:
		var list []*rule
		for _, v := range s.rules.Items() {
			r := v.(*rule)
			if r.zone == zoneID {
				list = append(list, r)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
		presented := make([]interface{}, 0, len(list))
		for _, r := range list {
			presented = append(presented, r)
		}
		writePage(rw, req, presented)

	case http.MethodPost:
		var body struct {
			Name     string    `json:"name"`
			Enabled  *bool     `json:"enabled"`
			Priority int       `json:"priority"`
			Matchers []matcher `json:"matchers"`
			Actions  []action  `json:"actions"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.Matchers) == 0 || len(body.Actions) == 0 {
			writeError(rw, http.StatusBadRequest, 2020, "Invalid rule operation")
			return
		}
		for _, m := range body.Matchers {
			if m.Type != "literal" {
				continue
			}
			if !utils.IsEmailInDomain(m.Value, z.Name) {
				writeError(rw, http.StatusBadRequest, 2020, "Invalid rule operation: address is not in zone")
				return
			}
		}
		id := strings.ToLower(shortuuid.New())
		r := &rule{
			ID:       id,
			Tag:      id,
			Name:     body.Name,
			Enabled:  body.Enabled == nil || *body.Enabled,
			Priority: body.Priority,
			Matchers: body.Matchers,
			Actions:  body.Actions,

			zone: zoneID,
			seq:  s.nextSeq(),
		}
		s.rules.Set(zoneID+"/"+id, r)
		writeResult(rw, http.StatusOK, r)

	default:
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

func (s *Server) handleRule(rw http.ResponseWriter, req *http.Request, zoneID, id string) {
	key := zoneID + "/" + id
	v, ok := s.rules.Get(key)
	if !ok {
		writeError(rw, http.StatusNotFound, 2020, "Rule not found")
		return
	}

	switch req.Method {
	case http.MethodGet:
		writeResult(rw, http.StatusOK, v)
	case http.MethodDelete:
		s.rules.Remove(key)
		writeResult(rw, http.StatusOK, v)
	default:
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

// RequiredRecords returns the DNS records email routing needs for a zone.
func RequiredRecords(zoneName string) []DNSRecord {
	priorities := []uint16{13, 86, 24}
	records := make([]DNSRecord, 0, 4)
	for idx, priority := range priorities {
		p := priority
		records = append(records, DNSRecord{
			Type:     "MX",
			Name:     zoneName,
			Content:  "route" + strconv.Itoa(idx+1) + ".mx.cloudflare.net",
			TTL:      1,
			Priority: &p,
		})
	}
	records = append(records, DNSRecord{
		Type:    "TXT",
		Name:    zoneName,
		Content: "v=spf1 include:_spf.mx.cloudflare.net ~all",
		TTL:     1,
	})
	return records
}

func (s *Server) handleRoutingDNS(rw http.ResponseWriter, req *http.Request, zoneID string) {
	z, ok := s.getZone(zoneID)
	if !ok {
		writeError(rw, http.StatusNotFound, 1001, "Invalid zone identifier")
		return
	}

	z.Lock()
	defer z.Unlock()

	switch req.Method {
	case http.MethodGet:
		records := RequiredRecords(z.Name)
		if s.wrapDNSRecords.IsSet() {
			writeResult(rw, http.StatusOK, map[string]interface{}{"records": records})
		} else {
			writeResult(rw, http.StatusOK, records)
		}

	case http.MethodPost, http.MethodDelete:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || !strings.EqualFold(body.Name, z.Name) {
			writeError(rw, http.StatusBadRequest, 2008, "Invalid zone name")
			return
		}
		enable := req.Method == http.MethodPost
		if z.Enabled == enable {
			if enable {
				writeError(rw, http.StatusConflict, 2007, "Email Routing is already enabled")
			} else {
				writeError(rw, http.StatusConflict, 2007, "Email Routing is already disabled")
			}
			return
		}
		z.Enabled = enable
		writeResult(rw, http.StatusOK, s.zoneSettings(z))

	default:
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
	}
}

func (s *Server) handleDNSRecords(rw http.ResponseWriter, req *http.Request, zoneID string) {
	z, ok := s.getZone(zoneID)
	if !ok {
		writeError(rw, http.StatusNotFound, 1001, "Invalid zone identifier")
		return
	}
	if req.Method != http.MethodPost {
		writeError(rw, http.StatusMethodNotAllowed, 10405, "Method not allowed")
		return
	}

	var record DNSRecord
	if err := json.NewDecoder(req.Body).Decode(&record); err != nil || record.Type == "" || record.Content == "" {
		writeError(rw, http.StatusBadRequest, 9000, "Invalid DNS record")
		return
	}

	z.Lock()
	defer z.Unlock()
	for _, existing := range z.Records {
		if existing.Type == record.Type && existing.Name == record.Name && existing.Content == record.Content {
			writeError(rw, http.StatusBadRequest, 81057, "The record already exists.")
			return
		}
	}
	record.ID = strings.ToLower(shortuuid.New())
	z.Records = append(z.Records, record)
	writeResult(rw, http.StatusOK, record)
}

func authorized(req *http.Request) bool {
	if req.Header.Get("Authorization") == "Bearer "+Token {
		return true
	}
	return req.Header.Get("X-Auth-Email") != "" && req.Header.Get("X-Auth-Key") == Token
}

func match(segments []string, pattern ...string) bool {
	if len(segments) != len(pattern) {
		return false
	}
	for idx, p := range pattern {
		if p == "*" {
			if segments[idx] == "" {
				return false
			}
			continue
		}
		if segments[idx] != p {
			return false
		}
	}
	return true
}

func writePage(rw http.ResponseWriter, req *http.Request, items []interface{}) {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(req.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 20
	}

	totalPages := (len(items) + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	writeJSON(rw, http.StatusOK, map[string]interface{}{
		"success":  true,
		"errors":   []info{},
		"messages": []info{},
		"result":   items[start:end],
		"result_info": resultInfo{
			Page:       page,
			PerPage:    perPage,
			Count:      end - start,
			TotalCount: len(items),
			TotalPages: totalPages,
		},
	})
}

func writeResult(rw http.ResponseWriter, status int, result interface{}) {
	writeJSON(rw, status, map[string]interface{}{
		"success":  true,
		"errors":   []info{},
		"messages": []info{},
		"result":   result,
	})
}

func writeError(rw http.ResponseWriter, status int, code int, message string) {
	writeJSON(rw, status, map[string]interface{}{
		"success":  false,
		"errors":   []info{{Code: code, Message: message}},
		"messages": []info{},
		"result":   nil,
	})
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
