// Package platformtest provides an in-memory platform API served over
// httptest, for exercising connectors and merges end to end.
package platformtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/constants"
)

// collection describes how the fake stores one endpoint.
type collection struct {
	key         string
	object      string
	parentField string
	conflict    string
}

var collections = map[string]collection{
	constants.EndpointComputers:       {key: constants.KeyComputers, object: "Computer"},
	constants.EndpointPolicies:        {key: constants.KeyPolicies, object: "Policy", parentField: "parentID"},
	constants.EndpointComputerGroups:  {key: constants.KeyComputerGroups, object: "Computer group", parentField: "parentGroupID"},
	constants.EndpointRelayGroups:     {key: constants.KeyRelayGroups, object: "Relay group"},
	constants.EndpointSmartFolders:    {key: constants.KeySmartFolders, object: "Smart folder", parentField: "parentSmartFolderID"},
	constants.EndpointReportTemplates: {key: constants.KeyReportTemplates, object: "Report template"},
	constants.EndpointAdministrators:  {key: constants.KeyAdministrators, object: "Administrator"},
	constants.EndpointContacts:        {key: constants.KeyContacts, object: "Contact"},
	constants.EndpointRoles:           {key: constants.KeyRoles, object: "Role"},
	constants.EndpointScheduledTasks:  {key: constants.KeyScheduledTasks, object: "Scheduled task"},
	constants.EndpointEventBasedTasks: {key: constants.KeyEventBasedTasks, object: "Event-based task", conflict: "Name must be unique."},
}

// Request is one recorded API call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// Failure is an injected error answer.
type Failure struct {
	Status  int
	Message string
}

// Server is a fake platform. Names are unique per collection, and per
// parent for hierarchical collections; creating a duplicate answers 400 with
// an "already exists" message like the real platforms do. Creating a child
// whose parent does not exist answers 400 as well.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	apiKey   string
	nextID   int
	data     map[string]map[int]map[string]any
	failures map[string]Failure
	requests []Request
}

// New starts a fake platform that accepts apiKey. It is closed when the test
// ends.
func New(t testing.TB, apiKey string) *Server {
	t.Helper()
	s := &Server{
		apiKey:   apiKey,
		nextID:   1000,
		data:     make(map[string]map[int]map[string]any),
		failures: make(map[string]Failure),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns a configuration entry pointing at the fake.
func (s *Server) Endpoint(kind string) config.Endpoint {
	return config.Endpoint{Kind: kind, URL: s.URL, APIKey: s.apiKey}
}

// Seed stores records as they are, keyed by their "ID" field.
func (s *Server) Seed(endpoint string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		id, ok := toInt(r["ID"])
		if !ok {
			panic(fmt.Sprintf("platformtest: seed record without ID: %v", r))
		}
		s.store(endpoint)[id] = normalize(r)
		if id >= s.nextID {
			s.nextID = id + 1
		}
	}
}

// FailOn makes requests to method and path answer with the failure.
func (s *Server) FailOn(method, path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+strings.Trim(path, "/")] = f
}

// Records returns the stored records of an endpoint in ID order.
func (s *Server) Records(endpoint string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(endpoint)
}

// ByName returns the first stored record with the given name.
func (s *Server) ByName(endpoint, name string) (map[string]any, bool) {
	for _, r := range s.Records(endpoint) {
		if r["name"] == name {
			return r, true
		}
	}
	return nil, false
}

// Requests returns every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == strings.Trim(path, "/") {
			n++
		}
	}
	return n
}

func (s *Server) store(endpoint string) map[int]map[string]any {
	m, ok := s.data[endpoint]
	if !ok {
		m = make(map[int]map[string]any)
		s.data[endpoint] = m
	}
	return m
}

func (s *Server) sorted(endpoint string) []map[string]any {
	m := s.data[endpoint]
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.Trim(r.URL.Path, "/")
	var body map[string]any
	if r.Body != nil {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		_ = dec.Decode(&body)
	}
	s.requests = append(s.requests, Request{Method: r.Method, Path: path, Header: r.Header.Clone(), Body: body})

	if r.Header.Get(constants.HeaderAPISecretKey) != s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid API key."})
		return
	}
	if f, ok := s.failures[r.Method+" "+path]; ok {
		writeJSON(w, f.Status, map[string]any{"message": f.Message})
		return
	}

	parts := strings.Split(path, "/")
	// Tolerate an "api" prefix on the base URL.
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found."})
		return
	}
	endpoint := parts[0]
	coll, ok := collections[endpoint]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Unknown endpoint."})
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "search" && r.Method == http.MethodPost:
		s.search(w, endpoint, coll, body)
	case len(parts) == 1 && r.Method == http.MethodPost:
		s.create(w, endpoint, coll, body)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Method not allowed."})
	}
}

func (s *Server) search(w http.ResponseWriter, endpoint string, coll collection, body map[string]any) {
	maxItems, ok := toInt(body["maxItems"])
	if !ok || maxItems <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "maxItems is required."})
		return
	}
	criteria, _ := body["searchCriteria"].([]any)

	var page []map[string]any
	for _, rec := range s.sorted(endpoint) {
		if matches(rec, criteria) {
			page = append(page, rec)
			if len(page) == maxItems {
				break
			}
		}
	}
	if page == nil {
		page = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{coll.key: page})
}

func matches(rec map[string]any, criteria []any) bool {
	for _, raw := range criteria {
		c, _ := raw.(map[string]any)
		if test, ok := c["idTest"].(string); ok && test == "greater-than" {
			want, _ := toInt(c["idValue"])
			got, _ := toInt(rec["ID"])
			if got <= want {
				return false
			}
			continue
		}
		field, _ := c["fieldName"].(string)
		if _, ok := c["stringTest"]; ok {
			if rec[field] != c["stringValue"] {
				return false
			}
			continue
		}
		if _, ok := c["numericTest"]; ok {
			want, _ := toInt(c["numericValue"])
			got, has := toInt(rec[field])
			if !has || got != want {
				return false
			}
		}
	}
	return true
}

func (s *Server) create(w http.ResponseWriter, endpoint string, coll collection, body map[string]any) {
	if body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Body is required."})
		return
	}
	if _, ok := body["ID"]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "ID must not be set."})
		return
	}
	name, _ := body["name"].(string)

	var parent *int
	if coll.parentField != "" {
		if p, ok := toInt(body[coll.parentField]); ok {
			if _, exists := s.data[endpoint][p]; !exists {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": fmt.Sprintf("Parent %d does not exist.", p)})
				return
			}
			parent = &p
		}
	}

	for _, rec := range s.data[endpoint] {
		if name == "" || rec["name"] != name {
			continue
		}
		if coll.parentField != "" {
			p, has := toInt(rec[coll.parentField])
			sameScope := (parent == nil && !has) || (parent != nil && has && p == *parent)
			if !sameScope {
				continue
			}
		}
		msg := coll.conflict
		if msg == "" {
			msg = coll.object + " name already exists."
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": msg})
		return
	}

	id := s.nextID
	s.nextID++
	rec := normalize(body)
	rec["ID"] = json.Number(strconv.Itoa(id))
	s.store(endpoint)[id] = rec
	writeJSON(w, http.StatusOK, rec)
}

// normalize round-trips a record through JSON so stored values have the
// same shapes a decoded request body has.
func normalize(r map[string]any) map[string]any {
	data, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		panic(err)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
