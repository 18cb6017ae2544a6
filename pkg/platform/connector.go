// Package platform talks to one workload security platform instance: it pages
// through collections, looks objects up by name, creates objects, and keeps
// one lazily loaded cache per collection for the duration of a run.
package platform

import (
	"context"
	"fmt"

	"github.com/workloadsec/aiomigrate/internal/transport"
	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/constants"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
)

// Filter decides whether a fetched record is kept.
type Filter func(Record) bool

// ExcludeCloudManaged drops objects that a cloud account connector owns.
// They are recreated by the connector itself on the target.
func ExcludeCloudManaged(r Record) bool {
	if v, ok := r["cloudType"]; ok && v != nil {
		return false
	}
	return r.StringField("type") != "aws-account"
}

// Connector is a handle on one configured endpoint.
type Connector struct {
	index  int
	kind   Kind
	url    string
	apiKey string
	client *transport.Client
	caches map[string]*Collection
}

// NewConnector creates a connector for the endpoint at the given 0-based
// index. Extra transport options are applied last.
func NewConnector(index int, ep config.Endpoint, timeouts config.Timeouts, opts ...transport.Option) (*Connector, error) {
	kind, err := ParseKind(ep.Kind)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("endpoint %d", index+1), err.Error(), err)
	}

	verify := kind.VerifyTLS()
	if ep.InsecureSkipVerify != nil {
		verify = !*ep.InsecureSkipVerify
	}

	c := &Connector{
		index:  index,
		kind:   kind,
		url:    ep.URL,
		apiKey: ep.APIKey,
		caches: make(map[string]*Collection, len(Cached)),
	}

	base := []transport.Option{
		transport.WithLabel(c.Label()),
		transport.WithAPIKey(ep.APIKey),
		transport.WithHeaders(kind.Headers()),
		transport.WithInsecureSkipVerify(!verify),
		transport.WithTimeouts(timeouts.Connect, timeouts.Read),
	}
	c.client = transport.New(ep.URL, transport.SecretKeyAuth(), append(base, opts...)...)

	for _, res := range Cached {
		c.caches[res.Key] = NewCollection(res.Name, func(ctx context.Context) ([]Record, error) {
			return c.fetch(ctx, res, ExcludeCloudManaged)
		})
	}
	return c, nil
}

// NewConnectors builds one connector per configured endpoint, in order.
func NewConnectors(cfg *config.Config, opts ...transport.Option) ([]*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	connectors := make([]*Connector, 0, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		c, err := NewConnector(i, ep, cfg.Timeouts, opts...)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}
	return connectors, nil
}

// Index returns the 0-based position in the configuration.
func (c *Connector) Index() int { return c.index }

// ID returns the 1-based endpoint ID shown to users.
func (c *Connector) ID() int { return c.index + 1 }

// Kind returns the platform kind.
func (c *Connector) Kind() Kind { return c.kind }

// URL returns the API base URL.
func (c *Connector) URL() string { return c.url }

// MaskedKey returns the trailing characters of the API key.
func (c *Connector) MaskedKey() string {
	return config.Endpoint{APIKey: c.apiKey}.MaskedKey()
}

// Label identifies the connector in logs, e.g. "swp#1".
func (c *Connector) Label() string {
	return fmt.Sprintf("%s#%d", c.kind, c.index+1)
}

// Cache returns the lazy cache of a resource, or nil when the resource is
// not cached.
func (c *Connector) Cache(res Resource) *Collection {
	return c.caches[res.Key]
}

// Load returns the cache of a resource, fetching it on first use.
func (c *Connector) Load(ctx context.Context, res Resource) (*Collection, error) {
	cache := c.Cache(res)
	if cache == nil {
		return nil, errors.NewValidationError("resource", res.Name, "not a cached collection")
	}
	if err := cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return cache, nil
}

type searchCriterion struct {
	FieldName    string `json:"fieldName,omitempty"`
	IDValue      *int   `json:"idValue,omitempty"`
	IDTest       string `json:"idTest,omitempty"`
	StringTest   string `json:"stringTest,omitempty"`
	StringValue  string `json:"stringValue,omitempty"`
	NumericTest  string `json:"numericTest,omitempty"`
	NumericValue *int   `json:"numericValue,omitempty"`
}

type searchRequest struct {
	MaxItems       int               `json:"maxItems"`
	SearchCriteria []searchCriterion `json:"searchCriteria"`
	SortByObjectID bool              `json:"sortByObjectID"`
}

// FetchAll pages through a collection and returns it loaded. filter may be
// nil to keep every record.
func (c *Connector) FetchAll(ctx context.Context, res Resource, filter Filter) (*Collection, error) {
	records, err := c.fetch(ctx, res, filter)
	if err != nil {
		return nil, err
	}
	return NewLoadedCollection(res.Name, records...), nil
}

func (c *Connector) fetch(ctx context.Context, res Resource, filter Filter) ([]Record, error) {
	log := logging.FromContext(ctx).With().
		Str("endpoint", c.Label()).
		Str("collection", res.Name).
		Logger()

	var records []Record
	cursor, pages, total := 0, 0, 0
	for {
		id := cursor
		req := searchRequest{
			MaxItems:       constants.PageSize,
			SearchCriteria: []searchCriterion{{IDValue: &id, IDTest: "greater-than"}},
			SortByObjectID: true,
		}

		page, err := c.search(ctx, res, req)
		if err != nil {
			return nil, errors.WrapResource("fetch", res.Name, "", err)
		}
		if len(page) == 0 {
			break
		}
		pages++
		total += len(page)

		for _, r := range page {
			if filter == nil || filter(r) {
				records = append(records, r)
			}
		}

		last, ok := page[len(page)-1].ID()
		if !ok {
			return nil, errors.WrapParse("json", res.Endpoint+"/search",
				fmt.Errorf("record without %s on page %d", FieldID, pages))
		}
		if last <= cursor {
			return nil, errors.WrapResource("fetch", res.Name, "",
				fmt.Errorf("search cursor did not advance past %d", cursor))
		}
		cursor = last
	}

	log.Debug().
		Int("pages", pages).
		Int("fetched", total).
		Int("kept", len(records)).
		Msg("Fetched collection")
	return records, nil
}

func (c *Connector) search(ctx context.Context, res Resource, req searchRequest) ([]Record, error) {
	var answer map[string]any
	if err := c.client.Post(ctx, res.Endpoint+"/search", req, &answer); err != nil {
		return nil, err
	}
	raw, ok := answer[res.Key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.WrapParse("json", res.Endpoint+"/search",
			fmt.Errorf("%q is not an array", res.Key))
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		r, ok := AsRecord(item)
		if !ok {
			return nil, errors.WrapParse("json", res.Endpoint+"/search",
				fmt.Errorf("%q holds a non-object entry", res.Key))
		}
		out = append(out, r)
	}
	return out, nil
}

// FindByName searches for objects named name, optionally scoped to a parent.
// Only resources with SearchByParent accept a parent.
func (c *Connector) FindByName(ctx context.Context, res Resource, name string, parentID *int) (MatchResult, error) {
	result := MatchResult{Resource: res.Object, Name: name}

	criteria := []searchCriterion{{FieldName: FieldName, StringTest: "equal", StringValue: name}}
	if parentID != nil {
		if !res.SearchByParent {
			return result, errors.NewValidationError("parent", *parentID,
				fmt.Sprintf("%s cannot be looked up by parent", res.Name))
		}
		pid := *parentID
		criteria = append(criteria, searchCriterion{FieldName: res.ParentField, NumericTest: "equal", NumericValue: &pid})
	}

	page, err := c.search(ctx, res, searchRequest{
		MaxItems:       constants.NameLookupMaxItems,
		SearchCriteria: criteria,
		SortByObjectID: true,
	})
	if err != nil {
		return result, errors.WrapResource("lookup", res.Object, name, err)
	}

	result.Count = len(page)
	switch {
	case len(page) == 0:
		result.Kind = NoMatch
	case len(page) > 1:
		result.Kind = AmbiguousMatch
		logging.FromContext(ctx).Warn().
			Str("endpoint", c.Label()).
			Str("name", name).
			Int("count", len(page)).
			Msgf("More than one %s matched by name", res.Object)
	default:
		id, ok := page[0].ID()
		if !ok {
			return result, errors.WrapParse("json", res.Endpoint+"/search",
				fmt.Errorf("match for %q has no %s", name, FieldID))
		}
		result.Kind = UniqueMatch
		result.ID = id
	}
	return result, nil
}

// Create posts a new object and returns the record the platform answered
// with. The source-local ID field is never sent.
func (c *Connector) Create(ctx context.Context, res Resource, r Record) (Record, error) {
	var created map[string]any
	if err := c.client.Post(ctx, res.Endpoint, r.Without(FieldID), &created); err != nil {
		return nil, err
	}
	return Record(created), nil
}
