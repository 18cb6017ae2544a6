package platform

import (
	"context"
	"sync"
)

// State of a Collection.
type State int

const (
	// Empty collections have not been fetched yet.
	Empty State = iota
	// Loaded collections hold the result of their single fetch.
	Loaded
)

// String returns the state name.
func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "empty"
}

// LoadFunc fetches the records of a collection.
type LoadFunc func(ctx context.Context) ([]Record, error)

// Collection is an ordered ID to Record mapping. Iteration follows insertion
// order, which for fetched collections is the platform's fetch order.
//
// A collection is fetched at most once. After a successful EnsureLoaded it is
// never refreshed; objects created later in the run are added with Put.
type Collection struct {
	mu    sync.RWMutex
	name  string
	state State
	load  LoadFunc
	order []int
	items map[int]Record
}

// NewCollection creates an empty collection that fetches with load.
func NewCollection(name string, load LoadFunc) *Collection {
	return &Collection{
		name:  name,
		load:  load,
		items: make(map[int]Record),
	}
}

// NewLoadedCollection creates a loaded collection from records. Records
// without an ID are ignored.
func NewLoadedCollection(name string, records ...Record) *Collection {
	c := NewCollection(name, nil)
	c.state = Loaded
	for _, r := range records {
		c.put(r)
	}
	return c
}

// Name returns the collection name, e.g. "computer groups".
func (c *Collection) Name() string {
	return c.name
}

// State returns the load state.
func (c *Collection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// EnsureLoaded fetches the collection if it is still empty. A failed fetch
// leaves it empty so the error surfaces again on the next call.
func (c *Collection) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Loaded {
		return nil
	}
	if c.load == nil {
		c.state = Loaded
		return nil
	}

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		c.put(r)
	}
	c.state = Loaded
	return nil
}

// Put inserts or replaces a record, keeping its original position when it
// already exists. Put on an empty collection is a no-op so a later load is
// not shadowed by a partial view.
func (c *Collection) Put(r Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Loaded {
		return false
	}
	return c.put(r)
}

func (c *Collection) put(r Record) bool {
	id, ok := r.ID()
	if !ok {
		return false
	}
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = r
	return true
}

// Get returns the record with the given ID.
func (c *Collection) Get(id int) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[id]
	return r, ok
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// IDs returns the record IDs in insertion order.
func (c *Collection) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.order...)
}

// Records returns the records in insertion order.
func (c *Collection) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Find returns the first record, in insertion order, accepted by match.
// match may read from the collection itself.
func (c *Collection) Find(match func(Record) bool) (Record, bool) {
	for _, r := range c.Records() {
		if match(r) {
			return r, true
		}
	}
	return nil, false
}
