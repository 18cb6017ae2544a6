package platform

import (
	"fmt"

	"github.com/workloadsec/aiomigrate/pkg/errors"
)

// MatchKind classifies a name lookup.
type MatchKind int

const (
	// NoMatch means no object had the name.
	NoMatch MatchKind = iota
	// UniqueMatch means exactly one object had the name.
	UniqueMatch
	// AmbiguousMatch means two or more objects had the name.
	AmbiguousMatch
)

// String returns the match kind name.
func (k MatchKind) String() string {
	switch k {
	case UniqueMatch:
		return "unique"
	case AmbiguousMatch:
		return "ambiguous"
	default:
		return "not found"
	}
}

// MatchResult is the outcome of a name lookup. Callers decide whether an
// ambiguous result is fatal.
type MatchResult struct {
	Kind     MatchKind
	ID       int
	Count    int
	Resource string
	Name     string
}

// Unique returns the matched ID when exactly one object matched.
func (m MatchResult) Unique() (int, bool) {
	return m.ID, m.Kind == UniqueMatch
}

// Err converts a non-unique result to an error.
func (m MatchResult) Err() error {
	switch m.Kind {
	case UniqueMatch:
		return nil
	case AmbiguousMatch:
		return &errors.AmbiguousError{Resource: m.Resource, Name: m.Name, Count: m.Count}
	default:
		return errors.NewNotFoundError(m.Resource, fmt.Sprintf("named %q", m.Name))
	}
}
