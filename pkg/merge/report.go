package merge

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Pair maps one source object to its target equivalent.
type Pair struct {
	SourceID int    `json:"source_id" yaml:"source_id"`
	TargetID int    `json:"target_id" yaml:"target_id"`
	Name     string `json:"name" yaml:"name"`
	Created  bool   `json:"created" yaml:"created"`
}

// Skip records an object that was deliberately not migrated.
type Skip struct {
	SourceID int    `json:"source_id" yaml:"source_id"`
	Name     string `json:"name" yaml:"name"`
	Reason   string `json:"reason" yaml:"reason"`
}

// DeferReason explains why a hierarchical object could not be placed.
type DeferReason string

const (
	// Orphan objects reference a parent that is missing from the source or
	// that failed to migrate.
	Orphan DeferReason = "orphan"
	// Cycle objects are part of a parent chain that loops.
	Cycle DeferReason = "cycle"
)

// Deferred is a hierarchical object left unplaced after the merge.
type Deferred struct {
	SourceID int         `json:"source_id" yaml:"source_id"`
	Name     string      `json:"name" yaml:"name"`
	ParentID int         `json:"parent_id" yaml:"parent_id"`
	Reason   DeferReason `json:"reason" yaml:"reason"`
}

// Report is the outcome of merging one collection.
type Report struct {
	Kind   string `json:"kind" yaml:"kind"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	Mapping   []Pair         `json:"mapping" yaml:"mapping"`
	Remaining []int          `json:"remaining" yaml:"remaining"`
	Skipped   []Skip         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Deferred  []Deferred     `json:"deferred,omitempty" yaml:"deferred,omitempty"`
	Failures  map[int]error  `json:"-" yaml:"-"`
	Errors    map[int]string `json:"errors,omitempty" yaml:"errors,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
	start    time.Time
}

// NewReport starts a report for kind.
func NewReport(kind, source, target string) *Report {
	return &Report{
		Kind:     kind,
		Source:   source,
		Target:   target,
		Failures: make(map[int]error),
		start:    time.Now(),
	}
}

func (r *Report) placed(sourceID, targetID int, name string, created bool) {
	r.Mapping = append(r.Mapping, Pair{SourceID: sourceID, TargetID: targetID, Name: name, Created: created})
}

func (r *Report) fail(sourceID int, err error) {
	r.Failures[sourceID] = err
}

func (r *Report) skip(sourceID int, name, reason string) {
	r.Skipped = append(r.Skipped, Skip{SourceID: sourceID, Name: name, Reason: reason})
}

// Finalize stamps the duration and fills the derived fields.
func (r *Report) Finalize() {
	r.Duration = time.Since(r.start)
	r.Errors = make(map[int]string, len(r.Failures))
	for id, err := range r.Failures {
		r.Errors[id] = err.Error()
	}
	sort.Ints(r.Remaining)
}

// TargetID returns the target ID a source object was mapped to.
func (r *Report) TargetID(sourceID int) (int, bool) {
	for _, p := range r.Mapping {
		if p.SourceID == sourceID {
			return p.TargetID, true
		}
	}
	return 0, false
}

// IDMap returns the source to target ID mapping.
func (r *Report) IDMap() map[int]int {
	m := make(map[int]int, len(r.Mapping))
	for _, p := range r.Mapping {
		m[p.SourceID] = p.TargetID
	}
	return m
}

// Merged returns the target IDs of every migrated object.
func (r *Report) Merged() []int {
	ids := make([]int, 0, len(r.Mapping))
	for _, p := range r.Mapping {
		ids = append(ids, p.TargetID)
	}
	return ids
}

// Created returns how many objects were newly created on the target.
func (r *Report) Created() int {
	n := 0
	for _, p := range r.Mapping {
		if p.Created {
			n++
		}
	}
	return n
}

// HasRemaining returns true when some objects still need attention.
func (r *Report) HasRemaining() bool {
	return len(r.Remaining) > 0
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	merged := len(r.Mapping)
	created := r.Created()
	summary := fmt.Sprintf("%s: %d merged (%d created, %d existing), %d remaining",
		r.Kind, merged, created, merged-created, len(r.Remaining))

	var extra []string
	if len(r.Skipped) > 0 {
		extra = append(extra, fmt.Sprintf("%d skipped", len(r.Skipped)))
	}
	if len(r.Deferred) > 0 {
		orphans, cycles := 0, 0
		for _, d := range r.Deferred {
			if d.Reason == Cycle {
				cycles++
			} else {
				orphans++
			}
		}
		extra = append(extra, fmt.Sprintf("%d orphaned, %d in cycles", orphans, cycles))
	}
	if len(extra) > 0 {
		summary += ", " + strings.Join(extra, ", ")
	}
	return summary
}
