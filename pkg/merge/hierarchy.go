package merge

import (
	"context"

	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// RecordUpserter writes one object to the target. *Upserter implements it.
type RecordUpserter interface {
	UpsertRecord(ctx context.Context, res platform.Resource, r platform.Record) (Outcome, error)
}

// PrepareFunc rewrites a copy of an object before it is written.
type PrepareFunc func(ctx context.Context, r platform.Record) (platform.Record, error)

// Hierarchy merges a parent/child collection such as computer groups or
// smart folders. An object is only written once its parent exists on the
// target, with the parent reference replaced by the target parent ID.
type Hierarchy struct {
	res      platform.Resource
	upserter RecordUpserter
	prepare  PrepareFunc
}

// HierarchyOption configures a Hierarchy.
type HierarchyOption func(*Hierarchy)

// WithPrepare sets a hook that runs on every object before it is written.
// A failing hook fails only that object and defers its descendants.
func WithPrepare(fn PrepareFunc) HierarchyOption {
	return func(h *Hierarchy) { h.prepare = fn }
}

// NewHierarchy creates a hierarchical merge for res.
func NewHierarchy(res platform.Resource, u RecordUpserter, opts ...HierarchyOption) *Hierarchy {
	h := &Hierarchy{res: res, upserter: u}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Merge writes every object of source to the target.
//
// Objects are visited in fetch order. Sweeps repeat until one places nothing
// new, so a child that comes before its parent is still placed. Whatever is
// left afterwards is reported as deferred, either as an orphan or as part of
// a parent cycle.
func (h *Hierarchy) Merge(ctx context.Context, source *platform.Collection) *Report {
	log := logging.FromContext(ctx)
	report := NewReport(h.res.Name, "", "")

	placed := make(map[int]int)
	failed := make(map[int]bool)
	pending := source.Records()

	for sweep := 1; len(pending) > 0; sweep++ {
		var next []platform.Record
		progress := 0

		for _, r := range pending {
			id, _ := r.ID()
			parent, child := h.parent(r)
			if !child {
				progress += h.place(ctx, r, id, 0, false, placed, failed, report)
				continue
			}
			if failed[parent] {
				next = append(next, r)
				continue
			}
			targetParent, ok := placed[parent]
			if !ok {
				next = append(next, r)
				continue
			}
			progress += h.place(ctx, r, id, targetParent, true, placed, failed, report)
		}

		log.Debug().
			Str("collection", h.res.Name).
			Int("sweep", sweep).
			Int("placed", progress).
			Int("pending", len(next)).
			Msg("Hierarchy sweep finished")

		pending = next
		if progress == 0 {
			break
		}
	}

	for _, r := range pending {
		id, _ := r.ID()
		parent, _ := h.parent(r)
		d := Deferred{SourceID: id, Name: r.Name(), ParentID: parent, Reason: h.classify(r, source, failed)}
		report.Deferred = append(report.Deferred, d)
		report.Remaining = append(report.Remaining, id)
		log.Warn().
			Int("source_id", id).
			Str("name", d.Name).
			Int("parent_id", parent).
			Str("reason", string(d.Reason)).
			Msgf("Cannot place %s", h.res.Object)
	}

	if n := len(report.Remaining); n > 0 {
		log.Warn().Msgf("%d %s to create", n, h.res.Name)
	}
	log.Debug().Interface("mapping", report.IDMap()).Msgf("%s mapping", h.res.Name)

	report.Finalize()
	return report
}

// place writes one object and returns 1 when it was placed.
func (h *Hierarchy) place(ctx context.Context, r platform.Record, id, targetParent int, child bool,
	placed map[int]int, failed map[int]bool, report *Report) int {
	ctx = logging.WithObject(ctx, h.res.Object, id)
	log := logging.FromContext(ctx)

	obj := r.Clone()
	if child {
		obj[h.res.ParentField] = targetParent
		log.Info().Int("target_parent_id", targetParent).Msgf("Adding child %s", h.res.Object)
	} else {
		log.Info().Msgf("Adding root %s", h.res.Object)
	}

	if h.prepare != nil {
		prepared, err := h.prepare(ctx, obj)
		if err != nil {
			h.fail(ctx, id, err, failed, report)
			return 0
		}
		obj = prepared
	}

	out, err := h.upserter.UpsertRecord(ctx, h.res, obj)
	if err != nil {
		h.fail(ctx, id, err, failed, report)
		return 0
	}
	placed[id] = out.ID
	report.placed(id, out.ID, r.Name(), out.Created)
	return 1
}

func (h *Hierarchy) fail(ctx context.Context, id int, err error, failed map[int]bool, report *Report) {
	logging.FromContext(ctx).Error().Err(err).Msgf("Failed to merge %s", h.res.Object)
	failed[id] = true
	report.fail(id, err)
	report.Remaining = append(report.Remaining, id)
}

// parent returns the source parent ID of r, and false for roots.
func (h *Hierarchy) parent(r platform.Record) (int, bool) {
	if r[h.res.ParentField] == nil {
		return 0, false
	}
	id, ok := r.IntField(h.res.ParentField)
	if !ok {
		// an unreadable parent can never be matched, which makes r an orphan
		return -1, true
	}
	return id, true
}

// classify walks the parent chain of an unplaced object.
func (h *Hierarchy) classify(r platform.Record, source *platform.Collection, failed map[int]bool) DeferReason {
	seen := make(map[int]bool)
	if id, ok := r.ID(); ok {
		seen[id] = true
	}
	for {
		parent, child := h.parent(r)
		if !child {
			// unreachable after a fixed point, roots are always attempted
			return Orphan
		}
		if failed[parent] {
			return Orphan
		}
		next, ok := source.Get(parent)
		if !ok {
			return Orphan
		}
		if seen[parent] {
			return Cycle
		}
		seen[parent] = true
		r = next
	}
}

