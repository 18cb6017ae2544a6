// Package merge copies computer groups, smart folders, scheduled tasks and
// event-based tasks from a source platform to a target platform.
//
// Merges are one-way and idempotent: objects that already exist on the
// target under the same name (and parent) are reused, never duplicated.
// Per-object failures are reported and do not stop the run; failures to
// fetch a whole collection do.
package merge

import (
	"context"

	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
	"github.com/workloadsec/aiomigrate/pkg/resolve"
	"github.com/workloadsec/aiomigrate/pkg/rewrite"
)

// Platform is everything a merge needs from a connector.
// *platform.Connector implements it.
type Platform interface {
	Target
	Kind() platform.Kind
	Load(ctx context.Context, res platform.Resource) (*platform.Collection, error)
	FetchAll(ctx context.Context, res platform.Resource, filter platform.Filter) (*platform.Collection, error)
}

// Source returns the objects of res on p as they would be merged: cached
// collections through the connector cache, tasks by a fresh fetch. Cloud
// managed objects are left out either way.
func Source(ctx context.Context, p Platform, res platform.Resource) (*platform.Collection, error) {
	if p.Cache(res) != nil {
		return p.Load(ctx, res)
	}
	return p.FetchAll(ctx, res, platform.ExcludeCloudManaged)
}

// Groups merges computer groups from source to target.
func Groups(ctx context.Context, source, target Platform, opts ...Option) (*Report, error) {
	ctx = scope(ctx, source, target, platform.ComputerGroups)
	groups, err := Source(ctx, source, platform.ComputerGroups)
	if err != nil {
		return nil, err
	}
	h := NewHierarchy(platform.ComputerGroups, NewUpserter(target))
	return labeled(h.Merge(ctx, groups), source, target), nil
}

// Folders merges smart folders from source to target, translating the
// policy references in their rules.
func Folders(ctx context.Context, source, target Platform, opts ...Option) (*Report, error) {
	ctx = scope(ctx, source, target, platform.SmartFolders)
	folders, err := Source(ctx, source, platform.SmartFolders)
	if err != nil {
		return nil, err
	}
	rw := rewriter(source, target, opts...)
	h := NewHierarchy(platform.SmartFolders, NewUpserter(target), WithPrepare(rw.SmartFolder))
	return labeled(h.Merge(ctx, folders), source, target), nil
}

// ScheduledTasks merges scheduled tasks from source to target.
func ScheduledTasks(ctx context.Context, source, target Platform, opts ...Option) (*Report, error) {
	ctx = scope(ctx, source, target, platform.ScheduledTasks)
	tasks, err := Source(ctx, source, platform.ScheduledTasks)
	if err != nil {
		return nil, err
	}
	rw := rewriter(source, target, opts...)
	t := NewTasks(platform.ScheduledTasks, rw.ScheduledTask, NewUpserter(target), opts...)
	return labeled(t.Merge(ctx, tasks), source, target), nil
}

// EventBasedTasks merges event-based tasks from source to target.
func EventBasedTasks(ctx context.Context, source, target Platform, opts ...Option) (*Report, error) {
	ctx = scope(ctx, source, target, platform.EventBasedTasks)
	tasks, err := Source(ctx, source, platform.EventBasedTasks)
	if err != nil {
		return nil, err
	}
	rw := rewriter(source, target, opts...)
	t := NewTasks(platform.EventBasedTasks, rw.EventBasedTask, NewUpserter(target), opts...)
	return labeled(t.Merge(ctx, tasks), source, target), nil
}

func rewriter(source, target Platform, opts ...Option) *rewrite.Rewriter {
	o := Defaults().Apply(opts...)
	m := resolve.New(source, target,
		resolve.WithPolicySuffix(o.PolicySuffix),
		resolve.WithUpserter(NewUpserter(target)),
	)
	return rewrite.New(m, target.Kind())
}

func scope(ctx context.Context, source, target Platform, res platform.Resource) context.Context {
	return logging.WithFields(ctx, map[string]any{
		"source": source.Label(),
		"target": target.Label(),
		"merge":  res.Name,
	})
}

func labeled(r *Report, source, target Platform) *Report {
	r.Source = source.Label()
	r.Target = target.Label()
	return r
}
