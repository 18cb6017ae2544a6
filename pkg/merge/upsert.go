package merge

import (
	"context"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// Target is the part of a connector objects are written to.
type Target interface {
	Label() string
	Cache(res platform.Resource) *platform.Collection
	Create(ctx context.Context, res platform.Resource, r platform.Record) (platform.Record, error)
	FindByName(ctx context.Context, res platform.Resource, name string, parentID *int) (platform.MatchResult, error)
}

// Outcome is the result of one upsert.
type Outcome struct {
	ID      int
	Created bool // false when an existing object was found by name
}

// Upserter creates objects on a target platform and falls back to a name
// lookup when the name is already taken, which makes re-runs idempotent.
type Upserter struct {
	target Target
}

// NewUpserter creates an Upserter writing to target.
func NewUpserter(target Target) *Upserter {
	return &Upserter{target: target}
}

// Upsert creates r and returns the target ID. It implements resolve.Upserter.
func (u *Upserter) Upsert(ctx context.Context, res platform.Resource, r platform.Record) (int, error) {
	out, err := u.UpsertRecord(ctx, res, r)
	return out.ID, err
}

// UpsertRecord creates r on the target. On a duplicate name conflict the
// existing object is looked up by name, scoped to r's parent for
// hierarchical resources. Any other error is returned unchanged.
//
// The resulting object is added to the target's cache of res when that
// cache is loaded.
func (u *Upserter) UpsertRecord(ctx context.Context, res platform.Resource, r platform.Record) (Outcome, error) {
	log := logging.FromContext(ctx)
	body := r.Without(platform.FieldID)

	created, err := u.target.Create(ctx, res, body)
	if err == nil {
		id, ok := created.ID()
		if !ok {
			return Outcome{}, errors.WrapParse("json", res.Endpoint, errors.New("created object has no ID"))
		}
		u.remember(res, body, created, id)
		return Outcome{ID: id, Created: true}, nil
	}
	if !errors.IsConflict(err) {
		return Outcome{}, err
	}

	var parent *int
	if res.SearchByParent {
		if p, ok := body.IntField(res.ParentField); ok {
			parent = &p
		}
	}
	match, lookupErr := u.target.FindByName(ctx, res, body.Name(), parent)
	if lookupErr != nil {
		return Outcome{}, lookupErr
	}
	id, ok := match.Unique()
	if !ok {
		return Outcome{}, errors.WrapResource("resolve existing", res.Object, body.Name(), match.Err())
	}

	log.Debug().
		Str("name", body.Name()).
		Int("target_id", id).
		Msgf("%s already exists", res.Object)
	u.remember(res, body, nil, id)
	return Outcome{ID: id, Created: false}, nil
}

func (u *Upserter) remember(res platform.Resource, body, answer platform.Record, id int) {
	cache := u.target.Cache(res)
	if cache == nil || cache.State() != platform.Loaded {
		return
	}
	if _, ok := cache.Get(id); ok {
		return
	}
	r := answer
	if r == nil {
		r = body.Clone()
		r[platform.FieldID] = id
	}
	cache.Put(r)
}
