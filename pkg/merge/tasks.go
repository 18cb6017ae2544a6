package merge

import (
	"context"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// Tasks merges a flat task collection. Every task is handled on its own:
// a failure only leaves that task in Remaining.
type Tasks struct {
	res      platform.Resource
	rewrite  PrepareFunc
	upserter RecordUpserter
	prefix   string
}

// NewTasks creates a task merge for res. rewrite translates the references
// of one task; it may return an *errors.UnsupportedError to skip the task.
func NewTasks(res platform.Resource, rewrite PrepareFunc, u RecordUpserter, opts ...Option) *Tasks {
	o := Defaults().Apply(opts...)
	return &Tasks{res: res, rewrite: rewrite, upserter: u, prefix: o.TaskPrefix}
}

// Merge writes every task of source to the target in fetch order.
func (t *Tasks) Merge(ctx context.Context, source *platform.Collection) *Report {
	log := logging.FromContext(ctx)
	report := NewReport(t.res.Name, "", "")

	log.Debug().Str("task_prefix", t.prefix).Msgf("Merging %s", t.res.Name)
	for _, task := range source.Records() {
		id, _ := task.ID()
		t.merge(logging.WithObject(ctx, t.res.Object, id), id, task, report)
	}

	log.Debug().Ints("merged", report.Merged()).Ints("remaining", report.Remaining).Msgf("Merged %s", t.res.Name)
	if n := len(report.Remaining); n > 0 {
		log.Warn().Msgf("%d %s to create", n, t.res.Name)
	}
	report.Finalize()
	return report
}

func (t *Tasks) merge(ctx context.Context, id int, task platform.Record, report *Report) {
	log := logging.FromContext(ctx)
	log.Info().Str("name", task.Name()).Msgf("Processing %s", t.res.Object)

	named := task.Clone()
	named[platform.FieldName] = t.prefix + task.Name()

	rewritten, err := t.rewrite(ctx, named)
	if err != nil {
		if errors.IsUnsupported(err) {
			log.Info().Str("reason", err.Error()).Msgf("Skipping %s", t.res.Object)
			report.skip(id, task.Name(), err.Error())
			return
		}
		log.Error().Err(err).Msgf("Failed to rewrite %s", t.res.Object)
		report.fail(id, err)
		report.Remaining = append(report.Remaining, id)
		return
	}

	log.Info().Str("name", rewritten.Name()).Msgf("Adding %s", t.res.Object)
	out, err := t.upserter.UpsertRecord(ctx, t.res, rewritten)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to add %s", t.res.Object)
		report.fail(id, err)
		report.Remaining = append(report.Remaining, id)
		return
	}
	report.placed(id, out.ID, rewritten.Name(), out.Created)
}
