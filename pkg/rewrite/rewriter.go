// Package rewrite replaces the source platform references embedded in tasks
// and smart folder rules with their target platform equivalents.
package rewrite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// Resolver maps single references. *resolve.Mapper implements it.
type Resolver interface {
	ComputerFilter(ctx context.Context, filter platform.Record) (platform.Record, error)
	Recipients(ctx context.Context, recipients platform.Record) (platform.Record, error)
	ComputerGroupID(ctx context.Context, sourceID int) (int, error)
	PolicyID(ctx context.Context, sourceID int) (int, error)
	RelayGroupID(ctx context.Context, sourceID int) int
}

// FieldKind is the shape of a reference inside a parameter block.
type FieldKind int

const (
	// ComputerFilter is a nested filter object.
	ComputerFilter FieldKind = iota
	// Recipients is a nested recipients object.
	Recipients
	// ComputerGroup is a bare computer group ID.
	ComputerGroup
)

// Field is one reference-carrying field of a parameter block.
type Field struct {
	Name string
	Kind FieldKind
}

// Block is a scheduled task parameter block and the fields it may embed,
// in the order they are rewritten.
type Block struct {
	Name   string
	Fields []Field
}

var (
	filterField     = Field{Name: "computerFilter", Kind: ComputerFilter}
	recipientsField = Field{Name: "recipients", Kind: Recipients}
	groupField      = Field{Name: "computerGroupID", Kind: ComputerGroup}
)

// ScheduledBlocks lists every known scheduled task parameter block.
var ScheduledBlocks = []Block{
	{Name: "checkForSecurityUpdatesTaskParameters", Fields: []Field{filterField}},
	{Name: "discoverComputersTaskParameters", Fields: []Field{filterField}},
	{Name: "generateReportTaskParameters", Fields: []Field{recipientsField, filterField}},
	{Name: "scanForIntegrityChangesTaskParameters", Fields: []Field{filterField}},
	{Name: "scanForMalwareTaskParameters", Fields: []Field{filterField}},
	{Name: "scanForOpenPortsTaskParameters", Fields: []Field{filterField}},
	{Name: "scanForRecommendationsTaskParameters", Fields: []Field{filterField}},
	{Name: "sendAlertSummaryTaskParameters", Fields: []Field{recipientsField}},
	{Name: "sendPolicyTaskParameters", Fields: []Field{filterField}},
	{Name: "synchronizeCloudAccountTaskParameters", Fields: []Field{groupField}},
	{Name: "synchronizeDirectoryTaskParameters", Fields: []Field{groupField}},
	{Name: "synchronizeVCenterTaskParameters", Fields: []Field{groupField}},
	{Name: "updateSuspiciousObjectsListTaskParameters", Fields: []Field{filterField}},
	{Name: "scheduledAgentUpgradeTaskParameters", Fields: []Field{filterField}},
	{Name: "installV1AgentParameters", Fields: []Field{filterField}},
}

// Event-based task action types that carry a reference.
const (
	ActionAssignPolicy = "assign-policy"
	ActionAssignGroup  = "assign-group"
	ActionAssignRelay  = "assign-relay"
)

// unsupportedScheduled lists scheduled task types a target kind rejects.
var unsupportedScheduled = map[platform.Kind]map[string]bool{
	platform.KindSWP: {"check-for-software-updates": true},
}

// Rewriter rewrites objects bound for one target platform.
type Rewriter struct {
	resolver   Resolver
	targetKind platform.Kind
	blocks     map[string]Block
}

// New creates a rewriter that resolves references with r for a target of
// the given kind.
func New(r Resolver, targetKind platform.Kind) *Rewriter {
	blocks := make(map[string]Block, len(ScheduledBlocks))
	for _, b := range ScheduledBlocks {
		blocks[b.Name] = b
	}
	return &Rewriter{resolver: r, targetKind: targetKind, blocks: blocks}
}

// Supported returns an *errors.UnsupportedError when the target kind cannot
// hold a scheduled task of this type.
func (rw *Rewriter) Supported(task platform.Record) error {
	taskType := task.StringField("type")
	if unsupportedScheduled[rw.targetKind][taskType] {
		return &errors.UnsupportedError{Feature: "scheduled task type " + taskType, Platform: rw.targetKind.String()}
	}
	return nil
}

// ScheduledTask returns a copy of task with every known parameter block
// rewritten. The first reference that cannot be mapped aborts the task.
func (rw *Rewriter) ScheduledTask(ctx context.Context, task platform.Record) (platform.Record, error) {
	if err := rw.Supported(task); err != nil {
		return nil, err
	}

	out := task.Clone()
	for _, b := range ScheduledBlocks {
		params, ok := out.Map(b.Name)
		if !ok {
			continue
		}
		for _, f := range b.Fields {
			if err := rw.rewriteField(ctx, params, f); err != nil {
				return nil, err
			}
		}
		out[b.Name] = params
	}
	return out, nil
}

func (rw *Rewriter) rewriteField(ctx context.Context, params platform.Record, f Field) error {
	if params[f.Name] == nil {
		return nil
	}

	switch f.Kind {
	case ComputerFilter:
		filter, ok := params.Map(f.Name)
		if !ok {
			return errors.NewValidationError(f.Name, params[f.Name], "expected an object")
		}
		mapped, err := rw.resolver.ComputerFilter(ctx, filter)
		if err != nil {
			return err
		}
		params[f.Name] = mapped
	case Recipients:
		recipients, ok := params.Map(f.Name)
		if !ok {
			return errors.NewValidationError(f.Name, params[f.Name], "expected an object")
		}
		mapped, err := rw.resolver.Recipients(ctx, recipients)
		if err != nil {
			return err
		}
		params[f.Name] = mapped
	case ComputerGroup:
		sourceID, ok := params.IntField(f.Name)
		if !ok {
			return errors.NewValidationError(f.Name, params[f.Name], "expected a numeric ID")
		}
		targetID, err := rw.resolver.ComputerGroupID(ctx, sourceID)
		if err != nil {
			return err
		}
		params[f.Name] = targetID
	}
	return nil
}

// EventBasedTask returns a copy of task with policy and group assignments
// mapped. Relay assignments cannot be mapped and are removed. Conditions
// and other actions are copied unchanged.
func (rw *Rewriter) EventBasedTask(ctx context.Context, task platform.Record) (platform.Record, error) {
	out := task.Clone()
	log := logging.FromContext(ctx)

	actions, _ := out.Slice("actions")
	kept := make([]any, 0, len(actions))
	for _, raw := range actions {
		action, ok := platform.AsRecord(raw)
		if !ok {
			return nil, errors.NewValidationError("actions", raw, "expected an object")
		}

		actionType := action.StringField("type")
		sourceID, hasValue := action.IntField("parameterValue")
		idAction := actionType == ActionAssignPolicy || actionType == ActionAssignGroup
		if idAction && !hasValue && action["parameterValue"] != nil {
			return nil, errors.NewValidationError("parameterValue", action["parameterValue"],
				fmt.Sprintf("%s action value is not an ID", actionType))
		}
		switch actionType {
		case ActionAssignRelay:
			if hasValue {
				rw.resolver.RelayGroupID(ctx, sourceID)
			}
			log.Warn().Str("task", task.Name()).Msg("Relay group assignment removed from event-based task")
			continue
		case ActionAssignPolicy:
			if hasValue {
				targetID, err := rw.resolver.PolicyID(ctx, sourceID)
				if err != nil {
					return nil, err
				}
				action["parameterValue"] = targetID
			}
		case ActionAssignGroup:
			if hasValue {
				targetID, err := rw.resolver.ComputerGroupID(ctx, sourceID)
				if err != nil {
					return nil, err
				}
				action["parameterValue"] = targetID
			}
		}
		kept = append(kept, action)
	}
	out["actions"] = kept

	conditions, _ := out.Slice("conditions")
	if conditions == nil {
		conditions = []any{}
	}
	out["conditions"] = conditions
	return out, nil
}

// GeneralPolicyRule is the smart folder rule key whose value is a policy ID.
const GeneralPolicyRule = "general-policy"

// SmartFolder returns a copy of folder whose general-policy rules reference
// target policies. Rule values are policy IDs, usually encoded as strings;
// numeric values keep their form.
func (rw *Rewriter) SmartFolder(ctx context.Context, folder platform.Record) (platform.Record, error) {
	out := folder.Clone()

	groups, _ := out.Slice("ruleGroups")
	for _, rawGroup := range groups {
		group, ok := platform.AsRecord(rawGroup)
		if !ok {
			continue
		}
		rules, _ := group.Slice("rules")
		for _, rawRule := range rules {
			rule, ok := platform.AsRecord(rawRule)
			if !ok || rule.StringField("key") != GeneralPolicyRule {
				continue
			}
			sourceID, numeric := platform.AsInt(rule["value"])
			if !numeric {
				id, err := strconv.Atoi(rule.StringField("value"))
				if err != nil {
					return nil, errors.NewValidationError("value", rule["value"], "general-policy rule value is not a policy ID")
				}
				sourceID = id
			}
			targetID, err := rw.resolver.PolicyID(ctx, sourceID)
			if err != nil {
				return nil, err
			}
			if numeric {
				rule["value"] = targetID
			} else {
				rule["value"] = strconv.Itoa(targetID)
			}
		}
	}
	return out, nil
}
