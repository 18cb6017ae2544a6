package resolve

import (
	"context"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// Computer filter fields.
const (
	FieldFilterType    = "type"
	FieldComputerID    = "computerID"
	FieldComputerGroup = "computerGroupID"
	FieldPolicyID      = "policyID"
	FieldSmartFolderID = "smartFolderID"
)

// Recipients fields.
const (
	FieldAllRecipients    = "allAdministratorsAndContacts"
	FieldAdministratorIDs = "administratorIDs"
	FieldContactIDs       = "contactIDs"
)

// ComputerFilter returns a copy of filter whose computer, group, policy and
// smart folder references point at target objects. A nil filter maps to nil.
func (m *Mapper) ComputerFilter(ctx context.Context, filter platform.Record) (platform.Record, error) {
	if filter == nil {
		return nil, nil
	}

	out := platform.Record{FieldFilterType: filter.StringField(FieldFilterType)}
	for _, ref := range []struct {
		field string
		fn    func(context.Context, int) (int, error)
	}{
		{FieldComputerID, m.ComputerID},
		{FieldComputerGroup, m.ComputerGroupID},
		{FieldPolicyID, m.PolicyID},
		{FieldSmartFolderID, m.SmartFolderID},
	} {
		sourceID, ok := filter.IntField(ref.field)
		if !ok {
			continue
		}
		targetID, err := ref.fn(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		out[ref.field] = targetID
	}
	return out, nil
}

// Recipients returns a copy of a recipients block with contacts mapped and
// administrators dropped. allAdministratorsAndContacts defaults to true.
func (m *Mapper) Recipients(ctx context.Context, recipients platform.Record) (platform.Record, error) {
	if recipients == nil {
		return nil, nil
	}

	all := true
	if v, ok := recipients[FieldAllRecipients].(bool); ok {
		all = v
	}
	out := platform.Record{FieldAllRecipients: all}

	if recipients.Has(FieldAdministratorIDs) {
		admins, err := intList(recipients, FieldAdministratorIDs)
		if err != nil {
			return nil, err
		}
		if ids := m.AdministratorIDs(ctx, admins); ids != nil {
			out[FieldAdministratorIDs] = ids
		}
	}

	if recipients.Has(FieldContactIDs) {
		contacts, err := intList(recipients, FieldContactIDs)
		if err != nil {
			return nil, err
		}
		ids, err := m.ContactIDs(ctx, contacts)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			out[FieldContactIDs] = ids
		}
	}
	return out, nil
}

func intList(r platform.Record, field string) ([]int, error) {
	if r[field] == nil {
		return nil, nil
	}
	raw, ok := r.Slice(field)
	if !ok {
		return nil, errors.NewValidationError(field, r[field], "expected a list of IDs")
	}
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, ok := platform.AsInt(v)
		if !ok {
			return nil, errors.NewValidationError(field, v, "expected a numeric ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
