// Package resolve translates object references from a source platform into
// the equivalent IDs on a target platform.
//
// IDs are never comparable across platforms. Computers are matched by BIOS
// UUID, contacts by email address, and groups, smart folders and policies by
// their own name plus the name of their immediate parent. The first match in
// the target's fetch order wins.
package resolve

import (
	"context"
	"strings"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// UnsupportedRelayGroup is returned for every relay group reference. Relay
// groups cannot be matched, so callers drop whatever depends on them.
const UnsupportedRelayGroup = 0

// AuditorRole is the v1RoleName assigned to contacts created on the target.
const AuditorRole = "Auditor"

// Platform is the part of a connector the mapper uses.
type Platform interface {
	Label() string
	Load(ctx context.Context, res platform.Resource) (*platform.Collection, error)
	Create(ctx context.Context, res platform.Resource, r platform.Record) (platform.Record, error)
}

// Upserter creates an object on the target, or finds it when it exists.
type Upserter interface {
	Upsert(ctx context.Context, res platform.Resource, r platform.Record) (int, error)
}

// Mapper resolves source references against the cached collections of both
// platforms.
type Mapper struct {
	source       Platform
	target       Platform
	upserter     Upserter
	policySuffix string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithPolicySuffix strips suffix from target policy names before comparing.
func WithPolicySuffix(suffix string) Option {
	return func(m *Mapper) { m.policySuffix = suffix }
}

// WithUpserter sets how missing contacts are created on the target.
func WithUpserter(u Upserter) Option {
	return func(m *Mapper) { m.upserter = u }
}

// New creates a mapper from source to target.
func New(source, target Platform, opts ...Option) *Mapper {
	m := &Mapper{source: source, target: target}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PolicySuffix returns the configured policy name suffix.
func (m *Mapper) PolicySuffix() string {
	return m.policySuffix
}

// ComputerID maps a computer by BIOS UUID.
func (m *Mapper) ComputerID(ctx context.Context, sourceID int) (int, error) {
	src, tgt, err := m.load(ctx, platform.Computers)
	if err != nil {
		return 0, err
	}

	rec, ok := src.Get(sourceID)
	if !ok {
		return 0, errors.NewMappingError(platform.Computers.Object, sourceID, "not found on source")
	}
	uuid := rec.StringField("biosUUID")
	if uuid == "" {
		return 0, errors.NewMappingError(platform.Computers.Object, sourceID, "no biosUUID")
	}

	match, ok := tgt.Find(func(r platform.Record) bool {
		return r.StringField("biosUUID") == uuid
	})
	if !ok {
		return 0, errors.NewMappingError(platform.Computers.Object, sourceID, "")
	}
	return m.matched(ctx, platform.Computers, sourceID, match)
}

// ComputerGroupID maps a computer group by name and parent name.
func (m *Mapper) ComputerGroupID(ctx context.Context, sourceID int) (int, error) {
	return m.byNameAndParent(ctx, platform.ComputerGroups, sourceID, "")
}

// SmartFolderID maps a smart folder by name and parent name.
func (m *Mapper) SmartFolderID(ctx context.Context, sourceID int) (int, error) {
	return m.byNameAndParent(ctx, platform.SmartFolders, sourceID, "")
}

// PolicyID maps a policy by name and parent name, with the policy suffix
// stripped from target names.
func (m *Mapper) PolicyID(ctx context.Context, sourceID int) (int, error) {
	return m.byNameAndParent(ctx, platform.Policies, sourceID, m.policySuffix)
}

// RelayGroupID always resolves to UnsupportedRelayGroup.
func (m *Mapper) RelayGroupID(ctx context.Context, sourceID int) int {
	logging.FromContext(ctx).Warn().
		Int("source_id", sourceID).
		Msg("Mapping of relay groups is not supported")
	return UnsupportedRelayGroup
}

// AdministratorIDs always resolves to nil. Administrator accounts are not
// migrated, so references to them are dropped.
func (m *Mapper) AdministratorIDs(ctx context.Context, sourceIDs []int) []int {
	if len(sourceIDs) > 0 {
		logging.FromContext(ctx).Warn().
			Ints("administrator_ids", sourceIDs).
			Msg("Unable to match administrators, ignored")
	}
	return nil
}

// ContactIDs maps contacts by email address. Contacts missing on the target
// are created there with the Auditor role and added to its contact cache.
// Source contacts without an email address are skipped.
func (m *Mapper) ContactIDs(ctx context.Context, sourceIDs []int) ([]int, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	src, tgt, err := m.load(ctx, platform.Contacts)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	ids := make([]int, 0, len(sourceIDs))
	for _, sourceID := range sourceIDs {
		rec, ok := src.Get(sourceID)
		if !ok {
			return nil, errors.NewMappingError(platform.Contacts.Object, sourceID, "not found on source")
		}
		email := rec.StringField("emailAddress")
		if email == "" {
			log.Warn().Int("source_id", sourceID).Msg("Contact has no email address, skipped")
			continue
		}

		if match, ok := tgt.Find(func(r platform.Record) bool {
			return r.StringField("emailAddress") == email
		}); ok {
			id, err := m.matched(ctx, platform.Contacts, sourceID, match)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
			continue
		}

		id, err := m.createContact(ctx, rec, tgt)
		if err != nil {
			return nil, errors.WrapResource("create", platform.Contacts.Object, email, err)
		}
		log.Info().Int("target_id", id).Str("email", email).Msg("Contact created")
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Mapper) createContact(ctx context.Context, source platform.Record, cache *platform.Collection) (int, error) {
	contact := source.Clone().Without(platform.FieldID, "roleID")
	if roleID, ok := m.auditorRole(ctx); ok {
		contact["roleID"] = roleID
	}

	var id int
	if m.upserter != nil {
		var err error
		if id, err = m.upserter.Upsert(ctx, platform.Contacts, contact); err != nil {
			return 0, err
		}
	} else {
		created, err := m.target.Create(ctx, platform.Contacts, contact)
		if err != nil {
			return 0, err
		}
		var found bool
		if id, found = created.ID(); !found {
			return 0, errors.NewValidationError("ID", nil, "created contact has no ID")
		}
	}

	if _, cached := cache.Get(id); !cached {
		contact[platform.FieldID] = id
		cache.Put(contact)
	}
	return id, nil
}

// auditorRole looks up the target role assigned to created contacts. A
// target without roles or without an Auditor role leaves roleID unset.
func (m *Mapper) auditorRole(ctx context.Context) (int, bool) {
	roles, err := m.target.Load(ctx, platform.Roles)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Unable to load target roles")
		return 0, false
	}
	role, ok := roles.Find(func(r platform.Record) bool {
		return r.StringField("v1RoleName") == AuditorRole
	})
	if !ok {
		return 0, false
	}
	return role.ID()
}

func (m *Mapper) byNameAndParent(ctx context.Context, res platform.Resource, sourceID int, suffix string) (int, error) {
	src, tgt, err := m.load(ctx, res)
	if err != nil {
		return 0, err
	}

	rec, ok := src.Get(sourceID)
	if !ok {
		return 0, errors.NewMappingError(res.Object, sourceID, "not found on source")
	}
	name := rec.Name()
	srcParent, hasParent, ok := parentName(src, rec, res.ParentField, "")
	if !ok {
		return 0, errors.NewMappingError(res.Object, sourceID, "parent not found on source")
	}

	match, ok := tgt.Find(func(r platform.Record) bool {
		if strings.TrimSuffix(r.Name(), suffix) != name {
			return false
		}
		tp, tHas, ok := parentName(tgt, r, res.ParentField, suffix)
		return ok && tHas == hasParent && tp == srcParent
	})
	if !ok {
		return 0, errors.NewMappingError(res.Object, sourceID, "")
	}
	return m.matched(ctx, res, sourceID, match)
}

// parentName returns the suffix-stripped name of r's parent. ok is false
// when the parent is referenced but missing from the collection.
func parentName(coll *platform.Collection, r platform.Record, field, suffix string) (name string, has bool, ok bool) {
	parentID, has := r.IntField(field)
	if !has {
		return "", false, true
	}
	parent, found := coll.Get(parentID)
	if !found {
		return "", true, false
	}
	return strings.TrimSuffix(parent.Name(), suffix), true, true
}

func (m *Mapper) load(ctx context.Context, res platform.Resource) (*platform.Collection, *platform.Collection, error) {
	src, err := m.source.Load(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	tgt, err := m.target.Load(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	return src, tgt, nil
}

func (m *Mapper) matched(ctx context.Context, res platform.Resource, sourceID int, match platform.Record) (int, error) {
	id, ok := match.ID()
	if !ok {
		return 0, errors.NewMappingError(res.Object, sourceID, "target match has no ID")
	}
	logging.FromContext(ctx).Debug().
		Str("kind", res.Object).
		Int("source_id", sourceID).
		Int("target_id", id).
		Msg("Successful match")
	return id, nil
}
