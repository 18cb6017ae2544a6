package platform

import "github.com/workloadsec/aiomigrate/pkg/constants"

// Resource names a platform collection: the endpoint it is searched at and
// the key of the result array in search answers.
type Resource struct {
	// Name is the human readable plural, used in logs and errors.
	Name string
	// Object is the singular of Name.
	Object   string
	Endpoint string
	Key      string

	// ParentField holds the parent ID of hierarchical objects.
	ParentField string

	// SearchByParent is set when name lookups may be scoped to a parent.
	SearchByParent bool
}

// The collections aiomigrate reads or writes.
var (
	Computers = Resource{Name: "computers", Object: "computer", Endpoint: constants.EndpointComputers, Key: constants.KeyComputers}
	Policies  = Resource{
		Name:        "policies",
		Object:      "policy",
		Endpoint:    constants.EndpointPolicies,
		Key:         constants.KeyPolicies,
		ParentField: "parentID",
	}
	ComputerGroups = Resource{
		Name:           "computer groups",
		Object:         "computer group",
		Endpoint:       constants.EndpointComputerGroups,
		Key:            constants.KeyComputerGroups,
		ParentField:    "parentGroupID",
		SearchByParent: true,
	}
	RelayGroups  = Resource{Name: "relay groups", Object: "relay group", Endpoint: constants.EndpointRelayGroups, Key: constants.KeyRelayGroups}
	SmartFolders = Resource{
		Name:           "smart folders",
		Object:         "smart folder",
		Endpoint:       constants.EndpointSmartFolders,
		Key:            constants.KeySmartFolders,
		ParentField:    "parentSmartFolderID",
		SearchByParent: true,
	}
	ReportTemplates = Resource{Name: "report templates", Object: "report template", Endpoint: constants.EndpointReportTemplates, Key: constants.KeyReportTemplates}
	Administrators  = Resource{Name: "administrators", Object: "administrator", Endpoint: constants.EndpointAdministrators, Key: constants.KeyAdministrators}
	Contacts        = Resource{Name: "contacts", Object: "contact", Endpoint: constants.EndpointContacts, Key: constants.KeyContacts}
	Roles           = Resource{Name: "roles", Object: "role", Endpoint: constants.EndpointRoles, Key: constants.KeyRoles}
	ScheduledTasks  = Resource{Name: "scheduled tasks", Object: "scheduled task", Endpoint: constants.EndpointScheduledTasks, Key: constants.KeyScheduledTasks}
	EventBasedTasks = Resource{Name: "event-based tasks", Object: "event-based task", Endpoint: constants.EndpointEventBasedTasks, Key: constants.KeyEventBasedTasks}
)

// Cached lists the resources every connector keeps a lazy cache for.
var Cached = []Resource{
	Computers, Policies, ComputerGroups, RelayGroups, SmartFolders,
	ReportTemplates, Administrators, Contacts, Roles,
}
