// Package constants provides shared constants used throughout the aiomigrate codebase.
// This includes timeouts, paging limits and the platform API
// header and endpoint names that must stay consistent between components.
package constants

import "time"

// Timeout constants define the network timeouts used against platform APIs
const (
	// ConnectTimeout bounds establishing the TCP/TLS connection to an endpoint
	ConnectTimeout = 2 * time.Second

	// ReadTimeout bounds waiting for a response once the request is sent
	ReadTimeout = 30 * time.Second
)

// LogFilePermissions applies when --log-output names a file (rw-r--r--)
const LogFilePermissions = 0644

// Limit constants
const (
	// PageSize is the maxItems sent with every paged search request
	PageSize = 100

	// NameLookupMaxItems is two so a lookup can tell unique from ambiguous
	NameLookupMaxItems = 2

	// MaskedKeyLength is how many trailing API key characters are shown
	MaskedKeyLength = 8
)

// Platform API header names and values
const (
	HeaderAPISecretKey = "api-secret-key"
	HeaderAPIVersion   = "api-version"
	APIVersion         = "v1"
	ContentTypeJSON    = "application/json"
)

// Platform collection endpoints. Each is paged through "<endpoint>/search".
const (
	EndpointComputers       = "computers"
	EndpointPolicies        = "policies"
	EndpointComputerGroups  = "computergroups"
	EndpointRelayGroups     = "relaygroups"
	EndpointSmartFolders    = "smartfolders"
	EndpointReportTemplates = "reporttemplates"
	EndpointAdministrators  = "administrators"
	EndpointContacts        = "contacts"
	EndpointRoles           = "roles"
	EndpointScheduledTasks  = "scheduledtasks"
	EndpointEventBasedTasks = "eventbasedtasks"
)

// Response keys holding the result array of a search on the matching endpoint.
const (
	KeyComputers       = "computers"
	KeyPolicies        = "policies"
	KeyComputerGroups  = "computerGroups"
	KeyRelayGroups     = "relayGroups"
	KeySmartFolders    = "smartFolders"
	KeyReportTemplates = "reportTemplates"
	KeyAdministrators  = "administrators"
	KeyContacts        = "contacts"
	KeyRoles           = "roles"
	KeyScheduledTasks  = "scheduledTasks"
	KeyEventBasedTasks = "eventBasedTasks"
)

// Path constants
const (
	// AppName is used for the XDG config directory and the home dotfile
	AppName = "aiomigrate"

	// ConfigFileName is the config file looked up in each search directory
	ConfigFileName = "config.yaml"

	// EnvPrefix prefixes environment overrides such as AIOMIGRATE_LOG_LEVEL
	EnvPrefix = "AIOMIGRATE"
)

// Platform kinds accepted in the endpoint "type" field
const (
	KindDS  = "ds"
	KindSWP = "swp"
)
