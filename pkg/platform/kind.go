package platform

import (
	"net/http"

	"github.com/workloadsec/aiomigrate/pkg/constants"
	"github.com/workloadsec/aiomigrate/pkg/errors"
)

// Kind is the API flavor a connector speaks.
type Kind string

const (
	// KindDS is a self-hosted manager. It expects an Accept header and
	// commonly runs with a self-signed certificate.
	KindDS Kind = constants.KindDS
	// KindSWP is the hosted service.
	KindSWP Kind = constants.KindSWP
)

// ParseKind validates a configured kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDS, KindSWP:
		return Kind(s), nil
	}
	return "", errors.NewValidationError("type", s, "unknown platform kind")
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Headers returns the fixed header set sent on every request. The API key
// header is added by the transport authenticator.
func (k Kind) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", constants.ContentTypeJSON)
	if k == KindDS {
		h.Set("Accept", constants.ContentTypeJSON)
	}
	h.Set(constants.HeaderAPIVersion, constants.APIVersion)
	return h
}

// VerifyTLS reports the default certificate verification policy.
func (k Kind) VerifyTLS() bool {
	return k != KindDS
}
