package errors_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/workloadsec/aiomigrate/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "computer group",
			ID:       "Servers",
		}
		assert.Equal(t, "computer group Servers not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("smart folder", "Linux")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		target  error
		want    bool
	}{
		{"409 is conflict", http.StatusConflict, "", pkgerrors.ErrConflict, true},
		{"400 already exists", http.StatusBadRequest, "Computer group name already exists.", pkgerrors.ErrConflict, true},
		{"422 must be unique", http.StatusUnprocessableEntity, "Name must be unique", pkgerrors.ErrConflict, true},
		{"400 other message", http.StatusBadRequest, "Invalid parameter", pkgerrors.ErrConflict, false},
		{"500 with conflict text", http.StatusInternalServerError, "already exists", pkgerrors.ErrConflict, false},
		{"400 bad request", http.StatusBadRequest, "", pkgerrors.ErrBadRequest, true},
		{"401 unauthorized", http.StatusUnauthorized, "", pkgerrors.ErrUnauthorized, true},
		{"403 forbidden", http.StatusForbidden, "", pkgerrors.ErrUnauthorized, true},
		{"404 not found", http.StatusNotFound, "", pkgerrors.ErrNotFound, true},
		{"422 validation", http.StatusUnprocessableEntity, "", pkgerrors.ErrInvalidInput, true},
		{"500 server", http.StatusInternalServerError, "", pkgerrors.ErrServerUnavailable, true},
		{"503 server", http.StatusServiceUnavailable, "", pkgerrors.ErrServerUnavailable, true},
		{"404 is not server", http.StatusNotFound, "", pkgerrors.ErrServerUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("swp#1", tt.status, tt.message)
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &pkgerrors.APIError{
		Platform:   "ds#2",
		Method:     http.MethodPost,
		Endpoint:   "computergroups",
		StatusCode: http.StatusServiceUnavailable,
	}
	assert.Contains(t, err.Error(), "ds#2")
	assert.Contains(t, err.Error(), "computergroups")
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestTransportError(t *testing.T) {
	base := errors.New("dial tcp: connection refused")

	t.Run("connection failure", func(t *testing.T) {
		err := &pkgerrors.TransportError{Platform: "ds#1", Method: "GET", Endpoint: "policies", Err: base}
		assert.True(t, pkgerrors.IsTransport(err))
		assert.False(t, pkgerrors.IsTimeout(err))
		assert.Equal(t, base, errors.Unwrap(err))
	})

	t.Run("timeout", func(t *testing.T) {
		err := &pkgerrors.TransportError{Platform: "ds#1", Method: "GET", Endpoint: "policies", Timeout: true, Err: base}
		assert.True(t, pkgerrors.IsTransport(err))
		assert.True(t, pkgerrors.IsTimeout(err))
		assert.Contains(t, err.Error(), "timed out")
	})
}

func TestMappingError(t *testing.T) {
	err := pkgerrors.NewMappingError("policy", 5, "")
	assert.Equal(t, "unsuccessful policy match: 5", err.Error())
	assert.True(t, pkgerrors.IsMapping(err))

	withReason := pkgerrors.NewMappingError("computer", 7, "not in source inventory")
	assert.Contains(t, withReason.Error(), "not in source inventory")

	var mapErr *pkgerrors.MappingError
	require.True(t, errors.As(pkgerrors.WrapResource("rewrite", "scheduled task", "3", withReason), &mapErr))
	assert.Equal(t, 7, mapErr.SourceID)
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("endpoints[1]", "api_key cannot be empty", nil)
	assert.Contains(t, err.Error(), "endpoints[1]")
	assert.Contains(t, err.Error(), "api_key cannot be empty")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestUnsupportedError(t *testing.T) {
	err := &pkgerrors.UnsupportedError{Feature: "task type check-for-software-updates", Platform: "swp"}
	assert.True(t, pkgerrors.IsUnsupported(err))
	assert.False(t, pkgerrors.IsMapping(err))
	assert.Equal(t, "task type check-for-software-updates not supported on swp", err.Error())
}

func TestAmbiguousError(t *testing.T) {
	err := &pkgerrors.AmbiguousError{Resource: "computer group", Name: "Linux", Count: 2}
	assert.True(t, pkgerrors.IsAmbiguous(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestResourceError(t *testing.T) {
	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapResource("create", "contact", "", nil))
	})

	t.Run("wrap keeps chain", func(t *testing.T) {
		api := pkgerrors.NewAPIError("swp#1", http.StatusConflict, "")
		err := pkgerrors.WrapResource("create", "computer group", "Servers", api)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Contains(t, err.Error(), "Servers")
	})
}

func TestIsConflictMessage(t *testing.T) {
	assert.True(t, pkgerrors.IsConflictMessage("The name Already Exists"))
	assert.True(t, pkgerrors.IsConflictMessage("name must be unique"))
	assert.False(t, pkgerrors.IsConflictMessage("parent group not found"))
}

func TestWrapParse(t *testing.T) {
	base := errors.New("unexpected EOF")
	err := pkgerrors.WrapParse("json", "computergroups/search", base)
	var parseErr *pkgerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "json", parseErr.Format)
	assert.Equal(t, base, errors.Unwrap(err))
}
