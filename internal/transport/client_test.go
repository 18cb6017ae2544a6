package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workloadsec/aiomigrate/pkg/errors"
)

func TestClientPost(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		assert.Equal(t, "/api/computergroups", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"ID": 9007199254740993, "name": "G1"}`))
	}))
	defer srv.Close()

	headers := http.Header{}
	headers.Set("api-version", "v1")
	client := New(srv.URL+"/api/", SecretKeyAuth(), WithAPIKey("k"), WithHeaders(headers), WithLabel("swp#1"))

	var out map[string]any
	err := client.Post(context.Background(), "computergroups", map[string]any{"name": "G1"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "k", gotHeaders.Get("api-secret-key"))
	assert.Equal(t, "v1", gotHeaders.Get("api-version"))
	assert.Equal(t, "G1", gotBody["name"])
	assert.Equal(t, json.Number("9007199254740993"), out["ID"])
	assert.Equal(t, "swp#1", client.Label())
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"conflict via 400 message", http.StatusBadRequest, `{"message":"Group already exists."}`, errors.ErrConflict, "Group already exists."},
		{"conflict via 409", http.StatusConflict, `{}`, errors.ErrConflict, ""},
		{"bad request", http.StatusBadRequest, `{"message":"bad"}`, errors.ErrBadRequest, "bad"},
		{"unauthorized", http.StatusForbidden, `{"message":"denied"}`, errors.ErrUnauthorized, "denied"},
		{"not found", http.StatusNotFound, `not json`, errors.ErrNotFound, "not json"},
		{"validation", http.StatusUnprocessableEntity, `{"message":"name must be unique"}`, errors.ErrConflict, "name must be unique"},
		{"server", http.StatusServiceUnavailable, ``, errors.ErrServerUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, SecretKeyAuth(), WithLabel("ds#2"))
			err := client.Get(context.Background(), "policies/1", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "ds#2", apiErr.Platform)
			assert.Equal(t, http.MethodGet, apiErr.Method)
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := New(url, nil).Get(context.Background(), "computers", nil)
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
		assert.False(t, errors.IsTimeout(err))
	})

	t.Run("read timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		client := New(srv.URL, nil, WithTimeouts(time.Second, 50*time.Millisecond))
		err := client.Get(context.Background(), "computers", nil)
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
		assert.True(t, errors.IsTimeout(err))
	})
}

func TestClientTLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	t.Run("verification on rejects self-signed", func(t *testing.T) {
		err := New(srv.URL, nil).Get(context.Background(), "x", nil)
		assert.True(t, errors.IsTransport(err))
	})

	t.Run("verification off accepts self-signed", func(t *testing.T) {
		var out map[string]any
		err := New(srv.URL, nil, WithInsecureSkipVerify(true)).Get(context.Background(), "x", &out)
		require.NoError(t, err)
		assert.Equal(t, true, out["ok"])
	})
}

func TestRequestBuilderURL(t *testing.T) {
	assert.Equal(t, "https://h/api/contacts", NewRequestBuilder("https://h/api/", nil).URL("contacts"))
	assert.Equal(t, "https://h/api/contacts", NewRequestBuilder("https://h/api", nil).URL("/contacts"))
	assert.Equal(t, "contacts", NewRequestBuilder("", nil).URL("contacts"))
}
