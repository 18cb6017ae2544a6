package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&NoAuth{}).Apply(req, "secret")
	assert.Empty(t, req.Header)
}

func TestHeaderAuth(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		req := &http.Request{Header: make(http.Header)}
		SecretKeyAuth().Apply(req, "secret")
		assert.Equal(t, "secret", req.Header.Get("api-secret-key"))
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("empty key leaves request untouched", func(t *testing.T) {
		req := &http.Request{Header: make(http.Header)}
		(&HeaderAuth{Header: "x-api-key"}).Apply(req, "")
		assert.Empty(t, req.Header)
	})
}
