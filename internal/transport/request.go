package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/workloadsec/aiomigrate/pkg/errors"
)

// RequestBuilder joins endpoint paths onto a platform base URL and stamps
// the fixed header set of the platform kind.
type RequestBuilder struct {
	baseURL string
	headers http.Header
}

// NewRequestBuilder creates a request builder for a base URL.
func NewRequestBuilder(baseURL string, headers http.Header) *RequestBuilder {
	return &RequestBuilder{baseURL: baseURL, headers: headers}
}

// URL returns the absolute URL of an endpoint path.
func (rb *RequestBuilder) URL(path string) string {
	if rb.baseURL == "" {
		return path
	}
	return strings.TrimSuffix(rb.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// AddHeaders copies the platform header set onto a request.
func (rb *RequestBuilder) AddHeaders(req *http.Request) {
	for name, values := range rb.headers {
		for i, v := range values {
			if i == 0 {
				req.Header.Set(name, v)
			} else {
				req.Header.Add(name, v)
			}
		}
	}
}

// errorBody is the JSON error envelope both platforms return.
type errorBody struct {
	Message string `json:"message"`
}

// DecodeResponse decodes a JSON response into target. Numbers are decoded as
// json.Number so record IDs survive a round trip unchanged. Non-2xx answers
// become *errors.APIError carrying the body's message field.
func DecodeResponse(resp *http.Response, target any, platform string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapResource("read", "response body", resp.Request.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Platform:   platform,
			Method:     resp.Request.Method,
			Endpoint:   resp.Request.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return errors.WrapParse("json", resp.Request.URL.Path, err)
	}
	return nil
}

// errorMessage extracts the message of an error body, falling back to the
// raw text for non-JSON answers.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		return eb.Message
	}
	return strings.TrimSpace(string(body))
}
