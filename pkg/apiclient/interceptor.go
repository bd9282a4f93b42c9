package apiclient

import (
	"net/http"

	"github.com/google/uuid"
)

type multipartKey struct{}

// interceptor is the request/response hook pair around the base transport.
type interceptor struct {
	client *Client
	next   http.RoundTripper
}

func (t *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	t.client.applyDefaults(req)

	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	// A default or caller-set Content-Type would hide the multipart boundary.
	if ct, ok := req.Context().Value(multipartKey{}).(string); ok {
		req.Header.Del("Content-Type")
		req.Header.Set("Content-Type", ct)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.client.handleUnauthorized(req)
	}
	return resp, nil
}
