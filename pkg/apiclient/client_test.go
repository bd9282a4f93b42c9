package apiclient_test

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"farmtoclick/pkg/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(
		apiclient.Config{BaseURL: srv.URL + "/api/", Timeout: timeout},
		apiclient.WithLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := apiclient.New(apiclient.Config{BaseURL: "not-a-url"})
	assert.Error(t, err)
	_, err = apiclient.New(apiclient.Config{BaseURL: "://"})
	assert.Error(t, err)
}

func TestDefaultHeadersAndBearer(t *testing.T) {
	var got http.Header
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, 0)
	c.SetBearerToken("tok-1")
	c.SetHeader("X-App-Version", "1.2.3")

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Get(context.Background(), "/user/profile", &out))
	assert.True(t, out.OK)
	assert.Equal(t, "/api/user/profile", path)
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "1.2.3", got.Get("X-App-Version"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))

	c.SetBearerToken("")
	assert.Empty(t, c.Header("Authorization"))
	require.NoError(t, c.Get(context.Background(), "user/profile", nil))
	assert.Empty(t, got.Get("Authorization"))
}

func TestPost_JSONBody(t *testing.T) {
	var contentType, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newClient(t, srv, 0)
	require.NoError(t, c.Post(context.Background(), "/orders", map[string]int{"qty": 2}, nil))
	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"qty":2}`, body)
}

func TestPost_MultipartStripsClientContentType(t *testing.T) {
	var mediaType, boundary, field, fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params map[string]string
		mediaType, params, _ = mime.ParseMediaType(r.Header.Get("Content-Type"))
		boundary = params["boundary"]
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		field = r.FormValue("status")
		if f, _, err := r.FormFile("proof"); assert.NoError(t, err) {
			b, _ := io.ReadAll(f)
			fileBody = string(b)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, 0)
	// A JSON default would break the upload if it leaked through.
	c.SetHeader("Content-Type", "application/json")

	form := apiclient.NewForm().
		Field("status", "delivered").
		File("proof", "proof.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, c.Post(context.Background(), "/rider/orders/1/status", form, nil))

	assert.Equal(t, "multipart/form-data", mediaType)
	assert.NotEmpty(t, boundary)
	assert.Equal(t, "delivered", field)
	assert.Equal(t, "jpegbytes", fileBody)
}

func TestUnauthorizedRunsHandlersBeforeReturning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid or expired token"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, 0)
	var calls int32
	c.OnUnauthorized(func() { atomic.AddInt32(&calls, 1) })

	err := c.Get(context.Background(), "/farmer/orders", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.True(t, apiclient.IsClientError(err))

	var apiErr *apiclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid or expired token", apiErr.Message)
}

func TestErrorMessages(t *testing.T) {
	status := http.StatusConflict
	body := `{"error":"User already exists"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()
	c := newClient(t, srv, 0)

	err := c.Post(context.Background(), "/auth/register", map[string]string{}, nil)
	assert.Equal(t, http.StatusConflict, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "User already exists")

	status, body = http.StatusInternalServerError, "boom"
	err = c.Get(context.Background(), "/products", nil)
	assert.Equal(t, http.StatusInternalServerError, apiclient.StatusCode(err))
	assert.False(t, apiclient.IsClientError(err))
	assert.Contains(t, err.Error(), "internal server error")
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	c := newClient(t, srv, 0)

	var out map[string]any
	err := c.Get(context.Background(), "/products", &out)
	require.Error(t, err)
	assert.Equal(t, 0, apiclient.StatusCode(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := newClient(t, srv, 20*time.Millisecond)

	err := c.Get(context.Background(), "/products", nil)
	require.Error(t, err)
	assert.Equal(t, 0, apiclient.StatusCode(err))
}
