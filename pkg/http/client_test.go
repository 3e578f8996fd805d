package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/serverless/sfauth/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)

	client.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "https://example.com/x", req.URL.String())
		return response(http.StatusOK, "hello"), nil
	})

	body, err := Get(context.Background(), "https://example.com/x", client)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestDo_StatusError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	client.EXPECT().Do(gomock.Any()).Return(response(http.StatusBadGateway, "upstream"), nil)

	_, err := Do(context.Background(), client, http.MethodPost, "https://example.com", nil, nil)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream", string(se.Body))
	assert.True(t, se.Temporary())
	assert.ErrorIs(t, err, errUtils.ErrHTTPRequestFailed)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestDo_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	client.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := Do(context.Background(), client, http.MethodGet, "https://example.com", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrHTTPRequestFailed)
	assert.Equal(t, 0, StatusCode(err))
}

func TestDoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "sfauth-test", r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"acme"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	client := NewDefaultClient(
		WithTimeout(5*time.Second),
		WithHeaders(map[string]string{"User-Agent": "sfauth-test"}),
	)

	var out struct {
		ID string `json:"id"`
	}
	err := DoJSON(context.Background(), client, http.MethodPost, server.URL,
		map[string]string{"Authorization": "Bearer token"},
		map[string]string{"name": "acme"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.ID)
}

func TestDoJSON_DecodeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	client.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, "not json"), nil)

	var out map[string]any
	err := DoJSON(context.Background(), client, http.MethodGet, "https://example.com", nil, nil, &out)
	assert.ErrorIs(t, err, errUtils.ErrUnexpectedResponse)
}

func TestHeaderTransport_KeepsExplicitHeaders(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewDefaultClient(WithHeaders(map[string]string{"User-Agent": "default"}))
	_, err := Do(context.Background(), client, http.MethodGet, server.URL, nil, map[string]string{"User-Agent": "explicit"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", got)
}

func TestCABundleFromEnv(t *testing.T) {
	t.Setenv("HTTPS_CA", "")
	t.Setenv("HTTPS_CAFILE", "")
	_, ok := caBundleFromEnv()
	assert.False(t, ok)

	t.Setenv("HTTPS_CAFILE", "/does/not/exist.pem")
	_, ok = caBundleFromEnv()
	assert.False(t, ok)
}
