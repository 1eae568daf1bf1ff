package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestListSendsQueryAndAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/dicts/all", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "gender", q.Get("type"))
		assert.Equal(t, "Ma", q.Get("label"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"dictionaries":[{"id":1,"type":"gender","label":"Male","value":"m","sort":1,"created_at":"2024-01-02T03:04:05Z"}],"total":7}`)
	})

	result, err := c.List(context.Background(), dictionary.ListQuery{Page: 2, PageSize: 20, Type: "gender", Label: "Ma"})
	require.NoError(t, err)
	require.Len(t, result.Dictionaries, 1)
	assert.Equal(t, 7, result.Total)
	assert.Equal(t, "2024-01-02T03:04:05Z", result.Dictionaries[0].CreatedAt)
}

func TestListNullDictionariesBecomeEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dictionaries":null,"total":0}`)
	})
	result, err := c.List(context.Background(), dictionary.ListQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.NotNil(t, result.Dictionaries)
	assert.Empty(t, result.Dictionaries)
}

func TestMutations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		call   func(c *Client) error
		check  func(t *testing.T, r *http.Request, body map[string]any)
	}{
		{
			name:   "create drops id",
			method: http.MethodPost,
			path:   "/dicts/create",
			call: func(c *Client) error {
				return c.Create(context.Background(), dictionary.Draft{ID: 4, Type: "gender", Label: "Other", Value: "o", Sort: 3})
			},
			check: func(t *testing.T, _ *http.Request, body map[string]any) {
				_, hasID := body["id"]
				assert.False(t, hasID)
				assert.Equal(t, "gender", body["type"])
				assert.Equal(t, float64(3), body["sort"])
			},
		},
		{
			name:   "update keeps id",
			method: http.MethodPut,
			path:   "/dicts/update",
			call: func(c *Client) error {
				return c.Update(context.Background(), dictionary.Draft{ID: 4, Type: "gender", Label: "Other", Value: "o"})
			},
			check: func(t *testing.T, _ *http.Request, body map[string]any) {
				assert.Equal(t, float64(4), body["id"])
			},
		},
		{
			name:   "delete uses query id",
			method: http.MethodDelete,
			path:   "/dicts/del",
			call: func(c *Client) error {
				return c.Delete(context.Background(), 12)
			},
			check: func(t *testing.T, r *http.Request, _ map[string]any) {
				assert.Equal(t, "12", r.URL.Query().Get("id"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				body := map[string]any{}
				if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
					assert.NoError(t, json.Unmarshal(raw, &body))
				}
				tt.check(t, r, body)
				_, _ = io.WriteString(w, `{}`)
			})
			assert.NoError(t, tt.call(c))
		})
	}
}

func TestErrorChannels(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		application bool
		message     string
	}{
		{name: "payload error on 200", status: http.StatusOK, body: `{"error":"duplicate value"}`, application: true, message: "duplicate value"},
		{name: "payload error on 400", status: http.StatusBadRequest, body: `{"error":"id is required"}`, message: "id is required"},
		{name: "payload error on 500", status: http.StatusInternalServerError, body: `{"error":"internal error"}`, message: "internal error"},
		{name: "payload error on 401", status: http.StatusUnauthorized, body: `{"error":"unauthorized"}`, message: "unauthorized"},
		{name: "bare 500", status: http.StatusInternalServerError, body: ``},
		{name: "html 502", status: http.StatusBadGateway, body: `<html>bad gateway</html>`},
		{name: "garbage 200", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := c.Update(context.Background(), dictionary.Draft{ID: 1})
			require.Error(t, err)
			message, ok := dictionary.ApplicationMessage(err)
			assert.Equal(t, tt.application, ok)
			if tt.application {
				assert.Equal(t, tt.message, message)
				return
			}
			if tt.status >= 300 {
				assert.ErrorIs(t, err, ErrUnexpectedStatus)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestUnexpectedStatusIsWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.List(context.Background(), dictionary.ListQuery{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestServerErrorPayloadIsTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"internal error"}`)
	})

	err := c.Create(context.Background(), dictionary.Draft{Type: "gender", Label: "Male", Value: "m"})
	require.Error(t, err)
	assert.False(t, dictionary.IsApplicationError(err))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = c.List(context.Background(), dictionary.ListQuery{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.False(t, dictionary.IsApplicationError(err))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base})
	require.NoError(t, err)
	err = c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, dictionary.IsApplicationError(err))
}
