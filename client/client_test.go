package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestEncodesJSONBody(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContentTypeJSON, r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New()
	resp, err := c.Post(server.URL+"/things", map[string]string{"name": "x"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, map[string]any{"name": "x"}, received)
}

func TestWithResponseDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":7}}`))
	}))
	defer server.Close()

	var out struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}

	c := New()
	_, err := c.Get(server.URL+"/things", WithResponse(&out))
	require.NoError(t, err)
	assert.Equal(t, 7, out.Data.ID)
}

func TestBaseURLResolution(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL + "/"))

	resp, err := c.Get("/account/balance")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/account/balance", path)

	// Absolute URLs bypass the base
	resp, err = c.Get(server.URL + "/other")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/other", path)
}

func TestWithHeaderAndContext(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Custom")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New()
	resp, err := c.Get(server.URL,
		WithContext(context.Background()),
		WithHeader(map[string]string{"X-Custom": "yes"}))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "yes", header)
}

func TestRequestOptionReuseIsClean(t *testing.T) {
	var headers []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("X-Custom"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New()
	resp, err := c.Get(server.URL, WithHeader(map[string]string{"X-Custom": "once"}))
	require.NoError(t, err)
	resp.Body.Close()

	// Second request reuses the pooled option; the header must not leak
	resp, err = c.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, headers, 2)
	assert.Equal(t, "once", headers[0])
	assert.Empty(t, headers[1])
}
