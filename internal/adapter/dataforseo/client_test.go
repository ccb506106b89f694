package dataforseo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
)

const okResponse = `{
	"status_code": 20000,
	"status_message": "Ok.",
	"tasks": [{
		"status_code": 20000,
		"status_message": "Ok.",
		"cost": 0.02,
		"result": [{
			"total_count": 1200,
			"items": [
				{"domain_from": "ref.org", "url_from": "https://ref.org/p", "url_to": "https://example.com/a", "rank": 40},
				{"domain_from": "", "url_from": "https://Blog.net/x", "url_to": "https://example.com/b", "domain_from_rank": 12},
				{"domain_from": "skip.me", "url_from": "https://skip.me/", "url_to": ""}
			]
		}]
	}]
}`

func newTestServer(t *testing.T, status int, body string, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchBacklinks_Success(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotBody []taskRequest
	srv := newTestServer(t, http.StatusOK, okResponse, func(r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	})

	c := NewClient(srv.URL+"/", "login", "secret", 500, 5*time.Second)
	fetch, err := c.FetchBacklinks(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, backlinksPath, gotPath)
	assert.Equal(t, "login", gotUser)
	assert.Equal(t, "secret", gotPass)
	require.Len(t, gotBody, 1)
	assert.Equal(t, taskRequest{
		Target:              "example.com",
		Mode:                "as_is",
		Limit:               500,
		BacklinksStatusType: "live",
	}, gotBody[0])

	assert.Equal(t, 1200, fetch.TotalCount)
	assert.Equal(t, 2, fetch.CostCents)
	assert.Equal(t, []entity.BacklinkEdge{
		{SourceDomain: "ref.org", SourceURL: "https://ref.org/p", TargetURL: "https://example.com/a", SourceRank: 40},
		{SourceDomain: "blog.net", SourceURL: "https://Blog.net/x", TargetURL: "https://example.com/b", SourceRank: 12},
	}, fetch.Edges)
}

func TestFetchBacklinks_MissingNestedFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no tasks", `{"status_code": 20000}`},
		{"null tasks", `{"status_code": 20000, "tasks": null}`},
		{"no result", `{"status_code": 20000, "tasks": [{"status_code": 20000}]}`},
		{"null items", `{"status_code": 20000, "tasks": [{"status_code": 20000, "result": [{"items": null}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body, nil)
			fetch, err := NewClient(srv.URL, "l", "p", 10, time.Second).FetchBacklinks(context.Background(), "example.com")
			require.NoError(t, err)
			assert.NotNil(t, fetch.Edges)
			assert.Empty(t, fetch.Edges)
		})
	}
}

func TestFetchBacklinks_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"top level", http.StatusOK, `{"status_code": 40100, "status_message": "Not authorized."}`, "Not authorized."},
		{"task level", http.StatusOK, `{"status_code": 20000, "tasks": [{"status_code": 40501, "status_message": "Invalid Field"}]}`, "Invalid Field"},
		{"http error", http.StatusUnauthorized, `<html>nope</html>`, "Unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			_, err := NewClient(srv.URL, "l", "p", 10, time.Second).FetchBacklinks(context.Background(), "example.com")
			require.ErrorIs(t, err, repository.ErrUpstreamRejected)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFetchBacklinks_BadResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"empty object", `{}`},
		{"no status", `{"tasks": []}`},
		{"no task status", `{"status_code": 20000, "tasks": [{}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body, nil)
			_, err := NewClient(srv.URL, "l", "p", 10, time.Second).FetchBacklinks(context.Background(), "example.com")
			require.ErrorIs(t, err, repository.ErrBadResponse)
			assert.NotErrorIs(t, err, repository.ErrUpstreamRejected)
		})
	}
}

func TestFetchBacklinks_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "l", "p", 10, time.Second).FetchBacklinks(context.Background(), "example.com")
	assert.ErrorIs(t, err, repository.ErrUpstreamUnreachable)
}
