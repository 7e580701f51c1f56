package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURLAddsTrailingSlash(t *testing.T) {
	for _, raw := range []string{"https://ghe.example.com/api/v3", "https://ghe.example.com/api/v3/"} {
		u, err := parseBaseURL(raw)
		require.NoError(t, err)
		assert.Equal(t, "https://ghe.example.com/api/v3/", u.String())
	}
}

func TestListPRCommentsPagination(t *testing.T) {
	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id":3,"body":"third"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/demo/issues/7/comments?page=2>; rel="next"`, srv.URL))
		fmt.Fprint(w, `[{"id":1,"body":"first"},{"id":2,"body":"second"}]`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClientWithHTTPClient(srv.Client(), srv.URL, logger)
	require.NoError(t, err)

	comments, err := client.ListPRComments(context.Background(), "octo", "demo", 7)
	require.NoError(t, err)

	assert.Equal(t, []Comment{
		{ID: 1, Body: "first"},
		{ID: 2, Body: "second"},
		{ID: 3, Body: "third"},
	}, comments)
}
