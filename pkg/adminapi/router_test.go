package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRouter_ServesAllEndpoints(t *testing.T) {
	r := NewRouter(&Handlers{})
	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, path := range []string{"/healthz", "/sessions", "/locks", "/queryresults"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.NotEqual(t, http.StatusNotFound, resp.StatusCode, "path %s", path)
	}
}
