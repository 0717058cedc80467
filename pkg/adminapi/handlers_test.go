package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/pkg/dbclient"
	"github.com/marmos91/dbrt/pkg/queryresult"
)

type fakeConn struct {
	snap dbclient.Snapshot
}

func (f fakeConn) Snapshot() dbclient.Snapshot { return f.snap }

type fakeResults struct {
	entries []queryresult.EntrySummary
}

func (f fakeResults) Snapshot() []queryresult.EntrySummary { return f.entries }

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz_NoConnectionIsUnavailable(t *testing.T) {
	h := &Handlers{}
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "error", decodeResponse(t, rec).Status)
}

func TestHealthz_DeadConnectionIsUnavailable(t *testing.T) {
	h := &Handlers{Conn: fakeConn{snap: dbclient.Snapshot{Status: dbclient.StatusDead}}}
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz_ActiveConnectionIsOK(t *testing.T) {
	h := &Handlers{Conn: fakeConn{snap: dbclient.Snapshot{
		Status:     dbclient.StatusActive,
		ServerAddr: "127.0.0.1:1523",
		SessionID:  "sess-1",
	}}}
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeResponse(t, rec).Status)
}

func TestSessions_NoConnectionReturnsEmptyList(t *testing.T) {
	h := &Handlers{}
	rec := httptest.NewRecorder()
	h.Sessions(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Empty(t, data)
}

func TestSessions_ActiveSessionIsListed(t *testing.T) {
	h := &Handlers{Conn: fakeConn{snap: dbclient.Snapshot{
		Status:     dbclient.StatusActive,
		ServerAddr: "127.0.0.1:1523",
		SessionID:  "sess-1",
		TranIndex:  3,
	}}}
	rec := httptest.NewRecorder()
	h.Sessions(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
}

func TestLocks_ReturnsCompatibilityAndConversion(t *testing.T) {
	h := &Handlers{}
	rec := httptest.NewRecorder()
	h.Locks(rec, httptest.NewRequest(http.MethodGet, "/locks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "compatibility")
	require.Contains(t, data, "conversion")
}

func TestQueryResults_NoTableReturnsEmptyList(t *testing.T) {
	h := &Handlers{}
	rec := httptest.NewRecorder()
	h.QueryResults(rec, httptest.NewRequest(http.MethodGet, "/queryresults", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Empty(t, data)
}

func TestQueryResults_ReflectsSnapshot(t *testing.T) {
	h := &Handlers{Results: fakeResults{entries: []queryresult.EntrySummary{
		{QueryID: 42, Kind: queryresult.KindSelect, Holdable: true},
	}}}
	rec := httptest.NewRecorder()
	h.QueryResults(rec, httptest.NewRequest(http.MethodGet, "/queryresults", nil))

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
}
