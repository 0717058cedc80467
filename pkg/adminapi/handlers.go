// Package adminapi is a tiny read-only HTTP surface over a running client
// runtime's live state: the current server connection, its transaction and
// session, the live query result table, and the static lock algebra — for
// an operator to poke at with curl without attaching a debugger.
package adminapi

import (
	"net/http"

	"github.com/marmos91/dbrt/pkg/dbclient"
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/marmos91/dbrt/pkg/queryresult"
)

// ConnectionSource is the shape pkg/dbclient.Connection satisfies, narrowed
// to the one read adminapi needs.
type ConnectionSource interface {
	Snapshot() dbclient.Snapshot
}

// QueryResultSource is the shape pkg/queryresult.Table satisfies.
type QueryResultSource interface {
	Snapshot() []queryresult.EntrySummary
}

// Handlers serves the admin endpoints. Conn and Results may be nil — a
// client runtime with no active connection or query result table still
// answers /healthz, just reporting that state.
type Handlers struct {
	Conn    ConnectionSource
	Results QueryResultSource
}

// Healthz handles GET /healthz — reports whether the client has a live,
// non-dead server connection.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Conn == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("no active connection"))
		return
	}

	snap := h.Conn.Snapshot()
	if snap.Status == dbclient.StatusDead {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("connection is dead"))
		return
	}

	writeJSON(w, http.StatusOK, okResponse(map[string]any{
		"server":  snap.ServerAddr,
		"status":  snap.Status.String(),
		"tran":    snap.TranIndex,
		"tranOp":  snap.TranState.String(),
		"session": snap.SessionID,
	}))
}

// sessionView is the JSON shape of one connection's session, for GET
// /sessions. A client runtime has at most one connection per Connection
// value, so this is always a zero- or one-element list; the shape stays a
// list so an operator dashboard doesn't need a special case if the admin
// surface is later extended to a connection pool.
type sessionView struct {
	Server    string `json:"server"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	TranIndex int32  `json:"tran_index"`
}

// Sessions handles GET /sessions.
func (h *Handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	if h.Conn == nil {
		writeJSON(w, http.StatusOK, okResponse([]sessionView{}))
		return
	}

	snap := h.Conn.Snapshot()
	if snap.SessionID == "" {
		writeJSON(w, http.StatusOK, okResponse([]sessionView{}))
		return
	}

	writeJSON(w, http.StatusOK, okResponse([]sessionView{{
		Server:    snap.ServerAddr,
		SessionID: snap.SessionID,
		Status:    snap.Status.String(),
		TranIndex: snap.TranIndex,
	}}))
}

// lockRow is one row of the compatibility or conversion matrix.
type lockRow struct {
	Requested string            `json:"requested"`
	Held      map[string]string `json:"held"`
}

// Locks handles GET /locks — the lock compatibility and conversion
// matrices, the same data cmd/dbctl's lockdb command renders as a table.
func (h *Handlers) Locks(w http.ResponseWriter, r *http.Request) {
	modes := []lock.Mode{lock.ModeNA, lock.ModeNull, lock.ModeS, lock.ModeU, lock.ModeX}

	compat := make([]lockRow, 0, len(modes))
	conv := make([]lockRow, 0, len(modes))
	for _, req := range modes {
		compatHeld := make(map[string]string, len(modes))
		convHeld := make(map[string]string, len(modes))
		for _, held := range modes {
			compatHeld[held.String()] = boolLabel(lock.Compat(req, held))
			convHeld[held.String()] = lock.Conv(req, held).String()
		}
		compat = append(compat, lockRow{Requested: req.String(), Held: compatHeld})
		conv = append(conv, lockRow{Requested: req.String(), Held: convHeld})
	}

	writeJSON(w, http.StatusOK, okResponse(map[string]any{
		"compatibility": compat,
		"conversion":    conv,
	}))
}

func boolLabel(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// QueryResults handles GET /queryresults — a snapshot of the live query
// result table.
func (h *Handlers) QueryResults(w http.ResponseWriter, r *http.Request) {
	if h.Results == nil {
		writeJSON(w, http.StatusOK, okResponse([]queryresult.EntrySummary{}))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(h.Results.Snapshot()))
}
