// Package queryresult implements the process-wide query result table: a
// growable arena of SELECT and CALL result entries, each carrying a
// back-index so it can self-unlink on free, plus the cursor operations
// layered on top of a SELECT entry's list-file and a CALL entry's single
// materialised value.
package queryresult

import (
	"context"
	"fmt"
	"sync"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

// Kind distinguishes the two result shapes the table holds.
type Kind int

const (
	KindSelect Kind = iota
	KindCall
)

func (k Kind) String() string {
	if k == KindCall {
		return "CALL"
	}
	return "SELECT"
}

// State is the entry's lifecycle state, independent of cursor position.
type State int

const (
	StateOpen State = iota
	StateClosed
)

// PageSource fetches list-file pages beyond the one attached at execute
// time, the shape pkg/dbclient.Connection.QfileGetListFilePage satisfies.
type PageSource interface {
	QfileGetListFilePage(ctx context.Context, queryID int64, volid, pageid int32) ([]byte, error)
}

// QueryEnder notifies the server a query's state can be released, the shape
// pkg/dbclient.Connection.QmgrEndQuery satisfies.
type QueryEnder interface {
	QmgrEndQuery(ctx context.Context, queryID int64) error
}

// Entry is one row of the table: either a SELECT cursor over a server
// list-file or a CALL's single materialised value in its BEFORE/ON/AFTER
// tri-state. BackIndex must always equal this entry's own slot in the
// owning Table.
type Entry struct {
	BackIndex int
	Kind      Kind
	State     State
	Holdable  bool

	// SELECT fields.
	QueryID          int64
	ServerQueryEnded bool
	cursor           *selectCursor
	pages            PageSource

	// CALL fields.
	callValue value.Value
	callPos   callPosition
}

// Table is the growable arena of live entries, growing by a fixed initial
// capacity (10) and then by x1.25 on overflow, with a free-list of slots up
// to the current capacity. Invariant: for every live entry r,
// table.entries[r.BackIndex] == r.
type Table struct {
	mu       sync.Mutex
	entries  []*Entry
	freeList []int
	capacity int
	live     int
	metrics  *Metrics
}

// NewTable builds an empty table; metrics may be nil.
func NewTable(metrics *Metrics) *Table {
	return &Table{metrics: metrics}
}

// LiveCount returns the number of currently allocated entries.
func (t *Table) LiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (t *Table) grow() {
	newCap := 10
	if t.capacity > 0 {
		newCap = t.capacity + t.capacity/4
		if newCap <= t.capacity {
			newCap = t.capacity + 1
		}
	}
	grown := make([]*Entry, newCap)
	copy(grown, t.entries)
	for i := t.capacity; i < newCap; i++ {
		t.freeList = append(t.freeList, i)
	}
	t.entries = grown
	t.capacity = newCap
}

func (t *Table) alloc() int {
	if len(t.freeList) == 0 {
		t.grow()
	}
	n := len(t.freeList) - 1
	idx := t.freeList[n]
	t.freeList = t.freeList[:n]
	return idx
}

// NewSelectEntry allocates a SELECT result over queryID's list-file,
// starting with firstPage already attached and lazily fetching further
// pages through src.
func (t *Table) NewSelectEntry(queryID int64, firstPage []byte, holdable bool, src PageSource) (*Entry, error) {
	cur, err := newSelectCursor(firstPage, queryID, src)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.alloc()
	e := &Entry{
		BackIndex: idx,
		Kind:      KindSelect,
		State:     StateOpen,
		Holdable:  holdable,
		QueryID:   queryID,
		cursor:    cur,
		pages:     src,
	}
	t.entries[idx] = e
	t.live++
	t.recordLive()
	return e, nil
}

// NewCallEntry allocates a CALL result wrapping a single materialised
// value, cursor starting in the BEFORE position.
func (t *Table) NewCallEntry(v value.Value) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.alloc()
	e := &Entry{
		BackIndex: idx,
		Kind:      KindCall,
		State:     StateOpen,
		callValue: v,
		callPos:   callBefore,
	}
	t.entries[idx] = e
	t.live++
	t.recordLive()
	return e
}

// Free self-unlinks e from the table via its back-index and returns its
// slot to the free-list. Freeing an already-closed entry is a no-op.
func (t *Table) Free(e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.BackIndex < 0 || e.BackIndex >= len(t.entries) || t.entries[e.BackIndex] != e {
		return
	}
	t.entries[e.BackIndex] = nil
	t.freeList = append(t.freeList, e.BackIndex)
	e.State = StateClosed
	t.live--
	t.recordLive()
}

// EntrySummary is a read-only snapshot of one table entry, for diagnostic
// surfaces like pkg/adminapi that must not reach into cursor internals.
type EntrySummary struct {
	QueryID  int64
	Kind     Kind
	State    State
	Holdable bool
}

// Snapshot returns a point-in-time summary of every live entry.
func (t *Table) Snapshot() []EntrySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]EntrySummary, 0, t.live)
	for _, e := range t.entries {
		if e == nil {
			continue
		}
		out = append(out, EntrySummary{
			QueryID:  e.QueryID,
			Kind:     e.Kind,
			State:    e.State,
			Holdable: e.Holdable,
		})
	}
	return out
}

func (t *Table) recordLive() {
	if t.metrics != nil {
		t.metrics.LiveEntries.Set(float64(t.live))
	}
}

// endQueryInternal closes r's cursor and, when notifyServer is set and the
// server hasn't already ended the query itself, calls qmgr_end_query.
func (t *Table) endQueryInternal(ctx context.Context, ender QueryEnder, r *Entry, notifyServer bool) error {
	if r.Kind == KindSelect && r.cursor != nil {
		r.cursor.close()
	}
	var err error
	if notifyServer && r.Kind == KindSelect && !r.ServerQueryEnded && ender != nil {
		err = ender.QmgrEndQuery(ctx, r.QueryID)
		r.ServerQueryEnded = true
	}
	t.Free(r)
	return err
}

// ClearClientQueryResult walks the table; for every live SELECT result that
// is not holdable, or is holdable but endHoldable is set, it closes the
// result via endQueryInternal. Holdable results otherwise survive.
func (t *Table) ClearClientQueryResult(ctx context.Context, ender QueryEnder, notifyServer, endHoldable bool) error {
	t.mu.Lock()
	snapshot := make([]*Entry, 0, t.live)
	for _, e := range t.entries {
		if e != nil {
			snapshot = append(snapshot, e)
		}
	}
	t.mu.Unlock()

	var firstErr error
	for _, r := range snapshot {
		if r.Kind != KindSelect {
			continue
		}
		if !r.Holdable || endHoldable {
			if err := t.endQueryInternal(ctx, ender, r, notifyServer); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// requireOpen returns ErrOprOnClosedQres if e has been closed.
func requireOpen(e *Entry) error {
	if e.State == StateClosed {
		return fmt.Errorf("queryresult: %w", dbrterr.ErrOprOnClosedQres)
	}
	return nil
}
