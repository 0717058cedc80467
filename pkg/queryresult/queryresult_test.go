package queryresult

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// fakePages is a PageSource backed by an in-memory map keyed by
// (volid, pageid), used to drive lazy page fetches in tests.
type fakePages struct {
	byLocation map[[2]int32][]byte
	fetches    int
}

func (f *fakePages) QfileGetListFilePage(ctx context.Context, queryID int64, volid, pageid int32) ([]byte, error) {
	f.fetches++
	buf, ok := f.byLocation[[2]int32{volid, pageid}]
	if !ok {
		return nil, errors.New("fakePages: no page at that location")
	}
	return buf, nil
}

// fakeEnder records qmgr_end_query calls.
type fakeEnder struct {
	ended []int64
}

func (f *fakeEnder) QmgrEndQuery(ctx context.Context, queryID int64) error {
	f.ended = append(f.ended, queryID)
	return nil
}

// encodePage builds one list-file page: tupleCount, columnCount, each
// tuple's packed values (written into the same continuous buffer decodePage
// reads from, so any alignment padding a value needs matches), then the
// next-page location (-1,-1 for last).
func encodePage(rows [][]value.Value, nextVolid, nextPageid int32) []byte {
	w := wire.NewWriter(256)
	w.PackInt32(int32(len(rows)))
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	w.PackInt32(int32(cols))
	for _, row := range rows {
		for _, v := range row {
			_ = w.PackValue(v)
		}
	}
	w.PackInt32(nextVolid)
	w.PackInt32(nextPageid)
	return w.Bytes()
}

func intRow(n int32) []value.Value { return []value.Value{value.MakeInteger(n)} }

func TestTable_GrowthAndBackIndexInvariant(t *testing.T) {
	tbl := NewTable(nil)

	var entries []*Entry
	for i := 0; i < 25; i++ {
		entries = append(entries, tbl.NewCallEntry(value.MakeInteger(int32(i))))
	}
	assert.Equal(t, 25, tbl.LiveCount())
	for _, e := range entries {
		assert.Same(t, e, tbl.entries[e.BackIndex])
	}

	freedIndex := entries[3].BackIndex
	tbl.Free(entries[3])
	assert.Equal(t, 24, tbl.LiveCount())

	reused := tbl.NewCallEntry(value.MakeInteger(999))
	assert.Equal(t, freedIndex, reused.BackIndex, "freed slot should be reused")
	assert.Same(t, reused, tbl.entries[reused.BackIndex])
}

func TestSelectCursor_WalksAcrossLazilyFetchedPages(t *testing.T) {
	firstPage := encodePage([][]value.Value{intRow(0), intRow(1)}, 1, 7)
	secondPage := encodePage([][]value.Value{intRow(2), intRow(3)}, -1, -1)

	src := &fakePages{byLocation: map[[2]int32][]byte{
		{1, 7}: secondPage,
	}}

	tbl := NewTable(nil)
	entry, err := tbl.NewSelectEntry(42, firstPage, false, src)
	require.NoError(t, err)

	ok, err := entry.FirstTuple(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	var seen []int32
	v, err := entry.GetTupleValue(0)
	require.NoError(t, err)
	n, _ := v.GetInteger()
	seen = append(seen, n)

	for {
		ok, err := entry.NextTuple(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		v, err := entry.GetTupleValue(0)
		require.NoError(t, err)
		n, _ := v.GetInteger()
		seen = append(seen, n)
	}

	assert.Equal(t, []int32{0, 1, 2, 3}, seen)
	assert.Equal(t, 1, src.fetches)

	count, err := entry.TupleCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSeekTuple_EndMinusOneLandsOnLastTuple(t *testing.T) {
	firstPage := encodePage([][]value.Value{intRow(0), intRow(1), intRow(2)}, -1, -1)
	tbl := NewTable(nil)
	entry, err := tbl.NewSelectEntry(1, firstPage, false, &fakePages{byLocation: map[[2]int32][]byte{}})
	require.NoError(t, err)

	ok, err := entry.SeekTuple(context.Background(), -1, SeekEnd)
	require.NoError(t, err)
	require.True(t, ok)

	v, err := entry.GetTupleValue(0)
	require.NoError(t, err)
	n, _ := v.GetInteger()
	assert.EqualValues(t, 2, n)
}

func TestSeekTuple_PastEndReturnsFalseAndLeavesCursorAtAfter(t *testing.T) {
	firstPage := encodePage([][]value.Value{intRow(0), intRow(1)}, -1, -1)
	tbl := NewTable(nil)
	entry, err := tbl.NewSelectEntry(1, firstPage, false, &fakePages{byLocation: map[[2]int32][]byte{}})
	require.NoError(t, err)

	ok, err := entry.SeekTuple(context.Background(), 100, SeekSet)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = entry.GetTupleValue(0)
	assert.ErrorIs(t, err, dbrterr.ErrTupleOutOfRange)
}

func TestCallCursor_TriStateTransitions(t *testing.T) {
	tbl := NewTable(nil)
	entry := tbl.NewCallEntry(value.MakeInteger(7))

	count, err := entry.TupleCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = entry.GetTupleValue(0)
	assert.ErrorIs(t, err, dbrterr.ErrTupleOutOfRange, "BEFORE state has no current tuple")

	ok, err := entry.NextTuple(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	v, err := entry.GetTupleValue(0)
	require.NoError(t, err)
	n, _ := v.GetInteger()
	assert.EqualValues(t, 7, n)

	ok, err = entry.NextTuple(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "ON -> AFTER reports end of list")

	ok, err = entry.PrevTuple(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "AFTER -> ON")
}

func TestClearClientQueryResult_ClosesNonHoldableAlwaysAndHoldableOnlyWhenAsked(t *testing.T) {
	tbl := NewTable(NewMetrics(prometheus.NewRegistry()))
	ender := &fakeEnder{}

	nonHoldable, err := tbl.NewSelectEntry(1, encodePage(nil, -1, -1), false, &fakePages{byLocation: map[[2]int32][]byte{}})
	require.NoError(t, err)
	holdable, err := tbl.NewSelectEntry(2, encodePage(nil, -1, -1), true, &fakePages{byLocation: map[[2]int32][]byte{}})
	require.NoError(t, err)

	require.NoError(t, tbl.ClearClientQueryResult(context.Background(), ender, true, false))

	assert.Equal(t, StateClosed, nonHoldable.State)
	assert.Equal(t, StateOpen, holdable.State, "holdable result survives when endHoldable is false")
	assert.Equal(t, []int64{1}, ender.ended)

	require.NoError(t, tbl.ClearClientQueryResult(context.Background(), ender, true, true))
	assert.Equal(t, StateClosed, holdable.State)
	assert.ElementsMatch(t, []int64{1, 2}, ender.ended)
}

func TestOperationOnClosedEntry_ReturnsOprOnClosedQres(t *testing.T) {
	tbl := NewTable(nil)
	entry := tbl.NewCallEntry(value.MakeInteger(1))
	tbl.Free(entry)

	_, err := entry.NextTuple(context.Background())
	assert.ErrorIs(t, err, dbrterr.ErrOprOnClosedQres)
}
