package queryresult

import (
	"context"
	"fmt"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

// SeekMode selects the reference point for SeekTuple.
type SeekMode int

const (
	SeekSet SeekMode = iota
	SeekCur
	SeekEnd
)

// callPosition is the BEFORE/ON/AFTER tri-state over a CALL entry's single
// materialised value.
type callPosition int

const (
	callBefore callPosition = iota
	callOn
	callAfter
)

// selectCursor walks a SELECT entry's list-file, materialising pages
// lazily as the cursor advances past what has been fetched so far. pos is
// -1 before the first tuple and rowCountLoaded() after the last one.
type selectCursor struct {
	queryID   int64
	src       PageSource
	tuples    []value.Value
	rowWidth  int
	exhausted bool
	pending   page // the next not-yet-fetched page's location, valid until exhausted
	pos       int
}

func newSelectCursor(firstPage []byte, queryID int64, src PageSource) (*selectCursor, error) {
	c := &selectCursor{queryID: queryID, src: src, pos: -1}
	if len(firstPage) == 0 {
		c.exhausted = true
		return c, nil
	}
	p, err := decodePage(firstPage)
	if err != nil {
		return nil, err
	}
	c.absorb(p)
	return c, nil
}

func (c *selectCursor) absorb(p page) {
	if c.rowWidth == 0 && len(p.tuples) > 0 {
		c.rowWidth = len(p.tuples[0])
	}
	for _, row := range p.tuples {
		c.tuples = append(c.tuples, row...)
	}
	if p.isLast() {
		c.exhausted = true
	} else {
		c.pending = p
	}
}

// fetchMore pulls the next page if one is outstanding; it is a no-op once
// exhausted.
func (c *selectCursor) fetchMore(ctx context.Context) error {
	if c.exhausted {
		return nil
	}
	buf, err := c.src.QfileGetListFilePage(ctx, c.queryID, c.pending.nextVolid, c.pending.nextPageid)
	if err != nil {
		return err
	}
	p, err := decodePage(buf)
	if err != nil {
		return err
	}
	c.absorb(p)
	return nil
}

// tupleCount materialises every remaining page and returns the total tuple
// count.
func (c *selectCursor) tupleCount(ctx context.Context) (int, error) {
	for !c.exhausted {
		if err := c.fetchMore(ctx); err != nil {
			return 0, err
		}
	}
	if c.rowWidth == 0 {
		return 0, nil
	}
	return len(c.tuples) / c.rowWidth, nil
}

func (c *selectCursor) rowCountLoaded() int {
	if c.rowWidth == 0 {
		return 0
	}
	return len(c.tuples) / c.rowWidth
}

func (c *selectCursor) row(i int) []value.Value {
	return c.tuples[i*c.rowWidth : (i+1)*c.rowWidth]
}

func (c *selectCursor) close() {}

// ---- Entry-level cursor API ----

// NextTuple advances the cursor by one position, returning ok=false once it
// moves past the last tuple (AFTER/end-of-list).
func (e *Entry) NextTuple(ctx context.Context) (ok bool, err error) {
	if err := requireOpen(e); err != nil {
		return false, err
	}
	if e.Kind == KindCall {
		switch e.callPos {
		case callBefore:
			e.callPos = callOn
			return true, nil
		case callOn:
			e.callPos = callAfter
			return false, nil
		default:
			return false, nil
		}
	}

	c := e.cursor
	if c.pos+1 < c.rowCountLoaded() {
		c.pos++
		return true, nil
	}
	if !c.exhausted {
		if err := c.fetchMore(ctx); err != nil {
			return false, err
		}
		if c.pos+1 < c.rowCountLoaded() {
			c.pos++
			return true, nil
		}
	}
	c.pos = c.rowCountLoaded()
	return false, nil
}

// PrevTuple reverses NextTuple.
func (e *Entry) PrevTuple(ctx context.Context) (ok bool, err error) {
	if err := requireOpen(e); err != nil {
		return false, err
	}
	if e.Kind == KindCall {
		switch e.callPos {
		case callAfter:
			e.callPos = callOn
			return true, nil
		case callOn:
			e.callPos = callBefore
			return false, nil
		default:
			return false, nil
		}
	}

	c := e.cursor
	if c.pos-1 >= 0 {
		c.pos--
		return true, nil
	}
	c.pos = -1
	return false, nil
}

// FirstTuple positions the cursor on the first tuple.
func (e *Entry) FirstTuple(ctx context.Context) (ok bool, err error) {
	if err := requireOpen(e); err != nil {
		return false, err
	}
	if e.Kind == KindCall {
		e.callPos = callOn
		return true, nil
	}
	e.cursor.pos = -1
	return e.NextTuple(ctx)
}

// LastTuple materialises every remaining page and positions the cursor on
// the last tuple.
func (e *Entry) LastTuple(ctx context.Context) (ok bool, err error) {
	if err := requireOpen(e); err != nil {
		return false, err
	}
	if e.Kind == KindCall {
		e.callPos = callOn
		return true, nil
	}
	c := e.cursor
	if _, err := c.tupleCount(ctx); err != nil {
		return false, err
	}
	n := c.rowCountLoaded()
	if n == 0 {
		c.pos = -1
		return false, nil
	}
	c.pos = n - 1
	return true, nil
}

// TplPos is a cursor position snapshot usable with SetTplPos to checkpoint
// and restore.
type TplPos struct {
	pos     int
	callPos callPosition
}

// GetTplPos snapshots the current cursor position.
func (e *Entry) GetTplPos() TplPos {
	if e.Kind == KindCall {
		return TplPos{callPos: e.callPos}
	}
	return TplPos{pos: e.cursor.pos}
}

// SetTplPos restores a snapshot taken by GetTplPos.
func (e *Entry) SetTplPos(p TplPos) {
	if e.Kind == KindCall {
		e.callPos = p.callPos
		return
	}
	e.cursor.pos = p.pos
}

// SeekTuple moves the cursor to offset relative to mode: it computes the
// absolute target and walks there one tuple at a time from the current
// position, whatever the mode. On any mid-seek error the cursor is restored
// to its pre-seek position.
func (e *Entry) SeekTuple(ctx context.Context, offset int, mode SeekMode) (ok bool, err error) {
	if err := requireOpen(e); err != nil {
		return false, err
	}

	saved := e.GetTplPos()
	ok, err = e.seekTuple(ctx, offset, mode)
	if err != nil {
		e.SetTplPos(saved)
		return false, err
	}
	return ok, nil
}

func (e *Entry) seekTuple(ctx context.Context, offset int, mode SeekMode) (bool, error) {
	if e.Kind == KindCall {
		target := int(e.callPos)
		switch mode {
		case SeekSet:
			target = offset
		case SeekCur:
			target = int(e.callPos) + offset
		case SeekEnd:
			target = int(callAfter) + offset
		default:
			return false, fmt.Errorf("queryresult: invalid seek mode %v", mode)
		}
		switch {
		case target <= int(callBefore):
			e.callPos = callBefore
			return false, nil
		case target >= int(callAfter):
			e.callPos = callAfter
			return false, nil
		default:
			e.callPos = callOn
			return true, nil
		}
	}

	c := e.cursor
	var target int
	switch mode {
	case SeekSet:
		target = offset
	case SeekCur:
		target = c.pos + offset
	case SeekEnd:
		if _, err := c.tupleCount(ctx); err != nil {
			return false, err
		}
		target = c.rowCountLoaded() + offset
	default:
		return false, fmt.Errorf("queryresult: invalid seek mode %v", mode)
	}

	if target < 0 {
		c.pos = -1
		return false, nil
	}

	// Walk one tuple at a time from the current position to the absolute
	// target; no other origin is considered.
	for c.pos < target {
		ok, err := e.NextTuple(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	for c.pos > target {
		ok, err := e.PrevTuple(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// TupleCount materialises every remaining page and returns the total tuple
// count; CALL results always report 1.
func (e *Entry) TupleCount(ctx context.Context) (int, error) {
	if err := requireOpen(e); err != nil {
		return 0, err
	}
	if e.Kind == KindCall {
		return 1, nil
	}
	return e.cursor.tupleCount(ctx)
}

// ColumnCount returns the number of columns per tuple; CALL results always
// report 1.
func (e *Entry) ColumnCount() int {
	if e.Kind == KindCall {
		return 1
	}
	return e.cursor.rowWidth
}

// GetTupleValue returns a clone of column i of the tuple at the cursor's
// current position.
func (e *Entry) GetTupleValue(i int) (value.Value, error) {
	if err := requireOpen(e); err != nil {
		return value.Value{}, err
	}
	if e.Kind == KindCall {
		if e.callPos != callOn || i != 0 {
			return value.Value{}, dbrterr.ErrTupleOutOfRange
		}
		return e.callValue.Clone(), nil
	}

	c := e.cursor
	if c.pos < 0 || c.pos >= c.rowCountLoaded() {
		return value.Value{}, dbrterr.ErrTupleOutOfRange
	}
	row := c.row(c.pos)
	if i < 0 || i >= len(row) {
		return value.Value{}, dbrterr.ErrTupleOutOfRange
	}
	return row[i].Clone(), nil
}

// GetTupleValueList returns clones of the first n columns of the tuple at
// the cursor's current position.
func (e *Entry) GetTupleValueList(n int) ([]value.Value, error) {
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		v, err := e.GetTupleValue(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
