package queryresult

import (
	"fmt"

	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// page is one decoded list-file page: a tuple-count-prefixed array of
// column-count-wide rows of packed values, followed by the (volid, pageid)
// of the next page, or (-1, -1) when this is the last page.
type page struct {
	tuples     [][]value.Value
	nextVolid  int32
	nextPageid int32
}

func decodePage(buf []byte) (page, error) {
	r := wire.NewReader(buf)
	tupleCount, err := r.UnpackInt32()
	if err != nil {
		return page{}, fmt.Errorf("queryresult: decode page tuple count: %w", err)
	}
	columnCount, err := r.UnpackInt32()
	if err != nil {
		return page{}, fmt.Errorf("queryresult: decode page column count: %w", err)
	}

	tuples := make([][]value.Value, tupleCount)
	for i := range tuples {
		row := make([]value.Value, columnCount)
		for j := range row {
			row[j], err = r.UnpackValue()
			if err != nil {
				return page{}, fmt.Errorf("queryresult: decode tuple %d column %d: %w", i, j, err)
			}
		}
		tuples[i] = row
	}

	nextVolid, err := r.UnpackInt32()
	if err != nil {
		return page{}, fmt.Errorf("queryresult: decode page next volid: %w", err)
	}
	nextPageid, err := r.UnpackInt32()
	if err != nil {
		return page{}, fmt.Errorf("queryresult: decode page next pageid: %w", err)
	}

	return page{tuples: tuples, nextVolid: nextVolid, nextPageid: nextPageid}, nil
}

func (p page) isLast() bool {
	return p.nextVolid == -1 && p.nextPageid == -1
}
