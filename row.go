/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pgcursor

import "github.com/go-pgcursor/pgcursor/wire"

// rowCursor is the binary payload of one data row plus read position.
// The payload is a sequence of columns, each a signed 32-bit length
// prefix (-1 for NULL) followed by that many value bytes. Column start
// offsets are discovered incrementally as the cursor walks forward;
// once discovered, a column can be re-seeked in constant time, which
// cached access mode relies on.
type rowCursor struct {
	payload []byte
	buf     *wire.Buffer
	count   int

	// offsets[i] is the payload offset of column i's length prefix.
	// Grows as columns are discovered; offsets[0] is always 0.
	offsets []int

	// visited is the highest ordinal whose value was requested.
	// Sequential mode refuses ordinals below it.
	visited int

	// streaming marks an open column stream. At most one stream may be
	// open per row.
	streaming bool

	// superseded is set when the reader moves past this row. Streams
	// holding the cursor refuse further reads once it is set.
	superseded bool
}

func newRowCursor(m *wire.DataRow) *rowCursor {
	return &rowCursor{
		payload: m.Payload,
		buf:     wire.NewBuffer(m.Payload),
		count:   m.ColumnCount,
		offsets: []int{0},
		visited: -1,
	}
}

// seek positions the buffer at the length prefix of the given column,
// silently skipping undiscovered columns before it. Skipped columns are
// never decoded, only measured.
func (rc *rowCursor) seek(ordinal int, sequential bool) error {
	if sequential && ordinal < rc.visited {
		return ErrSequentialRewind
	}
	for len(rc.offsets) <= ordinal {
		if err := rc.buf.Seek(rc.offsets[len(rc.offsets)-1]); err != nil {
			return err
		}
		length, err := rc.buf.ReadInt32()
		if err != nil {
			return err
		}
		if length > 0 {
			if err := rc.buf.Skip(int(length)); err != nil {
				return err
			}
		}
		rc.offsets = append(rc.offsets, rc.buf.Pos())
	}
	return rc.buf.Seek(rc.offsets[ordinal])
}

// value seeks to the column and consumes its length prefix, leaving the
// buffer at the first value byte. It returns the declared length, -1
// for NULL.
func (rc *rowCursor) value(ordinal int, sequential bool) (int, error) {
	if err := rc.seek(ordinal, sequential); err != nil {
		return 0, err
	}
	length, err := rc.buf.ReadInt32()
	if err != nil {
		return 0, err
	}
	if ordinal > rc.visited {
		rc.visited = ordinal
	}
	return int(length), nil
}
