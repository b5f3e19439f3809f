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

import (
	"io"
	"strings"

	"github.com/go-pgcursor/pgcursor/codec"
)

// ColumnReader opens a reader over the raw bytes of a large binary
// column. The stream is exclusive: at most one open stream per row, and
// it becomes invalid once the row is superseded. The column's handler
// must support raw byte access.
func (r *Reader) ColumnReader(ordinal int) (*ColumnStream, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return nil, err
	}
	if r.row.streaming {
		return nil, ErrStreamOpen
	}
	bs, ok := r.handlers[ordinal].(codec.ByteStreamer)
	if !ok {
		return nil, r.castError(ordinal, "io.Reader")
	}
	r.row.streaming = true
	data, err := r.streamedValue(ordinal, func(length int) ([]byte, error) {
		return bs.Bytes(r.row.buf, length)
	})
	if err != nil {
		r.row.streaming = false
		return nil, err
	}
	return &ColumnStream{cursor: r.row, data: data}, nil
}

// ColumnTextReader opens a reader over the text of a large character
// column, with the same exclusivity rules as ColumnReader. The column's
// handler must support text access.
func (r *Reader) ColumnTextReader(ordinal int) (*ColumnTextStream, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return nil, err
	}
	if r.row.streaming {
		return nil, ErrStreamOpen
	}
	cs, ok := r.handlers[ordinal].(codec.CharStreamer)
	if !ok {
		return nil, r.castError(ordinal, "text reader")
	}
	r.row.streaming = true
	var text string
	_, err := r.streamedValue(ordinal, func(length int) ([]byte, error) {
		var err error
		text, err = cs.Text(r.row.buf, length)
		return nil, err
	})
	if err != nil {
		r.row.streaming = false
		return nil, err
	}
	return &ColumnTextStream{cursor: r.row, Reader: strings.NewReader(text)}, nil
}

// streamedValue seeks to the column and hands its length to the
// handler access function. NULL columns fail with ErrNullValue.
func (r *Reader) streamedValue(ordinal int, access func(length int) ([]byte, error)) ([]byte, error) {
	length, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, ErrNullValue
	}
	return access(length)
}

// ColumnBytes copies up to length bytes of the column's value, starting
// at dataOffset within the value, into dst at dstOffset. It returns the
// number of bytes copied. A nil dst returns the total value length
// instead. The column's handler must support raw byte access.
func (r *Reader) ColumnBytes(ordinal int, dataOffset int64, dst []byte, dstOffset, length int) (int64, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return 0, err
	}
	bs, ok := r.handlers[ordinal].(codec.ByteStreamer)
	if !ok {
		return 0, r.castError(ordinal, "byte range")
	}
	valLen, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return 0, err
	}
	if valLen < 0 {
		return 0, ErrNullValue
	}
	if dst == nil {
		return int64(valLen), nil
	}
	if err := checkRange(dataOffset, int64(valLen), dst, dstOffset, length); err != nil {
		return 0, err
	}
	data, err := bs.Bytes(r.row.buf, valLen)
	if err != nil {
		return 0, err
	}
	n := copy(dst[dstOffset:dstOffset+length], data[dataOffset:])
	return int64(n), nil
}

// ColumnChars copies up to length characters of the column's text,
// starting at the dataOffset-th character, into dst at dstOffset. It
// returns the number of characters copied. A nil dst returns the total
// character count instead. The column's handler must support text
// access.
func (r *Reader) ColumnChars(ordinal int, dataOffset int64, dst []rune, dstOffset, length int) (int64, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return 0, err
	}
	cs, ok := r.handlers[ordinal].(codec.CharStreamer)
	if !ok {
		return 0, r.castError(ordinal, "char range")
	}
	valLen, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return 0, err
	}
	if valLen < 0 {
		return 0, ErrNullValue
	}
	text, err := cs.Text(r.row.buf, valLen)
	if err != nil {
		return 0, err
	}
	chars := []rune(text)
	if dst == nil {
		return int64(len(chars)), nil
	}
	if err := checkRange(dataOffset, int64(len(chars)), nil, dstOffset, length); err != nil {
		return 0, err
	}
	if dstOffset+length > len(dst) {
		return 0, &ArgumentRangeError{Name: "length", Value: int64(length)}
	}
	n := copy(dst[dstOffset:dstOffset+length], chars[dataOffset:])
	return int64(n), nil
}

// checkRange validates the offset and length arguments of a range
// getter. dst may be nil when the destination bound is checked by the
// caller.
func checkRange(dataOffset, valLen int64, dst []byte, dstOffset, length int) error {
	if dataOffset < 0 || dataOffset > valLen {
		return &ArgumentRangeError{Name: "dataOffset", Value: dataOffset}
	}
	if dstOffset < 0 {
		return &ArgumentRangeError{Name: "dstOffset", Value: int64(dstOffset)}
	}
	if length < 0 {
		return &ArgumentRangeError{Name: "length", Value: int64(length)}
	}
	if dst != nil && dstOffset+length > len(dst) {
		return &ArgumentRangeError{Name: "length", Value: int64(length)}
	}
	return nil
}

// ColumnStream reads the raw bytes of one column. Closing it releases
// the row's streaming slot; reads after the row is superseded fail.
type ColumnStream struct {
	cursor *rowCursor
	data   []byte
	pos    int
	closed bool
}

// Read implements io.Reader.
func (s *ColumnStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if s.cursor.superseded {
		// the data aliases a row payload the reader has moved past
		return 0, ErrNoActiveRow
	}
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

// Len returns the number of unread bytes.
func (s *ColumnStream) Len() int {
	if s.closed || s.cursor.superseded || s.pos >= len(s.data) {
		return 0
	}
	return len(s.data) - s.pos
}

// Close releases the row's streaming slot. Closing twice is a no-op.
func (s *ColumnStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cursor.streaming = false
	return nil
}

// ColumnTextStream reads the text of one column. Closing it releases
// the row's streaming slot.
type ColumnTextStream struct {
	cursor *rowCursor
	closed bool
	*strings.Reader
}

// Close releases the row's streaming slot. Closing twice is a no-op.
func (s *ColumnTextStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cursor.streaming = false
	return nil
}
