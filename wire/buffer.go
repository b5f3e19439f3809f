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

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read runs past the end of the row
// payload. It indicates a framing bug in the message source, not a
// recoverable condition.
var ErrShortBuffer = errors.New("wire: read past end of row payload")

// Buffer is a forward-only cursor over the binary payload of one
// DataRow. All integers are big-endian, per protocol. Buffer does no
// internal allocation; ReadBytes returns views into the payload that
// are only valid until the row is superseded.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer wraps a row payload.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Pos returns the current byte offset within the payload.
func (b *Buffer) Pos() int { return b.pos }

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Ensure verifies that at least n bytes remain buffered. Handlers that
// cannot consume a value across multiple buffer fills call this before
// decoding; with a fully framed DataRow the check can only fail on a
// corrupt length prefix.
func (b *Buffer) Ensure(n int) error {
	if n < 0 || n > b.Remaining() {
		return fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, n, b.Remaining())
	}
	return nil
}

// ReadInt16 reads a signed 16-bit integer.
func (b *Buffer) ReadInt16() (int16, error) {
	if err := b.Ensure(2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(b.data[b.pos:]))
	b.pos += 2
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer.
func (b *Buffer) ReadInt32() (int32, error) {
	if err := b.Ensure(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(b.data[b.pos:]))
	b.pos += 4
	return v, nil
}

// ReadInt64 reads a signed 64-bit integer.
func (b *Buffer) ReadInt64() (int64, error) {
	if err := b.Ensure(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(b.data[b.pos:]))
	b.pos += 8
	return v, nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.Ensure(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// ReadBytes returns the next n bytes without copying. The returned
// slice aliases the payload.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := b.Ensure(n); err != nil {
		return nil, err
	}
	v := b.data[b.pos : b.pos+n]
	b.pos += n
	return v, nil
}

// Skip advances the cursor n bytes without reading them.
func (b *Buffer) Skip(n int) error {
	if err := b.Ensure(n); err != nil {
		return err
	}
	b.pos += n
	return nil
}

// Seek moves the cursor to an absolute offset. Only forward or in-place
// seeks are meaningful for row consumption; backward seeks are allowed
// so a cached re-read can restart a column, but callers outside this
// module should not rely on it.
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return fmt.Errorf("%w: seek to %d of %d", ErrShortBuffer, pos, len(b.data))
	}
	b.pos = pos
	return nil
}
