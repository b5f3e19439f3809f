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

// Package wiremock provides a scripted message source and counting
// handler wrappers for reader tests.
package wiremock

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"slices"

	"github.com/go-pgcursor/pgcursor/codec"
	"github.com/go-pgcursor/pgcursor/wire"
)

// ErrScriptExhausted is returned when the reader asks for more messages
// than the script holds, which means the scenario under test consumed
// more than it should have.
var ErrScriptExhausted = errors.New("wiremock: script exhausted")

// Script replays a canned message sequence as a wire.Source. It records
// the sequential hints it was given and the kinds of messages SkipUntil
// discarded, so tests can assert on consumption behavior.
type Script struct {
	Messages []wire.Message

	// NextErr, once set, is returned by every subsequent call.
	NextErr error

	// Hints collects the sequential hint of every Next call.
	Hints []bool

	// Skipped collects the kinds of messages SkipUntil discarded
	// without delivering.
	Skipped []wire.Kind

	pos int
}

// NewScript builds a script over the given messages.
func NewScript(messages ...wire.Message) *Script {
	return &Script{Messages: messages}
}

// Remaining returns the number of undelivered messages.
func (s *Script) Remaining() int { return len(s.Messages) - s.pos }

// Next implements wire.Source.
func (s *Script) Next(ctx context.Context, sequential bool) (wire.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.NextErr != nil {
		return nil, s.NextErr
	}
	s.Hints = append(s.Hints, sequential)
	if s.pos >= len(s.Messages) {
		return nil, ErrScriptExhausted
	}
	m := s.Messages[s.pos]
	s.pos++
	return m, nil
}

// SkipUntil implements wire.Source.
func (s *Script) SkipUntil(ctx context.Context, kinds ...wire.Kind) (wire.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.NextErr != nil {
		return nil, s.NextErr
	}
	for s.pos < len(s.Messages) {
		m := s.Messages[s.pos]
		s.pos++
		if slices.Contains(kinds, m.Kind()) {
			return m, nil
		}
		s.Skipped = append(s.Skipped, m.Kind())
	}
	return nil, ErrScriptExhausted
}

// Row builds a DataRow from column values. A nil value is a NULL
// column.
func Row(values ...[]byte) *wire.DataRow {
	var payload []byte
	for _, v := range values {
		if v == nil {
			payload = binary.BigEndian.AppendUint32(payload, 0xFFFFFFFF)
			continue
		}
		payload = binary.BigEndian.AppendUint32(payload, uint32(len(v)))
		payload = append(payload, v...)
	}
	return &wire.DataRow{ColumnCount: len(values), Payload: payload}
}

// Int4 encodes an int4 column value.
func Int4(v int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

// Int8 encodes an int8 column value.
func Int8(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

// Float8 encodes a float8 column value.
func Float8(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

// Text encodes a text column value.
func Text(s string) []byte { return []byte(s) }

// Bool encodes a bool column value.
func Bool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// Array encodes a one-dimensional array column value over already
// encoded elements. A nil element is a NULL element.
func Array(elemOID uint32, elems ...[]byte) []byte {
	ndims := uint32(1)
	if len(elems) == 0 {
		ndims = 0
	}
	out := binary.BigEndian.AppendUint32(nil, ndims)
	out = binary.BigEndian.AppendUint32(out, 0) // null bitmap flag
	out = binary.BigEndian.AppendUint32(out, elemOID)
	if len(elems) == 0 {
		return out
	}
	out = binary.BigEndian.AppendUint32(out, uint32(len(elems)))
	out = binary.BigEndian.AppendUint32(out, 1) // lower bound
	for _, e := range elems {
		if e == nil {
			out = binary.BigEndian.AppendUint32(out, 0xFFFFFFFF)
			continue
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(e)))
		out = append(out, e...)
	}
	return out
}

// Desc builds a RowDescription from name/OID pairs.
func Desc(fields ...wire.FieldDescription) *wire.RowDescription {
	return &wire.RowDescription{Fields: fields}
}

// Field is shorthand for a field description.
func Field(name string, oid uint32) wire.FieldDescription {
	return wire.FieldDescription{Name: name, TypeOID: oid}
}

// CountingHandler wraps a codec handler and counts decode invocations,
// for cache idempotence tests.
type CountingHandler struct {
	codec.Handler

	// Decodes counts generic decodes; ProviderDecodes counts
	// provider-specific ones.
	Decodes         int
	ProviderDecodes int
}

// Decode implements codec.Handler.
func (c *CountingHandler) Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	c.Decodes++
	return c.Handler.Decode(buf, fld, length)
}

// DecodeProvider implements codec.Handler.
func (c *CountingHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	c.ProviderDecodes++
	return c.Handler.DecodeProvider(buf, fld, length)
}

// Conn records busy transitions and close calls.
type Conn struct {
	Busy       bool
	BusyCalls  []bool
	CloseCalls int
	CloseErr   error
}

// SetBusy implements the connection busy marker.
func (c *Conn) SetBusy(busy bool) {
	c.Busy = busy
	c.BusyCalls = append(c.BusyCalls, busy)
}

// Close implements the connection close.
func (c *Conn) Close() error {
	c.CloseCalls++
	return c.CloseErr
}
