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

package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-pgcursor/pgcursor/wire"
)

// ErrInfinity is returned when an infinite timestamp or date is decoded
// into time.Time, which has no representation for it. The provider
// path decodes such values losslessly.
var ErrInfinity = errors.New("codec: infinite value cannot be represented as time.Time")

// valueLengthError reports a declared column length the handler's wire
// format cannot have.
type valueLengthError struct {
	typ    string
	length int
}

// Error returns the error message.
func (e *valueLengthError) Error() string {
	return fmt.Sprintf("codec: invalid length %d for %s value", e.length, e.typ)
}

// postgres timestamps and dates count from 2000-01-01.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// InfinityModifier marks timestamp and date values that lie outside the
// finite range.
type InfinityModifier int8

const (
	// Finite is an ordinary value.
	Finite InfinityModifier = iota
	// Infinity is the special value 'infinity'.
	Infinity
	// NegativeInfinity is the special value '-infinity'.
	NegativeInfinity
)

// Timestamp is the provider-specific representation of timestamp
// columns. Unlike time.Time it can carry the infinite values.
type Timestamp struct {
	Time     time.Time
	Infinity InfinityModifier
}

// Date is the provider-specific representation of date columns.
type Date struct {
	Time     time.Time
	Infinity InfinityModifier
}

// UUID is the provider-specific representation of uuid columns.
type UUID [16]byte

// BoolHandler decodes the 1-byte boolean wire format.
type BoolHandler struct{}

func (BoolHandler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 1 {
		return nil, &valueLengthError{typ: "bool", length: length}
	}
	b, err := buf.ReadBytes(1)
	if err != nil {
		return nil, err
	}
	return b[0] != 0, nil
}

func (h BoolHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (BoolHandler) ArbitraryLength() bool { return false }

// Int2Handler decodes 2-byte integers to int16.
type Int2Handler struct{}

func (Int2Handler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 2 {
		return nil, &valueLengthError{typ: "int2", length: length}
	}
	v, err := buf.ReadInt16()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h Int2Handler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (Int2Handler) ArbitraryLength() bool { return false }

// Int4Handler decodes 4-byte integers to int32.
type Int4Handler struct{}

func (Int4Handler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 4 {
		return nil, &valueLengthError{typ: "int4", length: length}
	}
	v, err := buf.ReadInt32()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h Int4Handler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (Int4Handler) ArbitraryLength() bool { return false }

// Int8Handler decodes 8-byte integers to int64.
type Int8Handler struct{}

func (Int8Handler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 8 {
		return nil, &valueLengthError{typ: "int8", length: length}
	}
	v, err := buf.ReadInt64()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h Int8Handler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (Int8Handler) ArbitraryLength() bool { return false }

// Float4Handler decodes 4-byte IEEE floats to float32.
type Float4Handler struct{}

func (Float4Handler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 4 {
		return nil, &valueLengthError{typ: "float4", length: length}
	}
	v, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	return math.Float32frombits(v), nil
}

func (h Float4Handler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (Float4Handler) ArbitraryLength() bool { return false }

// Float8Handler decodes 8-byte IEEE floats to float64.
type Float8Handler struct{}

func (Float8Handler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 8 {
		return nil, &valueLengthError{typ: "float8", length: length}
	}
	v, err := buf.ReadInt64()
	if err != nil {
		return nil, err
	}
	return math.Float64frombits(uint64(v)), nil
}

func (h Float8Handler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (Float8Handler) ArbitraryLength() bool { return false }

// TextHandler decodes text, varchar and name columns to string. Text
// values can be arbitrarily large, so the handler supports incremental
// consumption and character-range access.
type TextHandler struct{}

func (TextHandler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	b, err := buf.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h TextHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (TextHandler) ArbitraryLength() bool { return true }

// Text implements CharStreamer.
func (TextHandler) Text(buf *wire.Buffer, length int) (string, error) {
	b, err := buf.ReadBytes(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ByteaHandler decodes bytea columns. The generic value is a copy of
// the value bytes, so it stays valid after the row is superseded.
type ByteaHandler struct{}

func (ByteaHandler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	b, err := buf.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

func (h ByteaHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (ByteaHandler) ArbitraryLength() bool { return true }

// Bytes implements ByteStreamer. The returned slice aliases the row
// payload.
func (ByteaHandler) Bytes(buf *wire.Buffer, length int) ([]byte, error) {
	return buf.ReadBytes(length)
}

// DateHandler decodes 4-byte dates (days since 2000-01-01).
type DateHandler struct{}

func (h DateHandler) Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	v, err := h.DecodeProvider(buf, fld, length)
	if err != nil {
		return nil, err
	}
	d := v.(Date)
	if d.Infinity != Finite {
		return nil, ErrInfinity
	}
	return d.Time, nil
}

func (DateHandler) DecodeProvider(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 4 {
		return nil, &valueLengthError{typ: "date", length: length}
	}
	days, err := buf.ReadInt32()
	if err != nil {
		return nil, err
	}
	switch days {
	case math.MaxInt32:
		return Date{Infinity: Infinity}, nil
	case math.MinInt32:
		return Date{Infinity: NegativeInfinity}, nil
	}
	return Date{Time: epoch.AddDate(0, 0, int(days))}, nil
}

func (DateHandler) ArbitraryLength() bool { return false }

// TimestampHandler decodes 8-byte timestamps (microseconds since
// 2000-01-01). It serves both timestamp and timestamptz columns.
type TimestampHandler struct{}

func (h TimestampHandler) Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	v, err := h.DecodeProvider(buf, fld, length)
	if err != nil {
		return nil, err
	}
	ts := v.(Timestamp)
	if ts.Infinity != Finite {
		return nil, ErrInfinity
	}
	return ts.Time, nil
}

func (TimestampHandler) DecodeProvider(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 8 {
		return nil, &valueLengthError{typ: "timestamp", length: length}
	}
	micros, err := buf.ReadInt64()
	if err != nil {
		return nil, err
	}
	switch micros {
	case math.MaxInt64:
		return Timestamp{Infinity: Infinity}, nil
	case math.MinInt64:
		return Timestamp{Infinity: NegativeInfinity}, nil
	}
	return Timestamp{Time: epoch.Add(time.Duration(micros) * time.Microsecond)}, nil
}

func (TimestampHandler) ArbitraryLength() bool { return false }

// UUIDHandler decodes 16-byte uuid columns. The generic value is the
// canonical textual form; the provider value is the raw 16 bytes.
type UUIDHandler struct{}

func (h UUIDHandler) Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	v, err := h.DecodeProvider(buf, fld, length)
	if err != nil {
		return nil, err
	}
	u := v.(UUID)
	dst := make([]byte, 36)
	hex.Encode(dst, u[:4])
	dst[8] = '-'
	hex.Encode(dst[9:], u[4:6])
	dst[13] = '-'
	hex.Encode(dst[14:], u[6:8])
	dst[18] = '-'
	hex.Encode(dst[19:], u[8:10])
	dst[23] = '-'
	hex.Encode(dst[24:], u[10:])
	return string(dst), nil
}

func (UUIDHandler) DecodeProvider(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	if length != 16 {
		return nil, &valueLengthError{typ: "uuid", length: length}
	}
	b, err := buf.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	var u UUID
	copy(u[:], b)
	return u, nil
}

func (UUIDHandler) ArbitraryLength() bool { return false }

// UnknownHandler is the fallback for unregistered type OIDs. It hands
// the caller a copy of the raw value bytes.
type UnknownHandler struct{}

func (UnknownHandler) Decode(buf *wire.Buffer, _ wire.FieldDescription, length int) (any, error) {
	b, err := buf.ReadBytes(length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

func (h UnknownHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.Decode(buf, fld, length)
}

func (UnknownHandler) ArbitraryLength() bool { return true }

// Bytes implements ByteStreamer.
func (UnknownHandler) Bytes(buf *wire.Buffer, length int) ([]byte, error) {
	return buf.ReadBytes(length)
}
