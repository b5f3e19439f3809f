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
	"bytes"
	"errors"
	"testing"
)

func TestBufferReads(t *testing.T) {
	// 0x0102 (int16), 0x01020304 (int32), 8-byte int64, "ab"
	data := []byte{
		0x01, 0x02,
		0x01, 0x02, 0x03, 0x04,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		'a', 'b',
	}
	b := NewBuffer(data)

	i16, err := b.ReadInt16()
	if err != nil || i16 != 0x0102 {
		t.Fatalf("ReadInt16 = (%d, %v), expected 258", i16, err)
	}
	i32, err := b.ReadInt32()
	if err != nil || i32 != 0x01020304 {
		t.Fatalf("ReadInt32 = (%d, %v), expected 16909060", i32, err)
	}
	i64, err := b.ReadInt64()
	if err != nil || i64 != 5 {
		t.Fatalf("ReadInt64 = (%d, %v), expected 5", i64, err)
	}
	rest, err := b.ReadBytes(2)
	if err != nil || !bytes.Equal(rest, []byte("ab")) {
		t.Fatalf("ReadBytes = (%q, %v), expected ab", rest, err)
	}
	if b.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", b.Remaining())
	}
}

func TestBufferNegativeLength(t *testing.T) {
	// -1 length prefixes decode as 0xFFFFFFFF
	b := NewBuffer([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	v, err := b.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if v != -1 {
		t.Errorf("expected -1, got %d", v)
	}
}

func TestBufferShortReads(t *testing.T) {
	b := NewBuffer([]byte{0x01})
	if _, err := b.ReadInt32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if _, err := b.ReadBytes(2); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if err := b.Skip(2); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if err := b.Ensure(-1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer for negative n, got %v", err)
	}
}

func TestBufferSeek(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3, 4})
	if err := b.Skip(3); err != nil {
		t.Fatal(err)
	}
	if err := b.Seek(1); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReadBytes(1)
	if err != nil || v[0] != 2 {
		t.Fatalf("expected byte 2 after seek, got (%v, %v)", v, err)
	}
	if err := b.Seek(5); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer for out of range seek, got %v", err)
	}
	if err := b.Seek(-1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer for negative seek, got %v", err)
	}
}
