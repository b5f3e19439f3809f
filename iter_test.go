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
	"context"
	"testing"

	"github.com/go-pgcursor/pgcursor/codec"
	"github.com/go-pgcursor/pgcursor/internal/wiremock"
	"github.com/go-pgcursor/pgcursor/wire"
)

func TestRowsIterator(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestReader(t, &Command{}, selectMessages())

	var ids []int32
	for id, err := range Rows[int32](ctx, r, 0) {
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestRowsIteratorEarlyBreak(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestReader(t, &Command{}, selectMessages())

	for range Rows[int32](ctx, r, 0) {
		break
	}
	// the cursor stays usable after an abandoned iteration
	ok, err := r.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read after break = (%v, %v), expected true", ok, err)
	}
	id, err := Column[int32](r, 0)
	if err != nil || id != 2 {
		t.Fatalf("expected the second row, got (%d, %v)", id, err)
	}
}

func TestScanIterator(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestReader(t, &Command{}, selectMessages())

	type pair struct {
		id   int32
		name string
	}
	var got []pair
	for p, err := range Scan(ctx, r, func(r *Reader) (pair, error) {
		id, err := Column[int32](r, 0)
		if err != nil {
			return pair{}, err
		}
		name, err := Column[string](r, 1)
		if err != nil {
			return pair{}, err
		}
		return pair{id, name}, nil
	}) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, p)
	}
	if len(got) != 2 || got[0] != (pair{1, "a"}) || got[1] != (pair{2, "b"}) {
		t.Errorf("unexpected rows %v", got)
	}
}

func TestRowsIteratorEmptyResult(t *testing.T) {
	ctx := context.Background()
	msgs := []wire.Message{
		wiremock.Desc(wiremock.Field("id", codec.OIDInt4)),
		&wire.CommandComplete{Tag: "SELECT 0"},
		&wire.ReadyForQuery{TxStatus: 'I'},
	}
	r, _ := newTestReader(t, &Command{}, msgs)
	for range Rows[int32](ctx, r, 0) {
		t.Fatal("unexpected row")
	}
}
