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
	"strconv"

	"github.com/go-pgcursor/pgcursor/internal/stringutil"
)

// Kind identifies a backend protocol message relevant to result
// consumption. The values mirror the single-byte type codes the server
// puts on the wire.
type Kind byte

const (
	// KindRowDescription announces the field layout of a new result set.
	KindRowDescription Kind = 'T'

	// KindDataRow carries the binary payload of one row.
	KindDataRow Kind = 'D'

	// KindCommandComplete terminates one statement's result and carries
	// its command tag.
	KindCommandComplete Kind = 'C'

	// KindEmptyQueryResponse replaces CommandComplete for an empty
	// query string.
	KindEmptyQueryResponse Kind = 'I'

	// KindReadyForQuery marks the end of the whole batch; the connection
	// is back to idle.
	KindReadyForQuery Kind = 'Z'

	// KindBindComplete acknowledges a Bind and carries no payload.
	KindBindComplete Kind = '2'
)

// String returns a human-readable name for the message kind.
func (k Kind) String() string {
	switch k {
	case KindRowDescription:
		return "RowDescription"
	case KindDataRow:
		return "DataRow"
	case KindCommandComplete:
		return "CommandComplete"
	case KindEmptyQueryResponse:
		return "EmptyQueryResponse"
	case KindReadyForQuery:
		return "ReadyForQuery"
	case KindBindComplete:
		return "BindComplete"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Message is one backend protocol message, already framed by the
// message source. Only the kinds above ever reach the reader; anything
// else is the source's problem.
type Message interface {
	Kind() Kind
}

// FieldDescription describes one column of a result set.
type FieldDescription struct {
	// Name is the column name as reported by the server.
	Name string

	// TypeOID identifies the server data type of the column.
	TypeOID uint32
}

// RowDescription announces a new result set. The field list is immutable
// once delivered; a new result set delivers a fresh RowDescription.
type RowDescription struct {
	Fields []FieldDescription
}

// Kind implements Message.
func (*RowDescription) Kind() Kind { return KindRowDescription }

// DataRow carries one row. Payload holds, for each column in order, a
// signed 32-bit big-endian length (-1 for NULL) followed by that many
// value bytes. ColumnCount is the leading 16-bit count already consumed
// by the framer.
type DataRow struct {
	ColumnCount int
	Payload     []byte
}

// Kind implements Message.
func (*DataRow) Kind() Kind { return KindDataRow }

// CommandComplete terminates one statement within the batch. Tag is the
// textual command tag, e.g. "SELECT 2" or "INSERT 0 8".
type CommandComplete struct {
	Tag string
}

// Kind implements Message.
func (*CommandComplete) Kind() Kind { return KindCommandComplete }

// RowsAffected parses the trailing row count out of the command tag.
// Tags without a count ("BEGIN", "SET") report ok = false.
func (c *CommandComplete) RowsAffected() (n int64, ok bool) {
	var last string
	stringutil.WalkByStep(c.Tag, ' ', func(_ int, part string) bool {
		last = part
		return true
	})
	v, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// InsertedOID parses the object identifier out of an INSERT tag
// ("INSERT <oid> <rows>"). Zero means the table has no OIDs; ok reports
// whether the tag is an INSERT tag at all.
func (c *CommandComplete) InsertedOID() (oid int64, ok bool) {
	var words [3]string
	n := 0
	stringutil.WalkByStep(c.Tag, ' ', func(i int, part string) bool {
		if i < len(words) {
			words[i] = part
			n = i + 1
		}
		return i < len(words)-1
	})
	if n < 3 || words[0] != "INSERT" {
		return 0, false
	}
	v, err := strconv.ParseInt(words[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EmptyQueryResponse is the server's answer to an empty query string; it
// stands in for CommandComplete with no tag.
type EmptyQueryResponse struct{}

// Kind implements Message.
func (*EmptyQueryResponse) Kind() Kind { return KindEmptyQueryResponse }

// ReadyForQuery ends the batch. TxStatus is the transaction status byte
// ('I', 'T' or 'E'); the reader does not interpret it.
type ReadyForQuery struct {
	TxStatus byte
}

// Kind implements Message.
func (*ReadyForQuery) Kind() Kind { return KindReadyForQuery }

// BindComplete acknowledges parameter binding. The reader skips it.
type BindComplete struct{}

// Kind implements Message.
func (*BindComplete) Kind() Kind { return KindBindComplete }
