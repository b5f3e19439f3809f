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
	"errors"
	"fmt"

	"github.com/go-pgcursor/pgcursor/wire"
)

var (
	// ErrNoActiveRow is returned when a column accessor is called with
	// no row installed, either because Read has not been called or
	// because the reader has moved past the result set.
	ErrNoActiveRow = errors.New("pgcursor: no active row; call Read first")

	// ErrNullValue is returned when a non-nullable typed read hits a
	// NULL column.
	ErrNullValue = errors.New("pgcursor: column is null")

	// ErrStreamOpen is returned when a streaming getter is invoked
	// while another column stream is still open on the same row.
	ErrStreamOpen = errors.New("pgcursor: a column stream is already open on this row")

	// ErrSequentialRewind is returned when an already-passed ordinal is
	// requested in sequential access mode, which is strictly forward.
	ErrSequentialRewind = errors.New("pgcursor: cannot re-read an earlier column in sequential mode")
)

// OrdinalRangeError reports a column ordinal outside the active result
// descriptor.
type OrdinalRangeError struct {
	Ordinal    int
	FieldCount int
}

// Error returns the error message.
func (e *OrdinalRangeError) Error() string {
	return fmt.Sprintf("pgcursor: ordinal %d out of range [0, %d)", e.Ordinal, e.FieldCount)
}

// ArgumentRangeError reports an invalid offset or length argument to a
// byte/char range getter.
type ArgumentRangeError struct {
	Name  string
	Value int64
}

// Error returns the error message.
func (e *ArgumentRangeError) Error() string {
	return fmt.Sprintf("pgcursor: argument %s = %d out of range", e.Name, e.Value)
}

// CastError reports that the column's type handler cannot produce the
// requested Go type.
type CastError struct {
	Ordinal int
	TypeOID uint32
	GoType  string
}

// Error returns the error message.
func (e *CastError) Error() string {
	return fmt.Sprintf("pgcursor: column %d (type oid %d) cannot be read as %s", e.Ordinal, e.TypeOID, e.GoType)
}

// ProtocolError reports a message kind the state machine has no
// transition for. It is fatal: the reader cannot resynchronize with the
// server and must be closed by the caller.
type ProtocolError struct {
	Kind   wire.Kind
	State  string
	Detail string
}

// Error returns the error message.
func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("pgcursor: unexpected %s message in state %s: %s", e.Kind, e.State, e.Detail)
	}
	return fmt.Sprintf("pgcursor: unexpected %s message in state %s", e.Kind, e.State)
}
