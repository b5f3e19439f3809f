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
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-pgcursor/pgcursor/codec"
	"github.com/go-pgcursor/pgcursor/internal/stringutil"
	"github.com/go-pgcursor/pgcursor/wire"
)

// state is the reader's position in the batch lifecycle.
type state int8

const (
	// stateInResult means a result descriptor is active and rows may
	// still arrive.
	stateInResult state = iota

	// stateBetweenResults means the previous result completed and the
	// next descriptor has not arrived yet.
	stateBetweenResults

	// stateConsumed means the batch-ready message arrived; the batch is
	// exhausted but the reader is still open.
	stateConsumed

	// stateClosed is terminal.
	stateClosed
)

// String returns a human-readable state name.
func (s state) String() string {
	switch s {
	case stateInResult:
		return "InResult"
	case stateBetweenResults:
		return "BetweenResults"
	case stateConsumed:
		return "Consumed"
	default:
		return "Closed"
	}
}

// triState is a cached yes/no answer that may not have been computed
// yet.
type triState int8

const (
	triUnknown triState = iota
	triTrue
	triFalse
)

// readOutcome is the result of classifying one message during a row
// advance.
type readOutcome int8

const (
	outcomeReadAgain readOutcome = iota
	outcomeRowProduced
	outcomeRowNotProduced
)

// Reader turns the ordered message stream of one command batch into a
// row/column cursor. A Reader is bound to one command on one
// connection and is not safe for concurrent use; every advance or peek
// may block on the message source.
type Reader struct {
	source   wire.Source
	command  *Command
	registry *codec.Registry
	conn     Conn
	logger   *slog.Logger
	onClose  func()

	// described holds a result descriptor known before any message was
	// read, for pre-described commands.
	described []wire.FieldDescription

	state    state
	fields   []wire.FieldDescription
	handlers []codec.Handler

	row   *rowCursor
	cache *columnCache

	// pending is the one-slot lookahead: a message read ahead by
	// HasRows that must be replayed before the source is asked again.
	pending wire.Message

	hasRows      triState
	seenRow      bool
	outParamsSet bool

	recordsAffected int64
	lastInsertOID   int64
}

// Option configures a Reader.
type Option func(*Reader)

// WithRegistry replaces the default type handler registry.
func WithRegistry(reg *codec.Registry) Option {
	return func(r *Reader) { r.registry = reg }
}

// WithConn binds the reader to its owning connection. The reader marks
// the connection busy for its lifetime.
func WithConn(conn Conn) Option {
	return func(r *Reader) { r.conn = conn }
}

// WithLogger sets the logger for reader lifecycle events. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

// WithCloseHook registers a function invoked synchronously, exactly
// once, after the reader finishes closing.
func WithCloseHook(hook func()) Option {
	return func(r *Reader) { r.onClose = hook }
}

// WithDescriptor supplies a result descriptor already known at
// construction, as for a previously described prepared statement. The
// reader then starts positioned in the first result instead of loading
// it from the stream.
func WithDescriptor(fields []wire.FieldDescription) Option {
	return func(r *Reader) { r.described = fields }
}

// NewReader builds a reader over the given message source and command.
// Unless a descriptor is supplied with WithDescriptor, the reader
// immediately loads the first result set, which may block on the
// source.
func NewReader(ctx context.Context, source wire.Source, command *Command, opts ...Option) (*Reader, error) {
	if command == nil {
		command = &Command{}
	}
	r := &Reader{
		source:          source,
		command:         command,
		registry:        codec.Default(),
		logger:          slog.New(slog.DiscardHandler),
		state:           stateBetweenResults,
		hasRows:         triUnknown,
		recordsAffected: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.sequential() {
		r.cache = newColumnCache(0)
	}
	if r.conn != nil {
		r.conn.SetBusy(true)
	}
	if r.described != nil {
		r.installDescriptor(&wire.RowDescription{Fields: r.described})
		r.state = stateInResult
		return r, nil
	}
	if err := r.loadFirstResult(ctx); err != nil {
		// no Reader is handed out, so the caller has nothing to Close;
		// release the connection here
		if r.conn != nil {
			r.conn.SetBusy(false)
		}
		return nil, err
	}
	return r, nil
}

// loadFirstResult positions the reader on the batch's first result. It
// stops at the first result boundary either way: a descriptor puts the
// reader in the result, a completion leaves it between results so a
// rowless first statement is still observable as an empty result.
func (r *Reader) loadFirstResult(ctx context.Context) error {
	for {
		msg, err := r.nextMessage(ctx)
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case *wire.BindComplete:
			// acknowledgement only
		case *wire.RowDescription:
			r.installDescriptor(m)
			r.state = stateInResult
			return nil
		case *wire.CommandComplete:
			r.foldCommandComplete(m)
			r.endResult()
			return nil
		case *wire.EmptyQueryResponse:
			r.endResult()
			return nil
		case *wire.ReadyForQuery:
			r.state = stateConsumed
			return nil
		default:
			return r.protocolError(msg)
		}
	}
}

// sequential reports whether single-pass column access was requested.
func (r *Reader) sequential() bool {
	return r.command.Behavior.Has(SequentialAccess)
}

// FieldCount returns the number of fields in the active result
// descriptor, zero when the reader is not positioned in a result.
func (r *Reader) FieldCount() int {
	if r.state != stateInResult {
		return 0
	}
	return len(r.fields)
}

// FieldName returns the name of the given field of the active result.
func (r *Reader) FieldName(ordinal int) (string, error) {
	if err := r.checkOrdinal(ordinal); err != nil {
		return "", err
	}
	return r.fields[ordinal].Name, nil
}

// FieldOID returns the server type OID of the given field of the
// active result.
func (r *Reader) FieldOID(ordinal int) (uint32, error) {
	if err := r.checkOrdinal(ordinal); err != nil {
		return 0, err
	}
	return r.fields[ordinal].TypeOID, nil
}

// RecordsAffected returns the summed row counts of every
// command-complete message folded in so far, or -1 if none reported a
// count yet.
func (r *Reader) RecordsAffected() int64 { return r.recordsAffected }

// LastInsertOID returns the object identifier reported by the most
// recent INSERT completion, zero if none.
func (r *Reader) LastInsertOID() int64 { return r.lastInsertOID }

// IsClosed reports whether Close completed.
func (r *Reader) IsClosed() bool { return r.state == stateClosed }

// Read advances to the next row of the current result set. It returns
// false, without error, once the result set is exhausted or the reader
// has moved past it.
func (r *Reader) Read(ctx context.Context) (bool, error) {
	r.dropRow()
	if r.state != stateInResult {
		return false, nil
	}
	if r.command.Behavior.Has(SingleRow) && r.seenRow {
		// one row was already surfaced; eat the rest of the result
		if err := r.finishResult(ctx); err != nil {
			return false, err
		}
		return false, nil
	}
	for {
		msg, err := r.nextMessage(ctx)
		if err != nil {
			return false, err
		}
		outcome, err := r.processMessage(msg)
		if err != nil {
			return false, err
		}
		switch outcome {
		case outcomeRowProduced:
			return true, nil
		case outcomeRowNotProduced:
			return false, nil
		}
	}
}

// NextResult advances past the current result set to the next one in
// the batch. It returns false once the batch is exhausted.
func (r *Reader) NextResult(ctx context.Context) (bool, error) {
	if r.command.Kind == CommandStoredProcedure && !r.outParamsSet && r.state == stateInResult {
		// output parameters ride on the first row; fetch it before
		// abandoning the result
		if _, err := r.Read(ctx); err != nil {
			return false, err
		}
	}
	switch r.state {
	case stateConsumed, stateClosed:
		return false, nil
	case stateInResult:
		r.dropRow()
		if err := r.finishResult(ctx); err != nil {
			return false, err
		}
	}
	r.hasRows = triUnknown
	r.seenRow = false
	if r.state == stateConsumed {
		return false, nil
	}
	if r.command.Behavior.Has(SingleResult) {
		if err := r.Consume(ctx); err != nil {
			return false, err
		}
		return false, nil
	}
	return r.loadNextResult(ctx)
}

// HasRows reports whether the current result set contains any rows. It
// may read ahead; a message pulled off the source this way is stashed
// in the pending slot and replayed by the next advance, so the cursor
// itself does not move.
func (r *Reader) HasRows(ctx context.Context) (bool, error) {
	switch r.hasRows {
	case triTrue:
		return true, nil
	case triFalse:
		return false, nil
	}
	if r.state != stateInResult {
		return false, nil
	}
	for {
		msg := r.pending
		if msg == nil {
			var err error
			msg, err = r.source.Next(ctx, r.sequential())
			if err != nil {
				return false, err
			}
		}
		switch m := msg.(type) {
		case *wire.RowDescription:
			r.pending = nil
			r.installDescriptor(m)
		case *wire.BindComplete:
			r.pending = nil
		case *wire.DataRow:
			r.pending = msg
			r.hasRows = triTrue
			return true, nil
		case *wire.CommandComplete, *wire.EmptyQueryResponse, *wire.ReadyForQuery:
			r.pending = msg
			r.hasRows = triFalse
			return false, nil
		default:
			return false, r.protocolError(msg)
		}
	}
}

// Consume drains the rest of the batch without decoding row data,
// bringing the underlying connection back to idle. It is a no-op once
// the batch is exhausted or the reader closed.
func (r *Reader) Consume(ctx context.Context) error {
	if r.state == stateConsumed || r.state == stateClosed {
		return nil
	}
	r.dropRow()
	for r.state != stateConsumed {
		msg, err := r.skipUntil(ctx, wire.KindCommandComplete, wire.KindEmptyQueryResponse, wire.KindReadyForQuery)
		if err != nil {
			return err
		}
		if _, err := r.processMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the batch, releases the connection's busy marker,
// cascades to the connection if requested, and fires the close hook.
// Closing an already-closed reader is a no-op.
func (r *Reader) Close(ctx context.Context) error {
	if r.state == stateClosed {
		return nil
	}
	err := r.Consume(ctx)
	if r.conn != nil {
		r.conn.SetBusy(false)
		if r.command.Behavior.Has(CloseConnection) {
			err = errors.Join(err, r.conn.Close())
		}
	}
	r.state = stateClosed
	r.logger.Debug("reader closed",
		"records_affected", r.recordsAffected,
		"clean", err == nil,
	)
	if r.onClose != nil {
		r.onClose()
	}
	return err
}

// nextMessage replays the pending message if one is stashed, otherwise
// pulls the next one from the source.
func (r *Reader) nextMessage(ctx context.Context) (wire.Message, error) {
	if m := r.pending; m != nil {
		r.pending = nil
		return m, nil
	}
	return r.source.Next(ctx, r.sequential())
}

// skipUntil fast-forwards to the next message of one of the given
// kinds, honoring the pending slot.
func (r *Reader) skipUntil(ctx context.Context, kinds ...wire.Kind) (wire.Message, error) {
	if m := r.pending; m != nil {
		r.pending = nil
		if slices.Contains(kinds, m.Kind()) {
			return m, nil
		}
	}
	return r.source.SkipUntil(ctx, kinds...)
}

// processMessage applies the shared message-processing rule: it
// classifies one message and either installs a row, transitions state,
// or asks the caller to read again.
func (r *Reader) processMessage(msg wire.Message) (readOutcome, error) {
	switch m := msg.(type) {
	case *wire.RowDescription:
		r.installDescriptor(m)
		return outcomeReadAgain, nil
	case *wire.DataRow:
		if len(r.fields) == 0 || m.ColumnCount != len(r.fields) {
			return 0, r.protocolErrorf(msg, "row has %d columns, descriptor has %d", m.ColumnCount, len(r.fields))
		}
		r.row = newRowCursor(m)
		if r.cache != nil {
			r.cache.reset(len(r.fields))
		}
		if r.command.Kind == CommandStoredProcedure && !r.outParamsSet {
			if err := r.populateOutputParameters(); err != nil {
				return 0, err
			}
		}
		r.seenRow = true
		r.hasRows = triTrue
		return outcomeRowProduced, nil
	case *wire.CommandComplete:
		r.foldCommandComplete(m)
		r.endResult()
		return outcomeRowNotProduced, nil
	case *wire.EmptyQueryResponse:
		r.endResult()
		return outcomeRowNotProduced, nil
	case *wire.ReadyForQuery:
		r.dropRow()
		r.state = stateConsumed
		return outcomeRowNotProduced, nil
	case *wire.BindComplete:
		return outcomeReadAgain, nil
	default:
		return 0, r.protocolError(msg)
	}
}

// loadNextResult reads messages until the next result descriptor or
// the end of the batch, folding in completions of rowless statements
// along the way.
func (r *Reader) loadNextResult(ctx context.Context) (bool, error) {
	for {
		msg, err := r.nextMessage(ctx)
		if err != nil {
			return false, err
		}
		switch m := msg.(type) {
		case *wire.CommandComplete:
			r.foldCommandComplete(m)
		case *wire.EmptyQueryResponse, *wire.BindComplete:
			// acknowledgements of rowless statements; nothing to fold
		case *wire.RowDescription:
			r.installDescriptor(m)
			r.state = stateInResult
			return true, nil
		case *wire.ReadyForQuery:
			r.state = stateConsumed
			return false, nil
		default:
			return false, r.protocolError(msg)
		}
	}
}

// finishResult fast-forwards past the remaining rows of the current
// result and folds in its completion.
func (r *Reader) finishResult(ctx context.Context) error {
	msg, err := r.skipUntil(ctx, wire.KindCommandComplete, wire.KindEmptyQueryResponse, wire.KindReadyForQuery)
	if err != nil {
		return err
	}
	_, err = r.processMessage(msg)
	return err
}

// endResult leaves the current result set.
func (r *Reader) endResult() {
	r.dropRow()
	if r.hasRows == triUnknown {
		r.hasRows = triFalse
	}
	r.state = stateBetweenResults
}

// installDescriptor replaces the active result descriptor and rebinds
// the per-field handlers.
func (r *Reader) installDescriptor(m *wire.RowDescription) {
	r.fields = m.Fields
	if cap(r.handlers) < len(m.Fields) {
		r.handlers = make([]codec.Handler, len(m.Fields))
	} else {
		r.handlers = r.handlers[:len(m.Fields)]
	}
	for i, f := range m.Fields {
		r.handlers[i] = r.registry.Lookup(f.TypeOID)
	}
	r.dropRow()
	r.seenRow = false
	r.hasRows = triUnknown
}

// dropRow discards the active row, invalidating any column stream still
// holding its cursor.
func (r *Reader) dropRow() {
	if r.row != nil {
		r.row.superseded = true
		r.row = nil
	}
}

// foldCommandComplete merges one statement completion into the
// aggregate counters.
func (r *Reader) foldCommandComplete(m *wire.CommandComplete) {
	if n, ok := m.RowsAffected(); ok {
		if r.recordsAffected < 0 {
			r.recordsAffected = n
		} else {
			r.recordsAffected += n
		}
	}
	if oid, ok := m.InsertedOID(); ok {
		r.lastInsertOID = oid
	}
}

// populateOutputParameters assigns output-direction parameters from the
// first stored-procedure row: by cleaned name where a column matches,
// then positionally from the remaining columns. It decodes off a
// private buffer so the caller's column cursor is untouched.
func (r *Reader) populateOutputParameters() error {
	r.outParamsSet = true
	var out []*Parameter
	for _, p := range r.command.Parameters {
		if p.output() {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	buf := wire.NewBuffer(r.row.payload)
	values := make([]any, len(r.fields))
	for i := range r.fields {
		length, err := buf.ReadInt32()
		if err != nil {
			return err
		}
		if length < 0 {
			continue
		}
		h := r.handlers[i]
		if !h.ArbitraryLength() {
			if err := buf.Ensure(int(length)); err != nil {
				return err
			}
		}
		v, err := h.Decode(buf, r.fields[i], int(length))
		if err != nil {
			return err
		}
		values[i] = v
	}
	taken := make([]bool, len(r.fields))
	var unmatched []*Parameter
	for _, p := range out {
		name := p.cleanedName()
		idx := -1
		for i, f := range r.fields {
			if !taken[i] && stringutil.CleanName(f.Name) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			unmatched = append(unmatched, p)
			continue
		}
		p.Value = values[idx]
		taken[idx] = true
	}
	col := 0
	for _, p := range unmatched {
		for col < len(r.fields) && taken[col] {
			col++
		}
		if col == len(r.fields) {
			// columns exhausted; remaining parameters keep their values
			break
		}
		p.Value = values[col]
		taken[col] = true
	}
	return nil
}

// checkOrdinal validates descriptor-level access.
func (r *Reader) checkOrdinal(ordinal int) error {
	if r.state != stateInResult {
		return ErrNoActiveRow
	}
	if ordinal < 0 || ordinal >= len(r.fields) {
		return &OrdinalRangeError{Ordinal: ordinal, FieldCount: len(r.fields)}
	}
	return nil
}

// checkColumn validates row-level access.
func (r *Reader) checkColumn(ordinal int) error {
	if r.row == nil {
		return ErrNoActiveRow
	}
	return r.checkOrdinal(ordinal)
}

func (r *Reader) protocolError(msg wire.Message) error {
	err := &ProtocolError{Kind: msg.Kind(), State: r.state.String()}
	r.logger.Warn("protocol error", "kind", msg.Kind().String(), "state", r.state.String())
	return err
}

func (r *Reader) protocolErrorf(msg wire.Message, format string, args ...any) error {
	err := &ProtocolError{Kind: msg.Kind(), State: r.state.String(), Detail: fmt.Sprintf(format, args...)}
	r.logger.Warn("protocol error", "kind", msg.Kind().String(), "state", r.state.String(), "detail", err.Detail)
	return err
}
