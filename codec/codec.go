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

// Package codec holds the per-type binary decoders a reader dispatches
// to. Handlers are registered by server type OID; the reader never
// hard-codes a wire format, it only routes column windows to the
// handler bound to the column's type.
package codec

import (
	"sync"

	"github.com/go-pgcursor/pgcursor/wire"
)

// Handler decodes the binary wire representation of one server type.
// Decode and DecodeProvider are handed a buffer positioned at the start
// of the value and the declared value length; they must consume exactly
// length bytes on success. NULL columns never reach a handler.
type Handler interface {
	// Decode returns the generic Go value for the column
	// (int64 for int8, string for text, time.Time for timestamp, ...).
	Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error)

	// DecodeProvider returns the provider-specific value, which keeps
	// protocol details the generic representation flattens away. For
	// most types this is the same value Decode returns.
	DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error)

	// ArbitraryLength reports whether the handler can consume a value
	// that spans multiple buffer fills. The reader pre-buffers the whole
	// value for handlers that cannot.
	ArbitraryLength() bool
}

// ByteStreamer is implemented by handlers whose wire format is the raw
// value bytes, which enables byte-range access and binary streaming.
type ByteStreamer interface {
	Handler

	// Bytes returns the value bytes without decoding. The returned
	// slice may alias the row payload.
	Bytes(buf *wire.Buffer, length int) ([]byte, error)
}

// CharStreamer is implemented by handlers whose values are text,
// which enables character-range access and text streaming.
type CharStreamer interface {
	Handler

	// Text returns the value as a string.
	Text(buf *wire.Buffer, length int) (string, error)
}

// ElementTyped is implemented by array handlers and exposes the
// handler bound to the array's element type. The reader uses it to
// decode into a concrete slice type when the array handler's own
// generic decoding does not match the requested static type.
type ElementTyped interface {
	// Element returns the handler for the array's element type.
	Element() Handler
}

// Registry maps server type OIDs to handlers. A Registry is safe for
// concurrent lookup after registration is complete; Register is not
// safe to call concurrently with Lookup.
type Registry struct {
	handlers map[uint32]Handler
	fallback Handler
}

// NewRegistry returns an empty registry whose fallback handler yields
// raw value bytes for unknown types.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[uint32]Handler),
		fallback: UnknownHandler{},
	}
}

// Register binds a handler to a server type OID, replacing any
// previous binding.
func (r *Registry) Register(oid uint32, h Handler) {
	r.handlers[oid] = h
}

// Lookup returns the handler for the given type OID, falling back to
// the raw-bytes handler for types with no registration.
func (r *Registry) Lookup(oid uint32) Handler {
	if h, ok := r.handlers[oid]; ok {
		return h
	}
	return r.fallback
}

// Server type OIDs of the built-in handlers.
const (
	OIDBool        = 16
	OIDBytea       = 17
	OIDName        = 19
	OIDInt8        = 20
	OIDInt2        = 21
	OIDInt4        = 23
	OIDText        = 25
	OIDFloat4      = 700
	OIDFloat8      = 701
	OIDBoolArray   = 1000
	OIDInt4Array   = 1007
	OIDTextArray   = 1009
	OIDInt8Array   = 1016
	OIDFloat8Array = 1022
	OIDVarchar     = 1043
	OIDDate        = 1082
	OIDTimestamp   = 1114
	OIDTimestamptz = 1184
	OIDUUID        = 2950
)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry holding the built-in handlers.
// Callers that need custom handlers should build their own registry
// instead of mutating this one.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		r.Register(OIDBool, BoolHandler{})
		r.Register(OIDBytea, ByteaHandler{})
		r.Register(OIDName, TextHandler{})
		r.Register(OIDInt8, Int8Handler{})
		r.Register(OIDInt2, Int2Handler{})
		r.Register(OIDInt4, Int4Handler{})
		r.Register(OIDText, TextHandler{})
		r.Register(OIDFloat4, Float4Handler{})
		r.Register(OIDFloat8, Float8Handler{})
		r.Register(OIDVarchar, TextHandler{})
		r.Register(OIDDate, DateHandler{})
		r.Register(OIDTimestamp, TimestampHandler{})
		r.Register(OIDTimestamptz, TimestampHandler{})
		r.Register(OIDUUID, UUIDHandler{})
		r.Register(OIDBoolArray, NewArrayHandler(BoolHandler{}))
		r.Register(OIDInt4Array, NewArrayHandler(Int4Handler{}))
		r.Register(OIDTextArray, NewArrayHandler(TextHandler{}))
		r.Register(OIDInt8Array, NewArrayHandler(Int8Handler{}))
		r.Register(OIDFloat8Array, NewArrayHandler(Float8Handler{}))
		defaultRegistry = r
	})
	return defaultRegistry
}
