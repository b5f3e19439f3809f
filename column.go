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
	"reflect"

	"github.com/go-pgcursor/pgcursor/codec"
)

// Column reads the column at the given ordinal of the current row as a
// statically requested type. In cached mode the decoded value is
// memoized per row; in sequential mode each column can be read once, in
// ascending ordinal order. A NULL column yields the zero value for
// nil-able types and ErrNullValue otherwise. A type the column's
// handler cannot produce yields a CastError.
func Column[T any](r *Reader, ordinal int) (T, error) {
	var zero T
	if err := r.checkColumn(ordinal); err != nil {
		return zero, err
	}
	if r.cache != nil {
		if v, ok := r.cache.get(ordinal, false); ok {
			if v == nil {
				return nullValue[T]()
			}
			if tv, ok := v.(T); ok {
				return tv, nil
			}
			if elems, ok := v.([]any); ok {
				if tv, ok := convertSlice[T](elems); ok {
					return tv, nil
				}
			}
			// cached flavor does not fit the requested type; fall
			// through and re-decode
		}
	}
	length, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return zero, err
	}
	if length < 0 {
		if r.cache != nil {
			r.cache.put(ordinal, nil, false)
		}
		return nullValue[T]()
	}
	h := r.handlers[ordinal]
	if !h.ArbitraryLength() {
		if err := r.row.buf.Ensure(length); err != nil {
			return zero, err
		}
	}
	start := r.row.buf.Pos()
	v, err := h.Decode(r.row.buf, r.fields[ordinal], length)
	if err != nil {
		return zero, err
	}
	if r.cache != nil {
		r.cache.put(ordinal, v, false)
	}
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	// an array handler's generic decoding is []any; rebuild the
	// requested slice type from its elements, retrying with the
	// provider-specific element decoding on mismatch
	if elems, ok := v.([]any); ok {
		if _, ok := h.(codec.ElementTyped); ok {
			if tv, ok := convertSlice[T](elems); ok {
				return tv, nil
			}
			if err := r.row.buf.Seek(start); err != nil {
				return zero, err
			}
			pv, err := h.DecodeProvider(r.row.buf, r.fields[ordinal], length)
			if err != nil {
				return zero, err
			}
			if pelems, ok := pv.([]any); ok {
				if tv, ok := convertSlice[T](pelems); ok {
					return tv, nil
				}
			}
		}
	}
	return zero, r.castError(ordinal, reflect.TypeFor[T]().String())
}

// Value reads the column at the given ordinal as its generic Go value.
// NULL columns return nil without invoking the handler.
func (r *Reader) Value(ordinal int) (any, error) {
	return r.objectValue(ordinal, false)
}

// ProviderValue reads the column at the given ordinal as its
// provider-specific value, which preserves protocol details the generic
// representation flattens away. NULL columns return nil.
func (r *Reader) ProviderValue(ordinal int) (any, error) {
	return r.objectValue(ordinal, true)
}

// IsNull reports whether the column at the given ordinal is NULL. In
// sequential mode this positions the cursor at the column, so it must
// follow the same ascending-ordinal discipline as reads.
func (r *Reader) IsNull(ordinal int) (bool, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return false, err
	}
	if r.cache != nil {
		if v, ok := r.cache.get(ordinal, false); ok {
			return v == nil, nil
		}
	}
	length, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return false, err
	}
	return length < 0, nil
}

func (r *Reader) objectValue(ordinal int, provider bool) (any, error) {
	if err := r.checkColumn(ordinal); err != nil {
		return nil, err
	}
	if r.cache != nil {
		if v, ok := r.cache.get(ordinal, provider); ok {
			return v, nil
		}
	}
	length, err := r.row.value(ordinal, r.sequential())
	if err != nil {
		return nil, err
	}
	if length < 0 {
		if r.cache != nil {
			r.cache.put(ordinal, nil, provider)
		}
		return nil, nil
	}
	h := r.handlers[ordinal]
	if !h.ArbitraryLength() {
		if err := r.row.buf.Ensure(length); err != nil {
			return nil, err
		}
	}
	var v any
	if provider {
		v, err = h.DecodeProvider(r.row.buf, r.fields[ordinal], length)
	} else {
		v, err = h.Decode(r.row.buf, r.fields[ordinal], length)
	}
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.put(ordinal, v, provider)
	}
	return v, nil
}

func (r *Reader) castError(ordinal int, goType string) error {
	return &CastError{Ordinal: ordinal, TypeOID: r.fields[ordinal].TypeOID, GoType: goType}
}

// nullValue resolves a NULL column for the requested static type:
// nil-able types get their zero value, everything else an error.
func nullValue[T any]() (T, error) {
	var zero T
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return zero, nil
	default:
		return zero, ErrNullValue
	}
}

// convertSlice rebuilds a []any of element values into the concrete
// slice type T. NULL elements become the element type's zero value.
func convertSlice[T any](elems []any) (T, bool) {
	var zero T
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Slice {
		return zero, false
	}
	out := reflect.MakeSlice(rt, len(elems), len(elems))
	for i, v := range elems {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(rt.Elem()) {
			return zero, false
		}
		out.Index(i).Set(rv)
	}
	v, ok := out.Interface().(T)
	return v, ok
}
