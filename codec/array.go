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
	"errors"
	"fmt"

	"github.com/go-pgcursor/pgcursor/wire"
)

// ErrMultiDimArray is returned for arrays with more than one dimension;
// the built-in array handler decodes one-dimensional arrays only.
var ErrMultiDimArray = errors.New("codec: multi-dimensional arrays are not supported")

// ArrayHandler decodes one-dimensional array columns. The generic value
// is a []any holding the element handler's generic values, nil for NULL
// elements. The element handler is exposed through ElementTyped so the
// reader can rebuild a concrete slice type.
type ArrayHandler struct {
	elem Handler
}

// NewArrayHandler returns an array handler over the given element
// handler.
func NewArrayHandler(elem Handler) ArrayHandler {
	return ArrayHandler{elem: elem}
}

// Element implements ElementTyped.
func (h ArrayHandler) Element() Handler { return h.elem }

// ArbitraryLength reports true: array values have no fixed size.
func (ArrayHandler) ArbitraryLength() bool { return true }

func (h ArrayHandler) Decode(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.decode(buf, fld, length, Handler.Decode)
}

func (h ArrayHandler) DecodeProvider(buf *wire.Buffer, fld wire.FieldDescription, length int) (any, error) {
	return h.decode(buf, fld, length, Handler.DecodeProvider)
}

// decode walks the array wire format: a 12-byte header (dimension
// count, null flag, element OID), one {count, lower bound} pair per
// dimension, then length-prefixed elements with -1 marking NULL.
func (h ArrayHandler) decode(
	buf *wire.Buffer,
	fld wire.FieldDescription,
	length int,
	decodeElem func(Handler, *wire.Buffer, wire.FieldDescription, int) (any, error),
) (any, error) {
	end := buf.Pos() + length
	ndims, err := buf.ReadInt32()
	if err != nil {
		return nil, err
	}
	if ndims > 1 {
		return nil, ErrMultiDimArray
	}
	if ndims < 0 {
		return nil, fmt.Errorf("codec: corrupt array header: %d dimensions", ndims)
	}
	// null bitmap flag and element OID are not needed for decoding
	if err := buf.Skip(8); err != nil {
		return nil, err
	}
	if ndims == 0 {
		return []any{}, nil
	}
	count, err := buf.ReadInt32()
	if err != nil {
		return nil, err
	}
	// lower bound
	if err := buf.Skip(4); err != nil {
		return nil, err
	}
	// every element carries at least a 4-byte length prefix, so a count
	// beyond Remaining()/4 can only come from a corrupt header; checking
	// here keeps the pre-allocation bounded by the value size
	if count < 0 || int(count) > buf.Remaining()/4 {
		return nil, fmt.Errorf("codec: corrupt array header: %d elements in %d remaining bytes", count, buf.Remaining())
	}
	out := make([]any, 0, count)
	for i := int32(0); i < count; i++ {
		elemLen, err := buf.ReadInt32()
		if err != nil {
			return nil, err
		}
		if elemLen < 0 {
			out = append(out, nil)
			continue
		}
		v, err := decodeElem(h.elem, buf, fld, int(elemLen))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if buf.Pos() != end {
		return nil, fmt.Errorf("%w: array value ended at %d, expected %d", wire.ErrShortBuffer, buf.Pos(), end)
	}
	return out, nil
}
