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
	"iter"
)

// Iterator is the row iterator type yielded by Rows and Scan.
type Iterator[T any] iter.Seq2[T, error]

// Rows iterates over the remaining rows of the current result set,
// yielding the value of the given column for each row. Iteration stops
// at the end of the result set or when the yield function returns
// false; advance errors are yielded once and end the iteration.
func Rows[T any](ctx context.Context, r *Reader, ordinal int) Iterator[T] {
	return func(yield func(T, error) bool) {
		for {
			ok, err := r.Read(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			v, err := Column[T](r, ordinal)
			if !yield(v, err) {
				return
			}
		}
	}
}

// Scan iterates over the remaining rows, calling scan once per row to
// build the yielded value from the reader's column accessors.
func Scan[T any](ctx context.Context, r *Reader, scan func(*Reader) (T, error)) Iterator[T] {
	return func(yield func(T, error) bool) {
		for {
			ok, err := r.Read(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			v, err := scan(r)
			if !yield(v, err) {
				return
			}
		}
	}
}
