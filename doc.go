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

/*
Package pgcursor consumes the result stream of a binary wire protocol
database command and exposes it as a row/column cursor.

A Reader is bound to one command on one connection. It classifies the
backend messages the connection delivers (row descriptions, data rows,
statement completions, the batch-ready marker) and drives a forward-only
cursor over them: Read advances rows, NextResult advances result sets,
and the column accessors decode individual values through pluggable
per-type handlers.

Basic usage:

	reader, err := pgcursor.NewReader(ctx, source, &pgcursor.Command{})
	if err != nil {
		// handle error
	}
	defer reader.Close(ctx)

	for {
		ok, err := reader.Read(ctx)
		if err != nil {
			// handle error
		}
		if !ok {
			break
		}
		id, err := pgcursor.Column[int32](reader, 0)
		if err != nil {
			// handle error
		}
		name, err := pgcursor.Column[string](reader, 1)
		if err != nil {
			// handle error
		}
		_, _ = id, name
	}

Two column access modes exist. The default, cached mode permits
repeated and out-of-order column reads within a row through a per-row
decode cache. Sequential mode (the SequentialAccess behavior) is a
strict single forward pass with no cache, trading convenience for
constant memory, and is the mode that supports streaming large values
through ColumnReader and ColumnTextReader.

Readers are not safe for concurrent use; every advance or peek may
block on the message source, and cancellation is delivered through the
context passed to it.
*/
package pgcursor
