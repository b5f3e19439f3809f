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

// Conn is the reader's view of the connection it is bound to. A
// connection must not run another command while a reader is open, so
// the reader marks it busy for its lifetime and clears the marker on
// close. When the CloseConnection behavior is set, closing the reader
// closes the connection too.
type Conn interface {
	// SetBusy marks or clears the connection's busy state.
	SetBusy(busy bool)

	// Close closes the connection.
	Close() error
}
