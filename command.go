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

import "github.com/go-pgcursor/pgcursor/internal/stringutil"

// Behavior is a set of flags shaping how the reader consumes its
// command's results.
type Behavior uint8

const (
	// SequentialAccess forces single-pass forward column access and
	// disables the per-row value cache. Required for streaming large
	// values without buffering whole rows.
	SequentialAccess Behavior = 1 << iota

	// SingleRow truncates each result set to at most one row; the rest
	// of the result is consumed without being surfaced.
	SingleRow

	// SingleResult stops after the first result set; the remainder of
	// the batch is drained on the first NextResult call.
	SingleResult

	// CloseConnection closes the owning connection when the reader is
	// closed.
	CloseConnection
)

// Has reports whether all given flags are set.
func (b Behavior) Has(flags Behavior) bool { return b&flags == flags }

// CommandKind distinguishes ordinary command text from stored-procedure
// calls, which populate output parameters from the first row.
type CommandKind uint8

const (
	// CommandText is an ordinary batch of statements.
	CommandText CommandKind = iota

	// CommandStoredProcedure is a stored-procedure call.
	CommandStoredProcedure
)

// ParameterDirection tells whether a parameter's value flows to the
// server, back from it, or both.
type ParameterDirection uint8

const (
	// Input parameters are supplied by the caller.
	Input ParameterDirection = iota

	// Output parameters are filled in from the first row of a
	// stored-procedure call.
	Output

	// InputOutput parameters flow both ways.
	InputOutput
)

// Parameter is the slice of the command's parameter list the reader
// cares about: name, direction and the value slot it may assign to.
// Binding input values to the wire is the statement layer's job.
type Parameter struct {
	// Name is the parameter name as declared, possibly carrying an
	// '@' or ':' marker.
	Name string

	// Direction of the parameter.
	Direction ParameterDirection

	// Value holds the parameter value. For output-direction parameters
	// the reader overwrites it from the first stored-procedure row.
	Value any
}

// output reports whether the server may assign to this parameter.
func (p *Parameter) output() bool {
	return p.Direction == Output || p.Direction == InputOutput
}

// cleanedName returns the parameter name normalized for column
// matching.
func (p *Parameter) cleanedName() string {
	return stringutil.CleanName(p.Name)
}

// Command describes the command a reader consumes results for.
type Command struct {
	// Kind of the command.
	Kind CommandKind

	// Behavior flags requested by the caller.
	Behavior Behavior

	// Parameters in declaration order. May be nil for commands without
	// parameters.
	Parameters []*Parameter
}
