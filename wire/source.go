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

import "context"

// Source delivers framed backend messages in protocol order. It is the
// seam between the network layer and the reader: every blocking point
// of the reader is a Source call, so cancellation and timeouts are the
// Source's responsibility and surface as errors here.
type Source interface {
	// Next returns the next message. The sequential hint tells the
	// source the caller will consume the row in a single forward pass,
	// allowing it to avoid buffering whole oversized rows.
	Next(ctx context.Context, sequential bool) (Message, error)

	// SkipUntil discards messages, without decoding row payloads, until
	// one of the given kinds arrives and returns that message. Used to
	// fast-forward past row data the caller never asked for.
	SkipUntil(ctx context.Context, kinds ...Kind) (Message, error)
}
