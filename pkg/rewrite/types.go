// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rewrite

import (
	"context"
	"io"
	"iter"
)

// 📍 Span is a half-open byte range [Start, End) in the original source
type Span struct {
	Start int
	End   int
}

// 🧩 Shape classifies a guarded handler block
type Shape int

const (
	ShapeUnrecognized Shape = iota // Guard found but the block has no known fetch shape
	ShapeUnpaginated               // Eligible: declarations then one un-paginated fetch
	ShapePaginated                 // Already migrated to the paginated call
	ShapeMalformed                 // Un-paginated fetch with an empty endpoint
)

// String returns a string representation of Shape
func (s Shape) String() string {
	switch s {
	case ShapeUnpaginated:
		return "unpaginated"
	case ShapePaginated:
		return "paginated"
	case ShapeMalformed:
		return "malformed"
	default:
		return "unrecognized"
	}
}

// 🎯 Candidate is a matched, not yet rewritten handler block
type Candidate struct {
	// GuardPrefix is the operation guard, byte for byte
	GuardPrefix string

	// Declarations is the raw text between the guard and the fetch call
	Declarations string

	// Declared lists the names bound by top-level const/let/var statements in Declarations
	Declared []string

	// Endpoint is the unquoted endpoint argument of the old fetch call
	Endpoint string

	// Quote is the quote character the endpoint literal was written with
	Quote byte

	// Indent is the leading whitespace of the line holding the guard
	Indent string

	// Newline is the line ending of the guard line, "\n" when empty
	Newline string

	// Span is the exact range consumed from the original text
	Span Span
}

// 📦 Block is one guarded handler found by the scanner
type Block struct {
	Shape     Shape
	Line      int // 1-based line of the guard
	Candidate Candidate
}

// 📊 Result contains the outcome of one rewrite pass
type Result struct {
	// WasModified indicates if any block was rewritten
	WasModified bool

	// Rewritten is the number of blocks replaced with the paginated call
	Rewritten int

	// Dropped is the number of malformed candidates left untouched
	Dropped int

	// AlreadyMigrated is the number of blocks already using the paginated call
	AlreadyMigrated int

	// Unrecognized is the number of guarded blocks with no known fetch shape
	Unrecognized int

	// Blocks lists every guarded block in document order
	Blocks []Block

	// OriginalContent is the content before rewriting
	OriginalContent []byte

	// ModifiedContent is the content after rewriting
	ModifiedContent []byte
}

// Rewriter defines the interface for handler rewrite passes
type Rewriter interface {
	// Rewrite reads the whole content and rewrites every eligible handler in one pass
	Rewrite(ctx context.Context, content io.Reader) (*Result, error)

	// Blocks yields every guarded block in document order
	Blocks(text string) iter.Seq[Block]
}
