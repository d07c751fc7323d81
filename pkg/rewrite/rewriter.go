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
	"fmt"
	"io"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	callRe = regexp.MustCompile(`^([A-Za-z_$][\w$]*)\s*=\s*await\s+([A-Za-z_$][\w$.]*)\s*\(`)
	declRe = regexp.MustCompile(`^(?:const|let|var)\s+([A-Za-z_$][\w$]*)?`)
)

// 🔄 PaginationRewriter rewrites un-paginated getAll handlers into paginated ones
type PaginationRewriter struct {
	opts  Options
	guard *regexp.Regexp
}

var _ Rewriter = (*PaginationRewriter)(nil)

// 🏭 NewPaginationRewriter creates a rewriter for the given options
func NewPaginationRewriter(opts Options) (*PaginationRewriter, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}

	guard := fmt.Sprintf(`if\s*\(\s*%s\s*===?\s*['"]%s['"]\s*\)\s*\{`,
		regexp.QuoteMeta(opts.OperationVar), regexp.QuoteMeta(opts.Operation))

	return &PaginationRewriter{
		opts:  opts,
		guard: regexp.MustCompile(guard),
	}, nil
}

// Options returns the options the rewriter was built with
func (r *PaginationRewriter) Options() Options {
	return r.opts
}

// 🔍 Blocks yields every guarded block in document order. Guards inside comments or
// string literals are skipped. After an eligible block the search resumes past its span,
// so yielded spans never overlap.
func (r *PaginationRewriter) Blocks(text string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		pos, line, counted := 0, 1, 0
		for pos < len(text) {
			loc := r.guard.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]

			if next, inside := codeAt(text, pos, start); inside {
				pos = next
				continue
			}

			line += strings.Count(text[counted:start], "\n")
			counted = start

			blk := r.classify(text, start, end)
			blk.Line = line
			if !yield(blk) {
				return
			}

			pos = end
			if blk.Shape == ShapeUnpaginated {
				pos = blk.Candidate.Span.End
			}
		}
	}
}

// 🎯 Scan yields the eligible candidates of text in document order
func (r *PaginationRewriter) Scan(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for blk := range r.Blocks(text) {
			if blk.Shape != ShapeUnpaginated {
				continue
			}
			if !yield(blk.Candidate) {
				return
			}
		}
	}
}

// classify inspects the block opened by the guard at text[start:end]. Only statements of
// that block are considered, so a guard never binds to a call in a later handler.
func (r *PaginationRewriter) classify(text string, start, end int) Block {
	blk := Block{Shape: ShapeUnrecognized}
	stmts, _ := splitBlock(text, end)

	var declared []string
	for i, st := range stmts {
		src := text[st.start:st.end]
		m := callRe.FindStringSubmatch(src)
		if m == nil || m[1] != r.opts.ResultVar {
			d := declRe.FindStringSubmatch(src)
			if i == 0 && d == nil {
				return blk
			}
			if d != nil && d[1] != "" {
				declared = append(declared, d[1])
			}
			continue
		}

		switch m[2] {
		case r.opts.Paginated:
			blk.Shape = ShapePaginated
			return blk
		case r.opts.Unpaginated:
		default:
			return blk
		}

		endpoint, quote, ok := r.parseUnpaginated(src, len(m[0])-1)
		if !ok {
			return blk
		}

		blk.Shape = ShapeUnpaginated
		if endpoint == "" {
			blk.Shape = ShapeMalformed
		}
		blk.Candidate = Candidate{
			GuardPrefix:  text[start:end],
			Declarations: text[end:st.start],
			Declared:     declared,
			Endpoint:     endpoint,
			Quote:        quote,
			Indent:       lineIndent(text, start),
			Newline:      lineEnding(text, end),
			Span:         Span{Start: start, End: st.end},
		}
		return blk
	}
	return blk
}

// parseUnpaginated checks the argument list of an un-paginated call statement. The
// expected shape is (context, 'METHOD', '<endpoint>', token, baseUrl) with an optional
// trailing comma and nothing after the closing parenthesis but the semicolon.
func (r *PaginationRewriter) parseUnpaginated(stmt string, open int) (string, byte, bool) {
	args, closing, ok := splitArgs(stmt, open)
	if !ok || len(args) != 5 {
		return "", 0, false
	}
	if rest := strings.TrimSpace(stmt[closing+1:]); rest != ";" && rest != "" {
		return "", 0, false
	}
	if args[0] != r.opts.ContextArg || args[3] != r.opts.TokenArg || args[4] != r.opts.BaseURLArg {
		return "", 0, false
	}
	if method, _, ok := unquote(args[1]); !ok || method != r.opts.Method {
		return "", 0, false
	}
	return unquote(args[2])
}

// lineIndent returns the leading whitespace of the line containing pos
func lineIndent(text string, pos int) string {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	line := text[lineStart:pos]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// lineEnding returns "\r\n" when the line containing pos ends with a carriage return
func lineEnding(text string, pos int) string {
	if j := strings.IndexByte(text[pos:], '\n'); j > 0 && text[pos+j-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// 🏗️ BuildReplacement generates the paginated block for c. It depends on nothing but c and
// the rewriter's options.
func (r *PaginationRewriter) BuildReplacement(c Candidate) string {
	o := r.opts
	body := c.Indent + o.Indent
	arg := body + o.Indent

	quote := c.Quote
	if quote == 0 {
		quote = '\''
	}
	nl := c.Newline
	if nl == "" {
		nl = "\n"
	}

	var b strings.Builder
	b.WriteString(c.GuardPrefix)
	b.WriteString(strings.TrimRightFunc(c.Declarations, unicode.IsSpace))
	if !slices.Contains(c.Declared, o.ReturnAllVar) {
		fmt.Fprintf(&b, "%s%sconst %s = true; // TODO: Add filters parameter", nl, body, o.ReturnAllVar)
	}
	if !slices.Contains(c.Declared, o.OptionsVar) {
		if o.OptionsType != "" {
			fmt.Fprintf(&b, "%s%sconst %s: %s = {};", nl, body, o.OptionsVar, o.OptionsType)
		} else {
			fmt.Fprintf(&b, "%s%sconst %s = {};", nl, body, o.OptionsVar)
		}
	}
	b.WriteString(nl)

	fmt.Fprintf(&b, "%s%s%s = await %s(", nl, body, o.ResultVar, o.Paginated)
	for _, a := range []string{
		o.ContextArg,
		string(quote) + c.Endpoint + string(quote),
		o.TokenArg,
		o.BaseURLArg,
		o.OptionsVar,
		fmt.Sprintf("%s ? undefined : %d", o.ReturnAllVar, o.PageSize),
	} {
		fmt.Fprintf(&b, "%s%s%s,", nl, arg, a)
	}
	fmt.Fprintf(&b, "%s%s);", nl, body)

	return b.String()
}

// ✨ ApplyAll rewrites every eligible block of text. Candidates come from the original
// text only, and replacements are never rescanned.
func (r *PaginationRewriter) ApplyAll(text string) *Result {
	result := &Result{
		OriginalContent: []byte(text),
	}

	var b strings.Builder
	last := 0
	for blk := range r.Blocks(text) {
		result.Blocks = append(result.Blocks, blk)
		switch blk.Shape {
		case ShapePaginated:
			result.AlreadyMigrated++
			continue
		case ShapeMalformed:
			result.Dropped++
			continue
		case ShapeUnrecognized:
			result.Unrecognized++
			continue
		}

		c := blk.Candidate
		b.WriteString(text[last:c.Span.Start])
		b.WriteString(r.BuildReplacement(c))
		last = c.Span.End
		result.Rewritten++
	}

	if result.Rewritten == 0 {
		result.ModifiedContent = result.OriginalContent
		return result
	}

	b.WriteString(text[last:])
	result.ModifiedContent = []byte(b.String())
	result.WasModified = b.String() != text
	return result
}

// Rewrite implements Rewriter.Rewrite
func (r *PaginationRewriter) Rewrite(ctx context.Context, content io.Reader) (*Result, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := r.ApplyAll(string(data))

	logger := zerolog.Ctx(ctx)
	for _, blk := range result.Blocks {
		logger.Debug().
			Int("line", blk.Line).
			Str("shape", blk.Shape.String()).
			Str("endpoint", blk.Candidate.Endpoint).
			Msg("handler block")
	}
	logger.Debug().
		Int("rewritten", result.Rewritten).
		Int("dropped", result.Dropped).
		Int("already_migrated", result.AlreadyMigrated).
		Int("unrecognized", result.Unrecognized).
		Msg("rewrite pass complete")

	return result, nil
}
