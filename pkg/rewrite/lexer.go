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
	"regexp"
	"slices"
	"strings"
)

// statement is one top-level statement of a block, from its first significant byte to
// just past its terminator
type statement struct {
	start int
	end   int
}

// skipLiteral returns the index just past the string, template literal or comment that
// starts at i, or i when none starts there. Unterminated literals run to the end of src.
func skipLiteral(src string, i int) int {
	switch {
	case strings.HasPrefix(src[i:], "//"):
		if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
			return i + j
		}
		return len(src)
	case strings.HasPrefix(src[i:], "/*"):
		if j := strings.Index(src[i+2:], "*/"); j >= 0 {
			return i + 2 + j + 2
		}
		return len(src)
	case src[i] == '\'' || src[i] == '"' || src[i] == '`':
		q := src[i]
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case q:
				return j + 1
			}
		}
		return len(src)
	}
	return i
}

func isComment(src string, i int) bool {
	return strings.HasPrefix(src[i:], "//") || strings.HasPrefix(src[i:], "/*")
}

// splitBlock walks a block body starting at from, just past the opening brace. It returns
// the top-level statements and the index of the closing brace, or -1 when the block is
// never closed.
//
// A statement ends at a top-level semicolon, at the end of a line whose last token closed
// a nested brace (if/for bodies without a trailing semicolon), at a line break where the
// next line cannot continue it, or at the closing brace. Its end is always its last
// significant byte, so trailing whitespace and comments belong to the gap after it.
func splitBlock(src string, from int) ([]statement, int) {
	var (
		stmts      []statement
		depth      int
		start      = -1
		last       = -1
		afterBrace bool
	)

	flush := func() {
		if start >= 0 {
			stmts = append(stmts, statement{start: start, end: last})
		}
		start = -1
	}

	for i := from; i < len(src); {
		if j := skipLiteral(src, i); j > i {
			if !isComment(src, i) {
				if start < 0 {
					start = i
				}
				last = j
				afterBrace = false
			}
			i = j
			continue
		}

		c := src[i]
		switch c {
		case ' ', '\t', '\r':
			i++
			continue
		case '\n':
			if depth == 0 && start >= 0 && (afterBrace || endsLine(src, start, last, i)) {
				flush()
			}
			afterBrace = false
			i++
			continue
		}

		if c == '}' && depth == 0 {
			flush()
			return stmts, i
		}

		afterBrace = false
		if start < 0 {
			start = i
		}
		last = i + 1

		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return stmts, -1
			}
		case '}':
			depth--
			if depth == 0 {
				afterBrace = true
			}
		case ';':
			if depth == 0 {
				flush()
			}
		}
		i++
	}
	return stmts, -1
}

var (
	// continuationWords are binary keywords that carry an expression onto the next line
	continuationWords = []string{"as", "in", "instanceof", "satisfies"}

	controlRe = regexp.MustCompile(`^(?:if|for|while|else|do|switch|try|catch|finally)\b`)
)

// endsLine reports whether the statement src[start:last] ends at the line break at nl
// without a semicolon. Its last token must be able to end an expression, the statement
// must not be a control header or a lone keyword, and the next line must start with an
// identifier that is not a binary keyword.
func endsLine(src string, start, last, nl int) bool {
	prev := src[last-1]
	if !isIdentByte(prev) && !strings.ContainsRune(")]'\"`", rune(prev)) {
		return false
	}
	stmt := src[start:last]
	if controlRe.MatchString(stmt) || wordBefore(src, last) == stmt {
		return false
	}

	next := nextSignificant(src, nl)
	if next >= len(src) || !isIdentStart(src[next]) {
		return false
	}
	word := wordAfter(src, next)
	return !slices.Contains(continuationWords, word)
}

// nextSignificant returns the index of the first byte at or after i that is neither
// whitespace nor part of a comment
func nextSignificant(src string, i int) int {
	for i < len(src) {
		switch {
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\r' || src[i] == '\n':
			i++
		case isComment(src, i):
			i = skipLiteral(src, i)
		default:
			return i
		}
	}
	return i
}

func wordBefore(src string, end int) string {
	k := end
	for k > 0 && isIdentByte(src[k-1]) {
		k--
	}
	return src[k:end]
}

func wordAfter(src string, start int) string {
	k := start
	for k < len(src) && isIdentByte(src[k]) {
		k++
	}
	return src[start:k]
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// codeAt walks src from the code position from up to pos. It reports whether pos falls
// inside a string, template literal or comment, and returns the index just past that
// literal when it does.
func codeAt(src string, from, pos int) (int, bool) {
	for i := from; i < pos; {
		if j := skipLiteral(src, i); j > i {
			if j > pos {
				return j, true
			}
			i = j
			continue
		}
		i++
	}
	return pos, false
}

// splitArgs splits the argument list whose opening parenthesis is at open. It returns the
// trimmed arguments, dropping the empty one a trailing comma leaves, and the index of the
// closing parenthesis.
func splitArgs(src string, open int) ([]string, int, bool) {
	var args []string
	depth := 0
	argStart := open + 1
	for i := open + 1; i < len(src); {
		if j := skipLiteral(src, i); j > i {
			i = j
			continue
		}
		switch src[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				if src[i] != ')' {
					return nil, -1, false
				}
				if last := strings.TrimSpace(src[argStart:i]); last != "" {
					args = append(args, last)
				}
				return args, i, true
			}
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(src[argStart:i]))
				argStart = i + 1
			}
		}
		i++
	}
	return nil, -1, false
}

// unquote returns the contents of a single- or double-quoted literal without escapes
func unquote(s string) (string, byte, bool) {
	if len(s) < 2 {
		return "", 0, false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return "", 0, false
	}
	body := s[1 : len(s)-1]
	if strings.IndexByte(body, q) >= 0 || strings.IndexByte(body, '\\') >= 0 {
		return "", 0, false
	}
	return body, q, true
}
