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
	"regexp"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// paginatedTag is the rewritten form of a top-level handler for '/api/tag'
func paginatedTag(decls ...string) string {
	l := []string{"if (operation === 'getAll') {"}
	l = append(l, decls...)
	return lines(append(l,
		"\tconst returnAll = true; // TODO: Add filters parameter",
		"\tconst qs: IDataObject = {};",
		"",
		"\tresponseData = await xiboApiRequestAllItems(",
		"\t\tthis,",
		"\t\t'/api/tag',",
		"\t\taccessToken,",
		"\t\tbaseUrl,",
		"\t\tqs,",
		"\t\treturnAll ? undefined : 50,",
		"\t);",
		"}",
		"",
	)...)
}

func newTestRewriter(t *testing.T) *PaginationRewriter {
	t.Helper()
	r, err := NewPaginationRewriter(DefaultOptions())
	require.NoError(t, err, "creating rewriter should succeed")
	return r
}

var (
	usersBlock = lines(
		"if (operation === 'getAll') {",
		"\tresponseData = await xiboApiRequest(this, 'GET', \"users\", accessToken, baseUrl);",
		"}",
		"",
	)

	layoutBlock = lines(
		"\t\t\t\t\tif (operation === 'getAll') {",
		"\t\t\t\t\t\tresponseData = await xiboApiRequest(",
		"\t\t\t\t\t\tthis,",
		"\t\t\t\t\t\t'GET',",
		"\t\t\t\t\t\t'/api/layout',",
		"\t\t\t\t\t\taccessToken,",
		"\t\t\t\t\t\tbaseUrl,",
		"\t\t\t\t\t);",
		"\t\t\t\t\t} else if (operation === 'get') {",
		"\t\t\t\t\t\tresponseData = {};",
		"\t\t\t\t\t}",
		"",
	)

	displayBlock = lines(
		"\tif (operation === 'getAll') {",
		"\t\tconst filters = this.getNodeParameter('filters', i, {}) as IDataObject;",
		"\t\tconst qs: IDataObject = {};",
		"",
		"\t\tif (filters.display) qs.display = filters.display;",
		"",
		"\t\tresponseData = await xiboApiRequest(",
		"\t\tthis,",
		"\t\t'GET',",
		"\t\t'/api/display',",
		"\t\taccessToken,",
		"\t\tbaseUrl,",
		"\t);",
		"\t}",
		"",
	)
)

func TestPaginationRewriter_ApplyAll(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		want          string
		wantRewritten int
		wantDropped   int
		wantMigrated  int
		wantModified  bool
	}{
		{
			name:    "single_handler_without_declarations",
			content: usersBlock,
			want: lines(
				"if (operation === 'getAll') {",
				"\tconst returnAll = true; // TODO: Add filters parameter",
				"\tconst qs: IDataObject = {};",
				"",
				"\tresponseData = await xiboApiRequestAllItems(",
				"\t\tthis,",
				"\t\t\"users\",",
				"\t\taccessToken,",
				"\t\tbaseUrl,",
				"\t\tqs,",
				"\t\treturnAll ? undefined : 50,",
				"\t);",
				"}",
				"",
			),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name:    "multiline_call_with_trailing_comma",
			content: layoutBlock,
			want: lines(
				"\t\t\t\t\tif (operation === 'getAll') {",
				"\t\t\t\t\t\tconst returnAll = true; // TODO: Add filters parameter",
				"\t\t\t\t\t\tconst qs: IDataObject = {};",
				"",
				"\t\t\t\t\t\tresponseData = await xiboApiRequestAllItems(",
				"\t\t\t\t\t\t\tthis,",
				"\t\t\t\t\t\t\t'/api/layout',",
				"\t\t\t\t\t\t\taccessToken,",
				"\t\t\t\t\t\t\tbaseUrl,",
				"\t\t\t\t\t\t\tqs,",
				"\t\t\t\t\t\t\treturnAll ? undefined : 50,",
				"\t\t\t\t\t\t);",
				"\t\t\t\t\t} else if (operation === 'get') {",
				"\t\t\t\t\t\tresponseData = {};",
				"\t\t\t\t\t}",
				"",
			),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name:    "existing_declarations_and_options_are_kept",
			content: displayBlock,
			want: lines(
				"\tif (operation === 'getAll') {",
				"\t\tconst filters = this.getNodeParameter('filters', i, {}) as IDataObject;",
				"\t\tconst qs: IDataObject = {};",
				"",
				"\t\tif (filters.display) qs.display = filters.display;",
				"\t\tconst returnAll = true; // TODO: Add filters parameter",
				"",
				"\t\tresponseData = await xiboApiRequestAllItems(",
				"\t\t\tthis,",
				"\t\t\t'/api/display',",
				"\t\t\taccessToken,",
				"\t\t\tbaseUrl,",
				"\t\t\tqs,",
				"\t\t\treturnAll ? undefined : 50,",
				"\t\t);",
				"\t}",
				"",
			),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "empty_endpoint_is_dropped",
			content: lines(
				"if (operation === 'getAll') {",
				"\tresponseData = await xiboApiRequest(this, 'GET', '', accessToken, baseUrl);",
				"}",
			),
			wantDropped: 1,
		},
		{
			name: "already_paginated",
			content: lines(
				"if (operation === 'getAll') {",
				"\tconst returnAll = true;",
				"\tconst qs: IDataObject = {};",
				"\tresponseData = await xiboApiRequestAllItems(this, '/api/layout', accessToken, baseUrl, qs, undefined);",
				"}",
			),
			wantMigrated: 1,
		},
		{
			name: "other_method_is_ignored",
			content: lines(
				"if (operation === 'getAll') {",
				"\tresponseData = await xiboApiRequest(this, 'POST', '/api/layout', accessToken, baseUrl);",
				"}",
			),
		},
		{
			name: "call_with_body_is_ignored",
			content: lines(
				"if (operation === 'getAll') {",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/layout', accessToken, baseUrl, {}, qs);",
				"}",
			),
		},
		{
			name: "leading_statement_is_not_a_declaration",
			content: lines(
				"if (operation === 'getAll') {",
				"\tthrow new Error('unsupported');",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/layout', accessToken, baseUrl);",
				"}",
			),
		},
		{
			name: "binding_named_only_in_comment",
			content: lines(
				"if (operation === 'getAll') {",
				"\tconst a = 1; // const qs later",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"}",
				"",
			),
			want:          paginatedTag("\tconst a = 1; // const qs later"),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "binding_named_only_in_string",
			content: lines(
				"if (operation === 'getAll') {",
				"\tconst note = 'const returnAll = false; const qs = {}';",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"}",
				"",
			),
			want:          paginatedTag("\tconst note = 'const returnAll = false; const qs = {}';"),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "nested_binding_does_not_count",
			content: lines(
				"if (operation === 'getAll') {",
				"\tconst a = 1;",
				"\tif (a) {",
				"\t\tconst qs = {};",
				"\t}",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"}",
				"",
			),
			want:          paginatedTag("\tconst a = 1;", "\tif (a) {", "\t\tconst qs = {};", "\t}"),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "call_without_semicolon",
			content: lines(
				"if (operation === 'getAll') {",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl)",
				"}",
				"",
			),
			want:          paginatedTag(),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "declaration_without_semicolon",
			content: lines(
				"if (operation === 'getAll') {",
				"\tconst filters = this.getNodeParameter('filters', i) as IDataObject",
				"\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"}",
				"",
			),
			want:          paginatedTag("\tconst filters = this.getNodeParameter('filters', i) as IDataObject"),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name: "commented_out_guard",
			content: lines(
				"// if (operation === 'getAll') {",
				"const a = 1;",
				"responseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"",
			),
		},
		{
			name: "guard_inside_string",
			content: lines(
				"const example = \"if (operation === 'getAll') {\";",
				"responseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);",
				"",
			),
		},
		{
			name:          "crlf_line_endings",
			content:       crlf(lines("if (operation === 'getAll') {", "\tresponseData = await xiboApiRequest(this, 'GET', '/api/tag', accessToken, baseUrl);", "}", "")),
			want:          crlf(paginatedTag()),
			wantRewritten: 1,
			wantModified:  true,
		},
		{
			name:    "no_handlers",
			content: "export class Xibo implements INodeType {}\n",
		},
		{
			name:    "empty_content",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRewriter(t)
			result := r.ApplyAll(tt.content)

			want := tt.want
			if want == "" {
				want = tt.content
			}

			if diff := cmp.Diff(want, string(result.ModifiedContent)); diff != "" {
				t.Errorf("rewritten content mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.wantRewritten, result.Rewritten, "rewritten count")
			assert.Equal(t, tt.wantDropped, result.Dropped, "dropped count")
			assert.Equal(t, tt.wantMigrated, result.AlreadyMigrated, "already migrated count")
			assert.Equal(t, tt.wantModified, result.WasModified)
		})
	}
}

func TestPaginationRewriter_Idempotent(t *testing.T) {
	inputs := map[string]string{
		"users":   usersBlock,
		"layout":  layoutBlock,
		"display": displayBlock,
		"all":     usersBlock + layoutBlock + displayBlock,
	}

	r := newTestRewriter(t)
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := r.ApplyAll(input)
			require.True(t, once.WasModified, "first pass should rewrite")

			twice := r.ApplyAll(string(once.ModifiedContent))
			assert.False(t, twice.WasModified, "second pass should not change anything")
			assert.Equal(t, string(once.ModifiedContent), string(twice.ModifiedContent))
			assert.Equal(t, once.Rewritten, twice.AlreadyMigrated, "every rewritten block should now be migrated")
		})
	}
}

func TestPaginationRewriter_Locality(t *testing.T) {
	prefix := "import { IDataObject } from 'n8n-workflow';\n\n// if (operation === 'getAll') is handled below\n"
	middle := "\nconst unrelated = xiboApiRequest;\n"
	suffix := "\nexport default Xibo;\n"

	r := newTestRewriter(t)
	input := prefix + usersBlock + middle + layoutBlock + suffix
	out := string(r.ApplyAll(input).ModifiedContent)

	assert.True(t, strings.HasPrefix(out, prefix), "text before the first span should be untouched")
	assert.True(t, strings.HasSuffix(out, suffix), "text after the last span should be untouched")
	assert.Contains(t, out, middle, "text between spans should be untouched")

	first := strings.Index(out, "\"users\"")
	second := strings.Index(out, "'/api/layout'")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, strings.Index(out, middle))
	assert.Less(t, strings.Index(out, middle), second)
}

func TestPaginationRewriter_MultiBlockIndependence(t *testing.T) {
	var b strings.Builder
	endpoints := []string{"/api/display", "/api/layout", "/api/library", "/api/schedule"}
	for _, e := range endpoints {
		b.WriteString(lines(
			"if (operation === 'getAll') {",
			"\tconst page = 1;",
			"\tresponseData = await xiboApiRequest(this, 'GET', '"+e+"', accessToken, baseUrl);",
			"} else if (operation === 'get') {",
			"\tresponseData = await xiboApiRequest(this, 'GET', '"+e+"/1', accessToken, baseUrl);",
			"}",
			"",
		))
	}

	r := newTestRewriter(t)
	input := b.String()

	var scanned []string
	for c := range r.Scan(input) {
		scanned = append(scanned, c.Endpoint)
	}
	assert.Equal(t, endpoints, scanned, "scan should find every endpoint in order")

	result := r.ApplyAll(input)
	assert.Equal(t, len(endpoints), result.Rewritten)

	callRe := regexp.MustCompile(`xiboApiRequestAllItems\(\s*this,\s*'([^']+)'`)
	var got []string
	for _, m := range callRe.FindAllStringSubmatch(string(result.ModifiedContent), -1) {
		got = append(got, m[1])
	}
	assert.Equal(t, endpoints, got, "each block should keep its own endpoint")
	assert.Equal(t, len(endpoints), strings.Count(string(result.ModifiedContent), "const page = 1;"))
	assert.Equal(t, len(endpoints), strings.Count(string(result.ModifiedContent), "/1', accessToken, baseUrl);"),
		"single-item handlers should be untouched")
}

func TestPaginationRewriter_GuardBindsToOwnBlock(t *testing.T) {
	input := lines(
		"if (operation === 'getAll') {",
		"\tconst options = { url: '}' }; // }",
		"\tresponseData = await this.helpers.httpRequest(options);",
		"}",
		"if (operation === 'getAll') {",
		"\tconst limit = 10;",
		"}",
		"if (operation === 'getAll') {",
		"\tresponseData = await xiboApiRequest(this, 'GET', '/api/campaign', accessToken, baseUrl);",
		"}",
	)

	r := newTestRewriter(t)

	var shapes []Shape
	var linesSeen []int
	for blk := range r.Blocks(input) {
		shapes = append(shapes, blk.Shape)
		linesSeen = append(linesSeen, blk.Line)
	}
	assert.Equal(t, []Shape{ShapeUnrecognized, ShapeUnrecognized, ShapeUnpaginated}, shapes)
	assert.Equal(t, []int{1, 5, 8}, linesSeen)

	result := r.ApplyAll(input)
	assert.Equal(t, 1, result.Rewritten)
	assert.Equal(t, 2, result.Unrecognized)

	out := string(result.ModifiedContent)
	assert.True(t, strings.HasPrefix(out, lines(
		"if (operation === 'getAll') {",
		"\tconst options = { url: '}' }; // }",
		"\tresponseData = await this.helpers.httpRequest(options);",
		"}",
		"if (operation === 'getAll') {",
		"\tconst limit = 10;",
		"}",
	)), "unrecognized blocks should be untouched")
}

func TestPaginationRewriter_DeclarationPreservation(t *testing.T) {
	decls := lines(
		"",
		"\t\tconst filters = this.getNodeParameter('filters', i, {}) as IDataObject;",
		"\t\tlet query = `${filters.name}`; /* keep; me */",
		"\t\tif (filters.ownerId) {",
		"\t\t\tquery += filters.ownerId;",
		"\t\t}",
	)
	input := "\tif (operation === 'getAll') {" + decls + "\n\n" +
		"\t\tresponseData = await xiboApiRequest(this, 'GET', '/api/library', accessToken, baseUrl);\n\t}\n"

	r := newTestRewriter(t)
	var candidates []Candidate
	for c := range r.Scan(input) {
		candidates = append(candidates, c)
	}
	require.Len(t, candidates, 1)
	assert.Equal(t, decls, strings.TrimRight(candidates[0].Declarations, " \t\n"))
	assert.Equal(t, "/api/library", candidates[0].Endpoint)
	assert.Equal(t, "\t", candidates[0].Indent)

	out := string(r.ApplyAll(input).ModifiedContent)
	assert.Contains(t, out, "\tif (operation === 'getAll') {"+decls+"\n\t\tconst returnAll = true;")
}

func TestPaginationRewriter_BuildReplacementIsPure(t *testing.T) {
	r := newTestRewriter(t)
	c := Candidate{
		GuardPrefix:  "if (operation === 'getAll') {",
		Declarations: "\n  const a = 1;\n  ",
		Endpoint:     "/api/user",
		Quote:        '"',
		Indent:       "",
		Span:         Span{Start: 10, End: 90},
	}

	first := r.BuildReplacement(c)
	second := r.BuildReplacement(c)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "if (operation === 'getAll') {\n  const a = 1;\n\tconst returnAll"))
	assert.Contains(t, first, "\t\t\"/api/user\",\n")
}

func TestPaginationRewriter_CustomOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Operation = "list"
	opts.OperationVar = "op"
	opts.ResultVar = "items"
	opts.Unpaginated = "apiRequest"
	opts.Paginated = "apiRequestAllItems"
	opts.TokenArg = "token"
	opts.BaseURLArg = "host"
	opts.OptionsType = ""
	opts.ReturnAllVar = "all"
	opts.PageSize = 100
	opts.Indent = "  "

	r, err := NewPaginationRewriter(opts)
	require.NoError(t, err)

	input := lines(
		"if (op == \"list\") {",
		"  items = await apiRequest(this, \"GET\", \"/things\", token, host);",
		"}",
	)
	want := lines(
		"if (op == \"list\") {",
		"  const all = true; // TODO: Add filters parameter",
		"  const qs = {};",
		"",
		"  items = await apiRequestAllItems(",
		"    this,",
		"    \"/things\",",
		"    token,",
		"    host,",
		"    qs,",
		"    all ? undefined : 100,",
		"  );",
		"}",
	)

	got := string(r.ApplyAll(input).ModifiedContent)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rewritten content mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginationRewriter_ScanStopsEarly(t *testing.T) {
	r := newTestRewriter(t)
	input := usersBlock + usersBlock + usersBlock

	count := 0
	for range r.Scan(input) {
		count++
		break
	}
	assert.Equal(t, 1, count)
	assert.Len(t, slices.Collect(r.Scan(input)), 3)
}

func TestPaginationRewriter_Rewrite(t *testing.T) {
	r := newTestRewriter(t)

	result, err := r.Rewrite(context.Background(), strings.NewReader(usersBlock))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rewritten)
	assert.True(t, result.WasModified)

	_, err = r.Rewrite(context.Background(), iotest.ErrReader(assert.AnError))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading content")
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(o *Options)
		wantError string
	}{
		{
			name:   "defaults",
			mutate: func(o *Options) {},
		},
		{
			name:      "missing_operation",
			mutate:    func(o *Options) { o.Operation = "" },
			wantError: "operation is required",
		},
		{
			name:      "bad_identifier",
			mutate:    func(o *Options) { o.TokenArg = "access-token" },
			wantError: "token_arg",
		},
		{
			name:      "same_functions",
			mutate:    func(o *Options) { o.Paginated = o.Unpaginated },
			wantError: "must differ",
		},
		{
			name:      "zero_page_size",
			mutate:    func(o *Options) { o.PageSize = 0 },
			wantError: "page_size must be positive",
		},
		{
			name:      "non_whitespace_indent",
			mutate:    func(o *Options) { o.Indent = "--" },
			wantError: "indent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := ValidateOptions(opts)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}
