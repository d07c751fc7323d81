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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultPageSize is the page size passed when not every page is requested
const DefaultPageSize = 50

var identRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// ⚙️ Options names the pieces of code the rewriter looks for and emits
type Options struct {
	Operation    string // Operation name checked by the guard
	OperationVar string // Variable the guard compares
	ResultVar    string // Variable the fetch result is assigned to
	ContextArg   string // First argument of both fetch calls
	Method       string // HTTP method of the un-paginated call
	Unpaginated  string // Un-paginated fetch function
	Paginated    string // Paginated fetch function
	TokenArg     string // Access token in scope at the call site
	BaseURLArg   string // Base URL in scope at the call site
	OptionsVar   string // Injected query options container
	OptionsType  string // Type annotation of the options container, may be empty
	ReturnAllVar string // Injected "fetch all pages" flag
	PageSize     int    // Page size used when ReturnAllVar is false
	Indent       string // One level of indentation
}

// 🏭 DefaultOptions returns the settings for the Xibo node migration
func DefaultOptions() Options {
	return Options{
		Operation:    "getAll",
		OperationVar: "operation",
		ResultVar:    "responseData",
		ContextArg:   "this",
		Method:       "GET",
		Unpaginated:  "xiboApiRequest",
		Paginated:    "xiboApiRequestAllItems",
		TokenArg:     "accessToken",
		BaseURLArg:   "baseUrl",
		OptionsVar:   "qs",
		OptionsType:  "IDataObject",
		ReturnAllVar: "returnAll",
		PageSize:     DefaultPageSize,
		Indent:       "\t",
	}
}

// ValidateOptions checks that every name is usable in generated code
func ValidateOptions(opts Options) error {
	if opts.Operation == "" {
		return errors.Errorf("operation is required")
	}
	if opts.Method == "" {
		return errors.Errorf("method is required")
	}

	idents := []struct {
		field string
		value string
	}{
		{"operation_var", opts.OperationVar},
		{"result_var", opts.ResultVar},
		{"context_arg", opts.ContextArg},
		{"unpaginated_func", opts.Unpaginated},
		{"paginated_func", opts.Paginated},
		{"token_arg", opts.TokenArg},
		{"base_url_arg", opts.BaseURLArg},
		{"options_var", opts.OptionsVar},
		{"return_all_var", opts.ReturnAllVar},
	}
	for _, id := range idents {
		if !identRe.MatchString(id.value) {
			return errors.Errorf("%s: %q is not an identifier", id.field, id.value)
		}
	}

	if opts.Unpaginated == opts.Paginated {
		return errors.Errorf("unpaginated_func and paginated_func must differ")
	}
	if opts.PageSize <= 0 {
		return errors.Errorf("page_size must be positive, got %d", opts.PageSize)
	}
	if opts.Indent == "" || strings.TrimSpace(opts.Indent) != "" {
		return errors.Errorf("indent must be non-empty whitespace")
	}
	return nil
}
