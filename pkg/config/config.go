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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// DefaultTarget is the file migrated when no target is configured
const DefaultTarget = "nodes/Xibo/Xibo.node.ts"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔧 RewriteArgs overrides the names the rewriter looks for and emits
type RewriteArgs struct {
	Operation    string `json:"operation,omitempty" yaml:"operation,omitempty" hcl:"operation,optional"`
	OperationVar string `json:"operation_var,omitempty" yaml:"operation_var,omitempty" hcl:"operation_var,optional"`
	ResultVar    string `json:"result_var,omitempty" yaml:"result_var,omitempty" hcl:"result_var,optional"`
	ContextArg   string `json:"context_arg,omitempty" yaml:"context_arg,omitempty" hcl:"context_arg,optional"`
	Method       string `json:"method,omitempty" yaml:"method,omitempty" hcl:"method,optional"`
	Unpaginated  string `json:"unpaginated_func,omitempty" yaml:"unpaginated_func,omitempty" hcl:"unpaginated_func,optional"`
	Paginated    string `json:"paginated_func,omitempty" yaml:"paginated_func,omitempty" hcl:"paginated_func,optional"`
	TokenArg     string `json:"token_arg,omitempty" yaml:"token_arg,omitempty" hcl:"token_arg,optional"`
	BaseURLArg   string `json:"base_url_arg,omitempty" yaml:"base_url_arg,omitempty" hcl:"base_url_arg,optional"`
	OptionsVar   string `json:"options_var,omitempty" yaml:"options_var,omitempty" hcl:"options_var,optional"`
	OptionsType  string `json:"options_type,omitempty" yaml:"options_type,omitempty" hcl:"options_type,optional"`
	ReturnAllVar string `json:"return_all_var,omitempty" yaml:"return_all_var,omitempty" hcl:"return_all_var,optional"`
	PageSize     int    `json:"page_size,omitempty" yaml:"page_size,omitempty" hcl:"page_size,optional"`
	Indent       string `json:"indent,omitempty" yaml:"indent,omitempty" hcl:"indent,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Target  string       `json:"target,omitempty" yaml:"target,omitempty"`
	Backup  bool         `json:"backup,omitempty" yaml:"backup,omitempty"`
	Rewrite *RewriteArgs `json:"rewrite,omitempty" yaml:"rewrite,omitempty"`
}

// 🏭 Default returns the configuration of the Xibo node migration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// 🎯 Load loads the configuration from a file. An empty path yields Default().
func Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		zerolog.Ctx(ctx).Debug().Msg("no config file, using defaults")
		return Default(), nil
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills every unset field from DefaultTarget and rewrite.DefaultOptions
func (cfg *Config) applyDefaults() {
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}
	if cfg.Rewrite == nil {
		cfg.Rewrite = &RewriteArgs{}
	}

	d := rewrite.DefaultOptions()
	r := cfg.Rewrite
	for _, f := range []struct {
		field *string
		def   string
	}{
		{&r.Operation, d.Operation},
		{&r.OperationVar, d.OperationVar},
		{&r.ResultVar, d.ResultVar},
		{&r.ContextArg, d.ContextArg},
		{&r.Method, d.Method},
		{&r.Unpaginated, d.Unpaginated},
		{&r.Paginated, d.Paginated},
		{&r.TokenArg, d.TokenArg},
		{&r.BaseURLArg, d.BaseURLArg},
		{&r.OptionsVar, d.OptionsVar},
		{&r.OptionsType, d.OptionsType},
		{&r.ReturnAllVar, d.ReturnAllVar},
		{&r.Indent, d.Indent},
	} {
		if *f.field == "" {
			*f.field = f.def
		}
	}
	if r.PageSize == 0 {
		r.PageSize = d.PageSize
	}
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Target == "" {
		return errors.Errorf("target is required")
	}
	if cfg.Rewrite == nil {
		return errors.Errorf("rewrite settings are required")
	}

	cfg.Target = filepath.Clean(cfg.Target)

	if err := rewrite.ValidateOptions(cfg.Options()); err != nil {
		return errors.Errorf("rewrite: %w", err)
	}
	return nil
}

// ⚙️ Options converts the rewrite section to rewriter options
func (cfg *Config) Options() rewrite.Options {
	if cfg.Rewrite == nil {
		return rewrite.DefaultOptions()
	}
	r := cfg.Rewrite
	return rewrite.Options{
		Operation:    r.Operation,
		OperationVar: r.OperationVar,
		ResultVar:    r.ResultVar,
		ContextArg:   r.ContextArg,
		Method:       r.Method,
		Unpaginated:  r.Unpaginated,
		Paginated:    r.Paginated,
		TokenArg:     r.TokenArg,
		BaseURLArg:   r.BaseURLArg,
		OptionsVar:   r.OptionsVar,
		OptionsType:  r.OptionsType,
		ReturnAllVar: r.ReturnAllVar,
		PageSize:     r.PageSize,
		Indent:       r.Indent,
	}
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	o := cfg.Options()
	return fmt.Sprintf("%s: %s -> %s (%s)", cfg.Target, o.Unpaginated, o.Paginated, o.Operation)
}
