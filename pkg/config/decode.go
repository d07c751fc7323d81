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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// decoder is the streaming interface shared by yaml.v3 and encoding/json
type decoder interface {
	Decode(v any) error
}

// 🔧 StreamParser decodes a single YAML or JSON document into Config. Unknown fields are
// rejected, an empty file yields an empty Config, and a second document is an error.
type StreamParser struct {
	format     string
	extensions []string
	newDecoder func(r io.Reader) decoder
}

func init() {
	Register(&StreamParser{
		format:     "YAML",
		extensions: []string{".yaml", ".yml"},
		newDecoder: func(r io.Reader) decoder {
			d := yaml.NewDecoder(r)
			d.KnownFields(true)
			return d
		},
	})
	Register(&StreamParser{
		format:     "JSON",
		extensions: []string{".json"},
		newDecoder: func(r io.Reader) decoder {
			d := json.NewDecoder(r)
			d.DisallowUnknownFields()
			return d
		},
	})
}

// Format returns the name of the format this parser reads
func (p *StreamParser) Format() string {
	return p.format
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *StreamParser) CanParse(filename string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	return slices.Contains(p.extensions, ext)
}

// 📝 Parse decodes the config document
func (p *StreamParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	dec := p.newDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing %s: %w", p.format, err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing %s: unexpected content after the first document", p.format)
	}

	return &cfg, nil
}
