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

package operation

import (
	"context"
	"fmt"

	"github.com/walteh/pagemigrate/pkg/config"
	"github.com/walteh/pagemigrate/pkg/log"
	"github.com/walteh/pagemigrate/pkg/rewrite"
	"github.com/walteh/pagemigrate/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one unit of work against the target file
type Operation interface {
	Execute(ctx context.Context) (*Report, error)
}

// 🔀 Mode selects what a migration does with its result
type Mode int

const (
	ModeWrite Mode = iota // Rewrite the target in place
	ModeDiff              // Print a unified diff, write nothing
	ModeScan              // List handler blocks only
)

// 🔧 Options contains configuration for an operation
type Options struct {
	// Config is the pagemigrate configuration
	Config *config.Config
	// Files performs all file I/O
	Files status.FileManager
	// Rewriter transforms the target content
	Rewriter rewrite.Rewriter
	// Logger prints console feedback
	Logger *log.Logger
	// Mode selects write, diff or scan behavior
	Mode Mode
}

func (o Options) validate() error {
	if o.Config == nil {
		return errors.Errorf("config is required")
	}
	if o.Files == nil {
		return errors.Errorf("file manager is required")
	}
	if o.Rewriter == nil {
		return errors.Errorf("rewriter is required")
	}
	if o.Logger == nil {
		return errors.Errorf("logger is required")
	}
	return nil
}

// 📊 Report is the outcome of one run
type Report struct {
	Target          string
	Operation       string
	Status          status.FileStatus
	Rewritten       int
	Dropped         int
	AlreadyMigrated int
	Unrecognized    int
	Backup          string
	Diff            string
}

// SummaryRows returns the counts shown in the end-of-run table
func (r *Report) SummaryRows() []log.SummaryRow {
	return []log.SummaryRow{
		{Label: "rewritten", Count: r.Rewritten},
		{Label: "already migrated", Count: r.AlreadyMigrated},
		{Label: "dropped", Count: r.Dropped},
		{Label: "unrecognized", Count: r.Unrecognized},
	}
}

// Message returns the completion line, derived from the counts rather than fixed
func (r *Report) Message() string {
	switch r.Status {
	case status.StatusModified:
		return fmt.Sprintf("Updated %s in %s", plural(r.Rewritten, r.Operation+" handler"), r.Target)
	case status.StatusPreview:
		return fmt.Sprintf("%s would be updated in %s", plural(r.Rewritten, r.Operation+" handler"), r.Target)
	default:
		return fmt.Sprintf("No %s handlers needed updating in %s", r.Operation, r.Target)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// handlerStatus maps a block shape to the word shown next to it
func handlerStatus(shape rewrite.Shape, mode Mode) string {
	switch shape {
	case rewrite.ShapeUnpaginated:
		if mode == ModeWrite {
			return "rewritten"
		}
		return "would rewrite"
	case rewrite.ShapeMalformed:
		return "dropped"
	case rewrite.ShapePaginated:
		return "migrated"
	default:
		return "skipped"
	}
}
