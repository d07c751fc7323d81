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

	"github.com/walteh/pagemigrate/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🏃 OperationRunner executes operations and reports their outcome
type OperationRunner struct {
	logger *log.Logger
}

// 🏗️ NewRunner creates a new runner
func NewRunner(logger *log.Logger) *OperationRunner {
	return &OperationRunner{
		logger: logger,
	}
}

// 🏃 Run executes an operation, then prints its diff, summary and completion message
func (r *OperationRunner) Run(ctx context.Context, op Operation) (*Report, error) {
	defer r.logger.EndRun(ctx)

	report, err := op.Execute(ctx)
	if err != nil {
		return nil, errors.Errorf("executing operation: %w", err)
	}

	if report.Diff != "" {
		r.logger.LogNewline()
		r.logger.Raw(report.Diff)
	}

	r.logger.Summary(report.SummaryRows())

	if report.Dropped > 0 {
		r.logger.Warningf("left %d malformed %s handler(s) untouched", report.Dropped, report.Operation)
	}
	if report.Backup != "" {
		r.logger.Infof("backup written to %s", report.Backup)
	}
	r.logger.Success(report.Message())

	return report, nil
}
