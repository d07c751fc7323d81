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
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/log"
	"github.com/walteh/pagemigrate/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔄 migrateOperation implements the pagination migration
type migrateOperation struct {
	opts Options
}

// 📦 NewMigrateOperation creates a new migration operation
func NewMigrateOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}
	return &migrateOperation{opts: opts}, nil
}

// 🏃 Execute runs the migration. The lock is held from before the read until after the
// write and released on every path.
func (op *migrateOperation) Execute(ctx context.Context) (_ *Report, retErr error) {
	cfg := op.opts.Config
	target := cfg.Target
	logger := zerolog.Ctx(ctx).With().Str("target", target).Logger()

	op.opts.Logger.StartRun(ctx, log.RunOperation{
		Target: target,
		DryRun: op.opts.Mode != ModeWrite,
	})

	if op.opts.Mode == ModeWrite {
		lease, err := op.opts.Files.Lock(ctx, target)
		if err != nil {
			return nil, errors.Errorf("locking target: %w", err)
		}
		defer func() {
			if err := lease.Release(); err != nil && retErr == nil {
				retErr = errors.Errorf("releasing lock: %w", err)
			}
		}()
	}

	content, err := op.opts.Files.ReadFile(ctx, target)
	if err != nil {
		return nil, errors.Errorf("reading target: %w", err)
	}
	readSum := status.ChecksumBytes(content)

	result, err := op.opts.Rewriter.Rewrite(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, errors.Errorf("rewriting target: %w", err)
	}

	report := &Report{
		Target:          target,
		Operation:       cfg.Options().Operation,
		Status:          status.StatusUnchanged,
		Rewritten:       result.Rewritten,
		Dropped:         result.Dropped,
		AlreadyMigrated: result.AlreadyMigrated,
		Unrecognized:    result.Unrecognized,
	}

	for _, blk := range result.Blocks {
		op.opts.Logger.LogHandler(ctx, log.HandlerOperation{
			Line:     blk.Line,
			Endpoint: blk.Candidate.Endpoint,
			Shape:    blk.Shape.String(),
			Status:   handlerStatus(blk.Shape, op.opts.Mode),
		})
	}

	if !result.WasModified {
		logger.Debug().Msg("nothing to rewrite")
		return report, nil
	}

	switch op.opts.Mode {
	case ModeScan:
		report.Status = status.StatusPreview
		return report, nil
	case ModeDiff:
		diff, err := unifiedDiff(target, result.OriginalContent, result.ModifiedContent)
		if err != nil {
			return nil, errors.Errorf("computing diff: %w", err)
		}
		report.Status = status.StatusPreview
		report.Diff = diff
		return report, nil
	}

	currentSum, err := op.opts.Files.Checksum(ctx, target)
	if err != nil {
		return nil, errors.Errorf("re-reading target: %w", err)
	}
	if currentSum != readSum {
		return nil, errors.Errorf("target %s changed while migrating, nothing written", target)
	}

	if cfg.Backup {
		backup, err := op.opts.Files.BackupFile(ctx, target)
		if err != nil {
			return nil, errors.Errorf("backing up target: %w", err)
		}
		report.Backup = backup
	}

	if err := op.opts.Files.WriteFileAtomic(ctx, target, result.ModifiedContent); err != nil {
		return nil, errors.Errorf("writing target: %w", err)
	}

	report.Status = status.StatusModified
	logger.Debug().Int("rewritten", report.Rewritten).Msg("target written")
	return report, nil
}
