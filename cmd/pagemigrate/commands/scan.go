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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/pagemigrate/cmd/pagemigrate/opts"
	"github.com/walteh/pagemigrate/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewScanCmd creates a new scan command
func NewScanCmd(load opts.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List guarded handlers without changing anything",
		Long: `Scan reads the target and lists every guarded handler block.
For each block it shows the endpoint, the line of the guard and what a
migration would do with it. The target is never written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o, err := load(ctx)
			if err != nil {
				return err
			}

			o.Logger.Header("scan")

			op, err := operation.NewMigrateOperation(o.OperationOptions(operation.ModeScan))
			if err != nil {
				return errors.Errorf("creating operation: %w", err)
			}

			if _, err := operation.NewRunner(o.Logger).Run(ctx, op); err != nil {
				return errors.Errorf("scanning: %w", err)
			}
			return nil
		},
	}

	return cmd
}
