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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pagemigrate/cmd/pagemigrate/commands"
	"github.com/walteh/pagemigrate/cmd/pagemigrate/opts"
	"github.com/walteh/pagemigrate/pkg/config"
	"github.com/walteh/pagemigrate/pkg/log"
	"github.com/walteh/pagemigrate/pkg/operation"
	"github.com/walteh/pagemigrate/pkg/rewrite"
	"github.com/walteh/pagemigrate/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds the persistent flags shared by every command
type rootFlags struct {
	configFile string
	target     string
	debug      bool
	dryRun     bool
	backup     bool
}

// newRootCmd builds the command tree. The root command runs the migration itself.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pagemigrate",
		Short: "Migrate single-request list handlers to paginated requests",
		Long: `pagemigrate rewrites every "getAll" handler in a TypeScript node file that
fetches one page with the single-request helper so that it fetches all pages
with the paginated helper instead.

With no config file the Xibo migration is applied to nodes/Xibo/Xibo.node.ts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o, err := flags.load(ctx)
			if err != nil {
				return err
			}

			mode := operation.ModeWrite
			if flags.dryRun {
				mode = operation.ModeDiff
			}

			_, err = runMigration(ctx, o, mode)
			return err
		},
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		commands.NewScanCmd(flags.load),
		commands.NewVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (.yaml, .yml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&flags.target, "target", "t", "", "file to migrate, overrides the config")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "print a diff instead of writing")
	cmd.Flags().BoolVarP(&flags.backup, "backup", "b", false, "write <target>.bak before replacing the target")
}

// load creates the shared options from the parsed flags
func (f *rootFlags) load(ctx context.Context) (*opts.RootOpts, error) {
	cfg, err := config.Load(ctx, f.configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	if f.target != "" {
		cfg.Target = f.target
	}
	if f.backup {
		cfg.Backup = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	rw, err := rewrite.NewPaginationRewriter(cfg.Options())
	if err != nil {
		return nil, errors.Errorf("creating rewriter: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("loaded config")

	return &opts.RootOpts{
		Config:   cfg,
		Files:    status.New("."),
		Rewriter: rw,
		Logger:   log.FromContext(ctx),
	}, nil
}

func runMigration(ctx context.Context, o *opts.RootOpts, mode operation.Mode) (*operation.Report, error) {
	op, err := operation.NewMigrateOperation(o.OperationOptions(mode))
	if err != nil {
		return nil, errors.Errorf("creating operation: %w", err)
	}
	return operation.NewRunner(o.Logger).Run(ctx, op)
}

// setupLogging configures zerolog and returns a context carrying the logger. --debug
// lowers the global level once flags are parsed.
func setupLogging(ctx context.Context) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
