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
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemigrate/pkg/log"
)

func main() {
	ctx := setupLogging(context.Background())
	os.Exit(run(ctx, os.Stdout, os.Args[1:]))
}

// run executes the command tree with args and returns the process exit code. Commands
// find the console logger in ctx.
func run(ctx context.Context, console io.Writer, args []string) int {
	logger := log.New(console, *zerolog.Ctx(ctx))
	ctx = log.NewContext(ctx, logger)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(console)
	cmd.SetErr(console)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		return 1
	}
	return 0
}
