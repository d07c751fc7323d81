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

package opts

import (
	"context"

	"github.com/walteh/pagemigrate/pkg/config"
	"github.com/walteh/pagemigrate/pkg/log"
	"github.com/walteh/pagemigrate/pkg/operation"
	"github.com/walteh/pagemigrate/pkg/rewrite"
	"github.com/walteh/pagemigrate/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config   *config.Config
	Files    status.FileManager
	Rewriter rewrite.Rewriter
	Logger   *log.Logger
}

// Loader builds RootOpts once flags have been parsed
type Loader func(ctx context.Context) (*RootOpts, error)

// OperationOptions returns the operation options for the given mode
func (o *RootOpts) OperationOptions(mode operation.Mode) operation.Options {
	return operation.Options{
		Config:   o.Config,
		Files:    o.Files,
		Rewriter: o.Rewriter,
		Logger:   o.Logger,
		Mode:     mode,
	}
}
