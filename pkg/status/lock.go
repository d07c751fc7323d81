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

package status

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrLocked is returned when another run holds the lock on the target
var ErrLocked = errors.Base("target is locked by another run")

// 🔐 Lease is a held lock on a target file
type Lease struct {
	path string
	once sync.Once
	err  error
}

// Path returns the lock file path
func (l *Lease) Path() string {
	return l.path
}

// Release removes the lock file. It is safe to call more than once.
func (l *Lease) Release() error {
	l.once.Do(func() {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			l.err = errors.Errorf("removing lock file: %w", err)
		}
	})
	return l.err
}

// Lock takes an exclusive lock on path by creating path.lock. A second Lock on the same
// path fails with ErrLocked until the first lease is released.
func (m *Manager) Lock(ctx context.Context, path string) (*Lease, error) {
	lockPath := m.getAbsPath(path) + ".lock"

	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.WithDetails(ErrLocked, "lock", lockPath)
		}
		return nil, errors.Errorf("creating lock file: %w", err)
	}

	_, werr := fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(lockPath)
		return nil, errors.Errorf("writing lock file: %w", errors.Join(werr, cerr))
	}

	zerolog.Ctx(ctx).Debug().Str("lock", lockPath).Msg("acquired lock")
	return &Lease{path: lockPath}, nil
}
