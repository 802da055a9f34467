// Copyright 2025 Poiesic Systems
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

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSet replaces several files as a unit. Stage writes each payload to a
// synced temporary file next to its destination; Commit then moves every
// staged file into place, restoring the previous files if any move fails.
// A FileSet is not safe for concurrent use.
type FileSet struct {
	staged []stagedFile
}

type stagedFile struct {
	path   string
	tmp    string
	backup string
}

// Stage writes data to a temporary file beside path. Nothing visible at
// path changes until Commit.
func (s *FileSet) Stage(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	s.staged = append(s.staged, stagedFile{path: path, tmp: tmp.Name()})
	return nil
}

// StageJSON stages v encoded the same way as WriteJSONAtomic.
func (s *FileSet) StageJSON(path string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	return s.Stage(path, data, 0o644)
}

// Commit moves the staged files into place in staging order. Destinations
// are checked before anything moves; on a failure part way through, files
// already moved are rolled back to their previous contents. The set is empty
// afterwards either way.
func (s *FileSet) Commit() (err error) {
	defer s.Discard()

	for _, f := range s.staged {
		info, err := os.Lstat(f.path)
		if err == nil && info.IsDir() {
			return fmt.Errorf("%s: destination is a directory", f.path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	done := 0
	defer func() {
		if err != nil {
			s.rollback(done)
		}
	}()
	for i := range s.staged {
		f := &s.staged[i]
		if _, statErr := os.Lstat(f.path); statErr == nil {
			f.backup = f.tmp + ".prev"
			if err = os.Rename(f.path, f.backup); err != nil {
				f.backup = ""
				return err
			}
		}
		if err = os.Rename(f.tmp, f.path); err != nil {
			if f.backup != "" {
				os.Rename(f.backup, f.path)
				f.backup = ""
			}
			return err
		}
		f.tmp = ""
		done++
	}

	for _, f := range s.staged {
		if f.backup != "" {
			os.Remove(f.backup)
		}
	}
	return nil
}

// rollback restores the first n committed files.
func (s *FileSet) rollback(n int) {
	for i := n - 1; i >= 0; i-- {
		f := s.staged[i]
		if f.backup != "" {
			os.Rename(f.backup, f.path)
		} else {
			os.Remove(f.path)
		}
	}
}

// Discard removes any staged temporary files that were not committed.
func (s *FileSet) Discard() {
	for _, f := range s.staged {
		if f.tmp != "" {
			os.Remove(f.tmp)
		}
	}
	s.staged = nil
}
