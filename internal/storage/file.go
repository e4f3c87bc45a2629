/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "gowhiteboard/internal/log"
)

const (
	BackupsDirName = "backups"
	// keepBackups bounds the number of timestamped copies per file.
	keepBackups = 5
	// DefaultBackupInterval is the minimum time between two backups.
	DefaultBackupInterval = 30 * time.Second
)

// File is a Store persisted as one JSON object file. Every Set rewrites the
// file through a temp file and rename. The previous version is copied to
// backups/<name>.<stamp>.bak on the first write of a session and then at most
// once per backup interval.
type File struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	closed bool
	log    *slog.Logger

	backupEvery time.Duration
	lastBackup  time.Time
	now         func() time.Time
}

// OpenFile loads path, creating its directory if needed. A missing file is an
// empty store. If the file is unreadable or corrupt the newest backup is used.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "file_open").With(slog.String("path", path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	f := &File{
		path:        path,
		data:        map[string]string{},
		log:         applog.WithComponent("storage"),
		backupEvery: DefaultBackupInterval,
		now:         time.Now,
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err == nil:
		uerr := json.Unmarshal(b, &f.data)
		if uerr == nil {
			if f.data == nil {
				f.data = map[string]string{}
			}
			return f, nil
		}
		err = uerr
	}
	data, berr := f.latestBackup()
	if berr != nil {
		l.Error("store unreadable and no usable backup", slog.Any("err", err), slog.Any("backup_err", berr))
		return nil, fmt.Errorf("open store: %w; backup attempt: %v", err, berr)
	}
	l.Warn("store unreadable, recovered from backup", slog.Any("err", err))
	f.data = data
	return f, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// flush writes f.data with transactional semantics. Caller holds f.mu.
func (f *File) flush() error {
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	if _, statErr := os.Stat(f.path); statErr == nil && f.backupDue() {
		if berr := f.backup(); berr != nil {
			return fmt.Errorf("backup current store: %w", berr)
		}
	}

	dir := filepath.Dir(f.path)
	name := filepath.Base(f.path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp store: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(f.path); err == nil {
		_ = os.Remove(f.path)
	}
	if rerr := os.Rename(temp, f.path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace store: %w", rerr)
	}
	return nil
}

func (f *File) backupDue() bool {
	return f.lastBackup.IsZero() || f.now().Sub(f.lastBackup) >= f.backupEvery
}

func (f *File) backupDir() string { return filepath.Join(filepath.Dir(f.path), BackupsDirName) }

func (f *File) backupCandidates() ([]string, error) {
	ents, err := os.ReadDir(f.backupDir())
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(f.path) + "."
	var out []string
	for _, e := range ents {
		n := e.Name()
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".bak") {
			out = append(out, filepath.Join(f.backupDir(), n))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// backup copies the current file to a timestamped backup and prunes old ones.
func (f *File) backup() error {
	now := f.now()
	stamp := now.Format("20060102-150405.000")
	bpath := filepath.Join(f.backupDir(), fmt.Sprintf("%s.%s.bak", filepath.Base(f.path), stamp))
	if err := copyFile(f.path, bpath); err != nil {
		return err
	}
	f.lastBackup = now
	cands, err := f.backupCandidates()
	if err != nil {
		return nil
	}
	for len(cands) > keepBackups {
		if rerr := os.Remove(cands[0]); rerr != nil {
			f.log.Debug("prune backup failed", slog.String("file", cands[0]), slog.Any("err", rerr))
		}
		cands = cands[1:]
	}
	return nil
}

// latestBackup returns the content of the newest parseable backup.
func (f *File) latestBackup() (map[string]string, error) {
	cands, err := f.backupCandidates()
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(cands) - 1; i >= 0; i-- {
		b, err := os.ReadFile(cands[i])
		if err != nil {
			lastErr = fmt.Errorf("read backup: %w", err)
			continue
		}
		m := map[string]string{}
		if err := json.Unmarshal(b, &m); err != nil {
			lastErr = fmt.Errorf("parse backup %s: %w", filepath.Base(cands[i]), err)
			continue
		}
		return m, nil
	}
	return nil, lastErr
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
