package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/semmidev/dbhook/internal/domain"
)

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (l *recordingLogger) Infof(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) infoLines(prefix string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, line := range l.infos {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}

// scriptTools points the dump/restore commands at shell scripts in dir.
type scriptTools struct {
	dir string
}

func (s scriptTools) DumpPath() string { return filepath.Join(s.dir, "mongodump") }
func (s scriptTools) DumpArgs(uri string) []string { return []string{"--uri=" + uri, "--archive", "--gzip"} }
func (s scriptTools) RestorePath() string { return filepath.Join(s.dir, "mongorestore") }
func (s scriptTools) RestoreArgs(uri string) []string { return []string{"--uri=" + uri, "--archive", "--gzip", "--drop"} }
func (s scriptTools) DumpLogMarker() string { return "done dumping" }

// writeScript installs a script without the executable bit, exercising the
// chmod in ensureExecutable.
func writeScript(path, body string) error {
	return os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0644)
}

type memStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	uploads   int
	downloads int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Name() string { return "mem" }

func (m *memStore) Upload(ctx context.Context, key string, body io.Reader) error {
	m.mu.Lock()
	m.uploads++
	uploadErr := m.uploadErr
	m.mu.Unlock()

	if uploadErr != nil {
		return uploadErr
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return nil
}

func (m *memStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrBackupNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
