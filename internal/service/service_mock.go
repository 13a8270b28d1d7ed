package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MOCK STORAGE

// мок потокобезопасен: Process пишет три файла конкурентно
type mockStorage struct {
	mu          sync.Mutex
	puts        map[string][]byte
	putFn       func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	getFn       func(ctx context.Context, key string) (io.ReadCloser, string, error)
	existsFn    func(ctx context.Context, key string) (bool, error)
	deleteFn    func(ctx context.Context, key string) error
	listOlderFn func(ctx context.Context, cutoff time.Time) ([]string, error)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putFn != nil {
		return m.putFn(ctx, key, size, ct, r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[key] = data
	return nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) {
	return m.existsFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

func (m *mockStorage) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	return m.listOlderFn(ctx, cutoff)
}

func (m *mockStorage) storedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.puts))
	for k := range m.puts {
		keys = append(keys, k)
	}
	return keys
}

// MOCK для multipart.File
type fakeMultipartFile struct {
	*bytes.Reader
}

func (f *fakeMultipartFile) Close() error {
	return nil
}
