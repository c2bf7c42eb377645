package filestore

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/xlog"
)

type memoryFile struct {
	info Info
	data []byte
}

type inMemory struct {
	mu      sync.RWMutex
	storage map[string]*memoryFile
}

// NewMemory returns a store that keeps files in memory.
func NewMemory() Store {
	return &inMemory{}
}

func (m *inMemory) Put(ctx context.Context, name string, data []byte, mimeType string) (*tools.File, error) {
	info := newInfo(name, data, mimeType)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]*memoryFile)
	}
	m.storage[info.ID] = &memoryFile{
		info: *info,
		data: slices.Clone(data),
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "stored",
		"id", info.ID,
		"name", name,
		"mime_type", info.MimeType,
		"size", info.Size)
	return info.File(), nil
}

func (m *inMemory) get(f *tools.File) (*memoryFile, error) {
	if err := validateFile(f); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	mf, ok := m.storage[f.ID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", f.ID)
	}
	return mf, nil
}

func (m *inMemory) Download(_ context.Context, f *tools.File) ([]byte, error) {
	mf, err := m.get(f)
	if err != nil {
		return nil, err
	}
	return slices.Clone(mf.data), nil
}

func (m *inMemory) GetAttribute(_ context.Context, f *tools.File, attr tools.FileAttribute) (any, error) {
	mf, err := m.get(f)
	if err != nil {
		return nil, err
	}
	return mf.info.Attribute(attr)
}

func (m *inMemory) Info(_ context.Context, f *tools.File) (*Info, error) {
	mf, err := m.get(f)
	if err != nil {
		return nil, err
	}
	info := mf.info
	return &info, nil
}

func (m *inMemory) Delete(_ context.Context, f *tools.File) error {
	if err := validateFile(f); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, f.ID)
	}
	return nil
}
