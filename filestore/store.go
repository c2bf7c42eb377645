// Package filestore provides host file storage implementing tools.FileAccessor,
// in memory or in Redis.
package filestore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/config"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/xlog"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gworks", "filestore")

// ErrNotFound is returned when the file does not exist in the store.
var ErrNotFound = errors.New("file not found")

// Store manages host files.
type Store interface {
	tools.FileAccessor

	// Put stores the file content and returns the handle.
	// The MIME type is detected from the content if not provided.
	Put(ctx context.Context, name string, data []byte, mimeType string) (*tools.File, error)
	// Info returns the file metadata.
	Info(ctx context.Context, f *tools.File) (*Info, error)
	// Delete removes the file.
	Delete(ctx context.Context, f *tools.File) error
}

// Info is the metadata of a stored file.
type Info struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	MimeType string         `json:"mime_type" yaml:"mime_type"`
	Type     tools.FileType `json:"type" yaml:"type"`
	Size     int64          `json:"size" yaml:"size"`
}

// File returns the handle of the file.
func (i *Info) File() *tools.File {
	return &tools.File{ID: i.ID, Type: i.Type}
}

// Extension returns the extension of the file name,
// or the extension registered for the MIME type.
func (i *Info) Extension() string {
	if ext := filepath.Ext(i.Name); ext != "" {
		return ext
	}
	mt, _, _ := strings.Cut(i.MimeType, ";")
	if m := mimetype.Lookup(strings.TrimSpace(mt)); m != nil {
		return m.Extension()
	}
	return ""
}

// Attribute returns the attribute value.
func (i *Info) Attribute(attr tools.FileAttribute) (any, error) {
	switch attr {
	case tools.FileAttributeMimeType:
		return i.MimeType, nil
	case tools.FileAttributeName:
		return i.Name, nil
	case tools.FileAttributeSize:
		return i.Size, nil
	case tools.FileAttributeExtension:
		return i.Extension(), nil
	}
	return nil, errors.Newf("unsupported attribute %q", attr)
}

// New returns the store specified by the config:
// Redis if RedisURL is set, in memory otherwise.
func New(cfg *config.FileStoreConfig) (Store, error) {
	if cfg == nil || cfg.RedisURL == "" {
		return NewMemory(), nil
	}

	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	return NewRedis(redis.NewClient(options), cfg.Prefix, cfg.GetTTL()), nil
}

func newInfo(name string, data []byte, mimeType string) *Info {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return &Info{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Type:     tools.FileTypeFromMime(mimeType),
		Size:     int64(len(data)),
	}
}

func validateFile(f *tools.File) error {
	if f == nil || f.ID == "" {
		return errors.New("invalid file handle")
	}
	return nil
}
