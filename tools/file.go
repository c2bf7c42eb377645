package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// FileType is the kind of a host file.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeAudio    FileType = "audio"
	FileTypeVideo    FileType = "video"
	FileTypeCustom   FileType = "custom"
)

// FileAttribute is a queryable attribute of a host file.
type FileAttribute string

const (
	FileAttributeMimeType  FileAttribute = "mime_type"
	FileAttributeName      FileAttribute = "name"
	FileAttributeSize      FileAttribute = "size"
	FileAttributeExtension FileAttribute = "extension"
)

// File is an opaque reference to a file owned by the host.
// Content and attributes are read through a FileAccessor.
type File struct {
	ID   string   `json:"id" yaml:"id"`
	Type FileType `json:"type" yaml:"type"`
}

// FileTypeFromMime returns the file type for the MIME type.
func FileTypeFromMime(mimeType string) FileType {
	major, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), "/")
	switch major {
	case "audio":
		return FileTypeAudio
	case "video":
		return FileTypeVideo
	case "image":
		return FileTypeImage
	case "text", "application":
		return FileTypeDocument
	}
	return FileTypeCustom
}

// GetAttributeString returns the attribute formatted as string.
func GetAttributeString(ctx context.Context, accessor FileAccessor, f *File, attr FileAttribute) (string, error) {
	v, err := accessor.GetAttribute(ctx, f, attr)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get %s attribute", attr)
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	default:
		return fmt.Sprint(val), nil
	}
}
