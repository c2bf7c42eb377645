package filestore

import (
	"context"
	"path"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps every file in a hash with the content and metadata fields.
// The keys namespace is organized as follows:
// - `/<prefix>/filestore/files/<fileID>`

const (
	fieldData     = "data"
	fieldName     = "name"
	fieldMimeType = "mime_type"
	fieldType     = "type"
	fieldSize     = "size"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis returns a store that keeps files in Redis.
// Files expire after ttl, if it is positive.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (m *redisStore) getRedisFileKey(id string) string {
	return path.Join(m.prefix, "filestore", "files", id)
}

func (m *redisStore) Put(ctx context.Context, name string, data []byte, mimeType string) (*tools.File, error) {
	info := newInfo(name, data, mimeType)
	key := m.getRedisFileKey(info.ID)

	pipe := m.client.Pipeline()
	pipe.HSet(ctx, key,
		fieldData, data,
		fieldName, info.Name,
		fieldMimeType, info.MimeType,
		fieldType, string(info.Type),
		fieldSize, info.Size,
	)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store file in Redis")
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "stored",
		"key", key,
		"mime_type", info.MimeType,
		"size", info.Size)
	return info.File(), nil
}

func (m *redisStore) Download(ctx context.Context, f *tools.File) ([]byte, error) {
	if err := validateFile(f); err != nil {
		return nil, err
	}

	data, err := m.client.HGet(ctx, m.getRedisFileKey(f.ID), fieldData).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(ErrNotFound, "%q", f.ID)
		}
		return nil, errors.Wrap(err, "failed to get file from Redis")
	}
	return data, nil
}

func (m *redisStore) GetAttribute(ctx context.Context, f *tools.File, attr tools.FileAttribute) (any, error) {
	info, err := m.Info(ctx, f)
	if err != nil {
		return nil, err
	}
	return info.Attribute(attr)
}

func (m *redisStore) Info(ctx context.Context, f *tools.File) (*Info, error) {
	if err := validateFile(f); err != nil {
		return nil, err
	}

	vals, err := m.client.HMGet(ctx, m.getRedisFileKey(f.ID), fieldName, fieldMimeType, fieldType, fieldSize).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file info from Redis")
	}
	if len(vals) != 4 || vals[3] == nil {
		return nil, errors.Wrapf(ErrNotFound, "%q", f.ID)
	}

	info := &Info{
		ID:       f.ID,
		Name:     stringValue(vals[0]),
		MimeType: stringValue(vals[1]),
		Type:     tools.FileType(stringValue(vals[2])),
	}
	info.Size, err = strconv.ParseInt(stringValue(vals[3]), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid file size")
	}
	return info, nil
}

func (m *redisStore) Delete(ctx context.Context, f *tools.File) error {
	if err := validateFile(f); err != nil {
		return err
	}
	err := m.client.Del(ctx, m.getRedisFileKey(f.ID)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to delete file from Redis")
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
