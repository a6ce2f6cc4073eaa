package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/coverage-intelligence/internal/application/coverage"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

const (
	defaultArchivePrefix = "snapshots"
	contentTypeJSON      = "application/json"
)

// ObjectMetadata describes one archived snapshot.
type ObjectMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// SnapshotArchive writes snapshot documents under
// {prefix}/{platform}/{YYYY}/{MM}/{DD}/{unix}-{id}.json.
type SnapshotArchive struct {
	client *Client
	prefix string
	logger logging.Logger
}

// NewSnapshotArchive returns an archive rooted at prefix ("snapshots" when
// empty).
func NewSnapshotArchive(client *Client, prefix string, log logging.Logger) *SnapshotArchive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultArchivePrefix
	}
	return &SnapshotArchive{client: client, prefix: prefix, logger: log}
}

// ObjectKey is the archive path of snap.
func (a *SnapshotArchive) ObjectKey(snap *coverage.CoverageSnapshot) string {
	t := snap.GeneratedAt.UTC()
	return path.Join(a.prefix, snap.PlatformID,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
		fmt.Sprintf("%d-%s.json", t.Unix(), snap.ID))
}

// ArchiveSnapshot uploads payload and returns its object key.
func (a *SnapshotArchive) ArchiveSnapshot(ctx context.Context, snap *coverage.CoverageSnapshot, payload []byte) (string, error) {
	if snap == nil || snap.PlatformID == "" || snap.ID == "" {
		return "", errors.InvalidParam("snapshot with id and platform required")
	}
	if a.client.isClosed() {
		return "", ErrClientClosed
	}
	key := a.ObjectKey(snap)
	opts := minio.PutObjectOptions{
		ContentType: contentTypeJSON,
		UserMetadata: map[string]string{
			"platform": snap.PlatformID,
			"snapshot": snap.ID,
		},
	}
	info, err := a.client.api.PutObject(ctx, a.client.bucket, key, bytes.NewReader(payload), int64(len(payload)), opts)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeObjectStorage, "archive snapshot "+snap.ID)
	}
	a.logger.Debug("snapshot archived",
		logging.String("bucket", a.client.bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return key, nil
}

// ListSnapshots returns the archived snapshots of a platform, newest first.
// limit <= 0 returns all of them.
func (a *SnapshotArchive) ListSnapshots(ctx context.Context, platformID string, limit int) ([]ObjectMetadata, error) {
	if platformID == "" {
		return nil, errors.InvalidParam("platform id required")
	}
	if a.client.isClosed() {
		return nil, ErrClientClosed
	}
	ch := a.client.api.ListObjects(ctx, a.client.bucket, minio.ListObjectsOptions{
		Prefix:    path.Join(a.prefix, platformID) + "/",
		Recursive: true,
	})
	out := []ObjectMetadata{}
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeObjectStorage, "list snapshots")
		}
		out = append(out, ObjectMetadata{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	// Keys embed the unix time, and day directories sort lexically.
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
