package statsstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/omniluck/internal/domain/lottery"
)

// ObjectStore keeps the snapshot as a JSON object in an S3 compatible bucket
// (R2, MinIO, S3), shared by every replica.
type ObjectStore struct {
	client *minio.Client
	bucket string
	object string
	logger *slog.Logger
}

// NewObjectStore constructs the adapter. The endpoint may carry a scheme,
// which selects TLS.
func NewObjectStore(endpoint, accessKey, secretKey, bucket, object, region string, logger *slog.Logger) (*ObjectStore, error) {
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	if object == "" {
		object = "lottery/stats.json"
	}
	return &ObjectStore{
		client: client,
		bucket: bucket,
		object: object,
		logger: logger.With("component", "statsstore.object"),
	}, nil
}

func (s *ObjectStore) Load(ctx context.Context) (lottery.Snapshot, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return lottery.Snapshot{}, false, err
	}
	defer obj.Close()
	raw, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return lottery.Snapshot{}, false, nil
		}
		return lottery.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snap lottery.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return lottery.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *ObjectStore) Save(ctx context.Context, snap lottery.Snapshot) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	s.logger.Debug("lottery snapshot stored", "bucket", s.bucket, "object", s.object, "bytes", len(payload))
	return nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// sanitizeEndpoint strips the scheme and path; minio.New wants host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ lottery.StatsStore = (*ObjectStore)(nil)
