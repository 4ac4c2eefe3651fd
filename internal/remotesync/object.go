package remotesync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type ObjectConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// putter is the slice of the minio client the remote uses.
type putter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectRemote stores records in an S3-compatible bucket.
type ObjectRemote struct {
	client putter
	bucket string
}

var _ Remote = (*ObjectRemote)(nil)

// NewObjectRemote connects to the endpoint and creates the bucket when it
// does not exist yet.
func NewObjectRemote(ctx context.Context, cfg ObjectConfig) (*ObjectRemote, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object remote: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("object remote: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("object remote: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("object remote: create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &ObjectRemote{client: client, bucket: cfg.Bucket}, nil
}

func (r *ObjectRemote) Push(ctx context.Context, userID, kind, id string, payload []byte) error {
	return r.put(ctx, RecordKey(userID, kind, id), payload, "application/json")
}

// UploadExport stores an export file under the user's exports prefix and
// returns the object key.
func (r *ObjectRemote) UploadExport(ctx context.Context, userID, filename string, data []byte, contentType string) (string, error) {
	key := ExportKey(userID, filename)
	if err := r.put(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (r *ObjectRemote) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.client.PutObject(ctx, r.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// RecordKey is users/<uid>/<kind>/<id>.json.
func RecordKey(userID, kind, id string) string {
	return path.Join("users", clean(userID), clean(kind), clean(id)+".json")
}

// ExportKey is exports/<uid>/<file>.
func ExportKey(userID, filename string) string {
	return path.Join("exports", clean(userID), clean(filename))
}

// clean keeps one path segment.
func clean(segment string) string {
	segment = strings.ReplaceAll(segment, "/", "_")
	if segment == "" || segment == "." || segment == ".." {
		return "_"
	}
	return segment
}
