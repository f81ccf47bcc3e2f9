package source

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSource đọc resource từ MinIO hoặc storage tương thích S3.
type MinioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSource tạo mới MinioSource
func NewMinioSource(endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool) (*MinioSource, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioSource{client: client, bucket: bucket, prefix: prefix}, nil
}

// Fetch downloads one object.
func (s *MinioSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	key := path.Join(s.prefix, p)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(p, err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; errors surface on first read.
	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrap(p, err)
	}
	return Decompress(body)
}

func (s *MinioSource) wrap(p string, err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return fmt.Errorf("fetch %s: %w", p, ErrNotFound)
	}
	return fmt.Errorf("fetch %s: %w", p, err)
}
