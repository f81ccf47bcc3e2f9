package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config cấu hình nguồn dữ liệu
type Config struct {
	// Root: https://host/data, s3://bucket/prefix, minio://host:9000/bucket/prefix or a local path.
	Root        string
	Timeout     time.Duration
	S3Region    string
	MinioAccess string
	MinioSecret string
	MinioUseSSL bool
}

// Open chọn Source theo scheme của Root.
func Open(ctx context.Context, cfg Config) (Source, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, fmt.Errorf("source: empty data root")
	}

	switch {
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return NewHTTPSource(root, cfg.Timeout), nil

	case strings.HasPrefix(root, "s3://"):
		u, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("source: parse %q: %w", root, err)
		}
		return NewS3SourceFromEnv(ctx, u.Host, strings.Trim(u.Path, "/"), cfg.S3Region)

	case strings.HasPrefix(root, "minio://"):
		u, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("source: parse %q: %w", root, err)
		}
		bucket, prefix, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("source: %q has no bucket", root)
		}
		return NewMinioSource(u.Host, cfg.MinioAccess, cfg.MinioSecret, bucket, prefix, cfg.MinioUseSSL)
	}

	return NewLocalSource(root), nil
}
