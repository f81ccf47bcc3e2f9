package packer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink nhận các file resource đã build
type Sink interface {
	Put(ctx context.Context, p string, data []byte) error
}

// DirSink ghi resource vào một thư mục
type DirSink struct {
	Root string
}

// Put ghi root/p, creating parent directories.
func (s DirSink) Put(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.Root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
