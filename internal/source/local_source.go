package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource đọc resource từ một thư mục trên đĩa.
type LocalSource struct {
	root string
}

// NewLocalSource tạo mới LocalSource
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// Fetch reads root/p, trying p.zst and p.gz when the plain file is absent.
func (s *LocalSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.FromSlash(strings.TrimLeft(p, "/"))
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("fetch %s: invalid path", p)
	}
	full := filepath.Join(s.root, clean)

	for _, candidate := range []string{full, full + ".zst", full + ".gz"} {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return Decompress(data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", p, ErrNotFound)
}
