package docstore

import (
	"context"
	"fmt"

	"diffusedbrush/internal/fileutil"
)

// FileDocument stores a document as a plain file.
type FileDocument struct {
	path string
}

// NewFileDocument returns a document backed by path.
func NewFileDocument(path string) *FileDocument {
	return &FileDocument{path: path}
}

func (d *FileDocument) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok, err := fileutil.ReadFileIfExists(d.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (d *FileDocument) Replace(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(d.path, data, 0o644); err != nil {
		return fmt.Errorf("replace %s: %w", d.path, err)
	}
	return nil
}

func (d *FileDocument) Location() string {
	return d.path
}
