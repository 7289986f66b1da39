package document

import (
	"context"
	"os"
)

// FileStore is a document on the local file system.
type FileStore struct {
	Path string
}

func (f *FileStore) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the file content, keeping its permissions when it already exists.
func (f *FileStore) Write(_ context.Context, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.Path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(f.Path, []byte(content), mode)
}
