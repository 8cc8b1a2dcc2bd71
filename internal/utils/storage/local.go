package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localStorage writes media below a root directory that the HTTP server
// exposes under /media.
type localStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, appURL string) Storage {
	return &localStorage{
		root:    root,
		baseURL: strings.TrimRight(appURL, "/") + "/media/",
	}
}

func (s *localStorage) UploadBase64(_ context.Context, dataURL, folder string, allowed ...string) (string, error) {
	file, err := decodeDataURL(dataURL, allowed)
	if err != nil {
		return "", err
	}

	key := objectKey(folder, file.ContentType)
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return key, nil
}

func (s *localStorage) DeleteFile(_ context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(objectKey)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

func (s *localStorage) GetPublicLinkKey(objectKey string) string {
	return s.baseURL + objectKey
}

func (s *localStorage) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, s.baseURL)
}
