package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	AllowImage = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

	ErrInvalidDataURL  = errors.New("file must be a base64 encoded data URL")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Storage persists uploaded media and hands out public links for it.
type Storage interface {
	UploadBase64(ctx context.Context, dataURL, folder string, allowed ...string) (string, error)
	DeleteFile(ctx context.Context, objectKey string) error
	GetPublicLinkKey(objectKey string) string
	GetObjectKeyFromLink(link string) string
}

type decodedFile struct {
	ContentType string
	Data        []byte
}

// decodeDataURL parses "data:<mime>;base64,<payload>". When allowed is set,
// both the declared type and the type sniffed from the payload must match it.
func decodeDataURL(dataURL string, allowed []string) (*decodedFile, error) {
	header, payload, found := strings.Cut(dataURL, ",")
	if !found || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURL
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	if len(allowed) > 0 && !slices.Contains(allowed, contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}
	if len(allowed) > 0 {
		if detected := mimetype.Detect(data); !detected.Is(contentType) {
			return nil, fmt.Errorf("%w: declared %s, got %s", ErrUnsupportedType, contentType, detected.String())
		}
	}
	return &decodedFile{ContentType: contentType, Data: data}, nil
}

func objectKey(folder, contentType string) string {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	}
	return path.Join(folder, uuid.NewString()+ext)
}
