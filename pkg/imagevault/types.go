package imagevault

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFileSize is the largest accepted image payload in bytes (10 MiB).
const MaxFileSize = 10 * 1024 * 1024

// Presigned URL expiry bounds. Requested expiries outside
// [MinPresignExpiry, MaxPresignExpiry] fall back to DefaultPresignExpiry.
const (
	MinPresignExpiry     = 1 * time.Second
	MaxPresignExpiry     = 24 * time.Hour
	DefaultPresignExpiry = 1 * time.Hour
)

// Image is the metadata record for one stored image. Records are immutable
// once created; there is no update operation.
type Image struct {
	ID          uuid.UUID `json:"image_id"`
	OwnerID     string    `json:"user_id"`
	FileName    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  int64     `json:"upload_timestamp"`
	ObjectKey   string    `json:"object_key"`
	Description string    `json:"description,omitempty"`
}

// mediaTypes maps the allowed file extensions to their media types.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// AllowedExtension reports whether the file name carries an extension from
// the image allow-list.
func AllowedExtension(fileName string) bool {
	_, ok := mediaTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// AllowedExtensions returns the allow-list, for error messages.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(mediaTypes))
	for ext := range mediaTypes {
		exts = append(exts, ext)
	}
	return exts
}

// MediaTypeForFileName derives a media type from the file name's extension.
// Unrecognized extensions map to application/octet-stream rather than
// failing; extension validation is a separate, earlier step.
func MediaTypeForFileName(fileName string) string {
	if mt, ok := mediaTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mt
	}
	return "application/octet-stream"
}
