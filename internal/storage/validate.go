package storage

import (
	"fmt"

	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

// MaxDocumentSize is the upload ceiling for identity documents.
const MaxDocumentSize = 5 * 1024 * 1024

var allowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ValidateDocument rejects uploads outside the allowed content types or above
// the size ceiling.
func ValidateDocument(contentType string, size int64) error {
	if _, ok := allowedContentTypes[contentType]; !ok {
		return apperrors.NewInvalidFile("invalid file type, only JPEG, PNG and PDF files are allowed")
	}
	if size > MaxDocumentSize {
		return apperrors.NewInvalidFile(fmt.Sprintf("file size too large, maximum size is %d bytes", MaxDocumentSize))
	}
	return nil
}

func extensionFor(contentType string) string {
	if ext, ok := allowedContentTypes[contentType]; ok {
		return ext
	}
	return ""
}
