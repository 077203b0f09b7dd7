// Package documents validates and stores PDF attachments for policies and claims.
package documents

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	PDFMimeType = "application/pdf"

	// DefaultMaxBytes is the per-file upload limit.
	DefaultMaxBytes int64 = 10 << 20
)

// RejectedMessage is shown for any file that fails validation.
const RejectedMessage = "Only PDF files under 10MB are allowed."

var ErrRejected = errors.New("file rejected")

// Validate checks a file's declared type, sniffed content and size.
func Validate(f File, maxBytes int64) error {
	if strings.TrimSpace(strings.ToLower(f.ContentType)) != PDFMimeType {
		return fmt.Errorf("%s: declared type %q: %w", f.Name, f.ContentType, ErrRejected)
	}
	if int64(len(f.Data)) > maxBytes {
		return fmt.Errorf("%s: %d bytes: %w", f.Name, len(f.Data), ErrRejected)
	}
	if !mimetype.Detect(f.Data).Is(PDFMimeType) {
		return fmt.Errorf("%s: content is not a pdf: %w", f.Name, ErrRejected)
	}
	return nil
}

// ObjectPath is the storage key for a file: {user}/{owner}/{unixMillis}-{name}.
// Only the last element of the client's file name is kept.
func ObjectPath(userID, ownerID string, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%s/%d-%s", userID, ownerID, at.UnixMilli(), baseName(fileName))
}

func baseName(fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	switch name {
	case ".", "..", "/":
		return "document.pdf"
	}
	return name
}
