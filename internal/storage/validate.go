package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	// ErrUnsupportedType is returned when the file extension is not allowed.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned when the file exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
)

// MaxUploadBytes is the default upload cap.
const MaxUploadBytes = 10 << 20

// DocumentExtensions lists the extensions accepted for application documents.
var DocumentExtensions = []string{".pdf", ".doc", ".docx", ".png", ".jpg", ".jpeg"}

// Validate checks a pending upload against the allowed extensions and the
// byte limit before anything touches the blob store.
func Validate(filename string, size int64, allowedExts []string, maxBytes int64) error {
	extension := strings.ToLower(filepath.Ext(filename))

	if !lo.Contains(allowedExts, extension) {
		return errors.Wrapf(ErrUnsupportedType, "extension %q", extension)
	}
	if size > maxBytes {
		return errors.Wrap(ErrTooLarge, fmt.Sprintf("%d bytes over the %d byte limit", size-maxBytes, maxBytes))
	}
	return nil
}
