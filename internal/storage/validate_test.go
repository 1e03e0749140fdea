package storage

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate_AcceptsAllowedFile(t *testing.T) {
	err := Validate("resume.pdf", 1024, DocumentExtensions, MaxUploadBytes)
	assert.NoError(t, err)
}

func TestValidate_CaseInsensitiveExtension(t *testing.T) {
	err := Validate("Resume.PDF", 1024, DocumentExtensions, MaxUploadBytes)
	assert.NoError(t, err)
}

func TestValidate_RejectsUnsupportedType(t *testing.T) {
	err := Validate("malware.exe", 1024, DocumentExtensions, MaxUploadBytes)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestValidate_RejectsOversizedFile(t *testing.T) {
	err := Validate("resume.pdf", MaxUploadBytes+1, DocumentExtensions, MaxUploadBytes)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestValidate_ChecksTypeBeforeSize(t *testing.T) {
	err := Validate("huge.exe", MaxUploadBytes+1, DocumentExtensions, MaxUploadBytes)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}
