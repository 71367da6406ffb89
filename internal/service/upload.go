package service

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/kaumahan/harvest-market-api/internal/dto"
)

const maxUploadSize = 5 << 20 // 5MB

var (
	ErrFileTooLarge       = errors.New("file exceeds the 5MB upload limit")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// permitExtensions additionally allows PDF for business permit documents.
var permitExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true,
}

func validateUpload(f *dto.FileUpload, allowed map[string]bool) error {
	if f.Size > maxUploadSize {
		return ErrFileTooLarge
	}
	if !allowed[strings.ToLower(path.Ext(f.Filename))] {
		return ErrFileTypeNotAllowed
	}
	return nil
}

// uploadKey derives a fresh storage key; the original filename only
// contributes its extension.
func uploadKey(prefix, filename string) string {
	return prefix + "/" + uuid.New().String() + strings.ToLower(path.Ext(filename))
}
