package utils

import (
	"coursehub/config"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveUploadedFile stores file under destDir with a unique name and returns
// the path relative to the upload root.
func SaveUploadedFile(file *multipart.FileHeader, uploadRoot, subDir string) (string, error) {
	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(uploadRoot, subDir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return path.Join(subDir, newFilename), nil
}

// GetFileURL turns a stored relative path into the URL it is served from.
func GetFileURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	base := ""
	if config.AppConfig != nil {
		base = strings.TrimRight(config.AppConfig.PublicBaseURL, "/")
	}
	return base + "/uploads/" + strings.TrimLeft(relPath, "/")
}
