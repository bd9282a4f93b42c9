package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadURLPrefix is where saved uploads are served from.
const UploadURLPrefix = "/uploads"

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Uploader stores image uploads under Dir.
type Uploader struct {
	Dir string
}

// NewUploader creates the upload directory if needed.
func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &Uploader{Dir: dir}, nil
}

// SaveImage saves the named multipart file and returns its public URL. It
// returns "" when the request carries no such file.
func (u *Uploader) SaveImage(c *fiber.Ctx, field, kind string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Size == 0 {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	name := fmt.Sprintf("%s_%s%s", kind, uuid.New().String(), ext)
	if err := c.SaveFile(fh, filepath.Join(u.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return UploadURLPrefix + "/" + name, nil
}

// Discard deletes an upload saved by SaveImage. It is used when the request
// that carried the file is rejected after the save.
func (u *Uploader) Discard(url string) {
	name := strings.TrimPrefix(url, UploadURLPrefix+"/")
	if url == "" || name == url || strings.ContainsAny(name, `/\`) {
		return
	}
	if err := os.Remove(filepath.Join(u.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to remove rejected upload %s: %v", name, err)
	}
}
