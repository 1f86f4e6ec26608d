package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LocalStore saves uploaded files under a single directory on disk.
// Files are served back by the router as static content under /uploads.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the uploaded file to disk and returns its public URL path.
func (s *LocalStore) Save(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	name := SanitizeFilename(file.Filename)
	name = fmt.Sprintf("%d-%s", time.Now().UnixNano(), name)

	dst := filepath.Join(s.dir, name)
	if err := c.SaveFile(file, dst); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return "/uploads/" + name, nil
}

// Delete removes a previously saved file given its public URL path.
// Missing files are not an error.
func (s *LocalStore) Delete(urlPath string) error {
	name := SanitizeFilename(strings.TrimPrefix(urlPath, "/uploads/"))
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename strips path separators and anything that could
// escape the upload directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
