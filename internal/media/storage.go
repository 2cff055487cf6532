package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Kind 上传文件的归属类型，每种一个目录
type Kind string

const (
	KindPost       Kind = "posts"
	KindProfile    Kind = "profiles"
	KindAttachment Kind = "attachments"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Storage 保存上传文件并映射为公开 URL
type Storage interface {
	Save(kind Kind, fh *multipart.FileHeader) (string, error)
	Delete(storedPath string) error
	URL(storedPath string) string
}

// LocalStorage 文件保存在 Root 下，存储路径相对 Root，例如 "posts/3f2a....png"
type LocalStorage struct {
	Root      string
	URLPrefix string
	MaxBytes  int64
}

func NewLocalStorage(root, urlPrefix string, maxBytes int64) *LocalStorage {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStorage{Root: root, URLPrefix: urlPrefix, MaxBytes: maxBytes}
}

func (s *LocalStorage) Save(kind Kind, fh *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if kind != KindAttachment && !imageExts[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.Root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(dir, name), src); err != nil {
		return "", err
	}
	return path.Join(string(kind), name), nil
}

// writeFile 写入失败时删除残留的半截文件
func writeFile(full string, src io.Reader) error {
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return fmt.Errorf("write media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("close media file: %w", err)
	}
	return nil
}

// Delete 删除已存文件，文件不存在不算错误
func (s *LocalStorage) Delete(storedPath string) error {
	if storedPath == "" {
		return nil
	}
	clean := path.Clean("/" + storedPath)
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(storedPath string) string {
	if storedPath == "" {
		return ""
	}
	return s.URLPrefix + storedPath
}
