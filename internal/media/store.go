// Package media 负责上传图片的校验、落盘与对外访问路径。
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage 表示上传内容无法被识别为图片。
	ErrNotImage = errors.New("uploaded file is not a valid image")
	// ErrPathOutsideRoot 表示相对路径试图逃逸媒体根目录。
	ErrPathOutsideRoot = errors.New("media path escapes media root")
)

// StoredFile 描述一次成功保存的上传文件。
type StoredFile struct {
	Path   string // 相对媒体根目录，使用 / 分隔
	Width  int
	Height int
}

// Store 抽象上传文件的存储位置。
type Store interface {
	Save(ctx context.Context, dir string, file *multipart.FileHeader) (StoredFile, error)
	Remove(relPath string) error
	URLPath(relPath string) string
}

// LocalStore 将文件保存在本地磁盘的媒体根目录下。
type LocalStore struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore 创建 LocalStore，urlPrefix 为对外访问前缀，例如 /media/。
func NewLocalStore(root, urlPrefix string) *LocalStore {
	prefix := "/" + strings.Trim(urlPrefix, "/")
	if prefix != "/" {
		prefix += "/"
	}
	return &LocalStore{root: root, urlPrefix: prefix, now: time.Now}
}

// Save 校验上传内容为图片后写入 root/dir，文件名为 日期-uuid.扩展名，扩展名取自图片格式。
func (s *LocalStore) Save(ctx context.Context, dir string, file *multipart.FileHeader) (StoredFile, error) {
	src, err := file.Open()
	if err != nil {
		return StoredFile{}, err
	}
	defer src.Close()

	cfg, format, err := image.DecodeConfig(src)
	if err != nil {
		return StoredFile{}, ErrNotImage
	}
	ext, ok := imageExtensions[format]
	if !ok {
		return StoredFile{}, ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return StoredFile{}, err
	}
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	targetDir := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return StoredFile{}, err
	}

	name := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return StoredFile{}, err
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(dst.Name())
		if copyErr != nil {
			return StoredFile{}, copyErr
		}
		return StoredFile{}, closeErr
	}

	return StoredFile{
		Path:   path.Join(filepath.ToSlash(dir), name),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Remove 删除相对路径对应的文件，文件不存在时视为成功。
func (s *LocalStore) Remove(relPath string) error {
	if strings.TrimSpace(relPath) == "" {
		return nil
	}
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URLPath 返回文件的站内访问路径，空路径返回空字符串。
func (s *LocalStore) URLPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.urlPrefix + strings.TrimPrefix(relPath, "/")
}

func (s *LocalStore) resolve(relPath string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(relPath))
	if cleaned == "/" {
		return "", ErrPathOutsideRoot
	}
	full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathOutsideRoot
	}
	return full, nil
}

// imageExtensions 以解码出的格式决定落盘扩展名，客户端文件名不参与。
var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
	"tiff": ".tiff",
}
