package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 20, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLocalStoreSaveRecordsDimensions(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "media")
	store.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	stored, err := store.Save(context.Background(), "gallery", buildFileHeader(t, "Photo.PNG", pngBytes(t, 6, 3)))
	if err != nil {
		t.Fatalf("failed to save image: %v", err)
	}

	if !strings.HasPrefix(stored.Path, "gallery/20261019-") || !strings.HasSuffix(stored.Path, ".png") {
		t.Fatalf("unexpected stored path %q", stored.Path)
	}
	if stored.Width != 6 || stored.Height != 3 {
		t.Fatalf("expected 6x3, got %dx%d", stored.Width, stored.Height)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(stored.Path))); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if got := store.URLPath(stored.Path); got != "/media/"+stored.Path {
		t.Fatalf("unexpected url path %q", got)
	}

	if err := store.Remove(stored.Path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(stored.Path))); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}
	if err := store.Remove(stored.Path); err != nil {
		t.Fatalf("removing a missing file should succeed, got %v", err)
	}
}

func TestLocalStoreRejectsNonImage(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media/")

	_, err := store.Save(context.Background(), "gallery", buildFileHeader(t, "notes.png", []byte("plain text")))
	if err != ErrNotImage {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestLocalStoreRemoveStaysInsideRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media/")

	if err := store.Remove("../../etc/passwd"); err != nil {
		t.Fatalf("cleaned path should resolve inside root, got %v", err)
	}
	if err := store.Remove("/"); err != ErrPathOutsideRoot {
		t.Fatalf("expected ErrPathOutsideRoot for root itself, got %v", err)
	}
	if got := store.URLPath(""); got != "" {
		t.Fatalf("expected empty url for empty path, got %q", got)
	}
}

func TestLocalStoreNamesFileByDecodedFormat(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")

	content := append(pngBytes(t, 1, 1), []byte("<script>alert(document.domain)</script>")...)
	tests := []struct {
		filename string
		want     string
	}{
		{filename: "evil.html", want: ".png"},
		{filename: "photo.JPEG", want: ".png"},
		{filename: "noext", want: ".png"},
		{filename: "page.svg", want: ".png"},
	}
	for _, tt := range tests {
		stored, err := store.Save(context.Background(), "gallery", buildFileHeader(t, tt.filename, content))
		if err != nil {
			t.Fatalf("%s: failed to save: %v", tt.filename, err)
		}
		if !strings.HasSuffix(stored.Path, tt.want) {
			t.Fatalf("%s: expected %s extension, got %q", tt.filename, tt.want, stored.Path)
		}
	}
}

func TestImageExtensionsCoverRegisteredFormats(t *testing.T) {
	for format, want := range map[string]string{"jpeg": ".jpg", "png": ".png", "gif": ".gif", "webp": ".webp", "bmp": ".bmp", "tiff": ".tiff"} {
		if got := imageExtensions[format]; got != want {
			t.Fatalf("format %s: expected %s, got %q", format, want, got)
		}
	}
}
