package filestorage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatal(err)
	}

	fh := multipartHeader(t, "Passport.PDF", []byte("%PDF-1.4 test"))
	info, err := ls.SaveFileWithPath(context.Background(), fh, "id-documents", "application/pdf")
	if err != nil {
		t.Fatalf("SaveFileWithPath: %v", err)
	}
	if !strings.HasPrefix(info.Key, "id-documents/") || !strings.HasSuffix(info.Key, ".pdf") {
		t.Errorf("unexpected key %q", info.Key)
	}
	if info.URL != "http://localhost:8080/uploads/"+info.Key {
		t.Errorf("unexpected url %q", info.URL)
	}
	if info.FileSize != int64(len("%PDF-1.4 test")) {
		t.Errorf("unexpected size %d", info.FileSize)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(info.Key))); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if err := ls.DeleteFile(context.Background(), info.Key); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	// Second delete is a no-op
	if err := ls.DeleteFile(context.Background(), info.Key); err != nil {
		t.Fatalf("second DeleteFile: %v", err)
	}
}

func TestGetFullPathStaysInsideBase(t *testing.T) {
	ls := &LocalStorage{basePath: "/srv/uploads"}

	p, err := ls.GetFullPath("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/srv/uploads", "etc", "passwd") {
		t.Errorf("path escaped base: %q", p)
	}

	if _, err := ls.GetFullPath(""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestLocalStorageKeyFromURL(t *testing.T) {
	tests := []struct {
		baseURL string
		url     string
		key     string
		ok      bool
	}{
		{"", "uploads/id-documents/a.pdf", "id-documents/a.pdf", true},
		{"", "https://cdn.example.com/id-documents/a.pdf", "", false},
		{"", "uploads/", "", false},
		{"http://localhost:8080/uploads/", "http://localhost:8080/uploads/id-documents/a.pdf", "id-documents/a.pdf", true},
		{"http://localhost:8080/uploads", "uploads/id-documents/a.pdf", "", false},
	}
	for _, tt := range tests {
		ls := &LocalStorage{basePath: t.TempDir(), baseURL: tt.baseURL}
		key, ok := ls.KeyFromURL(tt.url)
		if key != tt.key || ok != tt.ok {
			t.Errorf("KeyFromURL(%q) with base %q = %q, %v; want %q, %v", tt.url, tt.baseURL, key, ok, tt.key, tt.ok)
		}
	}
}
