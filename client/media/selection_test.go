package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func batch(n int, prefix string) []File {
	files := make([]File, n)
	for i := range files {
		files[i] = FromBytes(fmt.Sprintf("%s%d.png", prefix, i), []byte("x"))
	}
	return files
}

func names(s *Selection) []string {
	var out []string
	for _, f := range s.Files() {
		out = append(out, f.Name)
	}
	return out
}

func TestAddRejectsOversizedBatchWhole(t *testing.T) {
	var s Selection
	if err := s.Add(batch(11, "a")...); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("selection should stay empty, has %d", s.Len())
	}
}

func TestAddKeepsPreviousSelectionOnReject(t *testing.T) {
	var s Selection
	if err := s.Add(batch(7, "a")...); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(batch(4, "b")...); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
	if s.Len() != 7 {
		t.Fatalf("Len = %d, want 7", s.Len())
	}
	if err := s.Add(batch(3, "c")...); err != nil {
		t.Fatalf("filling up to the cap should work: %v", err)
	}
	if s.Len() != MaxFiles {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestRemove(t *testing.T) {
	var s Selection
	_ = s.Add(batch(3, "f")...)
	kept := s.Files()

	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	got := names(&s)
	if len(got) != 2 || got[0] != "f0.png" || got[1] != "f2.png" {
		t.Fatalf("names = %v", got)
	}
	if kept[1].Name != "f1.png" {
		t.Fatal("Files should return a copy")
	}
	if err := s.Remove(5); err == nil {
		t.Fatal("expected an out of range error")
	}
}

func TestValidate(t *testing.T) {
	var s Selection
	if err := s.Validate("   "); !errors.Is(err, ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
	if err := s.Validate("hello"); err != nil {
		t.Fatal(err)
	}
	_ = s.Add(batch(1, "p")...)
	if err := s.Validate(""); err != nil {
		t.Fatalf("media alone is a valid post: %v", err)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Fatal("Reset should empty the selection")
	}
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	f := FromPath(path)
	if f.Name != "photo.jpg" {
		t.Fatalf("Name = %q", f.Name)
	}
	for i := 0; i < 2; i++ {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if string(body) != "jpeg" {
			t.Fatalf("body = %q", body)
		}
	}
}
