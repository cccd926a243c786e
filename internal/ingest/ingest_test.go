package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadTextNormalizes(t *testing.T) {
	path := writeFile(t, "draft.md", "First,   we  start.\r\n\r\n  Second, we   finish.  \n")
	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "First, we start.\nSecond, we finish." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestReadTextUnsupported(t *testing.T) {
	path := writeFile(t, "draft.docx", "x")
	if _, err := ReadText(path); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadTextMissing(t *testing.T) {
	if _, err := ReadText(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestReadTextInvalidPDF(t *testing.T) {
	path := writeFile(t, "draft.pdf", "not a pdf at all")
	if _, err := ReadText(path); err == nil {
		t.Fatalf("expected error for an invalid pdf")
	}
}

func TestReadFrom(t *testing.T) {
	got, err := ReadFrom(strings.NewReader("one\n\n two  three "))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "one\ntwo three" {
		t.Fatalf("unexpected text %q", got)
	}
}
