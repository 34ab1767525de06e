package resume

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocx(t *testing.T, path string, paragraphs []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t>`)
		b.WriteString(p)
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(b.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("  Data engineer.\nAWS Glue.  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "Data engineer.\nAWS Glue." {
		t.Errorf("Load() = %q", got)
	}
}

func TestLoadDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	writeDocx(t, path, []string{"Data engineer", "Built ETL on AWS Glue"})

	got, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, want := range []string{"Data engineer", "AWS Glue"} {
		if !strings.Contains(got, want) {
			t.Errorf("Load() missing %q:\n%s", want, got)
		}
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.odt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatal("Load() should reject unsupported formats")
	}
	if !strings.Contains(err.Error(), ".odt") {
		t.Errorf("error should name the extension, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load() should fail on a missing file")
	}
}

func TestLoadEmptyResumeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("Load() should reject a resume with no text")
	}
}

func TestLoadTruncatesLongResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", maxContextChars+500)), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != maxContextChars {
		t.Errorf("len = %d, want %d", len(got), maxContextChars)
	}
}

func TestLoadDocxWithoutDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()
	f.Close()

	if _, err := Load(context.Background(), path); err == nil {
		t.Error("Load() should fail when document.xml is absent")
	}
}
