// Package resume extracts plain text from a candidate's resume file so it
// can be folded into prompts.
package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const maxContextChars = 12000

// Load reads the resume at path and returns its text content, truncated to
// a size that fits comfortably inside a prompt.
func Load(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resume file: %w", err)
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = fromPDF(ctx, path)
	case ".docx":
		text, err = fromDocx(path)
	case ".txt", ".md":
		text, err = fromPlain(path)
	default:
		return "", fmt.Errorf("unsupported resume format %q (want .pdf, .docx, .txt or .md)", filepath.Ext(path))
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("resume %s contains no extractable text", path)
	}
	if len(text) > maxContextChars {
		text = text[:maxContextChars]
	}
	return text, nil
}

func fromPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(data), nil
}

func fromPDF(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not found; install poppler-utils to read PDF resumes")
	}
	// "-" sends the extracted text to stdout
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// docx paragraph structure, just deep enough to pull the text runs out of
// word/document.xml.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func fromDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx %s has no word/document.xml", path)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}

	var parsed docxDocument
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, p := range parsed.Body.Paragraphs {
		var line strings.Builder
		for _, r := range p.Runs {
			line.WriteString(r.Text)
		}
		if line.Len() > 0 {
			b.WriteString(line.String())
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
