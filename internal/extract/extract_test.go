package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"journey-backend/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, "Interviewer: hello", "Participant: hi")

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "interview.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "Interviewer: hello\nParticipant: hi" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("  line one\nline two \n"), "", "call.txt")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if text != "line one\nline two" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytes_EmptyText(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("   \n"), "text/plain; charset=utf-8", "")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestExtractTextFromBytes_InvalidPDF(t *testing.T) {
	if _, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), "application/pdf", "x.pdf"); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestExtractTextWritesDerivedCopy(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()
	if _, err := store.SaveWithKey(ctx, "u1/transcript.txt", "text/plain", strings.NewReader("Participant: I log in first.")); err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}

	text, err := ExtractText(ctx, store, "u1/transcript.txt", "text/plain")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Participant: I log in first." {
		t.Fatalf("unexpected text %q", text)
	}

	rc, err := store.Open(ctx, "u1/transcript.txt.extracted.txt")
	if err != nil {
		t.Fatalf("expected derived copy: %v", err)
	}
	rc.Close()
}
