package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

func TestExtractTextViaOCR(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recognize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("auth header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("language"); got != "eng" {
			t.Errorf("language = %q", got)
		}
		if _, hdr, err := r.FormFile("file"); err != nil || hdr.Filename != "timetable.png" {
			t.Errorf("file part: hdr=%v err=%v", hdr, err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text": "Monday\r\n\r\n\r\n\r\n9:00 AM  Math",
		})
	}))
	defer srv.Close()

	s := New(Config{OCREndpoint: srv.URL, OCRAPIKey: "sekrit", OCRLanguage: "eng"}, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentPhoto, FileName: "timetable.png", MIME: "image/png"}

	text, err := s.ExtractText(context.Background(), att, []byte("fake-image-bytes"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "Monday\n\n9:00 AM Math"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestExtractTextOCRServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Config{OCREndpoint: srv.URL}, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentPhoto, MIME: "image/jpeg"}

	_, err := s.ExtractText(context.Background(), att, []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err = %v, want a 503 error", err)
	}
}

func TestExtractTextRejectsUnsupported(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentDocument, MIME: "application/zip", FileName: "x.zip"}

	_, err := s.ExtractText(context.Background(), att, []byte("PK"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestExtractTextRejectsOversized(t *testing.T) {
	t.Parallel()
	s := New(Config{MaxFileMB: 1}, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentPhoto, MIME: "image/png"}

	_, err := s.ExtractText(context.Background(), att, make([]byte, 2*1024*1024))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestExtractTextImageWithoutOCRConfigured(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	att := kit.Attachment{Kind: kit.AttachmentPhoto, MIME: "image/png"}

	_, err := s.ExtractText(context.Background(), att, []byte("x"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestIsPDF(t *testing.T) {
	t.Parallel()
	tests := []struct {
		att  kit.Attachment
		data []byte
		want bool
	}{
		{kit.Attachment{MIME: "application/pdf"}, nil, true},
		{kit.Attachment{FileName: "sched.PDF"}, nil, true},
		{kit.Attachment{MIME: "application/octet-stream"}, []byte("%PDF-1.7"), true},
		{kit.Attachment{MIME: "image/png"}, []byte("\x89PNG"), false},
	}
	for _, tt := range tests {
		if got := isPDF(tt.att, tt.data); got != tt.want {
			t.Fatalf("isPDF(%+v) = %v, want %v", tt.att, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()
	in := "a\tb\r\nc d\n\n\n\n\ne   f"
	want := "a b\nc d\n\ne f"
	if got := cleanText(in); got != want {
		t.Fatalf("cleanText = %q, want %q", got, want)
	}
}
