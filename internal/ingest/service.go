// Package ingest turns uploaded timetable files (photos, PDFs) into plain
// text for the schedule extractor.
//
// PDFs are parsed in-process. Images go to an external OCR service over
// HTTP, since the heavy OCR stack runs out of process.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	kit "studybot/internal/transport"
	logx "studybot/pkg/logx"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrTooLarge    = errors.New("file too large")
	ErrNoText      = errors.New("no text found in file")
)

// Config controls ingestion.
type Config struct {
	OCREndpoint string // base URL of the OCR service; empty disables image OCR
	OCRAPIKey   string
	OCRLanguage string // e.g. "eng"
	MaxFileMB   int
	Timeout     time.Duration
}

type Service struct {
	mu  sync.Mutex
	log logx.Logger
	cfg Config
	ocr *ocrClient
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log}
	s.applyLocked(cfg)
	return s
}

// Apply swaps the configuration. Safe to call during hot-reload.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	s.cfg = cfg
	s.ocr = nil
	if strings.TrimSpace(cfg.OCREndpoint) != "" {
		s.ocr = newOCRClient(cfg)
	}
}

func (s *Service) snapshot() (Config, *ocrClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, s.ocr
}

// ExtractText routes an attachment to the right text source. The returned
// text is normalized: no CRLF, no non-breaking spaces, runs of blank lines
// collapsed.
func (s *Service) ExtractText(ctx context.Context, att kit.Attachment, data []byte) (string, error) {
	cfg, ocr := s.snapshot()
	if max := cfg.MaxFileMB; max > 0 && len(data) > max*1024*1024 {
		return "", fmt.Errorf("%w: %d bytes (limit %d MB)", ErrTooLarge, len(data), max)
	}

	var (
		text string
		err  error
	)
	switch {
	case isPDF(att, data):
		text, err = pdfText(data)
	case att.Kind == kit.AttachmentPhoto || strings.HasPrefix(att.MIME, "image/"):
		if ocr == nil {
			return "", fmt.Errorf("%w: image OCR not configured", ErrUnsupported)
		}
		text, err = ocr.Recognize(ctx, att.FileName, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, att.MIME)
	}
	if err != nil {
		return "", err
	}

	text = cleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	s.log.Debug("text extracted",
		logx.String("file", att.FileName),
		logx.Int("bytes_in", len(data)),
		logx.Int("chars_out", len(text)))
	return text, nil
}

func isPDF(att kit.Attachment, data []byte) bool {
	if att.MIME == "application/pdf" || strings.HasSuffix(strings.ToLower(att.FileName), ".pdf") {
		return true
	}
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

var (
	reRunsOfBlank = regexp.MustCompile(`\n{3,}`)
	reRunsOfWS    = regexp.MustCompile(`[ \t]+`)
)

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = reRunsOfWS.ReplaceAllString(text, " ")
	text = reRunsOfBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
