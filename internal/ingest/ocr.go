package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ocrClient talks to the external OCR service: POST a multipart image to
// /recognize, get {"text": "..."} back.
type ocrClient struct {
	endpoint string
	apiKey   string
	language string
	httpc    *http.Client
}

func newOCRClient(cfg Config) *ocrClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ocrClient{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.OCREndpoint), "/"),
		apiKey:   strings.TrimSpace(cfg.OCRAPIKey),
		language: strings.TrimSpace(cfg.OCRLanguage),
		httpc:    &http.Client{Timeout: timeout},
	}
}

func (c *ocrClient) Recognize(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		filename = "upload.png"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if c.language != "" {
		if err := mw.WriteField("language", c.language); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/recognize", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ocr response: %w", err)
	}
	return out.Text, nil
}
