package ade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ade-labs/invoice-pipeline/internal/common"
	"github.com/ade-labs/invoice-pipeline/internal/resilience"
)

const (
	parsePath   = "/v1/ade/parse"
	extractPath = "/v1/ade/extract"
)

// statusError carries a non-2xx response so the classifier can decide
// whether the attempt is worth retrying.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ade status %d: %s", e.Status, e.Body)
}

// Parse sends the document at documentPath to the parse endpoint and
// returns the service's response verbatim.
func (c *Client) Parse(ctx context.Context, documentPath string) (*ParseResponse, error) {
	doc, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, common.IOError("read document", err)
	}

	body, contentType, err := buildMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("model", c.cfg.Model); err != nil {
			return err
		}
		part, err := w.CreateFormFile("document", filepath.Base(documentPath))
		if err != nil {
			return err
		}
		_, err = part.Write(doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}

	var out ParseResponse
	if err := c.post(ctx, "ade.parse", parsePath, body, contentType, &out); err != nil {
		return nil, err
	}
	if out.Metadata.Filename == "" {
		out.Metadata.Filename = filepath.Base(documentPath)
	}
	return &out, nil
}

// Extract sends an extraction schema plus the markdown rendering of a
// parsed document to the extract endpoint.
func (c *Client) Extract(ctx context.Context, schemaJSON []byte, markdown io.Reader) (*ExtractResponse, error) {
	md, err := io.ReadAll(markdown)
	if err != nil {
		return nil, common.IOError("read markdown stream", err)
	}

	body, contentType, err := buildMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("schema", string(schemaJSON)); err != nil {
			return err
		}
		part, err := w.CreateFormFile("markdown", "document.md")
		if err != nil {
			return err
		}
		_, err = part.Write(md)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}

	var out ExtractResponse
	if err := c.post(ctx, "ade.extract", extractPath, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post runs one endpoint call under the rate limiter and the executor's
// retry/breaker policy, decoding a 2xx response into out.
func (c *Client) post(ctx context.Context, operation, path string, body []byte, contentType string, out any) error {
	reqID := uuid.New().String()
	start := time.Now()
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	c.logger.Info(operation+".request",
		"req_id", reqID,
		"url", url,
		"content_length", len(body),
	)

	var raw []byte
	err := c.exec.Execute(ctx, operation, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.logger.Warn(operation+".response_body_close_error", "req_id", reqID, "error", err)
			}
		}()

		raw, _ = io.ReadAll(resp.Body)
		if resp.StatusCode/100 != 2 {
			return &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}
		return nil
	}, classifyRemoteError)
	if err != nil {
		c.logger.Error(operation+".failed",
			"req_id", reqID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return common.TransportError(operation, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error(operation+".decode_error",
			"req_id", reqID,
			"error", err,
			"raw_bytes", len(raw),
		)
		return common.ValidationError("decode "+operation+" response", err)
	}

	c.logger.Info(operation+".ok",
		"req_id", reqID,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// classifyRemoteError treats timeouts, transport failures, and retryable
// statuses (408, 429, 5xx) as worth another attempt; other 4xx are terminal.
func classifyRemoteError(err error) resilience.ErrorClassification {
	var se *statusError
	if errors.As(err, &se) {
		retryable := se.Status == http.StatusRequestTimeout ||
			se.Status == http.StatusTooManyRequests ||
			se.Status >= 500
		return resilience.ErrorClassification{Retryable: retryable, RecordFailure: se.Status >= 500}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	// network-level failure
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

func buildMultipart(build func(*multipart.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := build(w); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
