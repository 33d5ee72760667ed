// Package client submits resumes to the matching service and decodes the
// ranked results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/google/uuid"
)

const (
	// EvaluatePath is the scoring endpoint relative to the service base URL
	EvaluatePath = "/evaluate"

	// RequestIDHeader carries a per-submission identifier
	RequestIDHeader = "X-Request-ID"

	fieldJobDescription = "job_description"
	fieldResumes        = "resumes"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client talks to the resume evaluation service
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero keeps the HTTP client's own
// timeout. The client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for the service at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Validate checks the request the same way the submission form does
func Validate(req models.EvaluationRequest) error {
	if req.JobDescription == "" {
		return &ValidationError{Err: ErrEmptyJobDescription}
	}
	if len(req.Resumes) == 0 {
		return &ValidationError{Err: ErrNoResumes}
	}
	return nil
}

// Evaluate sends one multipart POST to the evaluation endpoint and returns
// the ranked records in the order the service produced them. There are no
// retries.
func (c *Client) Evaluate(ctx context.Context, req models.EvaluationRequest) ([]models.MatchRecord, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	body, contentType, err := EncodeMultipart(req)
	if err != nil {
		return nil, &TransportError{Op: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EvaluatePath, body)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	log.Printf("POST %s request_id=%s resumes=%d", httpReq.URL, requestID, len(req.Resumes))
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	log.Printf("evaluate request_id=%s status=%d took=%s", requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	return decodeResponse(resp.StatusCode, data)
}

func decodeResponse(status int, data []byte) ([]models.MatchRecord, error) {
	var payload models.EvaluationResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}

	if payload.Error != "" {
		return nil, &ApplicationError{Message: payload.Error, StatusCode: status}
	}

	if status < 200 || status > 299 {
		return nil, &TransportError{Op: "evaluate", Err: fmt.Errorf("unexpected status %d", status)}
	}

	if payload.Results == nil {
		return []models.MatchRecord{}, nil
	}
	return payload.Results, nil
}

// EncodeMultipart builds the form body: one job_description field followed
// by one resumes part per file, in order.
func EncodeMultipart(req models.EvaluationRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(fieldJobDescription, req.JobDescription); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", fieldJobDescription, err)
	}

	for _, resume := range req.Resumes {
		contentType := resume.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			fieldResumes, quoteEscaper.Replace(resume.Name)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part for %s: %w", resume.Name, err)
		}
		if _, err := part.Write(resume.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", resume.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
