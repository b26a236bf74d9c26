package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linview/internal/fetch"
	"linview/internal/models"
)

// Client talks to the linview API.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *Client) BaseURL() string { return c.baseURL }

// DocumentURL is where the viewer fetches a stored file from.
func (c *Client) DocumentURL(name string) string {
	return fetch.ResolveURL(c.baseURL, name)
}

func (c *Client) ListFiles(ctx context.Context) ([]models.FileInfo, error) {
	var out []models.FileInfo
	if err := c.getJSON(ctx, "/files", &out); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return out, nil
}

// UploadFile checks that path looks like a PDF, then uploads it.
func (c *Client) UploadFile(ctx context.Context, path string) (models.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (models.UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return models.UploadResult{}, fmt.Errorf("%w: %s", ErrInvalidUpload, name)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.UploadResult{}, fmt.Errorf("read %s: %w", name, err)
	}
	head = head[:n]
	if ct := http.DetectContentType(head); ct != "application/pdf" {
		return models.UploadResult{}, fmt.Errorf("%w: %s is %s", ErrInvalidUpload, name, ct)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, io.MultiReader(bytes.NewReader(head), r))
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		_ = pr.Close()
		return models.UploadResult{}, fmt.Errorf("%w: %v", ErrUploadTransport, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: %v", ErrUploadTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return models.UploadResult{}, fmt.Errorf("%w: %w", ErrUploadTransport, decodeAPIError(resp))
	}
	var out models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: decode response: %v", ErrUploadTransport, err)
	}
	return out, nil
}

func (c *Client) PostReport(ctx context.Context, rep models.LoadReport) (models.LoadReport, error) {
	payload, err := json.Marshal(rep)
	if err != nil {
		return models.LoadReport{}, fmt.Errorf("encode report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reports", bytes.NewReader(payload))
	if err != nil {
		return models.LoadReport{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return models.LoadReport{}, fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return models.LoadReport{}, fmt.Errorf("post report: %w", decodeAPIError(resp))
	}
	var out models.LoadReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.LoadReport{}, fmt.Errorf("decode report: %w", err)
	}
	return out, nil
}

func (c *Client) ListReports(ctx context.Context, base string) ([]models.LoadReport, error) {
	path := "/reports"
	if base != "" {
		path += "?base=" + url.QueryEscape(base)
	}
	var out struct {
		Reports []models.LoadReport `json:"reports"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out.Reports, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed struct {
		Error APIError `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
