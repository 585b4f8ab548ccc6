// Package cloudinary uploads images with an unsigned upload preset.
package cloudinary

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

	"github.com/essyessentials/storefront-backend/pkg/config"
)

type Client struct {
	httpClient   *http.Client
	endpoint     string
	uploadPreset string
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg config.CloudinaryConfig, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, fmt.Errorf("cloudinary cloud name is required")
	}
	if strings.TrimSpace(cfg.UploadPreset) == "" {
		return nil, fmt.Errorf("cloudinary upload preset is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient:   httpClient,
		endpoint:     fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(cfg.BaseURL, "/"), cfg.CloudName),
		uploadPreset: cfg.UploadPreset,
	}, nil
}

// Upload posts the file as multipart form data and returns its secure_url.
// A response without secure_url is a failure.
func (c *Client) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("cloudinary form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("cloudinary copy file: %w", err)
	}
	if err := form.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", fmt.Errorf("cloudinary preset field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("cloudinary close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("cloudinary request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("cloudinary decode (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("cloudinary upload: status %d: %s", resp.StatusCode, msg)
	}
	if strings.TrimSpace(out.SecureURL) == "" {
		return "", fmt.Errorf("cloudinary upload: response missing secure_url")
	}
	return out.SecureURL, nil
}
