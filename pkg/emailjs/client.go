// Package emailjs sends template emails through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/essyessentials/storefront-backend/pkg/config"
)

const sendPath = "/email/send"

// ErrDisabled is returned by a client built from a disabled config.
var ErrDisabled = errors.New("emailjs disabled")

// Sender is the surface used by notification code.
type Sender interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceID  string
	publicKey  string
	privateKey string
	enabled    bool
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewClient validates the configuration. A disabled config yields a client
// whose Send returns ErrDisabled so callers can log and move on.
func NewClient(cfg config.EmailJSConfig, httpClient *http.Client) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}
	if strings.TrimSpace(cfg.ServiceID) == "" {
		return nil, fmt.Errorf("emailjs service id is required")
	}
	if strings.TrimSpace(cfg.PublicKey) == "" {
		return nil, fmt.Errorf("emailjs public key is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceID:  cfg.ServiceID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		enabled:    true,
	}, nil
}

// Send posts one template email. It is attempted once; retries are the
// caller's decision.
func (c *Client) Send(ctx context.Context, templateID string, params map[string]string) error {
	if c == nil || !c.enabled {
		return ErrDisabled
	}
	if strings.TrimSpace(templateID) == "" {
		return fmt.Errorf("emailjs template id is required")
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
