package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/gatekeeper/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// AdminURLPrefix links each request to the admin API record, e.g. https://gate.example.com/api/access.
	AdminURLPrefix string
}

// Client delivers access request notifications to a Slack webhook.
type Client struct {
	webhookURL     string
	channel        string
	username       string
	retryLimit     int
	adminURLPrefix string
	client         *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		webhookURL:     webhookURL,
		channel:        strings.TrimSpace(cfg.Channel),
		username:       fallbackString(strings.TrimSpace(cfg.Username), "gatekeeper"),
		retryLimit:     max(cfg.RetryLimit, 0),
		adminURLPrefix: strings.TrimSpace(cfg.AdminURLPrefix),
		client:         hc,
	}, nil
}

// SendAccessRequest posts a formatted message to Slack, retrying with linear backoff.
func (c *Client) SendAccessRequest(ctx context.Context, payload notify.AccessRequestPayload) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) formatMessage(payload notify.AccessRequestPayload) map[string]any {
	requested := payload.RequestedAt
	if requested.IsZero() {
		requested = time.Now()
	}

	text := strings.Builder{}
	text.WriteString("*New sign-in awaiting approval*\n")
	appendSlackField(&text, "Email", c.formatEmail(payload.Email))
	appendSlackField(&text, "Session", payload.SessionID)
	appendSlackMetadata(&text, payload.Metadata)
	text.WriteString("• Requested: ")
	text.WriteString(requested.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

// formatEmail renders the address as a link to its admin record when a prefix is configured.
func (c *Client) formatEmail(email string) string {
	email = strings.TrimSpace(email)
	escaped := escapeSlackText(email)
	if email == "" {
		return ""
	}
	if link := c.adminLink(email); link != "" {
		return fmt.Sprintf("<%s|%s>", link, escaped)
	}
	return escaped
}

func (c *Client) adminLink(email string) string {
	if c.adminURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.adminURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), email)
	if err != nil {
		return ""
	}
	return link
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorResponse(resp)
	}

	_, copyErr := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()
	if copyErr != nil {
		return errors.Join(fmt.Errorf("drain slack response body: %w", copyErr), closeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return nil
}

func errorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(fmt.Errorf("read slack error response: %w", readErr), closeErr)
	}
	return fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func escapeSlackText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}

func appendSlackField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendSlackMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendSlackField(text, k, metadata[k])
	}
}
