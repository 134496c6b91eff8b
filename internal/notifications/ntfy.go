package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ntfy publishes messages to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *http.Client
}

// NewNtfy returns a publisher for endpoint with a per-request timeout.
func NewNtfy(endpoint string, timeout time.Duration) *Ntfy {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Ntfy{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (n *Ntfy) Notify(ctx context.Context, msg Message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.Priority != "" && msg.Priority != "default" {
		req.Header.Set("Priority", msg.Priority)
	}
	if strings.HasPrefix(msg.Icon, "http://") || strings.HasPrefix(msg.Icon, "https://") {
		req.Header.Set("Icon", msg.Icon)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
