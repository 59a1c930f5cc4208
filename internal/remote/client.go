package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tether/internal/config"
	"tether/internal/logging"
	"tether/internal/queue"
	"tether/internal/syncer"
)

const userAgent = "Tether/0.1.0"

// entityPlaceholder in a mutation path is replaced with the item's entity id.
const entityPlaceholder = "{entity}"

// Client issues mutation requests against the configured remote.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient builds a Client from config. A remote base URL is required.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Remote.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote.base_url is not configured")
	}

	timeout := time.Duration(cfg.Remote.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   base,
		authToken: strings.TrimSpace(cfg.Remote.AuthToken),
		http:      &http.Client{Timeout: timeout},
		logger:    logging.NewComponentLogger(logger, "remote"),
	}, nil
}

// Executors builds one executor per declared mutation type. Declarations
// without a path are skipped; syncing such a type surfaces the engine's
// missing-executor error instead.
func (c *Client) Executors(cfg *config.Config) syncer.ExecutorSet {
	set := make(syncer.ExecutorSet, len(cfg.Mutations))
	for _, m := range cfg.Mutations {
		if strings.TrimSpace(m.Path) == "" {
			continue
		}
		set[m.Type] = c.executorFor(m)
	}
	return set
}

func (c *Client) executorFor(m config.Mutation) syncer.Executor {
	method := m.Method
	pathTemplate := m.Path
	return func(ctx context.Context, item queue.Item) error {
		target := c.baseURL + expandPath(pathTemplate, item.EntityID)

		var body io.Reader
		if len(item.Payload) > 0 {
			body = bytes.NewReader(item.Payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return fmt.Errorf("build %s request: %w", item.Type, err)
		}
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("execute %s: %w", item.Type, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return statusError(resp)
	}
}

// remoteFailure is the error envelope the backend uses for non-2xx
// responses. Both fields are optional.
type remoteFailure struct {
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var failure remoteFailure
	_ = json.Unmarshal(raw, &failure)

	detail := strings.TrimSpace(failure.Error)
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}
	return &syncer.StatusError{
		Code:   resp.StatusCode,
		Reason: strings.TrimSpace(failure.Reason),
		Detail: detail,
	}
}

func expandPath(template, entityID string) string {
	expanded := strings.ReplaceAll(template, entityPlaceholder, url.PathEscape(entityID))
	if !strings.HasPrefix(expanded, "/") {
		expanded = "/" + expanded
	}
	return expanded
}
