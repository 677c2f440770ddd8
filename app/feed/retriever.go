package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Retriever struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewRetriever(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *Retriever {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Retriever{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// FetchAll fetches every URL in order and concatenates the parsed items.
// A feed that cannot be fetched or parsed contributes no items.
func (r *Retriever) FetchAll(ctx context.Context, urls []string) []Item {
	var all []Item
	succeeded := 0

	for i, url := range urls {
		if ctx.Err() != nil {
			slog.Warn("Feed retrieval interrupted", "remaining", len(urls)-i, "error", ctx.Err())
			break
		}

		items, err := r.Fetch(ctx, url)
		if err != nil {
			slog.Error("Failed to retrieve feed", "feed", url, "error", err)
			continue
		}

		all = append(all, items...)
		succeeded++
		slog.Info("Feed retrieved", "feed", url, "items", len(items))
	}

	slog.Debug("Feed retrieval finished", "ok", succeeded, "total", len(urls), "items", len(all))
	return all
}

func (r *Retriever) Fetch(ctx context.Context, url string) ([]Item, error) {
	data, err := r.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	metadata, items, err := r.parser.Run(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed parsed", "feed", url, "title", metadata.Title, "items", len(items))
	return items, nil
}

func (r *Retriever) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
