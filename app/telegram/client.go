// Package telegram delivers messages to chats and channels over the Telegram Bot API.
package telegram

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// MaxCaptionLength is the Bot API limit for photo and video captions.
	MaxCaptionLength = 1024

	sendRetryLimit = 3
	parseModeHTML  = "HTML"
)

type Config struct {
	Token      string
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	// PerChatInterval spaces consecutive requests to the same chat.
	PerChatInterval time.Duration
}

type Client struct {
	token     string
	baseURL   string
	userAgent string
	httpc     *http.Client
	scrubber  *strings.Replacer

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration

	makeRequest func(ctx context.Context, method string, args any) error
	sleep       func(ctx context.Context, d time.Duration) bool
}

// APIError is a request the Bot API answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

func New(cfg Config) *Client {
	c := &Client{
		token:     cfg.Token,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpc:     cfg.HTTPClient,
		limiters:  make(map[string]*rate.Limiter),
		interval:  cfg.PerChatInterval,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if c.token != "" {
		c.scrubber = strings.NewReplacer(c.token, "[REDACTED]")
	}
	c.makeRequest = c.makeTelegramRequest
	c.sleep = sleep
	return c
}

type textMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type photoMessage struct {
	ChatID    string `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode"`
}

type videoMessage struct {
	ChatID    string `json:"chat_id"`
	Video     string `json:"video"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// SendText posts an HTML message with link previews disabled.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.send(ctx, chatID, "sendMessage", &textMessage{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             parseModeHTML,
		DisableWebPagePreview: true,
	})
}

func (c *Client) SendPhoto(ctx context.Context, chatID, photoURL, caption string) error {
	return c.send(ctx, chatID, "sendPhoto", &photoMessage{
		ChatID:    chatID,
		Photo:     photoURL,
		Caption:   capCaption(caption),
		ParseMode: parseModeHTML,
	})
}

func (c *Client) SendVideo(ctx context.Context, chatID, videoURL, caption string) error {
	return c.send(ctx, chatID, "sendVideo", &videoMessage{
		ChatID:    chatID,
		Video:     videoURL,
		Caption:   capCaption(caption),
		ParseMode: parseModeHTML,
	})
}

// send waits for the chat's rate limiter and retries only when Telegram
// explicitly asks to slow down.
func (c *Client) send(ctx context.Context, chatID, method string, args any) error {
	if err := c.limiter(chatID).Wait(ctx); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := c.makeRequest(ctx, method, args)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != http.StatusTooManyRequests || apiErr.RetryAfter <= 0 {
			return err
		}
		if attempt >= sendRetryLimit {
			return err
		}

		slog.Warn("Telegram rate limited, waiting", "chat", chatID, "method", method, "wait", apiErr.RetryAfter)
		if !c.sleep(ctx, apiErr.RetryAfter) {
			return ctx.Err()
		}
	}
}

func (c *Client) limiter(chatID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[chatID]
	if !ok {
		limit := rate.Inf
		if c.interval > 0 {
			limit = rate.Every(c.interval)
		}
		l = rate.NewLimiter(limit, 1)
		c.limiters[chatID] = l
	}
	return l
}

func (c *Client) makeTelegramRequest(ctx context.Context, method string, args any) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bot"+c.token+"/"+method, bytes.NewReader(body))
	if err != nil {
		return c.scrub(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.scrub(fmt.Errorf("failed to call %s: %w", method, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var result apiResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to decode %s response (HTTP %d): %w", method, resp.StatusCode, err)
	}

	if !result.OK {
		return &APIError{
			Method:      method,
			Code:        cmp.Or(result.ErrorCode, resp.StatusCode),
			Description: result.Description,
			RetryAfter:  time.Duration(result.Parameters.RetryAfter) * time.Second,
		}
	}

	return nil
}

func (c *Client) scrub(err error) error {
	if c.scrubber == nil {
		return err
	}
	return errors.New(c.scrubber.Replace(err.Error()))
}

func capCaption(caption string) string {
	if utf8.RuneCountInString(caption) <= MaxCaptionLength {
		return caption
	}
	runes := []rune(caption)
	return string(runes[:MaxCaptionLength])
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
