package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"twason/internal/app/infrastructure/storage"
	"twason/pkg/logger"
)

const (
	helixURL    = "https://api.twitch.tv/helix"
	validateURL = "https://id.twitch.tv/oauth2/validate"

	maxRetries   = 5
	baseBackoff  = time.Second
	maxBackoff   = 30 * time.Second
	queueSize    = 300
	userIDsCache = 10_000
)

// Twitch is a Helix client for the moderation actions chat commands can no
// longer perform. Actions are queued and run by Run's workers so callers on
// the chat read path never block on HTTP.
type Twitch struct {
	log     logger.Logger
	client  *http.Client
	token   string
	workers int

	helixURL    string
	validateURL string
	backoff     time.Duration

	mu          sync.RWMutex
	clientID    string
	moderatorID string

	userIDs *storage.Cache[string]
	tasks   chan func(ctx context.Context)
}

func New(log logger.Logger, client *http.Client, token string, workers int) *Twitch {
	return &Twitch{
		log:         log,
		client:      client,
		token:       token,
		workers:     max(workers, 1),
		helixURL:    helixURL,
		validateURL: validateURL,
		backoff:     baseBackoff,
		userIDs:     storage.NewCache[string](userIDsCache, 24*time.Hour),
		tasks:       make(chan func(ctx context.Context), queueSize),
	}
}

// Run validates the token, then works the action queue until ctx is
// cancelled.
func (t *Twitch) Run(ctx context.Context) error {
	if err := t.Validate(ctx); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	var wg conc.WaitGroup
	for range t.workers {
		wg.Go(func() { t.worker(ctx) })
	}
	wg.Wait()

	return nil
}

// Submit queues task. It fails when the queue is full.
func (t *Twitch) Submit(task func(ctx context.Context)) error {
	select {
	case t.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (t *Twitch) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-t.tasks:
			task(ctx)
		}
	}
}

// Validate resolves the client id and the moderator (token owner) id.
func (t *Twitch) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.validateURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "OAuth "+t.token)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var v ValidateResponse
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return err
		}

		t.mu.Lock()
		t.clientID, t.moderatorID = v.ClientID, v.UserID
		t.mu.Unlock()

		t.log.Info("Twitch token validated", slog.String("login", v.Login), slog.Int("expires_in", v.ExpiresIn))
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("validate request failed: %s", string(raw))
	}
}

func (t *Twitch) ModeratorID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.moderatorID
}

type twitchRequest struct {
	Method string
	Path   string
	Body   any
}

func (t *Twitch) doTwitchRequest(ctx context.Context, reqData twitchRequest, target any) (int, error) {
	var body []byte
	if reqData.Body != nil {
		b, err := json.Marshal(reqData.Body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		body = b
	}

	t.mu.RLock()
	clientID := t.clientID
	t.mu.RUnlock()

	url := t.helixURL + reqData.Path
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, reqData.Method, url, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Authorization", "Bearer "+t.token)
		req.Header.Set("Client-Id", clientID)
		req.Header.Set("Content-Type", "application/json")

		t.log.Trace("Sending Twitch request", slog.Int("attempt", attempt), slog.String("method", reqData.Method), slog.String("url", url))

		resp, err := t.client.Do(req)
		if err != nil {
			return 0, err
		}

		raw, err := io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			t.log.Error("Failed to close response body", cerr)
		}
		if err != nil {
			return resp.StatusCode, err
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent:
			if target == nil {
				return resp.StatusCode, nil
			}
			if err := json.Unmarshal(raw, target); err != nil {
				return resp.StatusCode, fmt.Errorf("decode response: %w", err)
			}
			return resp.StatusCode, nil

		case http.StatusTooManyRequests:
			wait := calcWaitDuration(resp.Header.Get("Ratelimit-Reset"), time.Now())
			if wait <= 0 {
				wait = time.Duration(attempt) * t.backoff
			}
			wait = min(wait, maxBackoff)

			t.log.Warn("Rate limit hit, backing off", slog.Int("attempt", attempt), slog.String("wait", wait.String()))
			select {
			case <-ctx.Done():
				return resp.StatusCode, ctx.Err()
			case <-time.After(wait):
			}

		default:
			var apiErr APIError
			if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
				return resp.StatusCode, fmt.Errorf("twitch API returned %d: %s", resp.StatusCode, string(raw))
			}
			return resp.StatusCode, fmt.Errorf("twitch API returned %d: %w", resp.StatusCode, errors.New(apiErr.Message))
		}
	}

	return http.StatusTooManyRequests, fmt.Errorf("%w after %d retries", ErrRateLimited, maxRetries)
}

func calcWaitDuration(resetHeader string, now time.Time) time.Duration {
	if resetHeader == "" {
		return 0
	}

	ts, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return 0
	}

	resetTime := time.Unix(ts, 0)
	if resetTime.Before(now) {
		return 0
	}
	return resetTime.Sub(now)
}
