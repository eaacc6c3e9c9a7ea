package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"twason/internal/app/ports"
)

// UserID resolves a login to its user id. Results are cached.
func (t *Twitch) UserID(ctx context.Context, login string) (string, error) {
	login = strings.ToLower(strings.TrimPrefix(login, "#"))
	if id, ok := t.userIDs.Get(login); ok {
		return id, nil
	}

	var userResp UserResponse
	if _, err := t.doTwitchRequest(ctx, twitchRequest{
		Method: http.MethodGet,
		Path:   "/users?login=" + url.QueryEscape(login),
	}, &userResp); err != nil {
		return "", err
	}
	if len(userResp.Data) == 0 {
		return "", fmt.Errorf("user %s: %w", login, ErrNotFound)
	}

	id := userResp.Data[0].ID
	t.userIDs.Set(login, id)
	return id, nil
}

func (t *Twitch) DeleteChatMessage(ctx context.Context, broadcasterID, messageID string) error {
	params := url.Values{}
	params.Set("broadcaster_id", broadcasterID)
	params.Set("moderator_id", t.ModeratorID())
	params.Set("message_id", messageID)

	_, err := t.doTwitchRequest(ctx, twitchRequest{
		Method: http.MethodDelete,
		Path:   "/moderation/chat?" + params.Encode(),
	}, nil)
	return err
}

func (t *Twitch) TimeoutUser(ctx context.Context, broadcasterID, userID string, duration int, reason string) error {
	params := url.Values{}
	params.Set("broadcaster_id", broadcasterID)
	params.Set("moderator_id", t.ModeratorID())

	_, err := t.doTwitchRequest(ctx, twitchRequest{
		Method: http.MethodPost,
		Path:   "/moderation/bans?" + params.Encode(),
		Body: TimeoutRequest{Data: TimeoutData{
			UserID:   userID,
			Duration: duration,
			Reason:   reason,
		}},
	}, nil)
	return err
}

// Delete queues a message deletion. A missing room id is resolved from the
// channel name.
func (t *Twitch) Delete(room ports.Room, messageID string) {
	if messageID == "" {
		t.log.Warn("Cannot delete a message without id", slog.String("channel", room.Channel))
		return
	}

	t.submit("delete", func(ctx context.Context) error {
		broadcasterID, err := t.resolve(ctx, room.ID, room.Channel)
		if err != nil {
			return err
		}
		return t.DeleteChatMessage(ctx, broadcasterID, messageID)
	})
}

// Timeout queues a timeout. Missing ids are resolved from the logins.
func (t *Twitch) Timeout(room ports.Room, user ports.User, seconds int, reason string) {
	t.submit("timeout", func(ctx context.Context) error {
		broadcasterID, err := t.resolve(ctx, room.ID, room.Channel)
		if err != nil {
			return err
		}
		userID, err := t.resolve(ctx, user.ID, user.Login)
		if err != nil {
			return err
		}

		if err := t.TimeoutUser(ctx, broadcasterID, userID, seconds, reason); err != nil {
			return err
		}
		t.log.Info("Timeout applied successfully", slog.String("user", user.Login), slog.Int("duration", seconds))
		return nil
	})
}

func (t *Twitch) resolve(ctx context.Context, id, login string) (string, error) {
	if id != "" {
		return id, nil
	}
	return t.UserID(ctx, login)
}

func (t *Twitch) submit(action string, task func(ctx context.Context) error) {
	err := t.Submit(func(ctx context.Context) {
		if err := task(ctx); err != nil {
			t.log.Error("Failed to apply moderation action", err, slog.String("action", action))
		}
	})
	if err != nil {
		t.log.Error("Failed to queue moderation action", err, slog.String("action", action))
	}
}
