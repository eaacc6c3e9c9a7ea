package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

type Config struct {
	App           App        `json:"app"`
	Channel       string     `json:"channel"`
	Nickname      string     `json:"nickname"`
	Token         string     `json:"-"`
	CommandPrefix string     `json:"command_prefix"`
	Help          bool       `json:"help"`
	Commands      []Command  `json:"commands"`
	Timer         Timer      `json:"timer"`
	Moderator     Moderators `json:"moderator"`
	CommandLimit  Limiter    `json:"command_limit"`
}

type App struct {
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	HTTPAddr  string `json:"http_addr"`
	AuthToken string `json:"auth_token"`
	Transport string `json:"transport"` // "tls" или "websocket"
}

type Command struct {
	Name     string   `json:"name"`
	Message  string   `json:"message"`
	Aliases  []string `json:"aliases"`
	Disabled bool     `json:"disabled"`
}

type Timer struct {
	Between  Between   `json:"between"`
	Strategy string    `json:"strategy"`
	Pool     []Command `json:"pool"`
}

type Between struct {
	Time     int `json:"time"`     // минуты
	Messages int `json:"messages"` // сообщения
}

type Limiter struct {
	Requests int `json:"requests"`
	Per      int `json:"per"` // секунды
}

type CapsLock struct {
	Message   string `json:"message"`
	Decision  string `json:"decision"`
	Duration  *int   `json:"duration"`
	MinSize   int    `json:"min-size"`
	Threshold int    `json:"threshold"`
}

type Flood struct {
	Message                  string `json:"message"`
	Decision                 string `json:"decision"`
	Duration                 *int   `json:"duration"`
	MaxWordLength            *int   `json:"max-word-length"`
	RaidCooldown             *int   `json:"raid-cooldown"` // минуты
	IgnoreHashtags           bool   `json:"ignore-hashtags"` // хэштеги пропускаются всегда, флаг оставлен для совместимости
	MaxMsgOccurrences        *int   `json:"max-msg-occurrences"`
	MinTimeBetweenOccurrence *int   `json:"min-time-between-occurrence"` // секунды
}

const (
	CapsLockKey = "caps-lock"
	FloodKey    = "flood"
)

// Moderators keeps the moderator sections in the order they appear in the file,
// since that order is the chain order.
type Moderators struct {
	Order    []string
	CapsLock *CapsLock
	Flood    *Flood
}

func (m *Moderators) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("moderator: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		switch key {
		case CapsLockKey:
			c := defaultCapsLock()
			if err := dec.Decode(&c); err != nil {
				return fmt.Errorf("moderator.%s: %w", key, err)
			}
			m.CapsLock = &c
		case FloodKey:
			f := defaultFlood()
			if err := dec.Decode(&f); err != nil {
				return fmt.Errorf("moderator.%s: %w", key, err)
			}
			m.Flood = &f
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("moderator.%s: %w", key, err)
			}
		}
		if !slices.Contains(m.Order, key) {
			m.Order = append(m.Order, key)
		}
	}

	_, err = dec.Token()
	return err
}
