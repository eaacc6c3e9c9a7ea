package config

import (
	"errors"
	"fmt"

	"twason/internal/app/domain/timer"
)

var (
	ErrMissingChannel  = errors.New("channel is required")
	ErrMissingNickname = errors.New("nickname is required")
	ErrMissingToken    = errors.New(TokenEnv + " is required")
	ErrMissingMessage  = errors.New("message is required")
)

func (m *Manager) validate(cfg *Config) error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of trace, debug, info, warn, error; got %s", cfg.App.LogLevel)
	}
	if cfg.App.Transport != TransportTLS && cfg.App.Transport != TransportWebSocket {
		return fmt.Errorf("app.transport must be %s or %s; got %s", TransportTLS, TransportWebSocket, cfg.App.Transport)
	}

	if cfg.Channel == "" {
		return ErrMissingChannel
	}
	if cfg.Nickname == "" {
		return ErrMissingNickname
	}
	if cfg.Token == "" {
		return ErrMissingToken
	}

	for i, c := range cfg.Commands {
		if c.Message == "" {
			return fmt.Errorf("commands[%d] %q: %w", i, c.Name, ErrMissingMessage)
		}
	}

	// timer
	if cfg.Timer.Between.Time < 0 {
		return errors.New("timer.between.time must be >= 0")
	}
	if cfg.Timer.Between.Messages < 0 {
		return errors.New("timer.between.messages must be >= 0")
	}
	if !timer.Strategy(cfg.Timer.Strategy).Valid() {
		return fmt.Errorf("timer.strategy must be %s or %s; got %s", timer.RoundRobin, timer.Shuffle, cfg.Timer.Strategy)
	}
	for i, c := range cfg.Timer.Pool {
		if c.Message == "" {
			return fmt.Errorf("timer.pool[%d] %q: %w", i, c.Name, ErrMissingMessage)
		}
	}

	// moderator
	if c := cfg.Moderator.CapsLock; c != nil {
		if c.Threshold < 0 || c.Threshold > 100 {
			return fmt.Errorf("moderator.caps-lock.threshold must be [0,100]; got %d", c.Threshold)
		}
		if c.MinSize < 0 {
			return errors.New("moderator.caps-lock.min-size must be >= 0")
		}
		if err := validateDuration("caps-lock", c.Duration); err != nil {
			return err
		}
	}
	if f := cfg.Moderator.Flood; f != nil {
		if err := validateDuration("flood", f.Duration); err != nil {
			return err
		}
		for name, v := range map[string]*int{
			"max-word-length":             f.MaxWordLength,
			"raid-cooldown":               f.RaidCooldown,
			"max-msg-occurrences":         f.MaxMsgOccurrences,
			"min-time-between-occurrence": f.MinTimeBetweenOccurrence,
		} {
			if v != nil && *v < 0 {
				return fmt.Errorf("moderator.flood.%s must be >= 0", name)
			}
		}
	}

	// command_limit
	if (cfg.CommandLimit.Requests != 0 && cfg.CommandLimit.Per == 0) || (cfg.CommandLimit.Requests == 0 && cfg.CommandLimit.Per != 0) {
		return errors.New("command_limit.requests and command_limit.per must both be set or both be zero")
	}
	if cfg.CommandLimit.Requests < 0 || cfg.CommandLimit.Per < 0 {
		return errors.New("command_limit values must be >= 0")
	}

	return nil
}

// Twitch caps timeouts at two weeks.
func validateDuration(name string, d *int) error {
	if d != nil && (*d < 1 || *d > 1209600) {
		return fmt.Errorf("moderator.%s.duration must be [1,1209600]", name)
	}
	return nil
}
