package config

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"twason/internal/app/domain/command"
	"twason/internal/app/domain/moderator"
	"twason/internal/app/domain/timer"
	"twason/internal/app/infrastructure/clock"
	"twason/pkg/logger"
)

// Bot is the configuration resolved into domain values.
type Bot struct {
	Channel    string
	Nickname   string
	Token      string
	Prefix     string
	Commands   []command.Command
	Timer      timer.Config
	Moderators moderator.Chain
	Limit      Limiter
}

// Resolve drops disabled commands, makes named timer entries routable,
// appends the help command and builds the moderator chain in file order.
func (c *Config) Resolve(log logger.Logger, clk clock.Clock) *Bot {
	b := &Bot{
		Channel:  c.Channel,
		Nickname: c.Nickname,
		Token:    c.Token,
		Prefix:   c.CommandPrefix,
		Limit:    c.CommandLimit,
		Timer: timer.Config{
			Between:  time.Duration(c.Timer.Between.Time) * time.Minute,
			Messages: c.Timer.Between.Messages,
			Strategy: timer.Strategy(c.Timer.Strategy),
		},
	}

	for _, cmd := range c.Timer.Pool {
		if cmd.Disabled {
			continue
		}
		b.Timer.Pool = append(b.Timer.Pool, cmd.toDomain())
	}

	for _, cmd := range c.Commands {
		if cmd.Disabled {
			continue
		}
		b.Commands = append(b.Commands, cmd.toDomain())
	}
	for _, cmd := range b.Timer.Pool {
		if cmd.Name == "" {
			continue
		}
		b.Commands = append(b.Commands, cmd)
	}

	if c.Help {
		b.Commands = append(b.Commands, command.Help(c.CommandPrefix, b.Commands))
	}

	for _, key := range c.Moderator.Order {
		switch key {
		case CapsLockKey:
			b.Moderators = append(b.Moderators, c.Moderator.CapsLock.toDomain(log))
		case FloodKey:
			b.Moderators = append(b.Moderators, c.Moderator.Flood.toDomain(log, clk))
		default:
			log.Warn("Unknown moderator ignored", slog.String("moderator", key))
		}
	}

	return b
}

// NewRand returns a randomly seeded source for the timer shuffle.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (c Command) toDomain() command.Command {
	return command.Command{
		Name:     c.Name,
		Message:  c.Message,
		Aliases:  c.Aliases,
		Disabled: c.Disabled,
	}
}

func (c *CapsLock) toDomain(log logger.Logger) *moderator.CapsLock {
	return moderator.NewCapsLock(
		settings(log, CapsLockKey, c.Message, c.Decision, c.Duration),
		c.MinSize,
		c.Threshold,
	)
}

func (f *Flood) toDomain(log logger.Logger, clk clock.Clock) *moderator.Flood {
	return moderator.NewFlood(
		settings(log, FloodKey, f.Message, f.Decision, f.Duration),
		moderator.FloodOptions{
			MaxWordLength:  deref(f.MaxWordLength),
			RaidCooldown:   time.Duration(deref(f.RaidCooldown)) * time.Minute,
			MaxOccurrences: deref(f.MaxMsgOccurrences),
			MinTimeBetween: time.Duration(deref(f.MinTimeBetweenOccurrence)) * time.Second,
		},
		clk,
	)
}

func settings(log logger.Logger, name, message, decision string, duration *int) moderator.Settings {
	d, ok := moderator.ParseDecision(decision)
	if !ok {
		log.Warn("Moderator decision is invalid, it has been deactivated",
			slog.String("moderator", name), slog.String("decision", decision))
	}

	return moderator.Settings{
		Reply:    message,
		Decision: d,
		Timeout:  deref(duration),
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
