package irc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"twason/internal/app/adapters/metrics"
	"twason/internal/app/domain/message"
	"twason/internal/app/ports"
	"twason/pkg/logger"
)

const (
	reconnectDelay = 5 * time.Second
	maxMessageLen  = 500
	outboundQueue  = 100
)

var (
	errReconnect = errors.New("server requested reconnect")
	errAuth      = errors.New("login authentication failed")
)

type Options struct {
	Nickname  string
	Token     string
	Channel   string
	WebSocket bool
}

// Client keeps one chat session alive and hands inbound events to the
// handler on the read goroutine. Outbound lines are queued and paced.
type Client struct {
	log     logger.Logger
	opts    Options
	handler ports.EventHandler

	dial    func(ctx context.Context) (conn, error)
	limiter *rate.Limiter
	out     chan string

	mu   sync.Mutex
	conn conn
}

func New(log logger.Logger, opts Options, handler ports.EventHandler) *Client {
	c := &Client{
		log:     log,
		opts:    opts,
		handler: handler,
		dial:    dialTLS,
		// 20 messages per 30 seconds for accounts that are not moderators.
		limiter: rate.NewLimiter(rate.Every(30*time.Second/20), 20),
		out:     make(chan string, outboundQueue),
	}
	if opts.WebSocket {
		c.dial = dialWebSocket
	}

	return c
}

// SetHandler replaces the event handler. It must be called before Run.
func (c *Client) SetHandler(h ports.EventHandler) {
	c.handler = h
}

// Run connects and reconnects until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	var wg conc.WaitGroup
	wg.Go(func() { c.sendLoop(ctx) })
	defer wg.Wait()

	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("IRC connection lost, retrying...", slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

// Say queues msg for channel. Messages over the chat limit are split on
// spaces into several lines.
func (c *Client) Say(channel, msg string) {
	for _, part := range splitMessage(msg, maxMessageLen) {
		c.enqueue(fmt.Sprintf("PRIVMSG %s :%s", channel, part))
	}
}

// splitMessage cuts msg into parts of at most limit runes, preferring the
// last space inside the window. A word longer than limit is cut mid-word.
func splitMessage(msg string, limit int) []string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil
	}
	if utf8.RuneCountInString(msg) <= limit {
		return []string{msg}
	}

	var parts []string
	for msg != "" {
		runes := []rune(msg)
		if len(runes) <= limit {
			parts = append(parts, msg)
			break
		}

		cut := limit
		for i := limit; i > 0; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}

		parts = append(parts, strings.TrimSpace(string(runes[:cut])))
		msg = strings.TrimSpace(string(runes[cut:]))
	}

	return parts
}

func (c *Client) enqueue(line string) {
	select {
	case c.out <- line:
	default:
		c.log.Warn("Outbound queue is full, dropping message", slog.String("line", line))
	}
}

func (c *Client) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-c.out:
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			if err := c.write(line); err != nil {
				c.log.Error("Failed to send message", err, slog.String("line", line))
			}
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	cn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = cn
	c.mu.Unlock()

	channel := "#" + c.opts.Channel
	labels := prometheus.Labels{"channel": c.opts.Channel}
	metrics.Connected.With(labels).Set(1)

	stop := context.AfterFunc(ctx, func() { _ = cn.Close() })
	defer func() {
		stop()
		_ = cn.Close()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		metrics.Connected.With(labels).Set(0)
	}()

	for _, line := range []string{
		"PASS oauth:" + c.opts.Token,
		"NICK " + c.opts.Nickname,
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"JOIN " + channel,
	} {
		if err := c.write(line); err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
	}

	c.log.Info("Listening on IRC chat Twitch", slog.String("channel", channel))

	for {
		line, err := cn.ReadLine()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := c.handle(line); err != nil {
			return err
		}
	}
}

func (c *Client) handle(line string) error {
	if line == "" {
		return nil
	}

	msg := Parse(line)
	switch msg.Command {
	case "PING":
		return c.write("PONG :" + msg.Trailing())
	case "PRIVMSG":
		c.handler.HandleChat(ports.ChatEvent{
			Author: msg.Nick(),
			Target: msg.Param(0),
			Text:   msg.Trailing(),
			Tags:   msg.Tags,
		})
	case "USERNOTICE":
		tags := message.ParseTags(msg.Tags)
		if tags["msg-id"] == "raid" {
			c.handler.HandleRaid(ports.RaidEvent{DisplayName: tags.DisplayName()})
		}
	case "NOTICE":
		text := msg.Trailing()
		switch {
		case strings.Contains(text, "Login authentication failed"), strings.Contains(text, "Improperly formatted auth"):
			c.log.Error("Login authentication to IRC failed", nil, slog.String("line", line))
			return errAuth
		case strings.Contains(text, "sending messages too quickly"):
			c.log.Error("Rate limit to IRC exceeded", nil, slog.String("line", line))
		default:
			c.log.Debug("Notice", slog.String("text", text))
		}
	case "RECONNECT":
		return errReconnect
	case "JOIN":
		c.log.Info("Joined", slog.String("channel", msg.Param(0)), slog.String("as", msg.Nick()))
	default:
		c.log.Trace("Unhandled IRC line", slog.String("line", line))
	}

	return nil
}

func (c *Client) write(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.New("not connected")
	}
	return c.conn.WriteLine(line)
}
