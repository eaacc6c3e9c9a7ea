package dispatcher

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"twason/internal/app/adapters/metrics"
	"twason/internal/app/domain/command"
	"twason/internal/app/domain/message"
	"twason/internal/app/domain/moderator"
	"twason/internal/app/domain/timer"
	"twason/internal/app/infrastructure/clock"
	"twason/internal/app/infrastructure/config"
	"twason/internal/app/infrastructure/storage"
	"twason/internal/app/ports"
	"twason/pkg/logger"
)

// Dispatcher runs every chat line through command routing, moderation and
// the timer. Events must be delivered one at a time.
type Dispatcher struct {
	log     logger.Logger
	chat    ports.ChatPort
	clock   clock.Clock
	channel string

	router  *command.Router
	chain   moderator.Chain
	timer   *timer.Scheduler
	limiter *storage.Limiter

	messages   atomic.Uint64
	commands   atomic.Uint64
	deleted    atomic.Uint64
	timedOut   atomic.Uint64
	broadcasts atomic.Uint64
	raids      atomic.Uint64
}

func New(log logger.Logger, bot *config.Bot, chat ports.ChatPort, clk clock.Clock, rnd *rand.Rand) *Dispatcher {
	return &Dispatcher{
		log:     log,
		chat:    chat,
		clock:   clk,
		channel: bot.Channel,
		router:  command.NewRouter(bot.Prefix, bot.Commands),
		chain:   bot.Moderators,
		timer:   timer.New(bot.Timer, clk, rnd),
		limiter: storage.NewLimiter(bot.Limit.Requests, time.Duration(bot.Limit.Per)*time.Second),
	}
}

func (d *Dispatcher) HandleChat(e ports.ChatEvent) {
	start := time.Now()
	defer func() {
		metrics.MessageProcessingTime.Observe(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	d.messages.Add(1)
	metrics.Messages.With(prometheus.Labels{"channel": d.channel}).Inc()

	tags := message.ParseTags(e.Tags)
	d.log.Trace("Processing new message", slog.String("author", e.Author), slog.String("text", e.Text))

	token, _, _ := strings.Cut(strings.TrimSpace(e.Text), " ")
	if cmd, ok := d.router.Find(strings.ToLower(token)); ok {
		d.runCommand(e, cmd)
	} else if !tags.Privileged() {
		d.moderate(e, tags)
	}

	d.timer.Seen()
	d.playTimer()
}

func (d *Dispatcher) HandleRaid(e ports.RaidEvent) {
	d.raids.Add(1)
	metrics.Raids.With(prometheus.Labels{"channel": d.channel}).Inc()

	if m, ok := d.chain.DeclareRaid(); ok {
		d.log.Info("Raid received, relaxing moderator",
			slog.String("from", e.DisplayName), slog.String("moderator", m.Name()))
		return
	}
	d.log.Info("Raid received", slog.String("from", e.DisplayName))
}

func (d *Dispatcher) Stats() ports.Stats {
	return ports.Stats{
		Messages:   d.messages.Load(),
		Commands:   d.commands.Load(),
		Deleted:    d.deleted.Load(),
		TimedOut:   d.timedOut.Load(),
		Broadcasts: d.broadcasts.Load(),
		Raids:      d.raids.Load(),
	}
}

func (d *Dispatcher) runCommand(e ports.ChatEvent, cmd *command.Command) {
	labels := prometheus.Labels{"channel": d.channel, "command": cmd.Name}

	if !d.limiter.AllowAt(e.Author, d.clock.Now()) {
		metrics.LimitedCommands.With(labels).Inc()
		d.log.Debug("Command rate limited", slog.String("author", e.Author), slog.String("command", cmd.Name))
		return
	}

	d.commands.Add(1)
	metrics.UserCommands.With(labels).Inc()
	d.log.Info("Command", slog.String("author", e.Author), slog.String("command", d.router.Prefix()+cmd.Name))

	d.chat.Say(e.Target, command.Render(cmd.Message, authorVars(e.Author)))
}

func (d *Dispatcher) moderate(e ports.ChatEvent, tags message.Tags) {
	if tags.EmoteOnly() || len(d.chain) == 0 {
		return
	}

	text := e.Text
	if raw := tags["emotes"]; raw != "" {
		spans, err := message.ParseEmotes(raw)
		if err != nil {
			d.log.Error("Failed to parse emotes, moderating raw text", err, slog.String("emotes", raw))
		} else {
			text = message.StripEmotes(text, spans)
		}
	}

	m, decision := d.chain.Vote(text, e.Author)
	if m == nil {
		return
	}

	reply := command.Render(m.Message(), authorVars(e.Author))
	room := ports.Room{Channel: e.Target, ID: tags.RoomID()}
	metrics.ModerationActions.With(prometheus.Labels{
		"channel":   d.channel,
		"moderator": m.Name(),
		"action":    decision.String(),
	}).Inc()

	switch decision {
	case moderator.DeleteMessage:
		d.deleted.Add(1)
		d.log.Info("Message deleted",
			slog.String("moderator", m.Name()), slog.String("author", e.Author), slog.String("text", e.Text))
		d.chat.Delete(room, tags.ID())
	case moderator.TimeoutUser:
		d.timedOut.Add(1)
		d.log.Info("User timed out",
			slog.String("moderator", m.Name()), slog.String("author", e.Author),
			slog.Int("duration", m.Duration()), slog.String("text", e.Text))
		d.chat.Timeout(room, ports.User{Login: e.Author, ID: tags.UserID()}, m.Duration(), reply)
	}

	d.chat.Say(e.Target, reply)
}

func (d *Dispatcher) playTimer() {
	cmd, ok := d.timer.Tick()
	if !ok {
		return
	}

	d.broadcasts.Add(1)
	metrics.TimerBroadcasts.With(prometheus.Labels{"channel": d.channel}).Inc()
	d.log.Debug("Timer", slog.String("message", cmd.Message), slog.Int("pending", d.timer.Pending()))

	d.chat.Say("#"+d.channel, cmd.Message)
}

func authorVars(author string) map[string]string {
	return map[string]string{"author": author}
}
