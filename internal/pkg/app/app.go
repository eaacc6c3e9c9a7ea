package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"

	router "twason/internal/app/adapters/http"
	"twason/internal/app/adapters/dispatcher"
	"twason/internal/app/adapters/metrics"
	"twason/internal/app/adapters/platform/twitch"
	"twason/internal/app/adapters/platform/twitch/api"
	"twason/internal/app/adapters/platform/twitch/irc"
	"twason/internal/app/infrastructure/clock"
	"twason/internal/app/infrastructure/config"
	"twason/pkg/logger"
)

const DefaultConfigPath = "config.json"

// Run loads the configuration and serves the channel until ctx is cancelled
// or a component fails.
func Run(ctx context.Context, configPath string) error {
	manager, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	log := logger.New(logger.Options{Level: cfg.App.LogLevel, File: cfg.App.LogFile})
	log.Info("Config loaded", slog.String("path", manager.Path()), slog.String("log_level", log.GetLogLevel()))

	prometheus.MustRegister(metrics.MessageProcessingTime)

	prefixedLog := logger.NewPrefixedLogger(log, cfg.Channel)
	clk := clock.System{}
	bot := cfg.Resolve(prefixedLog, clk)

	ircClient := irc.New(prefixedLog, irc.Options{
		Nickname:  bot.Nickname,
		Token:     bot.Token,
		Channel:   bot.Channel,
		WebSocket: cfg.App.Transport == config.TransportWebSocket,
	}, nil)
	helix := api.New(prefixedLog, &http.Client{Timeout: 10 * time.Second}, bot.Token, 2)

	d := dispatcher.New(prefixedLog, bot, twitch.New(ircClient, helix), clk, config.NewRand())
	ircClient.SetHandler(d)

	for _, m := range bot.Moderators {
		for _, action := range []string{"delete", "timeout"} {
			metrics.ModerationActions.With(prometheus.Labels{"channel": bot.Channel, "moderator": m.Name(), "action": action}).Add(0)
		}
	}
	metrics.Messages.With(prometheus.Labels{"channel": bot.Channel}).Add(0)

	log.Info("Chatbot started",
		slog.String("channel", bot.Channel),
		slog.Int("commands", len(bot.Commands)),
		slog.Int("moderators", len(bot.Moderators)),
		slog.Int("timer_pool", len(bot.Timer.Pool)),
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(ircClient.Run)
	p.Go(helix.Run)
	if cfg.App.HTTPAddr != "" {
		r := router.NewRouter(log, cfg.App, bot.Channel, d)
		p.Go(r.Run)
	}

	if err := p.Wait(); err != nil {
		log.Error("Chatbot stopped", err)
		return err
	}

	log.Info("Chatbot stopped")
	return nil
}
