package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connected - подключен ли бот к чату.
	Connected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_connected",
			Help: "Whether the chat connection is up (1) or down (0) per channel",
		},
		[]string{"channel"},
	)

	// Messages - количество сообщений чата по каналам.
	Messages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total number of chat messages per channel",
		},
		[]string{"channel"},
	)

	// MessageProcessingTime - время обработки сообщений.
	MessageProcessingTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_message_processing_milliseconds",
			Help:    "Time to process a chat message",
			Buckets: prometheus.ExponentialBuckets(0.00005, 1.5, 25),
		},
	)

	// ModerationActions - количество удалений и мутов по модераторам.
	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_moderation_actions_total",
			Help: "Number of moderation actions per channel, moderator and action",
		},
		[]string{"channel", "moderator", "action"},
	)

	// UserCommands - количество вызовов команд по каналам.
	UserCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_user_commands_total",
			Help: "Total number of user commands called per channel and per command",
		},
		[]string{"channel", "command"},
	)

	// LimitedCommands - команды, отклоненные лимитером.
	LimitedCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_limited_commands_total",
			Help: "Commands dropped by the per-author limiter",
		},
		[]string{"channel", "command"},
	)

	// TimerBroadcasts - количество сообщений таймера.
	TimerBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_timer_broadcasts_total",
			Help: "Timer messages broadcast per channel",
		},
		[]string{"channel"},
	)

	// Raids - количество рейдов.
	Raids = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_raids_total",
			Help: "Incoming raids per channel",
		},
		[]string{"channel"},
	)
)
