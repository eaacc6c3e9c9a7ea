package config

import "twason/internal/app/domain/timer"

const (
	DefaultPrefix      = "!"
	DefaultLogFile     = "logs/main.log"
	TransportTLS       = "tls"
	TransportWebSocket = "websocket"
)

func Default() *Config {
	return &Config{
		App: App{
			LogLevel:  "info",
			LogFile:   DefaultLogFile,
			Transport: TransportTLS,
		},
		CommandPrefix: DefaultPrefix,
		Help:          true,
		Timer: Timer{
			Between: Between{
				Time:     10,
				Messages: 10,
			},
			Strategy: string(timer.RoundRobin),
		},
	}
}

func defaultCapsLock() CapsLock {
	return CapsLock{
		Message:   "{author}, stop the caps lock!",
		Decision:  "delete",
		MinSize:   5,
		Threshold: 50,
	}
}

func defaultFlood() Flood {
	return Flood{
		Message:  "{author}, stop the flood!",
		Decision: "timeout",
	}
}
