package twitch

import "twason/internal/app/ports"

type sayer interface {
	Say(channel, message string)
}

type moderation interface {
	Delete(room ports.Room, messageID string)
	Timeout(room ports.Room, user ports.User, seconds int, reason string)
}

// Twitch is the chat port: messages go out over IRC, moderation actions
// through Helix.
type Twitch struct {
	sayer
	moderation
}

func New(irc sayer, api moderation) *Twitch {
	return &Twitch{
		sayer:      irc,
		moderation: api,
	}
}
