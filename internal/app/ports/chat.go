package ports

// ChatPort sends to the chat. Channels carry their leading '#'.
type ChatPort interface {
	Say(channel, message string)
	Delete(room Room, messageID string)
	Timeout(room Room, user User, seconds int, reason string)
}

// Room is a channel by IRC name and, when the room-id tag was present, by id.
type Room struct {
	Channel string
	ID      string
}

// User is a chatter by login and, when the user-id tag was present, by id.
type User struct {
	Login string
	ID    string
}

// ChatEvent is a PRIVMSG as seen by the bot.
type ChatEvent struct {
	Author string
	Target string
	Text   string
	Tags   string
}

// RaidEvent is a USERNOTICE with msg-id=raid.
type RaidEvent struct {
	DisplayName string
}

// EventHandler consumes inbound chat events one at a time.
type EventHandler interface {
	HandleChat(e ChatEvent)
	HandleRaid(e RaidEvent)
}

// Stats is a snapshot of the dispatcher counters.
type Stats struct {
	Messages   uint64 `json:"messages"`
	Commands   uint64 `json:"commands"`
	Deleted    uint64 `json:"deleted"`
	TimedOut   uint64 `json:"timed_out"`
	Broadcasts uint64 `json:"broadcasts"`
	Raids      uint64 `json:"raids"`
}

type StatsPort interface {
	Stats() Stats
}
