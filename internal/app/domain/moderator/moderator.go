package moderator

type Decision int

const (
	Abstain Decision = iota
	DeleteMessage
	TimeoutUser
)

// DefaultTimeout is used when a timeout moderator has no duration configured,
// matching the platform's own default.
const DefaultTimeout = 600

func (d Decision) String() string {
	switch d {
	case DeleteMessage:
		return "delete"
	case TimeoutUser:
		return "timeout"
	}
	return "abstain"
}

// ParseDecision maps a configured decision to its value. Unknown strings
// report false and resolve to Abstain, which disables the moderator.
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "delete":
		return DeleteMessage, true
	case "timeout":
		return TimeoutUser, true
	}
	return Abstain, false
}

type Moderator interface {
	Name() string
	Vote(text, author string) Decision
	Message() string
	Duration() int
}

// RaidAware moderators relax their rules for a while after a raid.
type RaidAware interface {
	HasRaidCooldown() bool
	DeclareRaid()
}

// Settings are the attributes shared by every moderator.
type Settings struct {
	Reply    string
	Decision Decision
	Timeout  int
}

func (s Settings) Message() string { return s.Reply }

func (s Settings) Duration() int {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

// Chain offers a message to each moderator in order.
type Chain []Moderator

// Vote returns the first moderator that does not abstain with its decision,
// or nil and Abstain.
func (c Chain) Vote(text, author string) (Moderator, Decision) {
	for _, m := range c {
		if d := m.Vote(text, author); d != Abstain {
			return m, d
		}
	}
	return nil, Abstain
}

// DeclareRaid notifies the first raid-aware moderator with a cooldown and
// reports whether one was found.
func (c Chain) DeclareRaid() (Moderator, bool) {
	for _, m := range c {
		if ra, ok := m.(RaidAware); ok && ra.HasRaidCooldown() {
			ra.DeclareRaid()
			return m, true
		}
	}
	return nil, false
}
