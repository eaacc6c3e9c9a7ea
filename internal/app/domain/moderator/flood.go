package moderator

import (
	"strings"
	"time"
	"unicode/utf8"

	"twason/internal/app/domain/message"
	"twason/internal/app/infrastructure/clock"
)

// FloodOptions holds the flood tunables. Zero values disable the matching
// rule.
type FloodOptions struct {
	MaxWordLength  int
	RaidCooldown   time.Duration
	MaxOccurrences int
	MinTimeBetween time.Duration
}

type record struct {
	author string
	text   string
	first  time.Time
	count  int
}

// Flood catches overlong words and bursts of the same message. It keeps
// mutable state and is not safe for concurrent use.
type Flood struct {
	Settings
	opts  FloodOptions
	clock clock.Clock

	records  []record
	lastRaid time.Time
}

func NewFlood(s Settings, opts FloodOptions, clk clock.Clock) *Flood {
	return &Flood{
		Settings: s,
		opts:     opts,
		clock:    clk,
	}
}

func (f *Flood) Name() string { return "Flood" }

func (f *Flood) HasRaidCooldown() bool { return f.opts.RaidCooldown > 0 }

func (f *Flood) DeclareRaid() { f.lastRaid = f.clock.Now() }

func (f *Flood) Vote(text, author string) Decision {
	now := f.clock.Now()

	if f.inRaidCooldown(now) {
		return Abstain
	}

	if f.opts.MaxWordLength > 0 && f.hasLongWord(text) {
		return f.Decision
	}

	if f.opts.MaxOccurrences <= 0 || f.opts.MinTimeBetween <= 0 {
		return Abstain
	}

	text = message.Normalize(text)

	// Only the head of the list is compared: the scan stops at the first
	// record from another author or with another text.
	expired := -1
	for i := range f.records {
		r := &f.records[i]
		isExpired := now.After(r.first.Add(f.opts.MinTimeBetween))
		if isExpired && expired == -1 {
			expired = i
		}

		if r.author != author || r.text != text {
			break
		}

		if !isExpired {
			r.count++
			if r.count >= f.opts.MaxOccurrences {
				return f.Decision
			}
		}
	}

	if expired != -1 {
		f.records = append(f.records[:expired], f.records[expired+1:]...)
	}
	f.records = append(f.records, record{author: author, text: text, first: now, count: 1})

	return Abstain
}

func (f *Flood) inRaidCooldown(now time.Time) bool {
	if f.opts.RaidCooldown <= 0 || f.lastRaid.IsZero() {
		return false
	}
	return now.Sub(f.lastRaid) < f.opts.RaidCooldown
}

// hasLongWord splits on spaces and skips hashtags.
func (f *Flood) hasLongWord(text string) bool {
	for _, word := range strings.Split(text, " ") {
		if strings.HasPrefix(word, "#") {
			continue
		}
		if utf8.RuneCountInString(word) > f.opts.MaxWordLength {
			return true
		}
	}
	return false
}
