package timer

import (
	"math/rand/v2"
	"slices"
	"time"

	"twason/internal/app/domain/command"
	"twason/internal/app/infrastructure/clock"
)

type Strategy string

const (
	RoundRobin Strategy = "round-robin"
	Shuffle    Strategy = "shuffle"
)

func (s Strategy) Valid() bool {
	return s == RoundRobin || s == Shuffle
}

type Config struct {
	Between  time.Duration
	Messages int
	Strategy Strategy
	Pool     []command.Command
}

// Scheduler broadcasts pool messages once enough time has passed AND enough
// chat messages have been seen since the last broadcast. It is driven from
// the dispatch path and keeps no locks.
type Scheduler struct {
	cfg   Config
	clock clock.Clock
	rnd   *rand.Rand

	stack []command.Command
	seen  int
	last  time.Time
}

// New builds a scheduler. A nil rnd uses a randomly seeded source.
func New(cfg Config, clk clock.Clock, rnd *rand.Rand) *Scheduler {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Scheduler{
		cfg:   cfg,
		clock: clk,
		rnd:   rnd,
		last:  clk.Now(),
	}
}

// Seen counts one chat message toward the message threshold.
func (s *Scheduler) Seen() { s.seen++ }

// Tick refills the working pool when empty, then pops its head if both
// thresholds are met.
func (s *Scheduler) Tick() (command.Command, bool) {
	if len(s.stack) == 0 {
		s.refill()
	}

	if len(s.stack) == 0 || s.seen < s.cfg.Messages {
		return command.Command{}, false
	}

	now := s.clock.Now()
	if now.Before(s.last.Add(s.cfg.Between)) {
		return command.Command{}, false
	}

	next := s.stack[0]
	s.stack = s.stack[1:]
	s.seen = 0
	s.last = now

	return next, true
}

// Pending returns how many messages remain before the next refill.
func (s *Scheduler) Pending() int { return len(s.stack) }

func (s *Scheduler) refill() {
	s.stack = slices.Clone(s.cfg.Pool)
	if s.cfg.Strategy == Shuffle {
		s.rnd.Shuffle(len(s.stack), func(i, j int) {
			s.stack[i], s.stack[j] = s.stack[j], s.stack[i]
		})
	}
}
