package timer

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twason/internal/app/domain/command"
	"twason/internal/app/infrastructure/clock"
)

var epoch = time.Date(2021, 6, 1, 20, 0, 0, 0, time.UTC)

func pool(msgs ...string) []command.Command {
	out := make([]command.Command, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, command.Command{Message: m})
	}
	return out
}

func tick(s *Scheduler) (command.Command, bool) {
	s.Seen()
	return s.Tick()
}

func TestScheduler_MessageThreshold(t *testing.T) {
	s := New(Config{Messages: 3, Strategy: RoundRobin, Pool: pool("a", "b")}, clock.NewMock(epoch), nil)

	_, ok := tick(s)
	assert.False(t, ok)
	_, ok = tick(s)
	assert.False(t, ok)

	cmd, ok := tick(s)
	require.True(t, ok)
	assert.Equal(t, "a", cmd.Message)

	_, ok = tick(s)
	assert.False(t, ok)
}

func TestScheduler_TimeThreshold(t *testing.T) {
	clk := clock.NewMock(epoch)
	s := New(Config{Between: 10 * time.Minute, Messages: 1, Strategy: RoundRobin, Pool: pool("a")}, clk, nil)

	for range 20 {
		_, ok := tick(s)
		assert.False(t, ok)
	}

	clk.Add(10 * time.Minute)
	cmd, ok := tick(s)
	require.True(t, ok)
	assert.Equal(t, "a", cmd.Message)
}

func TestScheduler_BothGuardsRequired(t *testing.T) {
	clk := clock.NewMock(epoch)
	s := New(Config{Between: time.Minute, Messages: 5, Strategy: RoundRobin, Pool: pool("a")}, clk, nil)

	clk.Add(time.Hour)
	for range 4 {
		_, ok := tick(s)
		assert.False(t, ok)
	}

	_, ok := tick(s)
	assert.True(t, ok)
}

func TestScheduler_RoundRobinOrderAndRefill(t *testing.T) {
	s := New(Config{Messages: 1, Strategy: RoundRobin, Pool: pool("a", "b", "c")}, clock.NewMock(epoch), nil)

	var got []string
	for range 7 {
		cmd, ok := tick(s)
		require.True(t, ok)
		got = append(got, cmd.Message)
	}

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, got)
}

func TestScheduler_ShuffleKeepsSet(t *testing.T) {
	msgs := []string{"a", "b", "c", "d", "e", "f"}
	s := New(Config{Messages: 1, Strategy: Shuffle, Pool: pool(msgs...)}, clock.NewMock(epoch), rand.New(rand.NewPCG(1, 2)))

	for cycle := 0; cycle < 3; cycle++ {
		var got []string
		for range msgs {
			cmd, ok := tick(s)
			require.True(t, ok)
			got = append(got, cmd.Message)
		}
		assert.ElementsMatch(t, msgs, got)
	}
}

func TestScheduler_ShuffleReproducible(t *testing.T) {
	cfg := Config{Messages: 1, Strategy: Shuffle, Pool: pool("a", "b", "c", "d", "e", "f", "g", "h")}
	a := New(cfg, clock.NewMock(epoch), rand.New(rand.NewPCG(7, 7)))
	b := New(cfg, clock.NewMock(epoch), rand.New(rand.NewPCG(7, 7)))

	for range cfg.Pool {
		x, _ := tick(a)
		y, _ := tick(b)
		assert.Equal(t, x, y)
	}
}

func TestScheduler_ShuffleDoesNotTouchConfiguredPool(t *testing.T) {
	cfg := Config{Messages: 1, Strategy: Shuffle, Pool: pool("a", "b", "c", "d", "e", "f", "g", "h")}
	s := New(cfg, clock.NewMock(epoch), rand.New(rand.NewPCG(3, 4)))
	tick(s)

	assert.Equal(t, pool("a", "b", "c", "d", "e", "f", "g", "h"), cfg.Pool)
}

func TestScheduler_EmptyPool(t *testing.T) {
	s := New(Config{Messages: 0, Strategy: RoundRobin}, clock.NewMock(epoch), nil)

	for range 3 {
		_, ok := tick(s)
		assert.False(t, ok)
	}
}

func TestScheduler_Pending(t *testing.T) {
	s := New(Config{Messages: 2, Strategy: RoundRobin, Pool: pool("a", "b")}, clock.NewMock(epoch), nil)

	tick(s)
	assert.Equal(t, 2, s.Pending())
	tick(s)
	assert.Equal(t, 1, s.Pending())
}

func TestStrategy_Valid(t *testing.T) {
	assert.True(t, RoundRobin.Valid())
	assert.True(t, Shuffle.Valid())
	assert.False(t, Strategy("random").Valid())
}
