package moderator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twason/internal/app/infrastructure/clock"
)

var epoch = time.Date(2021, 6, 1, 20, 0, 0, 0, time.UTC)

func TestParseDecision(t *testing.T) {
	d, ok := ParseDecision("delete")
	assert.True(t, ok)
	assert.Equal(t, DeleteMessage, d)

	d, ok = ParseDecision("timeout")
	assert.True(t, ok)
	assert.Equal(t, TimeoutUser, d)

	d, ok = ParseDecision("ban")
	assert.False(t, ok)
	assert.Equal(t, Abstain, d)
}

func TestSettings_Duration(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Settings{}.Duration())
	assert.Equal(t, 30, Settings{Timeout: 30}.Duration())
}

func TestCapsLock_Vote(t *testing.T) {
	m := NewCapsLock(Settings{Decision: DeleteMessage}, 5, 50)

	tests := []struct {
		name string
		text string
		want Decision
	}{
		{name: "all caps", text: "ABCDE", want: DeleteMessage},
		{name: "ratio 0.6", text: "AbCdE", want: DeleteMessage},
		{name: "ratio 0.2", text: "Abcde", want: Abstain},
		{name: "below min size", text: "ABCD", want: Abstain},
		{name: "digits and punctuation ignored for length", text: "ABCD 1234 !!!", want: Abstain},
		{name: "punctuation does not dilute ratio", text: "HELLO, WORLD!!! :) 123", want: DeleteMessage},
		{name: "exactly half", text: "ABCdef", want: DeleteMessage},
		{name: "below half", text: "ABcdef", want: Abstain},
		{name: "non latin caps", text: "ПРИВЕТ ВСЕМ", want: DeleteMessage},
		{name: "empty", text: "", want: Abstain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Vote(tt.text, "viewer"))
		})
	}
}

func TestCapsLock_DisabledDecision(t *testing.T) {
	m := NewCapsLock(Settings{Decision: Abstain}, 5, 50)
	assert.Equal(t, Abstain, m.Vote("ABCDEFGH", "viewer"))
}

func TestCapsLock_ZeroMinSize(t *testing.T) {
	m := NewCapsLock(Settings{Decision: TimeoutUser}, 0, 50)
	assert.Equal(t, Abstain, m.Vote("1234 !!", "viewer"))
	assert.Equal(t, TimeoutUser, m.Vote("A", "viewer"))
}

func TestFlood_LongWord(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{MaxWordLength: 10}, clk)

	assert.Equal(t, TimeoutUser, m.Vote("thisisaverylongword", "viewer"))
	assert.Equal(t, Abstain, m.Vote("#thisisaverylonghashtag", "viewer"))
	assert.Equal(t, Abstain, m.Vote("short words only", "viewer"))
	assert.Equal(t, Abstain, m.Vote("tenletters", "viewer"))
	assert.Equal(t, TimeoutUser, m.Vote("ok #fine elevenchars", "viewer"))
	assert.Equal(t, Abstain, m.Vote("ééééééééé", "viewer"))
}

func TestFlood_RaidCooldown(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxWordLength: 10,
		RaidCooldown:  5 * time.Minute,
	}, clk)

	require.True(t, m.HasRaidCooldown())
	assert.Equal(t, TimeoutUser, m.Vote("thisisaverylongword", "raider"))

	m.DeclareRaid()
	assert.Equal(t, Abstain, m.Vote("thisisaverylongword", "raider"))

	clk.Add(4*time.Minute + 59*time.Second)
	assert.Equal(t, Abstain, m.Vote("thisisaverylongword", "raider"))

	clk.Add(time.Second)
	assert.Equal(t, TimeoutUser, m.Vote("thisisaverylongword", "raider"))
}

func TestFlood_RaidCooldownSuppressesRepeats(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		RaidCooldown:   time.Minute,
		MaxOccurrences: 2,
		MinTimeBetween: time.Minute,
	}, clk)

	m.DeclareRaid()
	for range 5 {
		assert.Equal(t, Abstain, m.Vote("raid hype", "raider"))
	}
	assert.Empty(t, m.records)
}

func TestFlood_NoRaidCooldownConfigured(t *testing.T) {
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{MaxWordLength: 3}, clock.NewMock(epoch))

	assert.False(t, m.HasRaidCooldown())
	m.DeclareRaid()
	assert.Equal(t, TimeoutUser, m.Vote("long", "viewer"))
}

func TestFlood_Repeat(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxOccurrences: 3,
		MinTimeBetween: 60 * time.Second,
	}, clk)

	assert.Equal(t, Abstain, m.Vote("buy followers", "spammer"))
	clk.Add(10 * time.Second)
	assert.Equal(t, Abstain, m.Vote("buy followers", "spammer"))
	clk.Add(10 * time.Second)
	assert.Equal(t, TimeoutUser, m.Vote("buy followers", "spammer"))
}

func TestFlood_ConfiguredDecision(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: DeleteMessage}, FloodOptions{
		MaxWordLength:  10,
		MaxOccurrences: 2,
		MinTimeBetween: 60 * time.Second,
	}, clk)

	assert.Equal(t, DeleteMessage, m.Vote("aaaaaaaaaaaaaaaa", "viewer"))

	assert.Equal(t, Abstain, m.Vote("buy followers", "spammer"))
	clk.Add(time.Second)
	assert.Equal(t, DeleteMessage, m.Vote("buy followers", "spammer"))
}

func TestFlood_RepeatDistinctMessageKeepsBurst(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxOccurrences: 3,
		MinTimeBetween: 60 * time.Second,
	}, clk)

	assert.Equal(t, Abstain, m.Vote("hello", "viewer"))
	assert.Equal(t, Abstain, m.Vote("hello", "viewer"))
	assert.Equal(t, Abstain, m.Vote("something else", "viewer"))

	require.NotEmpty(t, m.records)
	assert.Equal(t, "hello", m.records[0].text)
	assert.Equal(t, 2, m.records[0].count)
}

func TestFlood_RepeatWindowExpires(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxOccurrences: 3,
		MinTimeBetween: 60 * time.Second,
	}, clk)

	assert.Equal(t, Abstain, m.Vote("hello", "viewer"))
	clk.Add(61 * time.Second)
	assert.Equal(t, Abstain, m.Vote("hello", "viewer"))
	clk.Add(10 * time.Second)
	assert.Equal(t, Abstain, m.Vote("hello", "viewer"))

	// The expired head was pruned when the second message arrived.
	require.Len(t, m.records, 2)
	assert.Equal(t, epoch.Add(61*time.Second), m.records[0].first)
}

func TestFlood_RepeatOnlyChecksHead(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxOccurrences: 2,
		MinTimeBetween: 60 * time.Second,
	}, clk)

	assert.Equal(t, Abstain, m.Vote("first", "alice"))
	assert.Equal(t, Abstain, m.Vote("spam", "bob"))
	// bob's repeat is behind alice's record and goes unnoticed.
	assert.Equal(t, Abstain, m.Vote("spam", "bob"))
	assert.Equal(t, TimeoutUser, m.Vote("first", "alice"))
}

func TestFlood_RepeatIgnoresInvisibleRunes(t *testing.T) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxOccurrences: 2,
		MinTimeBetween: time.Minute,
	}, clk)

	assert.Equal(t, Abstain, m.Vote("same text", "viewer"))
	assert.Equal(t, TimeoutUser, m.Vote("same text \U000E0000", "viewer"))
}

func TestFlood_RepeatDisabled(t *testing.T) {
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{MaxOccurrences: 2}, clock.NewMock(epoch))

	for range 4 {
		assert.Equal(t, Abstain, m.Vote("again", "viewer"))
	}
	assert.Empty(t, m.records)
}

type stubModerator struct {
	Settings
	name  string
	vote  Decision
	calls int
}

func (s *stubModerator) Name() string { return s.name }

func (s *stubModerator) Vote(string, string) Decision {
	s.calls++
	return s.vote
}

func TestChain_Vote(t *testing.T) {
	first := &stubModerator{name: "first", vote: Abstain}
	second := &stubModerator{name: "second", vote: DeleteMessage}
	third := &stubModerator{name: "third", vote: TimeoutUser}

	m, d := Chain{first, second, third}.Vote("text", "author")

	require.NotNil(t, m)
	assert.Equal(t, "second", m.Name())
	assert.Equal(t, DeleteMessage, d)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
}

func TestChain_AllAbstain(t *testing.T) {
	m, d := Chain{&stubModerator{}, &stubModerator{}}.Vote("text", "author")
	assert.Nil(t, m)
	assert.Equal(t, Abstain, d)
}

func TestChain_DeclareRaid(t *testing.T) {
	clk := clock.NewMock(epoch)
	noCooldown := NewFlood(Settings{}, FloodOptions{}, clk)
	withCooldown := NewFlood(Settings{}, FloodOptions{RaidCooldown: time.Minute}, clk)
	other := NewFlood(Settings{}, FloodOptions{RaidCooldown: time.Minute}, clk)

	m, ok := Chain{NewCapsLock(Settings{}, 5, 50), noCooldown, withCooldown, other}.DeclareRaid()

	require.True(t, ok)
	assert.Same(t, withCooldown, m)
	assert.Equal(t, epoch, withCooldown.lastRaid)
	assert.True(t, noCooldown.lastRaid.IsZero())
	assert.True(t, other.lastRaid.IsZero())

	_, ok = Chain{NewCapsLock(Settings{}, 5, 50)}.DeclareRaid()
	assert.False(t, ok)
}

func BenchmarkFlood_Vote(b *testing.B) {
	clk := clock.NewMock(epoch)
	m := NewFlood(Settings{Decision: TimeoutUser}, FloodOptions{
		MaxWordLength:  30,
		MaxOccurrences: 5,
		MinTimeBetween: time.Minute,
	}, clk)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clk.Add(time.Second)
		m.Vote("just chatting with friends", "viewer")
	}
}
