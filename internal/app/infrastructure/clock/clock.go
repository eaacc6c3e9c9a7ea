package clock

import "time"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Mock is a manually driven clock for tests.
type Mock struct {
	now time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time { return m.now }

func (m *Mock) Add(d time.Duration) { m.now = m.now.Add(d) }

func (m *Mock) Set(t time.Time) { m.now = t }
