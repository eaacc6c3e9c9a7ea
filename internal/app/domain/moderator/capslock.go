package moderator

import "unicode"

type CapsLock struct {
	Settings

	minSize   int
	threshold float64
}

// NewCapsLock builds a caps-lock moderator. threshold is a percentage in
// [0, 100]; minSize is clamped to at least one letter.
func NewCapsLock(s Settings, minSize, threshold int) *CapsLock {
	return &CapsLock{
		Settings:  s,
		minSize:   max(minSize, 1),
		threshold: float64(threshold) / 100,
	}
}

func (c *CapsLock) Name() string { return "Caps Lock" }

func (c *CapsLock) Vote(text, _ string) Decision {
	var letters, upper int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.ToUpper(r) == r {
			upper++
		}
	}

	if letters < c.minSize {
		return Abstain
	}

	if float64(upper)/float64(letters) >= c.threshold {
		return c.Decision
	}
	return Abstain
}
