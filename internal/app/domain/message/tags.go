package message

import "strings"

// Tags is the decoded IRCv3 tag section of a chat line.
type Tags map[string]string

// ParseTags decodes "k1=v1;k2=v2" into a map. The last occurrence of a key
// wins, a segment without '=' maps to an empty value and empty segments are
// skipped. A leading '@' is accepted.
func ParseTags(raw string) Tags {
	raw = strings.TrimPrefix(raw, "@")
	tags := make(Tags, strings.Count(raw, ";")+1)

	start := 0
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] != ';' {
			continue
		}

		tag := raw[start:i]
		start = i + 1
		if tag == "" {
			continue
		}

		if eq := strings.IndexByte(tag, '='); eq != -1 {
			tags[tag[:eq]] = tag[eq+1:]
		} else {
			tags[tag] = ""
		}
	}

	return tags
}

func (t Tags) ID() string { return t["id"] }

func (t Tags) DisplayName() string { return t["display-name"] }

func (t Tags) RoomID() string { return t["room-id"] }

func (t Tags) UserID() string { return t["user-id"] }

func (t Tags) EmoteOnly() bool { return t["emote-only"] == "1" }

// Privileged reports whether the sender must bypass moderation. Only a
// sender explicitly tagged mod=0 is moderated; the broadcaster always
// bypasses.
func (t Tags) Privileged() bool {
	if t.HasBadge("broadcaster") {
		return true
	}
	return t["mod"] != "0"
}

// HasBadge looks for name in the "badges" tag ("broadcaster/1,subscriber/12").
func (t Tags) HasBadge(name string) bool {
	for _, badge := range strings.Split(t["badges"], ",") {
		if b, _, _ := strings.Cut(badge, "/"); b == name {
			return true
		}
	}
	return false
}
