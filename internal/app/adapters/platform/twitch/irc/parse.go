package irc

import "strings"

// Message is one IRC line: "@tags :prefix COMMAND params :trailing".
// Tags are kept raw, the dispatcher parses them.
type Message struct {
	Tags    string
	Prefix  string
	Command string
	Params  []string
}

func Parse(line string) Message {
	var msg Message

	if len(line) > 0 && line[0] == '@' {
		spaceIdx := strings.IndexByte(line, ' ')
		if spaceIdx == -1 {
			msg.Tags = line[1:]
			return msg
		}
		msg.Tags = line[1:spaceIdx]
		line = strings.TrimLeft(line[spaceIdx+1:], " ")
	}

	if len(line) > 0 && line[0] == ':' {
		spaceIdx := strings.IndexByte(line, ' ')
		if spaceIdx == -1 {
			msg.Prefix = line[1:]
			return msg
		}
		msg.Prefix = line[1:spaceIdx]
		line = strings.TrimLeft(line[spaceIdx+1:], " ")
	}

	for line != "" {
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			break
		}

		param, rest, _ := strings.Cut(line, " ")
		if msg.Command == "" {
			msg.Command = param
		} else {
			msg.Params = append(msg.Params, param)
		}
		line = strings.TrimLeft(rest, " ")
	}

	return msg
}

// Nick is the nickname part of "nick!user@host".
func (m Message) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

func (m Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Trailing returns the last parameter.
func (m Message) Trailing() string {
	return m.Param(len(m.Params) - 1)
}
