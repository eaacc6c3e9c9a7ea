package command

import (
	"slices"
	"strings"
)

const helpIntro = "Voici les commandes disponibles : "

type Command struct {
	Name     string
	Message  string
	Aliases  []string
	Disabled bool
}

// Router resolves the first token of a chat line to a command. Names and
// aliases are compared as stored; callers lower-case the token.
type Router struct {
	prefix   string
	commands []Command
}

func NewRouter(prefix string, commands []Command) *Router {
	return &Router{
		prefix:   prefix,
		commands: commands,
	}
}

func (r *Router) Prefix() string { return r.prefix }

func (r *Router) Commands() []Command { return r.commands }

// Find returns the first declared command whose name or alias equals token
// without its prefix.
func (r *Router) Find(token string) (*Command, bool) {
	name, ok := strings.CutPrefix(token, r.prefix)
	if !ok || name == "" {
		return nil, false
	}

	for i := range r.commands {
		c := &r.commands[i]
		if c.Name == name || slices.Contains(c.Aliases, name) {
			return c, true
		}
	}

	return nil, false
}

// Help builds the synthesized help command listing every command in order.
func Help(prefix string, commands []Command) Command {
	var b strings.Builder
	b.WriteString(helpIntro)
	for _, c := range commands {
		b.WriteString(" ")
		b.WriteString(prefix)
		b.WriteString(c.Name)
	}

	return Command{Name: "help", Message: b.String()}
}

// Render substitutes {key} placeholders with vars.
func Render(tmpl string, vars map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
