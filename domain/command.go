package domain

import "strings"

// Marker prefixes every command line; anything else is a chat message.
const Marker = "/"

// Command is the tagged result of parsing one command line.
// Unrecognized verbs are a normal variant, not an error path.
type Command interface {
	Verb() string
}

type Help struct{}

func (Help) Verb() string { return "help" }

type Users struct{}

func (Users) Verb() string { return "users" }

// Msg carries a private message. Target or Text may be empty when the
// client omitted them; the dispatcher answers with a usage reply.
type Msg struct {
	Target string
	Text   string
}

func (Msg) Verb() string { return "msg" }

type Me struct {
	Text string
}

func (Me) Verb() string { return "me" }

type Clear struct{}

func (Clear) Verb() string { return "clear" }

type History struct{}

func (History) Verb() string { return "history" }

// Dnd carries the raw mode token; only "on" and "off" are valid.
type Dnd struct {
	Mode string
}

func (Dnd) Verb() string { return "dnd" }

type Quit struct{}

func (Quit) Verb() string { return "quit" }

type Unknown struct {
	Word string
}

func (u Unknown) Verb() string { return u.Word }

// IsCommand reports whether a chat line should be parsed as a command.
func IsCommand(line string) bool {
	return strings.HasPrefix(line, Marker)
}

// ParseCommand tokenizes one command line into its tagged variant.
// The line is split into a verb and up to two further tokens; the final
// token keeps its embedded whitespace so free-text arguments survive.
func ParseCommand(line string) Command {
	trimmed := strings.TrimPrefix(line, Marker)
	verb, rest := splitOnce(trimmed)
	switch strings.ToLower(verb) {
	case "help":
		return Help{}
	case "users":
		return Users{}
	case "msg":
		target, text := splitOnce(rest)
		return Msg{Target: target, Text: text}
	case "me":
		return Me{Text: rest}
	case "clear":
		return Clear{}
	case "history":
		return History{}
	case "dnd":
		mode, _ := splitOnce(rest)
		return Dnd{Mode: strings.ToLower(mode)}
	case "quit":
		return Quit{}
	default:
		return Unknown{Word: verb}
	}
}

// splitOnce cuts the first space-separated token off a line and returns
// it with the trimmed remainder.
func splitOnce(s string) (string, string) {
	s = strings.TrimSpace(s)
	head, tail, found := strings.Cut(s, " ")
	if !found {
		return head, ""
	}
	return head, strings.TrimSpace(tail)
}
