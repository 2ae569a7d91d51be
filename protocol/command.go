// Package protocol implements the newline-delimited text protocol: parsing
// of client lines into command variants and formatting of reply and push
// lines. It performs no I/O, so dispatch logic stays testable on its own.
package protocol

import "strings"

// Command is a parsed client request. The concrete type carries the verb's
// arguments; handlers switch over the finite set of variants.
type Command interface {
	verb() string
}

type Login struct{ Name string }

type Join struct{ Group string }

type Leave struct{ Group string }

// Post carries a pre-split message payload. The subject is what stood left
// of the first pipe, trimmed; an absent pipe means an empty subject.
type Post struct {
	Group   string
	Subject string
	Content string
}

// GetMessage keeps the raw argument so the handler can distinguish a
// non-numeric id (INVALID_MESSAGE_ID) from an unknown one.
type GetMessage struct{ Raw string }

type Users struct{ Group string }

type Groups struct{}

type Search struct {
	Group string
	Terms string
}

type Ping struct{}

type Quit struct{}

// Malformed marks a recognized verb whose argument shape is unusable.
type Malformed struct{ Verb string }

// Unknown marks an unrecognized verb.
type Unknown struct{ Verb string }

func (Login) verb() string      { return "LOGIN" }
func (Join) verb() string       { return "JOIN" }
func (Leave) verb() string      { return "LEAVE" }
func (Post) verb() string       { return "MESSAGE" }
func (GetMessage) verb() string { return "GET_MESSAGE" }
func (Users) verb() string      { return "USERS" }
func (Groups) verb() string     { return "GROUPS" }
func (Search) verb() string     { return "SEARCH" }
func (Ping) verb() string       { return "PING" }
func (Quit) verb() string       { return "QUIT" }
func (m Malformed) verb() string { return m.Verb }
func (u Unknown) verb() string   { return u.Verb }

// RequiresAuth reports whether the command may only be issued by an
// authenticated session.
func RequiresAuth(cmd Command) bool {
	switch cmd.(type) {
	case Login, Groups, Ping, Quit, Unknown:
		return false
	default:
		return true
	}
}

// Parse turns one trimmed input line into a command. Verbs are matched
// case-insensitively. ok is false for blank lines, which are ignored.
func Parse(line string) (cmd Command, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	verb, arg := splitOnce(line, ' ')
	verb = strings.ToUpper(verb)

	switch verb {
	case "LOGIN":
		return Login{Name: arg}, true
	case "JOIN":
		return Join{Group: arg}, true
	case "LEAVE":
		return Leave{Group: arg}, true
	case "MESSAGE":
		return parsePost(verb, arg), true
	case "GET_MESSAGE":
		return GetMessage{Raw: arg}, true
	case "USERS":
		return Users{Group: arg}, true
	case "GROUPS":
		return Groups{}, true
	case "SEARCH":
		group, terms := splitOnce(arg, ' ')
		if group == "" || terms == "" {
			return Malformed{Verb: verb}, true
		}
		return Search{Group: group, Terms: terms}, true
	case "PING":
		return Ping{}, true
	case "QUIT":
		return Quit{}, true
	default:
		return Unknown{Verb: verb}, true
	}
}

// parsePost splits "group subject|content" per the fixed message format:
// one split on the first pipe, subject left, content right, both trimmed.
// Without a pipe the whole payload is content with an empty subject.
func parsePost(verb, arg string) Command {
	group, payload := splitOnce(arg, ' ')
	if group == "" || payload == "" {
		return Malformed{Verb: verb}
	}

	subject := ""
	content := payload
	if idx := strings.Index(payload, "|"); idx >= 0 {
		subject = strings.TrimSpace(payload[:idx])
		content = payload[idx+1:]
	}
	content = strings.TrimSpace(content)
	if content == "" && subject == "" {
		return Malformed{Verb: verb}
	}
	return Post{Group: group, Subject: subject, Content: content}
}

func splitOnce(s string, sep byte) (head, tail string) {
	if idx := strings.IndexByte(s, sep); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
	}
	return strings.TrimSpace(s), ""
}
