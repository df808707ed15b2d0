// Package proto defines the line-oriented wire protocol spoken between the
// relay server and its clients.
package proto

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// SearchPrefix marks a client line as a history search command.
	SearchPrefix = "#search"

	// ServerSender is the sender label of system announcements.
	ServerSender = "Server"

	// NotFound is the sole search result when nothing matches.
	NotFound = "Message(s) not found!"

	// TimestampLayout is appended to every relayed line.
	TimestampLayout = "2006-01-02 15:04:05"
)

// ErrMalformedSearch is returned for a search command missing "(" or ")".
var ErrMalformedSearch = errors.New("malformed search command")

// LineKind classifies an inbound client line.
type LineKind int

const (
	// LineChat is relayed verbatim to other clients.
	LineChat LineKind = iota
	// LineSearch asks for matching history lines.
	LineSearch
)

func (k LineKind) String() string {
	switch k {
	case LineChat:
		return "chat"
	case LineSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Classify reports the kind of an inbound line. For search lines the keyword
// is returned as well; a malformed search yields LineSearch and ErrMalformedSearch.
func Classify(line string) (LineKind, string, error) {
	if !strings.HasPrefix(line, SearchPrefix) {
		return LineChat, "", nil
	}
	keyword, err := SearchKeyword(line)
	return LineSearch, keyword, err
}

// SearchKeyword extracts the text strictly between the first "(" after the
// prefix and the first ")" after it. The keyword may be empty.
func SearchKeyword(line string) (string, error) {
	rest := strings.TrimPrefix(line, SearchPrefix)
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return "", ErrMalformedSearch
	}
	rest = rest[open+1:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", ErrMalformedSearch
	}
	return rest[:end], nil
}

// Header returns the search scope of a stored line: the text before its "["
// or, when it has none, before its "!". Lines with neither have no header.
func Header(line string) (string, bool) {
	if i := strings.IndexByte(line, '['); i >= 0 {
		return line[:i], true
	}
	if i := strings.IndexByte(line, '!'); i >= 0 {
		return line[:i], true
	}
	return "", false
}

// Stamp appends the local timestamp to a raw message.
func Stamp(raw string, at time.Time) string {
	return raw + " " + at.Format(TimestampLayout)
}

// ChatLine formats a chat message the way clients send it.
func ChatLine(identity, body string, sent int) string {
	return identity + " : " + body + " [" + strconv.Itoa(sent) + "] message(s)"
}

// SystemLine formats a server announcement.
func SystemLine(text string) string {
	return ServerSender + " : " + text
}

// JoinLine announces a newly admitted client.
func JoinLine(identity string) string {
	return SystemLine(identity + " has entered the chat!")
}

// LeaveLine announces a departed client.
func LeaveLine(identity string) string {
	return SystemLine(identity + " has left the chat")
}

// WelcomeLine greets a client whose name is not in use.
func WelcomeLine(identity string) string {
	return "Welcome, " + identity + "!"
}

// DuplicateNameLines warn every holder of a shared name.
func DuplicateNameLines(identity string) []string {
	return []string{
		"Welcome Back, " + identity + "! If this is your first time logging in, please re-enter the chat with a new username",
		"Note : you cannot chat with another user under the same username",
	}
}

// NameTakenLine tells a client its name was refused.
func NameTakenLine(identity string) string {
	return SystemLine("the name " + identity + " is already in use, please reconnect with a different name")
}

// TrimLine strips a trailing "\n" or "\r\n".
func TrimLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
