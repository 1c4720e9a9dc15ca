package glide

import (
	"regexp"
	"strings"
)

// CommandKind identifies an operator command variant.
type CommandKind int

const (
	// CmdUnknown is any line the grammar does not accept.
	CmdUnknown CommandKind = iota

	// CmdList asks for the connected user list.
	CmdList

	// CmdRequests asks for pending incoming glide offers.
	CmdRequests

	// CmdGlide offers to send a local file to a named user.
	CmdGlide

	// CmdOk accepts a pending offer from a named user.
	CmdOk

	// CmdNo refuses a pending offer from a named user.
	CmdNo
)

// Command is one parsed operator command. Path and To are set for the
// variants that carry them; Raw always holds the original input line.
type Command struct {
	Kind CommandKind
	Path string
	To   string
	Raw  string
}

// Grammar patterns, compiled once at startup. The glide path is greedy so
// the user token is always the trailing @-prefixed token; paths may
// contain spaces.
var (
	glidePattern = regexp.MustCompile(`^glide\s+(.+)\s+@(\S+)$`)
	okPattern    = regexp.MustCompile(`^ok\s+@(\S+)$`)
	noPattern    = regexp.MustCompile(`^no\s+@(\S+)$`)
)

// ParseCommand parses one line of operator input.
func ParseCommand(text string) Command {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case "list":
		return Command{Kind: CmdList, Raw: text}
	case "reqs":
		return Command{Kind: CmdRequests, Raw: text}
	}

	if m := glidePattern.FindStringSubmatch(trimmed); m != nil {
		return Command{
			Kind: CmdGlide,
			Path: strings.TrimSpace(m[1]),
			To:   m[2],
			Raw:  text,
		}
	}
	if m := okPattern.FindStringSubmatch(trimmed); m != nil {
		return Command{Kind: CmdOk, To: m[1], Raw: text}
	}
	if m := noPattern.FindStringSubmatch(trimmed); m != nil {
		return Command{Kind: CmdNo, To: m[1], Raw: text}
	}

	return Command{Kind: CmdUnknown, Raw: text}
}

// Encode renders the command in its wire form. Unknown commands encode as
// their raw text, so encode-then-parse is the identity on every value.
func (c Command) Encode() string {
	switch c.Kind {
	case CmdList:
		return "list"
	case CmdRequests:
		return "reqs"
	case CmdGlide:
		return "glide " + c.Path + " @" + c.To
	case CmdOk:
		return "ok @" + c.To
	case CmdNo:
		return "no @" + c.To
	default:
		return c.Raw
	}
}

// Validate re-derives acceptance through the same grammar used to parse.
// Unknown commands, and any command whose surface form would not
// round-trip (a glide with an empty path, an ok without the @), are
// rejected locally before a network round trip. The server still rejects
// malformed input independently; this is a UX shortcut, not a security
// boundary.
func (c Command) Validate() bool {
	if c.Kind == CmdUnknown {
		return false
	}
	reparsed := ParseCommand(c.Encode())
	return reparsed.Kind == c.Kind &&
		reparsed.Path == c.Path &&
		reparsed.To == c.To
}
