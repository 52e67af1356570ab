package irc

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	errEmptyMessage      = errors.New("irc: empty message")
	errIncompleteMessage = errors.New("irc: message is incomplete")
)

// Prefix is the "nick!user@host" (or bare server name) identity carried by
// the "source" of a Message.
type Prefix struct {
	Name string
	User string
	Host string
}

// ParsePrefix parses a "nick!user@host" mask, or any of its sub-forms, from
// s (without the leading ':').
func ParsePrefix(s string) *Prefix {
	if s == "" {
		return nil
	}
	p := &Prefix{}

	atSplit := strings.SplitN(s, "@", 2)
	if len(atSplit) == 2 {
		p.Host = atSplit[1]
	}

	bangSplit := strings.SplitN(atSplit[0], "!", 2)
	if len(bangSplit) == 2 {
		p.User = bangSplit[1]
	}
	p.Name = bangSplit[0]

	return p
}

// Copy returns a shallow copy of p (p itself may be nil).
func (p *Prefix) Copy() *Prefix {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// String renders the "nick!user@host" (or a sub-form, if User/Host are
// absent) representation of p.
func (p *Prefix) String() string {
	if p == nil {
		return ""
	}
	switch {
	case p.User != "" && p.Host != "":
		return p.Name + "!" + p.User + "@" + p.Host
	case p.User != "":
		return p.Name + "!" + p.User
	case p.Host != "":
		return p.Name + "@" + p.Host
	default:
		return p.Name
	}
}

// IsServer reports whether p looks like a bare server name rather than a
// user mask (no "!" and no "@", and containing a ".").
func (p *Prefix) IsServer() bool {
	return p != nil && p.User == "" && p.Host == "" && strings.ContainsRune(p.Name, '.')
}

// Message is a fully parsed IRC protocol line: tags, optional source
// prefix, verb (command or three-digit numeric), and positional arguments.
type Message struct {
	Tags    map[string]string
	Prefix  *Prefix
	Command string
	Params  []string
	Raw     string
}

// NewMessage builds an outgoing Message with the given verb and positional
// arguments, and no tags or prefix.
func NewMessage(command string, params ...string) Message {
	return Message{Command: command, Params: params}
}

// WithTag sets a client tag on msg, returning the updated value. The value
// is stored as given; String escapes it when rendering.
func (msg Message) WithTag(key, value string) Message {
	if msg.Tags == nil {
		msg.Tags = map[string]string{}
	}
	msg.Tags[key] = value
	return msg
}

// word splits s on the first run of spaces, returning the token and the
// (left-trimmed) remainder.
func word(s string) (token, rest string) {
	s = strings.TrimLeft(s, " ")
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " ")
}

// tagUnescapeRune returns the character a backslash-escape decodes to, per the
// message-tags escape table; any unrecognized escape decodes to itself.
func tagUnescapeRune(c rune) rune {
	switch c {
	case ':':
		return ';'
	case 's':
		return ' '
	case 'r':
		return '\r'
	case 'n':
		return '\n'
	default:
		return c
	}
}

// unescapeTagValue decodes the wire form of a tag value into its literal
// value, per §4.1: a trailing lone backslash is dropped.
func unescapeTagValue(escaped string) string {
	var sb strings.Builder
	sb.Grow(len(escaped))
	inEscape := false
	for _, c := range escaped {
		if inEscape {
			sb.WriteRune(tagUnescapeRune(c))
			inEscape = false
			continue
		}
		if c == '\\' {
			inEscape = true
			continue
		}
		sb.WriteRune(c)
	}
	// A trailing lone backslash (inEscape still true here) is simply
	// dropped: nothing more to write.
	return sb.String()
}

// escapeTagValue encodes value for wire transmission, the inverse of
// unescapeTagValue.
func escapeTagValue(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, c := range value {
		switch c {
		case ';':
			sb.WriteString(`\:`)
		case ' ':
			sb.WriteString(`\s`)
		case '\r':
			sb.WriteString(`\r`)
		case '\n':
			sb.WriteString(`\n`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

func parseTags(s string) map[string]string {
	tags := map[string]string{}
	for _, item := range strings.Split(s, ";") {
		if item == "" {
			continue
		}
		kv := strings.SplitN(item, "=", 2)
		if len(kv) < 2 || kv[1] == "" {
			tags[kv[0]] = ""
			continue
		}
		tags[kv[0]] = unescapeTagValue(kv[1])
	}
	return tags
}

// ParseMessage parses a single protocol line, already stripped of its
// trailing CR/LF (and of any bytes found after the CR/LF on the same push,
// per the line-framing contract in §6).
//
// Grammar: ['@' tag-list SP] [':' prefix SP] verb (SP middle)* [SP ':' trailing]
func ParseMessage(line string) (Message, error) {
	raw := line
	line = strings.TrimLeft(line, " ")
	if line == "" {
		return Message{}, errEmptyMessage
	}

	var msg Message
	msg.Raw = raw

	if line[0] == '@' {
		var tagStr string
		tagStr, line = word(line)
		msg.Tags = parseTags(tagStr[1:])
		if line == "" {
			return Message{}, errIncompleteMessage
		}
	}

	if line[0] == ':' {
		var prefixStr string
		prefixStr, line = word(line)
		msg.Prefix = ParsePrefix(prefixStr[1:])
		if line == "" {
			return Message{}, errIncompleteMessage
		}
	}

	msg.Command, line = word(line)
	msg.Command = strings.ToUpper(msg.Command)
	if msg.Command == "" {
		return Message{}, errIncompleteMessage
	}

	msg.Params = make([]string, 0, 15)
	for line != "" {
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			break
		}
		var param string
		param, line = word(line)
		msg.Params = append(msg.Params, param)
	}

	return msg, nil
}

// String renders the protocol representation of msg (without a trailing
// CR/LF).
func (msg *Message) String() string {
	var sb strings.Builder

	if len(msg.Tags) != 0 {
		sb.WriteByte('@')
		first := true
		for k, v := range msg.Tags {
			if !first {
				sb.WriteByte(';')
			}
			first = false
			sb.WriteString(k)
			if v != "" {
				sb.WriteByte('=')
				sb.WriteString(escapeTagValue(v))
			}
		}
		sb.WriteByte(' ')
	}

	if msg.Prefix != nil {
		sb.WriteByte(':')
		sb.WriteString(msg.Prefix.String())
		sb.WriteByte(' ')
	}

	sb.WriteString(msg.Command)

	for i, p := range msg.Params {
		last := i == len(msg.Params)-1
		// USER's realname is always sent as a trailing parameter.
		needsTrailing := last && (p == "" || strings.ContainsRune(p, ' ') || strings.HasPrefix(p, ":") || msg.Command == "USER")
		sb.WriteByte(' ')
		if needsTrailing {
			sb.WriteByte(':')
		}
		sb.WriteString(p)
	}

	return sb.String()
}

// IsNumericReply reports whether command is a three-digit server numeric.
func IsNumericReply(command string) bool {
	if len(command) != 3 {
		return false
	}
	for _, r := range command {
		if r < '0' || '9' < r {
			return false
		}
	}
	return true
}

// Time returns the time carried by the "time" server-time tag, if present
// and well-formed (ISO-8601 extended, UTC, e.g. "2011-10-19T16:40:51.620Z").
// Leap-second payloads ("23:59:60") are not representable by time.Time and
// are treated as not-ok (see spec §9 Open Questions).
func (msg *Message) Time() (time.Time, bool) {
	tag, ok := msg.Tags["time"]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15:04:05.000Z", tag)
	if err != nil {
		t, err = time.Parse(time.RFC3339, tag)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t.UTC(), true
}

// TimeOrNow returns the message's server-time tag, or the local clock in
// UTC if absent (§4.8 point 1).
func (msg *Message) TimeOrNow() time.Time {
	if t, ok := msg.Time(); ok {
		return t
	}
	return time.Now().UTC()
}

// DecodeLossy coerces s to valid UTF-8: if s is not valid UTF-8, the whole
// string is decoded as CP1252 (the common fallback for legacy IRC servers
// that are not UTF8ONLY), including any parts that were valid UTF-8. Valid
// UTF-8 input is returned unchanged.
func DecodeLossy(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, _, err := transform.String(charmap.Windows1252.NewDecoder(), s)
	if err != nil {
		return strings.ToValidUTF8(s, "�")
	}
	return decoded
}
