package irc

import (
	"strconv"
	"strings"
)

// PrefixPair is one (mode letter, display prefix) correspondence from the
// PREFIX ISUPPORT token, in server-declared rank order (highest first).
type PrefixPair struct {
	Mode   byte
	Prefix byte
}

// ISupport accumulates and parses the server-advertised 005 (RPL_ISUPPORT)
// parameter tokens (§4.4).
type ISupport struct {
	raw map[string]string

	casemapName string
	casemap     CaseMapping

	prefixes  []PrefixPair
	chanmodes ModeCategories
	chantypes string
	statusmsg string

	nicklen    int
	kicklen    int
	channellen int
	topiclen   int
	awaylen    int

	namesx  bool
	uhnames bool
	whox    bool
}

// NewISupport returns an ISupport store seeded with RFC 1459 defaults, used
// until the server advertises otherwise.
func NewISupport() *ISupport {
	return &ISupport{
		raw:         map[string]string{},
		casemapName: "rfc1459",
		casemap:     CasemapRFC1459,
		prefixes: []PrefixPair{
			{Mode: 'o', Prefix: '@'},
			{Mode: 'v', Prefix: '+'},
		},
		chanmodes: ModeCategories{},
		chantypes: "#&",
		nicklen:   9,
		kicklen:   180,
	}
}

// legacyProtoctl reports the legacy PROTOCTL token the engine must send the
// first time it observes feature without having negotiated the matching
// IRCv3 capability (§4.4).
type legacyProtoctl struct{ token string }

// Apply feeds the positional tokens of one RPL_ISUPPORT line (the message
// params with the leading nickname and trailing ":are supported..."
// trimmed off) into the store. It returns any legacy PROTOCTL commands the
// engine should now send.
func (is *ISupport) Apply(tokens []string, caps map[string]struct{}) []legacyProtoctl {
	var toSend []legacyProtoctl

	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		negate := false
		if tok[0] == '-' {
			negate = true
			tok = tok[1:]
		}

		key, value, hasValue := strings.Cut(tok, "=")
		key = strings.ToUpper(key)

		if negate {
			delete(is.raw, key)
			continue
		}

		is.raw[key] = value
		_ = hasValue

		switch key {
		case "CASEMAPPING":
			is.casemapName = value
			is.casemap = casemapByName(value)
		case "CHANTYPES":
			is.chantypes = value
		case "CHANMODES":
			is.chanmodes = ParseChanmodes(value)
		case "STATUSMSG":
			is.statusmsg = value
		case "PREFIX":
			is.prefixes = parsePrefixToken(value)
		case "NICKLEN":
			is.nicklen = atoiDefault(value, is.nicklen)
		case "KICKLEN":
			is.kicklen = atoiDefault(value, is.kicklen)
		case "CHANNELLEN":
			is.channellen = atoiDefault(value, is.channellen)
		case "TOPICLEN":
			is.topiclen = atoiDefault(value, is.topiclen)
		case "AWAYLEN":
			is.awaylen = atoiDefault(value, is.awaylen)
		case "NAMESX":
			if !is.namesx {
				is.namesx = true
				if _, ok := caps["multi-prefix"]; !ok {
					toSend = append(toSend, legacyProtoctl{"NAMESX"})
				}
			}
		case "UHNAMES":
			if !is.uhnames {
				is.uhnames = true
				if _, ok := caps["userhost-in-names"]; !ok {
					toSend = append(toSend, legacyProtoctl{"UHNAMES"})
				}
			}
		case "WHOX":
			is.whox = true
		}
	}

	return toSend
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parsePrefixToken parses "(modes)prefixes" into ordered pairs.
func parsePrefixToken(value string) []PrefixPair {
	if len(value) == 0 || value[0] != '(' {
		return nil
	}
	end := strings.IndexByte(value, ')')
	if end < 0 {
		return nil
	}
	modes := value[1:end]
	prefixes := value[end+1:]
	if len(modes) != len(prefixes) {
		return nil
	}
	pairs := make([]PrefixPair, len(modes))
	for i := range modes {
		pairs[i] = PrefixPair{Mode: modes[i], Prefix: prefixes[i]}
	}
	return pairs
}

// Casemap folds name per the negotiated CASEMAPPING.
func (is *ISupport) Casemap(name string) string {
	return is.casemap(name)
}

// IsChannel reports whether name begins with a server-declared channel
// sigil.
func (is *ISupport) IsChannel(name string) bool {
	return len(name) > 0 && strings.IndexByte(is.chantypes, name[0]) >= 0
}

// ChannelModeCategories returns the CHANMODES category map, extended so
// that every PREFIX mode letter is classified as category B (it always
// takes an argument, in either direction), matching real-world server
// behavior even though PREFIX letters are not listed in CHANMODES.
func (is *ISupport) ChannelModeCategories() ModeCategories {
	cats := make(ModeCategories, len(is.chanmodes)+len(is.prefixes))
	for k, v := range is.chanmodes {
		cats[k] = v
	}
	for _, p := range is.prefixes {
		cats[p.Mode] = ModeCategoryB
	}
	return cats
}

// PrefixForMode returns the display prefix for a membership mode letter
// (e.g. 'o' -> '@'), and whether it is a recognized prefix mode.
func (is *ISupport) PrefixForMode(letter byte) (byte, bool) {
	for _, p := range is.prefixes {
		if p.Mode == letter {
			return p.Prefix, true
		}
	}
	return 0, false
}

// PrefixSymbols returns the set of display prefixes usable in front of a
// nickname in a NAMES reply, highest rank first.
func (is *ISupport) PrefixSymbols() string {
	var sb strings.Builder
	for _, p := range is.prefixes {
		sb.WriteByte(p.Prefix)
	}
	return sb.String()
}

// StatusmsgPrefixes returns the set of prefixes that may precede a channel
// name as a message target (STATUSMSG).
func (is *ISupport) StatusmsgPrefixes() string {
	return is.statusmsg
}

// KickLen returns the server-declared maximum KICK reason length (the
// seeded default of 180 if unadvertised).
func (is *ISupport) KickLen() int { return is.kicklen }

// Raw returns the verbatim value stored for an ISUPPORT token (for tokens
// this store does not otherwise interpret).
func (is *ISupport) Raw(key string) (string, bool) {
	v, ok := is.raw[strings.ToUpper(key)]
	return v, ok
}

// WHOX reports whether the server advertised the WHOX ISUPPORT token.
func (is *ISupport) WHOX() bool { return is.whox }

// LetterForPrefix is the inverse of PrefixForMode: it maps a display prefix
// character (e.g. '@') back to its membership mode letter (e.g. 'o').
func (is *ISupport) LetterForPrefix(prefix byte) (byte, bool) {
	for _, p := range is.prefixes {
		if p.Prefix == prefix {
			return p.Mode, true
		}
	}
	return 0, false
}

// symbolsToLetters converts a string of display-prefix characters (as
// peeled off a NAMES reply entry) into the corresponding membership mode
// letters, preserving order. Unrecognized characters are dropped.
func (is *ISupport) symbolsToLetters(symbols string) string {
	var sb strings.Builder
	for i := 0; i < len(symbols); i++ {
		if l, ok := is.LetterForPrefix(symbols[i]); ok {
			sb.WriteByte(l)
		}
	}
	return sb.String()
}

// rankOrder returns the membership mode letters in server-declared rank
// order (highest first), as carried by the PREFIX token.
func (is *ISupport) rankOrder() []byte {
	order := make([]byte, len(is.prefixes))
	for i, p := range is.prefixes {
		order[i] = p.Mode
	}
	return order
}
