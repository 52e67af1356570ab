package irc

import "strings"

// SupportedCapabilities is the exact set of IRCv3 capabilities this engine
// can negotiate (§4.5).
var SupportedCapabilities = map[string]struct{}{
	"account-notify":          {},
	"account-tag":             {},
	"away-notify":             {},
	"batch":                   {},
	"cap-notify":              {},
	"chghost":                 {},
	"echo-message":            {},
	"extended-join":           {},
	"invite-notify":           {},
	"draft/metadata-2":        {},
	"message-tags":            {},
	"draft/metadata-notify-2": {},
	"draft/multiline":         {},
	"multi-prefix":            {},
	"sasl":                    {},
	"server-time":             {},
	"userhost-in-names":       {},
}

// Capability is one IRCv3 capability token, as advertised by CAP LS/LIST or
// diffed by CAP NEW/DEL/ACK/NAK.
type Capability struct {
	Name   string
	Value  string
	Enable bool
}

// ParseCaps parses the space-separated capability list found as the last
// parameter of a CAP subcommand.
func ParseCaps(s string) []Capability {
	var caps []Capability
	for _, tok := range strings.Fields(s) {
		var c Capability
		c.Enable = true
		if strings.HasPrefix(tok, "-") {
			c.Enable = false
			tok = tok[1:]
		}
		name, value, _ := strings.Cut(tok, "=")
		c.Name = strings.ToLower(name)
		c.Value = value
		caps = append(caps, c)
	}
	return caps
}

// capPhase is the state of the registration-time negotiation handshake.
type capPhase int

const (
	capNotStarted capPhase = iota
	capNegotiating
	capDone
)

// capState is the capability negotiator (C5): it tracks what the server
// advertises, what this engine requested, and how many REQs are still
// outstanding, and it is the sole owner of when CAP END may be sent.
type capState struct {
	phase       capPhase
	available   map[string]string
	enabled     map[string]struct{}
	outstanding int
}

func newCapState() *capState {
	return &capState{
		available: map[string]string{},
		enabled:   map[string]struct{}{},
	}
}

func (c *capState) isEnabled(name string) bool {
	_, ok := c.enabled[name]
	return ok
}
