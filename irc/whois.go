package irc

import "time"

// WhoisChannel is one channel membership reported in a WHOIS reply.
type WhoisChannel struct {
	Name       string
	PowerLevel string
}

// WhoisResponse accumulates the ~10 numerics that make up one WHOIS
// sequence for a single nickname (§3, §4.9).
type WhoisResponse struct {
	Nick string

	Username string
	Hostname string
	Realname string

	IsOper       bool
	IsSecure     bool
	IsRegistered bool
	Account      string

	ConnectedTo   string
	ConnectedTime time.Time
	IdleTime      time.Duration

	Channels map[string]string // channel name -> power level prefix string.
}

func newWhoisResponse(nick string) *WhoisResponse {
	return &WhoisResponse{Nick: nick, Channels: map[string]string{}}
}

// whoisAggregator is the cache of in-flight WHOIS sequences, keyed by the
// (casefolded) nickname being queried (§4.9).
type whoisAggregator struct {
	casemap CaseMapping
	pending map[string]*WhoisResponse
}

func newWhoisAggregator(casemap CaseMapping) *whoisAggregator {
	return &whoisAggregator{casemap: casemap, pending: map[string]*WhoisResponse{}}
}

// entry returns (creating if necessary) the accumulator for nick.
func (a *whoisAggregator) entry(nick string) *WhoisResponse {
	key := a.casemap(nick)
	r, ok := a.pending[key]
	if !ok {
		r = newWhoisResponse(nick)
		a.pending[key] = r
	}
	return r
}

// lookup returns the accumulator for nick without creating one.
func (a *whoisAggregator) lookup(nick string) (*WhoisResponse, bool) {
	r, ok := a.pending[a.casemap(nick)]
	return r, ok
}

// end removes and returns the accumulator for nick, as the RPL_ENDOFWHOIS
// (318) handler must (§3 invariant 5, §4.9).
func (a *whoisAggregator) end(nick string) (*WhoisResponse, bool) {
	key := a.casemap(nick)
	r, ok := a.pending[key]
	if ok {
		delete(a.pending, key)
	}
	return r, ok
}
