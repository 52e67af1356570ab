package irc

import "strings"

// User is a known IRC identity: created on first sighting and mutated in
// place by CHGHOST/NICK/ACCOUNT (§3).
type User struct {
	Nick    string
	Ident   string
	Host    string
	Account string // "" if unknown/not logged in.
	Real    string
	Away    bool
	AwayMsg string
}

// Prefix renders the user's current mask.
func (u *User) Prefix() *Prefix {
	if u == nil {
		return nil
	}
	return &Prefix{Name: u.Nick, User: u.Ident, Host: u.Host}
}

// mergeFrom upserts fields from incoming into u without overwriting fields
// u already knows and incoming leaves blank (§4.7 update semantics).
func (u *User) mergeFrom(incoming *User) {
	if incoming.Ident != "" {
		u.Ident = incoming.Ident
	}
	if incoming.Host != "" {
		u.Host = incoming.Host
	}
	if incoming.Account != "" {
		u.Account = incoming.Account
	}
	if incoming.Real != "" {
		u.Real = incoming.Real
	}
}

// Member is one channel membership: a user together with the set of
// membership mode letters ("ov", highest rank first) they currently hold.
type Member struct {
	Nick       string
	PowerLevel string // membership mode letters, e.g. "o" or "ov".
}

// Channel is a joined channel and its membership (§3).
type Channel struct {
	Name      string
	Topic     string
	TopicWho  *Prefix
	TopicTime int64 // unix seconds, 0 if unknown.
	Modes     []Mode
	Members   map[string]*Member // keyed by casefolded nick.

	namesComplete bool
}

func newChannel(name string) *Channel {
	return &Channel{Name: name, Members: map[string]*Member{}}
}

// AddressBook is the single authoritative store of known Users, keyed by
// casefolded nickname (§3 invariant 2, §4.7).
type AddressBook struct {
	casemap CaseMapping
	users   map[string]*User
}

func newAddressBook(casemap CaseMapping) *AddressBook {
	return &AddressBook{casemap: casemap, users: map[string]*User{}}
}

// Get returns the known User for nick, if any.
func (ab *AddressBook) Get(nick string) (*User, bool) {
	u, ok := ab.users[ab.casemap(nick)]
	return u, ok
}

// Update merge-upserts a sighting of a user: unknown fields on incoming
// never overwrite known fields on the existing record (§4.7).
func (ab *AddressBook) Update(incoming *User) *User {
	key := ab.casemap(incoming.Nick)
	if existing, ok := ab.users[key]; ok {
		existing.mergeFrom(incoming)
		return existing
	}
	cp := *incoming
	ab.users[key] = &cp
	return &cp
}

// Rename re-keys a user entry from old to newNick, preserving every other
// field (§4.7, invariant 2, property 3).
func (ab *AddressBook) Rename(oldNick, newNick string) (*User, bool) {
	oldKey := ab.casemap(oldNick)
	u, ok := ab.users[oldKey]
	if !ok {
		return nil, false
	}
	delete(ab.users, oldKey)
	u.Nick = newNick
	ab.users[ab.casemap(newNick)] = u
	return u, true
}

// Invalidate removes a user entry entirely (on QUIT).
func (ab *AddressBook) Invalidate(nick string) {
	delete(ab.users, ab.casemap(nick))
}

// members is a sort.Interface over Member by nickname, case-insensitively.
type members []Member

func (m members) Len() int      { return len(m) }
func (m members) Swap(i, j int) { m[i], m[j] = m[j], m[i] }
func (m members) Less(i, j int) bool {
	return strings.ToLower(m[i].Nick) < strings.ToLower(m[j].Nick)
}

// NameEntry is a single parsed entry of a NAMES (353) reply.
type NameEntry struct {
	PowerLevel string
	Nick       string
	Ident      string
	Host       string
}

// ParseNameReply parses the trailing parameter of RPL_NAMREPLY into
// entries, peeling off any leading membership-prefix characters found in
// prefixSymbols (highest rank first, as returned by
// ISupport.PrefixSymbols).
func ParseNameReply(trailing, prefixSymbols string) []NameEntry {
	var entries []NameEntry
	for _, word := range strings.Fields(trailing) {
		name := strings.TrimLeft(word, prefixSymbols)
		powerLevel := word[:len(word)-len(name)]
		p := ParsePrefix(name)
		if p == nil {
			continue
		}
		entries = append(entries, NameEntry{
			PowerLevel: powerLevel,
			Nick:       p.Name,
			Ident:      p.User,
			Host:       p.Host,
		})
	}
	return entries
}
