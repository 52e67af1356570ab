package irc

import (
	"strconv"
	"strings"
	"time"
)

// This file holds the per-verb/per-numeric handlers dispatched from
// handle() in session.go (§4.8): one method per row of the dispatcher
// table, each mutating the relevant piece of engine state and firing the
// matching callback.

// --- membership: JOIN / PART / KICK / QUIT / NICK ------------------------

func (e *Engine) handleJoin(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 || source == nil {
		return
	}
	name := msg.Params[0]
	self := e.IsMe(source.Nick)

	if e.cap.isEnabled("extended-join") && len(msg.Params) >= 3 {
		if acct := msg.Params[1]; acct != "*" {
			source.Account = acct
		}
		source.Real = msg.Params[2]
	}

	c := e.getOrCreateChannel(name)
	c.Members[e.casemap(source.Nick)] = &Member{Nick: source.Nick}

	if self && e.isupport.WHOX() {
		e.Who(name, true)
	}

	if e.cb.OnJoin != nil {
		e.cb.OnJoin(JoinEvent{Meta: meta, Source: source, Channel: c.Name, Self: self})
	}
}

func (e *Engine) handlePart(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 || source == nil {
		return
	}
	name := msg.Params[0]
	reason := paramAt(msg.Params, 1)
	self := e.IsMe(source.Nick)

	key := e.casemap(name)
	if c, ok := e.channels[key]; ok {
		delete(c.Members, e.casemap(source.Nick))
		if self {
			delete(e.channels, key)
		}
	}

	if e.cb.OnPart != nil {
		e.cb.OnPart(PartEvent{Meta: meta, Source: source, Channel: name, Reason: reason, Self: self})
	}
}

func (e *Engine) handleKick(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) < 2 {
		return
	}
	channel := msg.Params[0]
	target := msg.Params[1]
	reason := paramAt(msg.Params, 2)
	self := e.IsMe(target)

	key := e.casemap(channel)
	if c, ok := e.channels[key]; ok {
		delete(c.Members, e.casemap(target))
		if self {
			delete(e.channels, key)
		}
	}

	if e.cb.OnKick != nil {
		e.cb.OnKick(KickEvent{Meta: meta, Source: source, Channel: channel, Target: target, Reason: reason, Self: self})
	}
}

func (e *Engine) handleQuit(msg Message, meta MessageMetadata, source *User) {
	if source == nil {
		return
	}
	reason := paramAt(msg.Params, 0)
	self := e.IsMe(source.Nick)
	nickCf := e.casemap(source.Nick)

	var channels []string
	for _, c := range e.channels {
		if _, ok := c.Members[nickCf]; ok {
			delete(c.Members, nickCf)
			channels = append(channels, c.Name)
		}
	}

	if e.cb.OnQuit != nil {
		e.cb.OnQuit(QuitEvent{Meta: meta, Source: source, Reason: reason, Channels: channels, Self: self})
	}

	e.users.Invalidate(source.Nick)
	if self {
		e.invalid = true
	}
}

func (e *Engine) handleNick(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 || source == nil {
		return
	}
	oldNick := source.Nick
	newNick := msg.Params[0]
	self := e.IsMe(oldNick)

	e.users.Rename(oldNick, newNick)

	oldCf := e.casemap(oldNick)
	newCf := e.casemap(newNick)
	for _, c := range e.channels {
		if m, ok := c.Members[oldCf]; ok {
			delete(c.Members, oldCf)
			m.Nick = newNick
			c.Members[newCf] = m
		}
	}

	if self {
		e.nick = newNick
		e.nickCf = newCf
	}

	if e.cb.OnNick != nil {
		e.cb.OnNick(NickEvent{Meta: meta, Source: source, FormerNick: oldNick, NewNick: newNick, Self: self})
	}
}

// --- MODE / TOPIC / INVITE / CHGHOST / ACCOUNT ---------------------------

func (e *Engine) handleMode(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 {
		return
	}
	target := msg.Params[0]
	isChannel := e.isupport.IsChannel(target)

	var cats ModeCategories
	if isChannel {
		cats = e.isupport.ChannelModeCategories()
	}

	changes := ParseModeString(msg.Params[1:], cats)
	if len(changes) == 0 {
		return
	}

	var c *Channel
	if isChannel {
		c = e.channels[e.casemap(target)]
	}

	for _, change := range changes {
		if c != nil {
			e.applyChannelModeChange(c, change)
		}
		if e.cb.OnMode != nil {
			e.cb.OnMode(ModeEvent{Meta: meta, Source: source, Target: target, Change: change})
		}
	}
}

// applyChannelModeChange folds one ModeChange into a channel's tracked
// state: membership-prefix letters update the affected Member's
// PowerLevel, everything else (except category A list modes, which this
// engine does not cache — see DESIGN.md) upserts or removes an entry in
// Channel.Modes.
func (e *Engine) applyChannelModeChange(c *Channel, change ModeChange) {
	letter := change.Mode.Letter

	if _, isPrefix := e.isupport.PrefixForMode(letter); isPrefix {
		nickCf := e.casemap(change.Mode.Arg)
		m, ok := c.Members[nickCf]
		if !ok {
			return
		}
		if change.Set {
			m.PowerLevel = addRank(m.PowerLevel, letter, e.isupport.rankOrder())
		} else {
			m.PowerLevel = removeRank(m.PowerLevel, letter)
		}
		return
	}

	if change.Mode.Category == ModeCategoryA {
		return
	}

	idx := -1
	for i, existing := range c.Modes {
		if existing.Letter == letter {
			idx = i
			break
		}
	}
	switch {
	case change.Set && idx >= 0:
		c.Modes[idx] = change.Mode
	case change.Set:
		c.Modes = append(c.Modes, change.Mode)
	case idx >= 0:
		c.Modes = append(c.Modes[:idx], c.Modes[idx+1:]...)
	}
}

func (e *Engine) handleTopic(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 {
		return
	}
	channel := msg.Params[0]
	topic := paramAt(msg.Params, 1)

	if c, ok := e.channels[e.casemap(channel)]; ok {
		c.Topic = topic
		c.TopicWho = source.Prefix()
		c.TopicTime = meta.Time.Unix()
	}

	if e.cb.OnTopicChange != nil {
		e.cb.OnTopicChange(TopicChangeEvent{Meta: meta, Source: source, Channel: channel, Topic: topic})
	}
}

func (e *Engine) handleInvite(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) < 2 {
		return
	}
	invitee := msg.Params[0]
	channel := msg.Params[1]

	// look up the invited nick so a future WHOIS/message about them has a
	// seeded address-book entry, even though the event itself carries the
	// nick as a plain string (§4.8).
	e.users.Update(&User{Nick: invitee})

	if e.cb.OnInvite != nil {
		e.cb.OnInvite(InviteEvent{Meta: meta, Inviter: source, Invitee: invitee, Channel: channel})
	}
}

func (e *Engine) handleChgHost(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) < 2 || source == nil {
		return
	}
	source.Ident = msg.Params[0]
	source.Host = msg.Params[1]

	if e.cb.OnChgHost != nil {
		e.cb.OnChgHost(ChgHostEvent{Meta: meta, Source: source, Ident: source.Ident, Host: source.Host})
	}
}

func (e *Engine) handleAccount(msg Message, source *User) {
	if len(msg.Params) == 0 || source == nil {
		return
	}
	value := msg.Params[0]
	if value == "*" {
		source.Account = ""
		if e.cb.OnLogout != nil {
			e.cb.OnLogout(LogoutEvent{Nick: source.Nick})
		}
		return
	}
	source.Account = value
	if e.cb.OnLogin != nil {
		e.cb.OnLogin(LoginEvent{Nick: source.Nick, Account: value})
	}
}

// --- PRIVMSG / NOTICE / TAGMSG -------------------------------------------

func (e *Engine) handleMessageCmd(msg Message, meta MessageMetadata, source *User) {
	if len(msg.Params) == 0 {
		return
	}
	rawTarget := msg.Params[0]
	target := strings.TrimLeft(rawTarget, e.isupport.StatusmsgPrefixes())
	targetIsChannel := e.isupport.IsChannel(target)

	content := paramAt(msg.Params, 1)
	if msg.Command != "TAGMSG" {
		content = DecodeLossy(content)
	}

	isEcho := source != nil && e.IsMe(source.Nick)

	if e.cb.OnMessage != nil {
		e.cb.OnMessage(MessageEvent{
			Meta:            meta,
			Source:          source,
			Target:          target,
			TargetIsChannel: targetIsChannel,
			Command:         msg.Command,
			Content:         content,
			IsEcho:          isEcho,
		})
	}
}

// --- METADATA verb --------------------------------------------------------

func (e *Engine) handleMetadataVerb(msg Message) {
	if len(msg.Params) < 3 {
		return
	}
	target := msg.Params[0]
	if target == "*" {
		target = e.nick
	}
	key := msg.Params[1]
	visibility := msg.Params[2]

	var valPtr *string
	if len(msg.Params) > 3 {
		v := msg.Params[3]
		valPtr = &v
	}

	e.metadata.set(e.isupport.IsChannel(target), target, key, visibility, valPtr)
}

// --- NAMES / TOPIC replies -------------------------------------------------

func (e *Engine) handleNamreply(msg Message) {
	if len(msg.Params) < 4 {
		return
	}
	channel := msg.Params[2]
	trailing := msg.Params[3]
	c := e.getOrCreateChannel(channel)

	for _, entry := range ParseNameReply(trailing, e.isupport.PrefixSymbols()) {
		u := e.users.Update(&User{Nick: entry.Nick, Ident: entry.Ident, Host: entry.Host})
		letters := e.isupport.symbolsToLetters(entry.PowerLevel)
		c.Members[e.casemap(u.Nick)] = &Member{Nick: u.Nick, PowerLevel: letters}
	}
}

func (e *Engine) handleEndofnames(msg Message) {
	channel := paramAt(msg.Params, 1)
	if c, ok := e.channels[e.casemap(channel)]; ok {
		c.namesComplete = true
	}
	if e.cb.OnNamesReply != nil {
		e.cb.OnNamesReply(NamesReplyEvent{Channel: channel, End: true})
	}
}

func (e *Engine) handleRplTopic(msg Message) {
	channel := paramAt(msg.Params, 1)
	topic := paramAt(msg.Params, 2)
	if c, ok := e.channels[e.casemap(channel)]; ok {
		c.Topic = topic
	}
	if e.cb.OnTopicReply != nil {
		e.cb.OnTopicReply(TopicChangeEvent{Channel: channel, Topic: topic})
	}
}

func (e *Engine) handleRplNotopic(msg Message) {
	channel := paramAt(msg.Params, 1)
	if c, ok := e.channels[e.casemap(channel)]; ok {
		c.Topic = ""
	}
	if e.cb.OnTopicReply != nil {
		e.cb.OnTopicReply(TopicChangeEvent{Channel: channel, Topic: ""})
	}
}

func (e *Engine) handleRplTopicWhoTime(msg Message) {
	if len(msg.Params) < 2 {
		return
	}
	sub := msg.Params[1:]
	channel := paramAt(sub, 0)
	who, at, ok := topicWhoTime(sub)
	if !ok {
		return
	}
	whoPrefix := ParsePrefix(who)
	if c, ok := e.channels[e.casemap(channel)]; ok {
		c.TopicWho = whoPrefix
		c.TopicTime = at.Unix()
	}
	if e.cb.OnTopicWhoTimeReply != nil {
		e.cb.OnTopicWhoTimeReply(TopicWhoTimeEvent{Channel: channel, Who: whoPrefix, SetAt: at})
	}
}

// --- WHO / WHOX ------------------------------------------------------------

func (e *Engine) handleWhoReply(msg Message) {
	if len(msg.Params) < 6 {
		return
	}
	ident := msg.Params[2]
	host := msg.Params[3]
	nick := msg.Params[5]

	u := e.users.Update(&User{Nick: nick, Ident: ident, Host: host})
	if e.IsMe(nick) {
		e.host = u.Host
	}
}

// handleWhox parses an RPL_WHOSPCRPL (354) reply to the "%uihsnflar" field
// mask this engine requests (Who, §4.11): own-nick, ident, ip, host,
// server, nick, flags, idle time, account, realname, in that order.
func (e *Engine) handleWhox(msg Message) {
	if len(msg.Params) < 9 {
		return
	}
	ident := msg.Params[1]
	host := msg.Params[3]
	nick := msg.Params[5]
	flags := msg.Params[6]
	account := msg.Params[8]
	if account == "0" {
		account = ""
	}
	real := paramAt(msg.Params, 9)

	u := e.users.Update(&User{Nick: nick, Ident: ident, Host: host, Account: account, Real: real})
	if e.IsMe(nick) {
		e.host = u.Host
	}

	if e.cb.OnWHOXReply != nil {
		e.cb.OnWHOXReply(WHOXReplyEvent{User: u, Flags: flags})
	}
}

// --- AWAY / ISON -----------------------------------------------------------

func (e *Engine) handleAwayNumeric(msg Message) {
	nick := paramAt(msg.Params, 1)
	message := paramAt(msg.Params, 2)

	if u, ok := e.users.Get(nick); ok {
		u.Away = true
		u.AwayMsg = message
	}

	if e.cb.OnOtherUserAway != nil {
		e.cb.OnOtherUserAway(AwayEvent{Nick: nick, Message: message})
	}
}

func (e *Engine) handleIson(msg Message) {
	list := paramAt(msg.Params, 1)
	for _, nick := range strings.Fields(list) {
		if e.cb.OnIsOn != nil {
			e.cb.OnIsOn(IsOnEvent{Nick: nick})
		}
	}
}

// --- WHOIS aggregation (C9) -------------------------------------------------

func (e *Engine) handleWhoisNumeric(msg Message) {
	if len(msg.Params) < 2 {
		return
	}
	nick := msg.Params[1]
	r := e.whois.entry(nick)
	sub := msg.Params[1:]

	switch msg.Command {
	case rplWhoisuser:
		if user, host, real, ok := whoisUserFields(sub); ok {
			r.Username, r.Hostname, r.Realname = user, host, real
		}
	case rplWhoisserver:
		r.ConnectedTo = paramAt(msg.Params, 2)
	case rplWhoisoperator:
		r.IsOper = true
	case rplWhoisidle:
		if idle, signon, ok := whoisIdleFields(sub); ok {
			r.IdleTime = idle
			if !signon.IsZero() {
				r.ConnectedTime = signon
			}
		}
	case rplWhoischannels:
		symbols := e.isupport.PrefixSymbols()
		for _, tok := range strings.Fields(paramAt(msg.Params, 2)) {
			name := strings.TrimLeft(tok, symbols)
			power := tok[:len(tok)-len(name)]
			r.Channels[name] = power
		}
	case rplWhoisaccount:
		r.Account = paramAt(msg.Params, 2)
		r.IsRegistered = true
	case rplWhoisregnickSvc:
		// informational text only ("connecting from ..."); no dedicated
		// field on WhoisResponse carries it.
	case rplWhoissecure:
		r.IsSecure = true
	case rplWhoisregnick:
		r.IsRegistered = true
	}
}

func (e *Engine) handleEndOfWhois(msg Message) {
	nick := paramAt(msg.Params, 1)
	r, ok := e.whois.end(nick)
	if !ok {
		e.emitError(ErrUnexpected, SeverityFail, rplEndofwhois, "unexpected end of whois for "+nick)
		return
	}
	if e.cb.OnWhois != nil {
		user, _ := e.users.Get(nick)
		e.cb.OnWhois(WhoisEvent{User: user, Response: r})
	}
}

// --- LIST --------------------------------------------------------------

func (e *Engine) handleList(msg Message) {
	if len(msg.Params) < 2 {
		return
	}
	channel, visible, topic, ok := listReply(msg.Params[1:])
	if !ok {
		return
	}
	ev := ListEvent{Channel: channel, Visible: visible, Topic: topic}
	if e.cb.OnList != nil {
		e.cb.OnList(ev)
	}
	if e.cb.OnChannelListUpdate != nil {
		e.cb.OnChannelListUpdate(ev)
	}
}

// --- MONITOR / WATCH -----------------------------------------------------

func (e *Engine) handleMonitorOnlineOffline(msg Message) {
	list := paramAt(msg.Params, 1)
	online := msg.Command == rplMonOnline
	for _, tok := range strings.Split(list, ",") {
		if tok == "" {
			continue
		}
		nick := ParsePrefix(tok).Name
		if online {
			if e.cb.OnUserOnline != nil {
				e.cb.OnUserOnline(UserOnlineEvent{Nick: nick})
			}
		} else if e.cb.OnUserOffline != nil {
			e.cb.OnUserOffline(UserOfflineEvent{Nick: nick})
		}
	}
}

func (e *Engine) handleWatchLogon(msg Message) {
	if len(msg.Params) < 2 {
		return
	}
	nick, at, ok := watchLogon(msg.Params[1:])
	if !ok {
		return
	}
	if e.cb.OnUserOnline != nil {
		e.cb.OnUserOnline(UserOnlineEvent{Nick: nick, Time: at})
	}
}

// --- METADATA numerics (C10) ----------------------------------------------

// handleMetadataNumeric applies RPL_WHOISKEYVALUE (760, always carries a
// value) and RPL_KEYVALUE (761, value may be entirely absent to signal an
// unset key) to the metadata store (§4.10).
func (e *Engine) handleMetadataNumeric(msg Message) {
	if len(msg.Params) < 4 {
		return
	}
	target := msg.Params[1]
	if target == "*" {
		target = e.nick
	}
	key := msg.Params[2]
	visibility := msg.Params[3]

	var valPtr *string
	if len(msg.Params) > 4 {
		v := msg.Params[4]
		valPtr = &v
	}

	e.metadata.set(e.isupport.IsChannel(target), target, key, visibility, valPtr)
}

// handleMetadataSyncLater reports ERR_METADATASYNCLATER (774) as a
// waitAndRetry error, carrying the server's retry-after hint when present
// (§4.10, §7).
func (e *Engine) handleMetadataSyncLater(msg Message) {
	if e.cb.OnError == nil {
		return
	}
	var retry *MetadataRetry
	if len(msg.Params) > 2 {
		if secs, err := strconv.Atoi(msg.Params[2]); err == nil {
			retry = &MetadataRetry{After: time.Duration(secs) * time.Second}
		}
	}
	e.cb.OnError(ErrorEvent{
		Kind:     ErrWaitAndRetry,
		Severity: SeverityFail,
		Code:     errMetadatasynclater,
		Message:  strings.Join(tailParams(msg.Params, 1), " "),
		Retry:    retry,
	})
}
