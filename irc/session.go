package irc

import (
	"strings"

	"golang.org/x/time/rate"
)

// Sink is the output side of the engine's I/O boundary (§6): something
// that accepts fully-formed protocol lines (without CR/LF — the sink adds
// its own framing) one at a time, in call order.
type Sink interface {
	Write(line string) error
}

// Flusher is an optional capability of a Sink: if present, the engine
// calls Flush after every line it writes (§6).
type Flusher interface {
	Flush() error
}

// Identity is the self-declared identity used at registration (§6).
type Identity struct {
	Nickname string
	Username string
	Realname string
	Password string

	// SASLMechanisms lists the client's mechanisms in preference order.
	// The driver picks the first one the server also advertises, or the
	// client's first mechanism if the server's list is empty (legacy
	// sasl 3.1) — §4.6 point 1.
	SASLMechanisms []SASLMechanism
}

// Engine is the I/O-agnostic IRC client protocol state machine. It owns no
// socket: the embedder feeds it lines via Push and drains its formatted
// commands via the Sink supplied at construction. An Engine must not be
// used from more than one goroutine concurrently — its two entry points,
// Push and the command methods in format.go, are synchronous and must be
// serialized by the caller (§5).
type Engine struct {
	sink Sink
	cb   Callbacks

	identity Identity
	budget   *rate.Limiter

	invalid       bool
	registered    bool
	authenticated bool

	nick    string
	nickCf  string
	user    string
	real    string
	host    string
	account string
	away    bool
	awayMsg string

	isupport *ISupport
	cap      *capState
	sasl     *saslState
	batches  *batchFramer
	users    *AddressBook
	channels map[string]*Channel
	whois    *whoisAggregator
	metadata *metadataStore

	sentProtoctl map[string]struct{}
}

// NewEngine constructs an Engine and immediately queues the registration
// burst (CAP LS, optional PASS, NICK, USER) through sink, as senpai's
// NewSession does for its own registration burst.
func NewEngine(sink Sink, identity Identity, cb Callbacks) *Engine {
	e := &Engine{
		sink:         sink,
		cb:           cb,
		identity:     identity,
		budget:       newOutgoingBudget(),
		nick:         identity.Nickname,
		user:         identity.Username,
		real:         identity.Realname,
		isupport:     NewISupport(),
		cap:          newCapState(),
		sasl:         newSaslState(),
		batches:      newBatchFramer(),
		channels:     map[string]*Channel{},
		sentProtoctl: map[string]struct{}{},
	}
	e.users = newAddressBook(e.casemap)
	e.whois = newWhoisAggregator(e.casemap)
	e.metadata = newMetadataStore(e.casemap)
	e.nickCf = e.casemap(e.nick)

	e.CapLS()
	if identity.Password != "" {
		e.Pass(identity.Password)
	}
	e.Nick(e.nick)
	e.User(e.user, e.real)

	return e
}

// casemap is the live case-folding function: it reads e.isupport on every
// call, so the method value captured once at construction time always
// reflects the negotiated CASEMAPPING (§4.4).
func (e *Engine) casemap(name string) string { return e.isupport.Casemap(name) }

// IsRegistered reports whether RPL_WELCOME has been observed.
func (e *Engine) IsRegistered() bool { return e.registered }

// IsInvalid reports whether the session has been invalidated (self QUIT
// observed, or Quit called) — further Push calls are a programmer error.
func (e *Engine) IsInvalid() bool { return e.invalid }

// IsAuthenticated reports whether the SASL exchange (if any) completed with
// RPL_SASLSUCCESS (§4.6 point 5).
func (e *Engine) IsAuthenticated() bool { return e.authenticated }

// CurrentNick returns the engine's current nickname.
func (e *Engine) CurrentNick() string { return e.nick }

// IsMe reports whether nick (compared case-insensitively) is this session.
func (e *Engine) IsMe(nick string) bool { return e.nickCf == e.casemap(nick) }

// ISupport exposes the negotiated server-parameter store.
func (e *Engine) ISupport() *ISupport { return e.isupport }

// Channel returns the known Channel for name, if joined.
func (e *Engine) Channel(name string) (*Channel, bool) {
	c, ok := e.channels[e.casemap(name)]
	return c, ok
}

// UserByNick returns the known User for nick, if any.
func (e *Engine) UserByNick(nick string) (*User, bool) { return e.users.Get(nick) }

func (e *Engine) getOrCreateChannel(name string) *Channel {
	key := e.casemap(name)
	c, ok := e.channels[key]
	if !ok {
		c = newChannel(name)
		e.channels[key] = c
	}
	return c
}

// Push parses one line (already stripped of CR/LF; the embedder discards
// anything after the first CR/LF per §6's line-framing contract) and
// drives it through the batch framer and dispatcher, invoking any
// callbacks the line's effects trigger. It never blocks and spawns no
// goroutine (§5).
func (e *Engine) Push(line string) error {
	if e.invalid {
		return errSessionInvalid
	}

	msg, err := ParseMessage(line)
	if err != nil {
		if e.cb.OnError != nil {
			e.cb.OnError(ErrorEvent{Kind: ErrMalformed, Severity: SeverityFail, Message: err.Error()})
		}
		return nil
	}

	for _, unit := range e.batches.Feed(msg) {
		if unit.Message != nil {
			e.dispatchMessage(*unit.Message, nil)
		}
		if unit.Batch != nil {
			e.dispatchBatch(unit.Batch)
		}
	}
	return nil
}

// dispatchBatch walks a closed batch tree depth-first in arrival order
// (property 2): a nested batch's lines are dispatched in the position its
// opener occupied among its parent's direct lines.
func (e *Engine) dispatchBatch(b *Batch) {
	for _, entry := range b.Entries {
		if entry.Nested != nil {
			e.dispatchBatch(entry.Nested)
			continue
		}
		e.dispatchMessage(*entry.Message, b)
	}
}

// dispatchMessage implements the fixed prologue every completed unit goes
// through before its per-verb handler runs (§4.8 point 1-4): compute
// metadata, fold the account tag onto the source user, upsert the source
// into the address book, fire onRaw, then hand off to handle.
func (e *Engine) dispatchMessage(msg Message, batch *Batch) {
	meta := MessageMetadata{Raw: msg.Raw, Batch: batch, Tags: msg.Tags, Time: msg.TimeOrNow()}

	var source *User
	if msg.Prefix != nil && !msg.Prefix.IsServer() {
		incoming := &User{Nick: msg.Prefix.Name, Ident: msg.Prefix.User, Host: msg.Prefix.Host}
		if acct, ok := msg.Tags["account"]; ok && acct != "*" {
			incoming.Account = acct
		}
		source = e.users.Update(incoming)
	}

	if e.cb.OnRaw != nil {
		e.cb.OnRaw(RawEvent{Line: msg.Raw})
	}

	e.handle(msg, meta, source)
}

func (e *Engine) emitError(kind ErrorKind, sev Severity, code, message string) {
	if e.cb.OnError != nil {
		e.cb.OnError(ErrorEvent{Kind: kind, Severity: sev, Code: code, Message: message})
	}
}

func (e *Engine) handle(msg Message, meta MessageMetadata, source *User) {
	switch msg.Command {
	case "PING":
		if len(msg.Params) > 0 {
			e.Pong(msg.Params[0])
		} else {
			e.Pong("")
		}

	case "CAP":
		e.handleCap(msg)

	case "AUTHENTICATE":
		e.handleAuthenticate(msg)

	case "JOIN":
		e.handleJoin(msg, meta, source)
	case "PART":
		e.handlePart(msg, meta, source)
	case "KICK":
		e.handleKick(msg, meta, source)
	case "QUIT":
		e.handleQuit(msg, meta, source)
	case "NICK":
		e.handleNick(msg, meta, source)

	case "MODE":
		e.handleMode(msg, meta, source)
	case "TOPIC":
		e.handleTopic(msg, meta, source)
	case "INVITE":
		e.handleInvite(msg, meta, source)
	case "CHGHOST":
		e.handleChgHost(msg, meta, source)
	case "ACCOUNT":
		e.handleAccount(msg, source)

	case "PRIVMSG", "NOTICE", "TAGMSG":
		e.handleMessageCmd(msg, meta, source)

	case "BATCH":
		// handled entirely by the framer before dispatch.

	case "METADATA":
		e.handleMetadataVerb(msg)

	case "FAIL":
		e.emitError(ErrStandardFail, SeverityFail, paramAt(msg.Params, 1), strings.Join(tailParams(msg.Params, 2), " "))
	case "WARN":
		e.emitError(ErrStandardFail, SeverityWarn, paramAt(msg.Params, 1), strings.Join(tailParams(msg.Params, 2), " "))
	case "NOTE":
		e.emitError(ErrStandardFail, SeverityNote, paramAt(msg.Params, 1), strings.Join(tailParams(msg.Params, 2), " "))

	case "ERROR":
		e.invalid = true

	case rplWelcome:
		e.handleWelcome(msg)
	case rplIsupport:
		if len(msg.Params) > 1 {
			e.handleIsupport(msg.Params[1 : len(msg.Params)-1])
		}
	case rplNamreply:
		e.handleNamreply(msg)
	case rplEndofnames:
		e.handleEndofnames(msg)
	case rplTopic:
		e.handleRplTopic(msg)
	case rplNotopic:
		e.handleRplNotopic(msg)
	case rplTopicwhotime:
		e.handleRplTopicWhoTime(msg)
	case rplWhoreply:
		e.handleWhoReply(msg)
	case rplWhospcrpl:
		e.handleWhox(msg)

	case rplEndofmotd:
		// no data carried; nothing to surface beyond the implicit
		// end of the registration-time MOTD burst.
	case errNomotd:
		e.emitError(ErrNoMOTD, SeverityNote, errNomotd, strings.Join(tailParams(msg.Params, 1), " "))

	case rplAway:
		e.handleAwayNumeric(msg)
	case rplUnaway:
		if e.cb.OnUnAwayReply != nil {
			e.cb.OnUnAwayReply()
		}
		e.away = false
	case rplNowaway:
		if e.cb.OnAwayReply != nil {
			e.cb.OnAwayReply(AwayEvent{Nick: e.nick})
		}
		e.away = true
	case rplIson:
		e.handleIson(msg)

	case rplWhoisuser, rplWhoisserver, rplWhoisoperator, rplWhoisidle, rplWhoischannels,
		rplWhoisaccount, rplWhoisregnickSvc, rplWhoissecure, rplWhoisregnick:
		e.handleWhoisNumeric(msg)
	case rplEndofwhois:
		e.handleEndOfWhois(msg)

	case rplSaslsuccess:
		e.authenticated = true
		e.sasl.finish(true)
		e.maybeEndCapNegotiation()
	case errNicklocked, errSaslfail, errSasltoolong, errSaslaborted:
		e.authenticated = false
		e.sasl.finish(false)
		e.maybeEndCapNegotiation()
	case rplLoggedin:
		if len(msg.Params) > 2 {
			e.account = msg.Params[2]
			if e.cb.OnLogin != nil {
				e.cb.OnLogin(LoginEvent{Nick: e.nick, Account: e.account})
			}
		}
	case rplLoggedout:
		e.account = ""
		if e.cb.OnLogout != nil {
			e.cb.OnLogout(LogoutEvent{Nick: e.nick})
		}

	case rplYoureoper:
		if e.cb.OnYoureOper != nil {
			e.cb.OnYoureOper()
		}
	case rplRehashing:
		if e.cb.OnServerRehashing != nil {
			e.cb.OnServerRehashing(RehashingEvent{ConfigFile: paramAt(msg.Params, 1)})
		}

	case errNopriviledges:
		e.emitError(ErrNoPrivileges, SeverityFail, errNopriviledges, strings.Join(tailParams(msg.Params, 0), " "))
	case errNoprivs:
		e.emitError(ErrNoPrivs, SeverityFail, errNoprivs, strings.Join(tailParams(msg.Params, 1), " "))
	case errNosuchserver:
		e.emitError(ErrNoSuchServer, SeverityFail, errNosuchserver, strings.Join(tailParams(msg.Params, 1), " "))
	case errNonicknamegiven, errErroneusnickname, errNeedmoreparams:
		e.emitError(ErrBadUserInput, SeverityFail, msg.Command, strings.Join(tailParams(msg.Params, 0), " "))

	case rplList:
		e.handleList(msg)
	case rplListend:
		if e.cb.OnList != nil {
			e.cb.OnList(ListEvent{End: true})
		}

	case rplMonOnline, rplMonOffline:
		e.handleMonitorOnlineOffline(msg)
	case rplMonList:
		if e.cb.OnMonitorList != nil {
			e.cb.OnMonitorList(MonitorListEvent{Nicks: msg.Params[1:]})
		}
	case rplEndofmonlist:
		if e.cb.OnMonitorList != nil {
			e.cb.OnMonitorList(MonitorListEvent{End: true})
		}
	case errMonlistfull:
		e.emitError(ErrMonListFull, SeverityFail, errMonlistfull, strings.Join(tailParams(msg.Params, 1), " "))

	case rplWatchOnline:
		e.handleWatchLogon(msg)

	case rplWhoiskeyvalue, rplKeyvalue:
		e.handleMetadataNumeric(msg)
	case errMetadatalimit:
		e.emitError(ErrTooManySubs, SeverityFail, errMetadatalimit, strings.Join(tailParams(msg.Params, 1), " "))
	case errKeynotset:
		e.emitError(ErrKeyNotSet, SeverityFail, errKeynotset, strings.Join(tailParams(msg.Params, 1), " "))
	case rplMetadatasubok:
		e.metadata.subscribe(msg.Params[1:]...)
	case rplMetadataunsubok:
		e.metadata.unsubscribe(msg.Params[1:]...)
	case rplMetadatasubs:
		keys := msg.Params[1:]
		e.metadata.subscribe(keys...)
		if e.cb.OnMetadataSubList != nil {
			e.cb.OnMetadataSubList(MetadataSubListEvent{Keys: keys})
		}
	case errMetadatasynclater:
		e.handleMetadataSyncLater(msg)

	default:
		if IsNumericReply(msg.Command) {
			e.emitError(ErrUnrecognized, ReplySeverity(msg.Command), msg.Command, strings.Join(tailParams(msg.Params, 1), " "))
		} else {
			e.emitError(ErrUnrecognized, SeverityNote, msg.Command, "")
		}
	}
}

func paramAt(params []string, i int) string {
	if i < 0 || i >= len(params) {
		return ""
	}
	return params[i]
}

func tailParams(params []string, from int) []string {
	if from >= len(params) {
		return nil
	}
	return params[from:]
}

// --- registration & CAP --------------------------------------------------

func (e *Engine) handleWelcome(msg Message) {
	if len(msg.Params) > 0 {
		e.nick = msg.Params[0]
		e.nickCf = e.casemap(e.nick)
	}
	e.registered = true
	if e.cb.OnConnect != nil {
		e.cb.OnConnect(RegisteredEvent{Nick: e.nick})
	}
}

func (e *Engine) handleIsupport(tokens []string) {
	sent := e.isupport.Apply(tokens, e.cap.enabled)
	for _, p := range sent {
		if _, done := e.sentProtoctl[p.token]; done {
			continue
		}
		e.sentProtoctl[p.token] = struct{}{}
		e.ProtoCtl(p.token)
	}
}

func (e *Engine) handleCap(msg Message) {
	if len(msg.Params) < 2 {
		return
	}
	sub := strings.ToUpper(msg.Params[1])

	switch sub {
	case "LS":
		e.cap.phase = capNegotiating
		continuing := len(msg.Params) > 2 && msg.Params[2] == "*"
		list := paramAt(msg.Params, 2)
		if continuing {
			list = paramAt(msg.Params, 3)
		}
		caps := ParseCaps(list)
		for _, c := range caps {
			e.cap.available[c.Name] = c.Value
		}
		if e.cb.OnReceiveCapLS != nil {
			e.cb.OnReceiveCapLS(CapEvent{Caps: caps})
		}
		if !continuing {
			e.requestSupportedCaps()
			e.maybeEndCapNegotiation()
		}

	case "LIST":
		if e.cb.OnReceiveCapList != nil {
			e.cb.OnReceiveCapList(CapEvent{Caps: ParseCaps(paramAt(msg.Params, 2))})
		}

	case "ACK":
		caps := ParseCaps(paramAt(msg.Params, 2))
		for _, c := range caps {
			if c.Enable {
				e.cap.enabled[c.Name] = struct{}{}
				e.onCapEnabled(c.Name)
			} else {
				delete(e.cap.enabled, c.Name)
			}
		}
		if e.cb.OnReceiveCapAck != nil {
			e.cb.OnReceiveCapAck(CapEvent{Caps: caps})
		}
		e.cap.outstanding--
		e.maybeEndCapNegotiation()

	case "NAK":
		caps := ParseCaps(paramAt(msg.Params, 2))
		if e.cb.OnReceiveCapNak != nil {
			e.cb.OnReceiveCapNak(CapEvent{Caps: caps})
		}
		e.cap.outstanding--
		e.maybeEndCapNegotiation()

	case "NEW":
		caps := ParseCaps(paramAt(msg.Params, 2))
		var toRequest []string
		for _, c := range caps {
			e.cap.available[c.Name] = c.Value
			if _, ok := SupportedCapabilities[c.Name]; !ok {
				continue
			}
			if _, already := e.cap.enabled[c.Name]; already {
				continue
			}
			toRequest = append(toRequest, c.Name)
		}
		if e.cb.OnReceiveCapNew != nil {
			e.cb.OnReceiveCapNew(CapEvent{Caps: caps})
		}
		if len(toRequest) > 0 {
			e.cap.outstanding++
			e.CapReq(toRequest...)
		}

	case "DEL":
		caps := ParseCaps(paramAt(msg.Params, 2))
		for _, c := range caps {
			delete(e.cap.available, c.Name)
			delete(e.cap.enabled, c.Name)
		}
		if e.cb.OnReceiveCapDel != nil {
			e.cb.OnReceiveCapDel(CapEvent{Caps: caps})
		}
	}
}

// requestSupportedCaps sends a single combined CAP REQ for the
// intersection of what the server advertised and what this engine
// supports (§4.5), and marks one REQ outstanding.
func (e *Engine) requestSupportedCaps() {
	var names []string
	for name := range e.cap.available {
		if _, ok := SupportedCapabilities[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	e.cap.outstanding++
	e.CapReq(names...)
}

// onCapEnabled applies any setup specific to a just-ACKed capability.
func (e *Engine) onCapEnabled(name string) {
	switch name {
	case "sasl":
		e.beginSasl()
	case "draft/metadata-2":
		if v, ok := e.cap.available["draft/metadata-2"]; ok {
			e.metadata.applyCapValue(v)
		}
	}
}

// maybeEndCapNegotiation sends CAP END once every outstanding REQ has
// settled and no SASL exchange is in flight (§4.5, invariant 3).
func (e *Engine) maybeEndCapNegotiation() {
	if e.cap.phase == capDone {
		return
	}
	if e.cap.outstanding > 0 || e.sasl.inFlight() {
		return
	}
	e.cap.phase = capDone
	e.CapEnd()
}

func (e *Engine) beginSasl() {
	if len(e.identity.SASLMechanisms) == 0 {
		return
	}
	serverList := strings.Split(e.cap.available["sasl"], ",")
	mech := e.identity.SASLMechanisms[0]
	if e.cap.available["sasl"] != "" {
		for _, candidate := range e.identity.SASLMechanisms {
			if containsFold(serverList, candidate.Name()) {
				mech = candidate
				break
			}
		}
	}
	e.send(e.sasl.start(mech))
}

func containsFold(list []string, name string) bool {
	for _, l := range list {
		if strings.EqualFold(strings.TrimSpace(l), name) {
			return true
		}
	}
	return false
}

func (e *Engine) handleAuthenticate(msg Message) {
	if !e.sasl.inFlight() || len(msg.Params) == 0 {
		return
	}
	decoded, ok := e.sasl.feedChunk(msg.Params[0])
	if !ok {
		return
	}
	msgs, err := e.sasl.respond(decoded)
	if err != nil {
		e.sasl.finish(false)
		e.maybeEndCapNegotiation()
		return
	}
	for _, m := range msgs {
		e.send(m)
	}
}
