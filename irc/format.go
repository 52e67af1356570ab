package irc

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// errSessionInvalid is returned by every outgoing command method once the
// session has been invalidated (self QUIT observed, or Quit called) — per
// §5, further pushes or sends after invalidation are a programmer error.
var errSessionInvalid = errors.New("irc: session is invalid")

// errSpaceInOperand is returned when an OPER/SQUIT operand contains a
// space, which the wire format cannot represent as a middle parameter
// (§4.11 domain invariants).
var errSpaceInOperand = errors.New("irc: operand must not contain spaces")

// errReasonTooLong is returned when a KICK reason exceeds the server's
// advertised KICKLEN (§4.11 domain invariants).
var errReasonTooLong = errors.New("irc: kick reason exceeds KICKLEN")

// newOutgoingBudget returns the token-bucket limiter backing
// Engine.OutgoingBudget: roughly two messages a second, bursting up
// to 5, the same shape senpai's typing-notification limiter used for a
// single target, generalized here to the whole connection's chatty
// commands (PRIVMSG/NOTICE/TAGMSG).
func newOutgoingBudget() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second/2), 5)
}

// send serializes msg and writes it to the sink, gating the tag prefix on
// whether message-tags was negotiated (§4.11), and mirrors it through
// OnSend for debugging. A sink that is also a Flusher is flushed after the
// line is written.
func (e *Engine) send(msg Message) error {
	if e.invalid {
		return errSessionInvalid
	}
	if len(msg.Tags) != 0 && !e.cap.isEnabled("message-tags") {
		msg.Tags = nil
	}
	line := msg.String()
	if e.cb.OnSend != nil {
		e.cb.OnSend(RawEvent{Line: line})
	}
	if err := e.sink.Write(line); err != nil {
		return err
	}
	if f, ok := e.sink.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// OutgoingBudget exposes the token-bucket limiter tracking this engine's
// chatty outgoing commands (PRIVMSG/NOTICE/TAGMSG). It is advisory only:
// the engine never blocks or drops a send on it (§5 forbids blocking on
// I/O inside the engine) — an embedder that wants real flood control
// should consult Allow() before calling the corresponding command method.
func (e *Engine) OutgoingBudget() *rate.Limiter { return e.budget }

func (e *Engine) CapLS() error   { return e.send(NewMessage("CAP", "LS", "302")) }
func (e *Engine) CapEnd() error  { return e.send(NewMessage("CAP", "END")) }
func (e *Engine) CapList() error { return e.send(NewMessage("CAP", "LIST")) }

func (e *Engine) CapReq(caps ...string) error {
	return e.send(NewMessage("CAP", "REQ", strings.Join(caps, " ")))
}

func (e *Engine) Nick(nick string) error { return e.send(NewMessage("NICK", nick)) }

func (e *Engine) User(user, real string) error {
	return e.send(NewMessage("USER", user, "0", "*", real))
}

func (e *Engine) Pass(password string) error { return e.send(NewMessage("PASS", password)) }

func (e *Engine) Join(channels string, keys string) error {
	if keys == "" {
		return e.send(NewMessage("JOIN", channels))
	}
	return e.send(NewMessage("JOIN", channels, keys))
}

func (e *Engine) Part(channel, reason string) error {
	if reason == "" {
		return e.send(NewMessage("PART", channel))
	}
	return e.send(NewMessage("PART", channel, reason))
}

// Quit sends QUIT and marks the session invalid: per §5, no further Push
// or command calls are permitted afterward.
func (e *Engine) Quit(reason string) error {
	if e.invalid {
		return errSessionInvalid
	}
	err := e.send(NewMessage("QUIT", reason))
	e.invalid = true
	return err
}

func (e *Engine) PrivMsg(target, content string) error {
	e.budget.Allow()
	return e.send(NewMessage("PRIVMSG", target, content))
}

func (e *Engine) Notice(target, content string) error {
	e.budget.Allow()
	return e.send(NewMessage("NOTICE", target, content))
}

func (e *Engine) TagMsg(target string, tags map[string]string) error {
	e.budget.Allow()
	msg := NewMessage("TAGMSG", target)
	for k, v := range tags {
		msg = msg.WithTag(k, v)
	}
	return e.send(msg)
}

func (e *Engine) Topic(channel, topic string) error {
	return e.send(NewMessage("TOPIC", channel, topic))
}

func (e *Engine) Mode(target string, changes []ModeChange) error {
	args := append([]string{target}, FormatModeString(changes)...)
	return e.send(NewMessage("MODE", args...))
}

func (e *Engine) Who(mask string, whox bool) error {
	if whox && e.isupport.WHOX() {
		return e.send(NewMessage("WHO", mask, "%uihsnflar"))
	}
	return e.send(NewMessage("WHO", mask))
}

func (e *Engine) Whois(nick string) error { return e.send(NewMessage("WHOIS", nick)) }

func (e *Engine) Wallops(text string) error { return e.send(NewMessage("WALLOPS", text)) }

func (e *Engine) Kick(channel, nick, reason string) error {
	if kl := e.isupport.KickLen(); kl > 0 && len(reason) > kl {
		return errReasonTooLong
	}
	if reason == "" {
		return e.send(NewMessage("KICK", channel, nick))
	}
	return e.send(NewMessage("KICK", channel, nick, reason))
}

func (e *Engine) Oper(name, password string) error {
	if strings.ContainsRune(name, ' ') {
		return errSpaceInOperand
	}
	return e.send(NewMessage("OPER", name, password))
}

func (e *Engine) Rehash() error { return e.send(NewMessage("REHASH")) }

func (e *Engine) Restart() error { return e.send(NewMessage("RESTART")) }

func (e *Engine) Squit(server, comment string) error {
	if strings.ContainsRune(server, ' ') {
		return errSpaceInOperand
	}
	return e.send(NewMessage("SQUIT", server, comment))
}

func (e *Engine) Version(target string) error {
	if target == "" {
		return e.send(NewMessage("VERSION"))
	}
	return e.send(NewMessage("VERSION", target))
}

func (e *Engine) Admin(target string) error {
	if target == "" {
		return e.send(NewMessage("ADMIN"))
	}
	return e.send(NewMessage("ADMIN", target))
}

func (e *Engine) Away(message string) error {
	if message == "" {
		return e.send(NewMessage("AWAY"))
	}
	return e.send(NewMessage("AWAY", message))
}

func (e *Engine) Ison(nicks ...string) error { return e.send(NewMessage("ISON", nicks...)) }

func (e *Engine) List(channels string) error {
	if channels == "" {
		return e.send(NewMessage("LIST"))
	}
	return e.send(NewMessage("LIST", channels))
}

func (e *Engine) LUsers() error { return e.send(NewMessage("LUSERS")) }

func (e *Engine) Names(channel string) error { return e.send(NewMessage("NAMES", channel)) }

func (e *Engine) Ping(token string) error { return e.send(NewMessage("PING", token)) }

func (e *Engine) Pong(token string) error { return e.send(NewMessage("PONG", token)) }

func (e *Engine) Monitor(subcommand string, targets ...string) error {
	args := append([]string{subcommand}, targets...)
	return e.send(NewMessage("MONITOR", args...))
}

func (e *Engine) Authenticate(payload string) error {
	return e.send(NewMessage("AUTHENTICATE", payload))
}

// Metadata sends one METADATA command. subcommand is one of
// GET/LIST/SET/SUB/UNSUB/SUBS/SYNC/CLEAR (§4.11).
func (e *Engine) Metadata(target, subcommand string, args ...string) error {
	params := append([]string{target, subcommand}, args...)
	return e.send(NewMessage("METADATA", params...))
}

// ProtoCtl sends a legacy PROTOCTL negotiation token (NAMESX/UHNAMES),
// used only when the server advertises the ISUPPORT token but not the
// matching IRCv3 capability (§4.4).
func (e *Engine) ProtoCtl(token string) error {
	return e.send(NewMessage("PROTOCTL", token))
}
