package irc

import "encoding/base64"

// saslChunkLen is the maximum length, in encoded bytes, of a single
// AUTHENTICATE payload line (§4.6 point 4).
const saslChunkLen = 400

// SASLMechanism is a client-side SASL authenticator. Name identifies the
// mechanism to the server; Respond is called once per inbound server
// challenge (already base64-decoded, "" for an empty "+" challenge) and
// returns the next client payload to send and whether the mechanism is done
// (has no more payloads to send after this one).
type SASLMechanism interface {
	Name() string
	Respond(challenge []byte) (payload []byte, done bool, err error)
}

// SASLPlain implements the PLAIN mechanism (§4.6): a single payload of
// "authzid\0authcid\0password".
type SASLPlain struct {
	Authzid  string
	Authcid  string
	Password string

	sent bool
}

func NewSASLPlain(authcid, password string) *SASLPlain {
	return &SASLPlain{Authcid: authcid, Password: password}
}

func (a *SASLPlain) Name() string { return "PLAIN" }

func (a *SASLPlain) Respond(challenge []byte) ([]byte, bool, error) {
	if a.sent {
		return nil, true, nil
	}
	a.sent = true
	authzid := a.Authzid
	if authzid == "" {
		authzid = a.Authcid
	}
	payload := []byte(authzid + "\x00" + a.Authcid + "\x00" + a.Password)
	return payload, true, nil
}

// SASLExternal implements the EXTERNAL mechanism (§4.6): a single empty
// payload, authenticating via the already-established (TLS client
// certificate) channel.
type SASLExternal struct {
	sent bool
}

func NewSASLExternal() *SASLExternal { return &SASLExternal{} }

func (a *SASLExternal) Name() string { return "EXTERNAL" }

func (a *SASLExternal) Respond(challenge []byte) ([]byte, bool, error) {
	if a.sent {
		return nil, true, nil
	}
	a.sent = true
	return []byte{}, true, nil
}

// saslOutcome is the terminal result of a SASL exchange.
type saslOutcome int

const (
	saslPending saslOutcome = iota
	saslSucceeded
	saslFailed
)

// saslState drives the multi-line AUTHENTICATE exchange described in §4.6.
// It owns exactly one SASLMechanism for the lifetime of one attempt.
type saslState struct {
	mech    SASLMechanism
	active  bool
	outcome saslOutcome

	// partial accumulates base64 chunks of an inbound multi-line
	// challenge until a short (<400 byte) chunk or a bare "+" ends it.
	partial []byte
}

func newSaslState() *saslState {
	return &saslState{}
}

// start selects mech (already chosen by the caller against the server's
// advertised mechanism list, or the client's first mechanism if the server
// list was empty per legacy sasl 3.1) and returns the AUTHENTICATE command
// to send.
func (s *saslState) start(mech SASLMechanism) Message {
	s.mech = mech
	s.active = true
	s.outcome = saslPending
	s.partial = nil
	return NewMessage("AUTHENTICATE", mech.Name())
}

// feedChunk accumulates one inbound AUTHENTICATE chunk. When the challenge
// is complete, it returns the decoded payload and ok=true.
func (s *saslState) feedChunk(chunk string) (decoded []byte, ok bool) {
	if chunk == "+" {
		decoded = s.partial
		s.partial = nil
		return decoded, true
	}

	raw, err := base64.StdEncoding.DecodeString(chunk)
	if err != nil {
		return nil, false
	}
	s.partial = append(s.partial, raw...)

	if len(chunk) < saslChunkLen {
		decoded = s.partial
		s.partial = nil
		return decoded, true
	}

	return nil, false
}

// respond runs the active mechanism against a decoded challenge and
// renders the resulting payload into one or more AUTHENTICATE commands
// (chunked per §4.6 point 4).
func (s *saslState) respond(challenge []byte) ([]Message, error) {
	payload, done, err := s.mech.Respond(challenge)
	if err != nil {
		return []Message{NewMessage("AUTHENTICATE", "*")}, err
	}
	_ = done

	encoded := base64.StdEncoding.EncodeToString(payload)
	var msgs []Message
	for len(encoded) > 0 {
		n := saslChunkLen
		if n > len(encoded) {
			n = len(encoded)
		}
		chunk := encoded[:n]
		encoded = encoded[n:]
		msgs = append(msgs, NewMessage("AUTHENTICATE", chunk))
	}
	if len(msgs) == 0 {
		msgs = append(msgs, NewMessage("AUTHENTICATE", "+"))
	} else if len(msgs[len(msgs)-1].Params[0]) == saslChunkLen {
		msgs = append(msgs, NewMessage("AUTHENTICATE", "+"))
	}
	return msgs, nil
}

// finish records the terminal numeric's outcome and ends the exchange.
func (s *saslState) finish(success bool) {
	s.active = false
	if success {
		s.outcome = saslSucceeded
	} else {
		s.outcome = saslFailed
	}
}

// inFlight reports whether a SASL exchange is still in progress (gates CAP
// END per invariant 3).
func (s *saslState) inFlight() bool {
	return s.active
}
