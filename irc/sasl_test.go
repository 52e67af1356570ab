package irc

import "testing"

func TestSASLPlainRespond(t *testing.T) {
	mech := NewSASLPlain("jilles", "sesame")
	payload, done, err := mech.Respond(nil)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !done {
		t.Error("PLAIN should be done after its single payload")
	}
	if string(payload) != "jilles\x00jilles\x00sesame" {
		t.Errorf("payload = %q", payload)
	}

	// A second call (the server asking again) must not resend.
	payload2, _, _ := mech.Respond(nil)
	if payload2 != nil {
		t.Errorf("second Respond should return nil, got %q", payload2)
	}
}

func TestSASLExternalRespond(t *testing.T) {
	mech := NewSASLExternal()
	payload, done, err := mech.Respond(nil)
	if err != nil || !done || len(payload) != 0 {
		t.Errorf("payload=%q done=%v err=%v", payload, done, err)
	}
}

func TestSaslStateChunking(t *testing.T) {
	s := newSaslState()

	// A long payload to force multi-chunk AUTHENTICATE, plus the "+" terminator.
	long := make([]byte, saslChunkLen*3/4*3) // encodes to 1200 b64 chars
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	// PLAIN's payload is "a\x00a\x00" plus the password: 4+896 = 900 bytes,
	// which encodes to exactly three full 400-char chunks.
	s.start(NewSASLPlain("a", string(long[4:])))
	msgs, err := s.respond(nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	for i, m := range msgs[:len(msgs)-1] {
		if len(m.Params[0]) != saslChunkLen {
			t.Errorf("chunk %d length = %d, want %d", i, len(m.Params[0]), saslChunkLen)
		}
	}
	if msgs[len(msgs)-1].Params[0] != "+" {
		t.Errorf("expected a trailing bare '+' terminator, got %q", msgs[len(msgs)-1].Params[0])
	}
}

func TestSaslStateFeedChunkReassembly(t *testing.T) {
	s := newSaslState()
	s.start(NewSASLExternal())

	full := "aGVsbG8gd29ybGQ=" // "hello world"
	if _, ok := s.feedChunk(full); !ok {
		t.Fatal("a short chunk should complete the challenge immediately")
	}
}

func TestSaslStateFinish(t *testing.T) {
	s := newSaslState()
	s.start(NewSASLPlain("a", "b"))
	if !s.inFlight() {
		t.Fatal("expected inFlight after start")
	}
	s.finish(true)
	if s.inFlight() {
		t.Error("expected not inFlight after finish")
	}
	if s.outcome != saslSucceeded {
		t.Errorf("outcome = %v, want saslSucceeded", s.outcome)
	}
}
