package irc

import (
	"sort"
	"strings"
	"testing"
)

// fakeSink captures every line the engine writes, in order, for assertions
// against the literal outgoing sequences in spec §8's scenarios.
type fakeSink struct {
	lines []string
}

func (s *fakeSink) Write(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

func pushAll(t *testing.T, e *Engine, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := e.Push(line); err != nil {
			t.Fatalf("Push(%q): %v", line, err)
		}
	}
}

// sortedFields splits a CAP REQ/LS argument list and sorts it, so assertions
// don't depend on Go's randomized map iteration order when the engine
// requests multiple capabilities in one REQ.
func sortedFields(s string) []string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return fields
}

// TestRegistrationS1 is the literal S1 scenario from spec §8, and exercises
// property 6 (onConnect fires exactly once, after negotiation settles and
// RPL_WELCOME is observed).
func TestRegistrationS1(t *testing.T) {
	sink := &fakeSink{}
	connects := 0
	e := NewEngine(sink, Identity{Nickname: "someone", Username: "someone", Realname: "someone"}, Callbacks{
		OnConnect: func(RegisteredEvent) { connects++ },
	})

	pushAll(t, e,
		":localhost CAP * LS :multi-prefix sasl",
		":localhost CAP * ACK :multi-prefix",
		":localhost 001 someone :Welcome",
	)

	if len(sink.lines) < 5 {
		t.Fatalf("expected at least 5 outgoing lines, got %#v", sink.lines)
	}
	if sink.lines[0] != "CAP LS 302" {
		t.Errorf("line 0 = %q", sink.lines[0])
	}
	if sink.lines[1] != "NICK someone" {
		t.Errorf("line 1 = %q", sink.lines[1])
	}
	if sink.lines[2] != "USER someone 0 * :someone" {
		t.Errorf("line 2 = %q", sink.lines[2])
	}
	if !strings.HasPrefix(sink.lines[3], "CAP REQ :") {
		t.Errorf("line 3 = %q, want a CAP REQ", sink.lines[3])
	}
	got := sortedFields(strings.TrimPrefix(sink.lines[3], "CAP REQ :"))
	want := []string{"multi-prefix", "sasl"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("requested caps = %#v, want %#v", got, want)
	}
	if sink.lines[4] != "CAP END" {
		t.Errorf("line 4 = %q", sink.lines[4])
	}

	if connects != 1 {
		t.Errorf("onConnect fired %d times, want 1", connects)
	}
	if !e.IsRegistered() {
		t.Error("expected IsRegistered() == true")
	}
}

// TestSASLPlainS6 is the literal S6 scenario from spec §8.
func TestSASLPlainS6(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{
		Nickname:       "jilles",
		Username:       "jilles",
		Realname:       "jilles",
		SASLMechanisms: []SASLMechanism{NewSASLPlain("jilles", "sesame")},
	}, Callbacks{})

	pushAll(t, e,
		":localhost CAP * LS :sasl=EXTERNAL,PLAIN",
		":localhost CAP * ACK :sasl",
		":localhost AUTHENTICATE +",
	)

	var authLines []string
	for _, l := range sink.lines {
		if strings.HasPrefix(l, "AUTHENTICATE") {
			authLines = append(authLines, l)
		}
	}
	if len(authLines) < 2 {
		t.Fatalf("expected at least 2 AUTHENTICATE lines, got %#v", sink.lines)
	}
	if authLines[0] != "AUTHENTICATE PLAIN" {
		t.Errorf("first AUTHENTICATE = %q", authLines[0])
	}
	if authLines[1] != "AUTHENTICATE amlsbGVzAGppbGxlcwBzZXNhbWU=" {
		t.Errorf("second AUTHENTICATE = %q", authLines[1])
	}

	if e.IsAuthenticated() {
		t.Fatal("should not be authenticated before 903")
	}
	pushAll(t, e, ":localhost 903 jilles :SASL authentication successful")
	if !e.IsAuthenticated() {
		t.Error("expected IsAuthenticated() == true after 903")
	}
}

// TestWhoisAggregationS4 is the literal S4 scenario from spec §8, and
// exercises property 5 (no onWhois before 318, exactly one per matching 318).
func TestWhoisAggregationS4(t *testing.T) {
	sink := &fakeSink{}
	var got *WhoisResponse
	fired := 0
	e := NewEngine(sink, Identity{Nickname: "someone"}, Callbacks{
		OnWhois: func(ev WhoisEvent) { fired++; got = ev.Response },
	})

	pushAll(t, e,
		":server 311 someone someoneElse someUsername someHostname * :Some Real Name",
		":server 312 someone someoneElse example.net :serverinfo",
		":server 313 someone someoneElse :is an IRC operator",
		":server 317 someone someoneElse 1000 1500000000 :seconds idle, signon time",
	)
	if fired != 0 {
		t.Fatalf("onWhois fired before 318: %d times", fired)
	}

	pushAll(t, e,
		":server 671 someone someoneElse :is using a secure connection",
		":server 307 someone someoneElse :has identified for this nick",
		":server 330 someone someoneElse someoneElseAccount :is logged in as",
		":server 319 someone someoneElse :+#test #test2",
		":server 318 someone someoneElse :End of WHOIS list",
	)

	if fired != 1 {
		t.Fatalf("onWhois fired %d times, want 1", fired)
	}
	if got == nil {
		t.Fatal("no WhoisResponse captured")
	}
	if !got.IsOper || !got.IsSecure || !got.IsRegistered {
		t.Errorf("flags = oper:%v secure:%v registered:%v", got.IsOper, got.IsSecure, got.IsRegistered)
	}
	if got.Account != "someoneElseAccount" {
		t.Errorf("account = %q", got.Account)
	}
	if got.IdleTime.Seconds() != 1000 {
		t.Errorf("idleTime = %v", got.IdleTime)
	}
	wantTime := got.ConnectedTime.Format("2006-01-02T15:04:05Z")
	if wantTime != "2017-07-14T02:40:00Z" {
		t.Errorf("connectedTime = %v", got.ConnectedTime)
	}
	if got.Channels["#test"] != "+" || got.Channels["#test2"] != "" {
		t.Errorf("channels = %#v", got.Channels)
	}
}

// TestMetadataSubscriptionLimitS5 is the literal S5 scenario from spec §8.
func TestMetadataSubscriptionLimitS5(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{Nickname: "someone"}, Callbacks{})

	pushAll(t, e,
		":localhost CAP * LS :draft/metadata-2=maxsub=50,maxkey=25",
		":localhost CAP * ACK :draft/metadata-2",
		":server 770 someone avatar website foo bar baz",
	)

	keys := e.metadata.subscribedKeys()
	if len(keys) != 5 {
		t.Fatalf("subscribed = %#v", keys)
	}
	if e.metadata.maxSub != 50 || e.metadata.maxKey != 25 {
		t.Errorf("maxSub=%d maxKey=%d", e.metadata.maxSub, e.metadata.maxKey)
	}

	pushAll(t, e, ":server 771 someone bar foo")
	keys = e.metadata.subscribedKeys()
	if len(keys) != 3 {
		t.Fatalf("after unsub: %#v", keys)
	}
}

func TestNickRenamePropagatesToChannels(t *testing.T) {
	sink := &fakeSink{}
	var nickEvents []NickEvent
	e := NewEngine(sink, Identity{Nickname: "me"}, Callbacks{
		OnNick: func(ev NickEvent) { nickEvents = append(nickEvents, ev) },
	})

	pushAll(t, e,
		":A!a@host JOIN #chan",
		":A!a@host NICK B",
	)

	c, ok := e.Channel("#chan")
	if !ok {
		t.Fatal("expected #chan to be known")
	}
	if _, ok := c.Members[e.casemap("A")]; ok {
		t.Error("old nick A should no longer be a member")
	}
	if _, ok := c.Members[e.casemap("B")]; !ok {
		t.Error("new nick B should be a member")
	}
	if _, ok := e.UserByNick("A"); ok {
		t.Error("address book should no longer resolve A")
	}
	if u, ok := e.UserByNick("B"); !ok || u.Ident != "a" {
		t.Errorf("address book B = %+v, %v", u, ok)
	}
	if len(nickEvents) != 1 || nickEvents[0].FormerNick != "A" || nickEvents[0].NewNick != "B" {
		t.Errorf("nickEvents = %#v", nickEvents)
	}
}

func TestQuitRemovesFromAllChannels(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{Nickname: "me"}, Callbacks{})

	pushAll(t, e,
		":A!a@host JOIN #one",
		":A!a@host JOIN #two",
		":A!a@host QUIT :bye",
	)

	for _, name := range []string{"#one", "#two"} {
		c, ok := e.Channel(name)
		if !ok {
			t.Fatalf("%s should still be known", name)
		}
		if _, ok := c.Members[e.casemap("A")]; ok {
			t.Errorf("%s should no longer have A as a member", name)
		}
	}
	if _, ok := e.UserByNick("A"); ok {
		t.Error("address book should have invalidated A on quit")
	}
}

func TestSelfPartRemovesChannel(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{Nickname: "me"}, Callbacks{})

	pushAll(t, e,
		":me!m@host JOIN #chan",
		":me!m@host PART #chan :leaving",
	)

	if _, ok := e.Channel("#chan"); ok {
		t.Error("self-part should remove the channel from the engine")
	}
}

func TestModeAppliesMembershipPrefix(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{Nickname: "me"}, Callbacks{})

	pushAll(t, e,
		":localhost 005 me PREFIX=(ov)@+ CHANMODES=eIb,k,l,imnpst :are supported by this server",
		":A!a@host JOIN #chan",
		":op!o@host MODE #chan +o A",
	)

	c, _ := e.Channel("#chan")
	m := c.Members[e.casemap("A")]
	if m == nil || m.PowerLevel != "o" {
		t.Fatalf("member A = %+v", m)
	}

	pushAll(t, e, ":op!o@host MODE #chan -o A")
	if m.PowerLevel != "" {
		t.Errorf("power level after -o = %q", m.PowerLevel)
	}
}

func TestInvalidSessionRejectsFurtherPush(t *testing.T) {
	sink := &fakeSink{}
	e := NewEngine(sink, Identity{Nickname: "me"}, Callbacks{})
	pushAll(t, e, ":me!m@host QUIT :bye")

	if !e.IsInvalid() {
		t.Fatal("self QUIT observed should invalidate the session")
	}
	if err := e.Push("PING x"); err != errSessionInvalid {
		t.Errorf("Push after invalidation = %v, want errSessionInvalid", err)
	}
}
