package irc

import "testing"

func TestISupportApplyPrefixAndChanmodes(t *testing.T) {
	is := NewISupport()
	is.Apply([]string{
		"PREFIX=(ohv)@%+",
		"CHANMODES=eIb,k,l,imnpst",
		"CASEMAPPING=ascii",
		"CHANTYPES=#&",
		"STATUSMSG=@+",
		"NICKLEN=30",
	}, map[string]struct{}{})

	if prefix, ok := is.PrefixForMode('o'); !ok || prefix != '@' {
		t.Errorf("PrefixForMode('o') = %q, %v", prefix, ok)
	}
	if letter, ok := is.LetterForPrefix('%'); !ok || letter != 'h' {
		t.Errorf("LetterForPrefix('%%') = %q, %v", letter, ok)
	}
	if got := is.symbolsToLetters("@+"); got != "ov" {
		t.Errorf("symbolsToLetters(\"@+\") = %q, want \"ov\"", got)
	}
	if !is.IsChannel("#foo") || is.IsChannel("foo") {
		t.Error("IsChannel classification wrong")
	}
	cats := is.ChannelModeCategories()
	if cats['b'] != ModeCategoryA || cats['k'] != ModeCategoryB || cats['l'] != ModeCategoryC {
		t.Errorf("ChannelModeCategories = %#v", cats)
	}
	if cats['o'] != ModeCategoryB {
		t.Errorf("PREFIX mode letter 'o' should be category B, got %v", cats['o'])
	}
	if is.Casemap("FOO") != "foo" {
		t.Errorf("Casemap(FOO) = %q", is.Casemap("FOO"))
	}
}

func TestISupportDefaultsBeforeApply(t *testing.T) {
	is := NewISupport()
	if prefix, ok := is.PrefixForMode('o'); !ok || prefix != '@' {
		t.Errorf("default PrefixForMode('o') = %q, %v", prefix, ok)
	}
	if !is.IsChannel("#default") {
		t.Error("default CHANTYPES should include '#'")
	}
}

func TestISupportNegatedToken(t *testing.T) {
	is := NewISupport()
	is.Apply([]string{"WHOX"}, map[string]struct{}{})
	if !is.WHOX() {
		t.Fatal("expected WHOX to be set")
	}
	is.Apply([]string{"-WHOX"}, map[string]struct{}{})
	if _, ok := is.Raw("WHOX"); ok {
		t.Error("expected -WHOX to remove the raw token")
	}
}

func TestISupportLegacyProtoctlFallback(t *testing.T) {
	is := NewISupport()
	sent := is.Apply([]string{"NAMESX"}, map[string]struct{}{})
	if len(sent) != 1 || sent[0].token != "NAMESX" {
		t.Fatalf("expected a NAMESX legacy protoctl, got %#v", sent)
	}

	// Once multi-prefix is negotiated, the legacy fallback must not fire.
	is2 := NewISupport()
	sent2 := is2.Apply([]string{"NAMESX"}, map[string]struct{}{"multi-prefix": {}})
	if len(sent2) != 0 {
		t.Errorf("expected no legacy protoctl when multi-prefix is enabled, got %#v", sent2)
	}
}
