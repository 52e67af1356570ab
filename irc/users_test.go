package irc

import "testing"

// TestAddressBookRename is property 3 from spec §8.
func TestAddressBookRename(t *testing.T) {
	ab := newAddressBook(CasemapRFC1459)
	ab.Update(&User{Nick: "A", Ident: "a", Host: "host.example"})

	u, ok := ab.Rename("A", "B")
	if !ok {
		t.Fatal("Rename reported not found")
	}
	if u.Nick != "B" || u.Ident != "a" || u.Host != "host.example" {
		t.Errorf("renamed user = %+v", u)
	}
	if _, ok := ab.Get("A"); ok {
		t.Error("old nick A should no longer resolve")
	}
	got, ok := ab.Get("B")
	if !ok || got.Ident != "a" {
		t.Errorf("Get(B) = %+v, %v", got, ok)
	}
}

func TestAddressBookUpdateMergesWithoutOverwriting(t *testing.T) {
	ab := newAddressBook(CasemapRFC1459)
	ab.Update(&User{Nick: "a", Ident: "ident", Host: "host"})
	merged := ab.Update(&User{Nick: "a", Account: "acct"})

	if merged.Ident != "ident" || merged.Host != "host" {
		t.Errorf("known fields were overwritten: %+v", merged)
	}
	if merged.Account != "acct" {
		t.Errorf("new field was not merged: %+v", merged)
	}
}

func TestAddressBookCasefoldedKeys(t *testing.T) {
	ab := newAddressBook(CasemapRFC1459)
	ab.Update(&User{Nick: "Nick"})
	if _, ok := ab.Get("NICK"); !ok {
		t.Error("lookup should be case-insensitive under rfc1459 folding")
	}
}

func TestParseNameReply(t *testing.T) {
	entries := ParseNameReply("@admin +voiced plain", "@+")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Nick != "admin" || entries[0].PowerLevel != "@" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Nick != "voiced" || entries[1].PowerLevel != "+" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[2].Nick != "plain" || entries[2].PowerLevel != "" {
		t.Errorf("entries[2] = %+v", entries[2])
	}
}

func TestParseNameReplyWithUserHost(t *testing.T) {
	entries := ParseNameReply("@admin!ident@host.example", "@+")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Nick != "admin" || e.Ident != "ident" || e.Host != "host.example" || e.PowerLevel != "@" {
		t.Errorf("entry = %+v", e)
	}
}
