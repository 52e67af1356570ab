package irc

import (
	"reflect"
	"testing"
)

// TestParseModeStringS3 is the literal S3 scenario from spec §8.
func TestParseModeStringS3(t *testing.T) {
	cats := ModeCategories{'k': ModeCategoryB, 'l': ModeCategoryC}
	changes := ParseModeString([]string{"-sk+nl", "secret", "4"}, cats)

	want := []ModeChange{
		{Mode: Mode{Category: ModeCategoryD, Letter: 's'}, Set: false},
		{Mode: Mode{Category: ModeCategoryB, Letter: 'k', Arg: "secret"}, Set: false},
		{Mode: Mode{Category: ModeCategoryD, Letter: 'n'}, Set: true},
		{Mode: Mode{Category: ModeCategoryC, Letter: 'l', Arg: "4"}, Set: true},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %#v, want %#v", changes, want)
	}
}

// TestModeStringRoundTrip is property 4 from spec §8.
func TestModeStringRoundTrip(t *testing.T) {
	cats := ModeCategories{'k': ModeCategoryB, 'l': ModeCategoryC}
	args := []string{"+ks-l", "secret"}

	changes := ParseModeString(args, cats)
	got := FormatModeString(changes)

	if !reflect.DeepEqual(got, args) {
		t.Errorf("round trip = %#v, want %#v", got, args)
	}
}

func TestParseModeStringMissingArgIsMalformed(t *testing.T) {
	cats := ModeCategories{'k': ModeCategoryB}
	changes := ParseModeString([]string{"+k"}, cats)
	if changes != nil {
		t.Errorf("expected nil for a category-B mode with no argument, got %#v", changes)
	}
}

func TestParseModeStringUserModes(t *testing.T) {
	changes := ParseModeString([]string{"+iw-o"}, nil)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	if changes[0].Mode.Category != ModeCategoryD || changes[2].Set {
		t.Errorf("changes = %#v", changes)
	}
}

func TestParseChanmodes(t *testing.T) {
	cats := ParseChanmodes("eIb,k,l,imnpst")
	if cats['b'] != ModeCategoryA {
		t.Errorf("b category = %v, want A", cats['b'])
	}
	if cats['k'] != ModeCategoryB {
		t.Errorf("k category = %v, want B", cats['k'])
	}
	if cats['l'] != ModeCategoryC {
		t.Errorf("l category = %v, want C", cats['l'])
	}
	if cats['n'] != ModeCategoryD {
		t.Errorf("n category = %v, want D", cats['n'])
	}
}

func TestAddRankAndRemoveRank(t *testing.T) {
	order := []byte{'o', 'v'}
	levels := addRank("", 'v', order)
	levels = addRank(levels, 'o', order)
	if levels != "ov" {
		t.Fatalf("levels = %q, want rank-ordered \"ov\"", levels)
	}
	levels = removeRank(levels, 'o')
	if levels != "v" {
		t.Errorf("levels after removeRank = %q", levels)
	}
}
