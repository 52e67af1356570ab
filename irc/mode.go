package irc

import "strings"

// ModeCategory classifies how a mode letter consumes arguments, per the
// server-advertised CHANMODES token.
type ModeCategory int

const (
	// ModeCategoryD is the default for any letter absent from the
	// server's CHANMODES map (and for every user/"umode" letter, since
	// those are parsed with no category map at all).
	ModeCategoryD ModeCategory = iota
	ModeCategoryA              // always takes an argument; list-style (bans, exceptions)
	ModeCategoryB              // always takes an argument
	ModeCategoryC              // takes an argument only when being set
)

// ModeCategories maps a channel mode letter to its CHANMODES category.
type ModeCategories map[byte]ModeCategory

// Mode is a single mode letter together with its (possibly absent)
// argument. Equality between two Modes is defined on the letter alone.
type Mode struct {
	Category ModeCategory
	Letter   byte
	Arg      string
}

// ModeChange pairs a Mode with the direction (set/unset) it was applied in.
type ModeChange struct {
	Mode Mode
	Set  bool
}

// ParseModeString parses a server or client MODE argument sequence: args[0]
// is the mode-letters string (e.g. "+sk-l"), and args[1:] are the
// arguments consumed left to right. cats classifies channel mode letters;
// pass a nil map to parse user ("umode") changes, where every letter is
// category D.
//
// Per §4.3/invariant 6: if an A/B mode (either direction) or a C mode being
// set runs out of arguments, the whole line is malformed and an empty
// (nil) slice is returned.
func ParseModeString(args []string, cats ModeCategories) []ModeChange {
	if len(args) == 0 {
		return nil
	}
	letters := args[0]
	rest := args[1:]

	var changes []ModeChange
	set := true
	argi := 0

	for i := 0; i < len(letters); i++ {
		switch letters[i] {
		case '+':
			set = true
			continue
		case '-':
			set = false
			continue
		}

		letter := letters[i]
		cat := ModeCategoryD
		if cats != nil {
			if c, ok := cats[letter]; ok {
				cat = c
			}
		}

		consumesArg := cat == ModeCategoryA || cat == ModeCategoryB || (cat == ModeCategoryC && set)

		var arg string
		if consumesArg {
			if argi >= len(rest) {
				return nil
			}
			arg = rest[argi]
			argi++
		}

		changes = append(changes, ModeChange{
			Mode: Mode{Category: cat, Letter: letter, Arg: arg},
			Set:  set,
		})
	}

	return changes
}

// FormatModeString renders changes back into a MODE argument sequence
// (letters string followed by consumed arguments), grouping consecutive
// changes of the same sign under one leading '+'/'-', the inverse of
// ParseModeString.
func FormatModeString(changes []ModeChange) []string {
	if len(changes) == 0 {
		return nil
	}

	var letters strings.Builder
	var args []string
	var curSign *bool

	for _, c := range changes {
		if curSign == nil || *curSign != c.Set {
			if c.Set {
				letters.WriteByte('+')
			} else {
				letters.WriteByte('-')
			}
			set := c.Set
			curSign = &set
		}
		letters.WriteByte(c.Mode.Letter)
		if c.Mode.Arg != "" {
			args = append(args, c.Mode.Arg)
		}
	}

	return append([]string{letters.String()}, args...)
}

// addRank inserts letter into levels (a set of membership mode letters),
// re-rendering the whole set in rank order so the highest-ranked letter
// always sorts first, matching how servers report multi-prefix membership.
func addRank(levels string, letter byte, order []byte) string {
	set := map[byte]bool{letter: true}
	for i := 0; i < len(levels); i++ {
		set[levels[i]] = true
	}
	return filterOrder(set, order)
}

// removeRank drops letter from levels, preserving the relative order of
// whatever remains.
func removeRank(levels string, letter byte) string {
	var sb strings.Builder
	for i := 0; i < len(levels); i++ {
		if levels[i] != letter {
			sb.WriteByte(levels[i])
		}
	}
	return sb.String()
}

func filterOrder(set map[byte]bool, order []byte) string {
	var sb strings.Builder
	for _, l := range order {
		if set[l] {
			sb.WriteByte(l)
		}
	}
	return sb.String()
}

// ParseChanmodes parses a CHANMODES=a,b,c,d ISUPPORT value into a category
// map.
func ParseChanmodes(value string) ModeCategories {
	groups := strings.SplitN(value, ",", 4)
	cats := ModeCategories{}
	apply := func(letters string, cat ModeCategory) {
		for i := 0; i < len(letters); i++ {
			cats[letters[i]] = cat
		}
	}
	if len(groups) > 0 {
		apply(groups[0], ModeCategoryA)
	}
	if len(groups) > 1 {
		apply(groups[1], ModeCategoryB)
	}
	if len(groups) > 2 {
		apply(groups[2], ModeCategoryC)
	}
	if len(groups) > 3 {
		apply(groups[3], ModeCategoryD)
	}
	return cats
}
