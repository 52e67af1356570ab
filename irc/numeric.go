package irc

import (
	"strconv"
	"time"
)

// field describes one positional argument of a numeric reply: its index
// into msg.Params and whether it may be legitimately absent. Numeric leaf
// parsers are mechanical enough to drive from a small table like this one
// rather than hand-writing each (§9 design note) — C13 itself (generating
// parsers for numerics this engine doesn't interpret) is left to the
// embedder, per §1's scope cut.
type field struct {
	index    int
	optional bool
}

// extract reads the fields described by spec out of params, returning ok
// is false if a required field's index is out of range.
func extract(params []string, spec []field) ([]string, bool) {
	out := make([]string, len(spec))
	for i, f := range spec {
		if f.index >= len(params) {
			if f.optional {
				continue
			}
			return nil, false
		}
		out[i] = params[f.index]
	}
	return out, true
}

// whoisUserFields parses RPL_WHOISUSER (311): <nick> <user> <host> * :<realname>
func whoisUserFields(params []string) (user, host, real string, ok bool) {
	v, ok := extract(params, []field{{1, false}, {2, false}, {4, false}})
	if !ok {
		return "", "", "", false
	}
	return v[0], v[1], v[2], true
}

// whoisIdleFields parses RPL_WHOISIDLE (317): <nick> <integer> [<integer>] :seconds idle [, signon time]
func whoisIdleFields(params []string) (idle time.Duration, signon time.Time, ok bool) {
	if len(params) < 2 {
		return 0, time.Time{}, false
	}
	secs, err := strconv.ParseInt(params[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	idle = time.Duration(secs) * time.Second
	if len(params) >= 3 {
		if unix, err := strconv.ParseInt(params[2], 10, 64); err == nil {
			signon = time.Unix(unix, 0).UTC()
		}
	}
	return idle, signon, true
}

// luserCount parses the integer-count 251/252/253/254/255 numerics: it
// returns the first parameter that is wholly an integer (e.g. <count> in
// <count> :text). A count embedded in trailing text is not found.
func luserCount(params []string) (int, bool) {
	for _, p := range params {
		if n, err := strconv.Atoi(p); err == nil {
			return n, true
		}
	}
	return 0, false
}

// topicWhoTime parses RPL_TOPICWHOTIME (333): <channel> <nick> <setat>
func topicWhoTime(params []string) (who string, at time.Time, ok bool) {
	v, ok := extract(params, []field{{1, false}, {2, false}})
	if !ok {
		return "", time.Time{}, false
	}
	unix, err := strconv.ParseInt(v[1], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return v[0], time.Unix(unix, 0).UTC(), true
}

// listReply parses RPL_LIST (322): <channel> <# visible> :<topic>
func listReply(params []string) (channel string, visible int, topic string, ok bool) {
	if len(params) < 2 {
		return "", 0, "", false
	}
	n, err := strconv.Atoi(params[1])
	if err != nil {
		return "", 0, "", false
	}
	if len(params) >= 3 {
		topic = params[2]
	}
	return params[0], n, topic, true
}

// watchLogon parses RPL_LOGON (600): <nick> <user> <host> <timestamp> :logged online
func watchLogon(params []string) (nick string, at time.Time, ok bool) {
	if len(params) < 4 {
		return "", time.Time{}, false
	}
	unix, err := strconv.ParseInt(params[3], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return params[0], time.Unix(unix, 0).UTC(), true
}
