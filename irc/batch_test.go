package irc

import "testing"

// TestNestedBatchPreservation is the literal S2 scenario from spec §8: a
// nested batch must surface as one unit, only after the outermost close,
// with its nested batch intact.
func TestNestedBatchPreservation(t *testing.T) {
	f := newBatchFramer()

	lines := []string{
		":irc.host BATCH +outer example.com/foo",
		"@batch=outer :irc.host BATCH +inner example.com/bar",
		"@batch=inner :nick!u@h PRIVMSG #c :Hi",
		"@batch=outer :irc.host BATCH -inner",
		":irc.host BATCH -outer",
	}

	var surfaced []CompletedUnit
	for _, line := range lines {
		msg, err := ParseMessage(line)
		if err != nil {
			t.Fatalf("ParseMessage(%q): %v", line, err)
		}
		units := f.Feed(msg)
		surfaced = append(surfaced, units...)
		if len(units) > 0 && line != lines[len(lines)-1] {
			t.Fatalf("unit surfaced before outer close, after line %q", line)
		}
	}

	if len(surfaced) != 1 {
		t.Fatalf("expected exactly one surfaced unit, got %d", len(surfaced))
	}
	root := surfaced[0].Batch
	if root == nil {
		t.Fatal("surfaced unit is not a batch")
	}
	if root.Type != "example.com/foo" {
		t.Errorf("root type = %q", root.Type)
	}
	if len(root.Entries) != 1 || root.Entries[0].Nested == nil {
		t.Fatalf("expected root to have one nested entry, got %#v", root.Entries)
	}
	inner := root.Entries[0].Nested
	if inner.Type != "example.com/bar" {
		t.Errorf("inner type = %q", inner.Type)
	}
	if len(inner.Lines) != 1 || inner.Lines[0].Command != "PRIVMSG" {
		t.Fatalf("inner batch lines = %#v", inner.Lines)
	}
}

func TestUnbatchedLinesPreserveOrder(t *testing.T) {
	f := newBatchFramer()
	lines := []string{"PING a", "PING b", "PING c"}

	var order []string
	for _, line := range lines {
		msg, _ := ParseMessage(line)
		for _, u := range f.Feed(msg) {
			if u.Message != nil {
				order = append(order, u.Message.Params[0])
			}
		}
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %#v", order)
	}
}

func TestUnknownBatchTagPassesThrough(t *testing.T) {
	f := newBatchFramer()
	msg, _ := ParseMessage("@batch=ghost :nick PRIVMSG #c :hi")
	units := f.Feed(msg)
	if len(units) != 1 || units[0].Message == nil {
		t.Fatalf("expected the line to pass through unbatched, got %#v", units)
	}
}
