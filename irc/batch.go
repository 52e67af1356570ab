package irc

import "strings"

// Batch is an IRCv3 BATCH grouping (§3, §4.2): the lines captured while it
// was open, in arrival order, and any batches nested inside it.
type Batch struct {
	ReferenceTag  string
	Type          string
	Parameters    []string
	Lines         []Message
	NestedBatches map[string]*Batch
	Closed        bool

	// Entries is Lines and NestedBatches merged back into arrival order,
	// the order the dispatcher must walk to preserve property 2 (event
	// dispatch order within a surfaced batch is the order lines were
	// received, even when a nested batch's lines interleave with the
	// parent's own direct lines).
	Entries []batchEntry
}

// batchEntry is one arrival-ordered slot inside a Batch: either a direct
// line or a (by now closed) nested batch.
type batchEntry struct {
	Message *Message
	Nested  *Batch
}

func newBatch(tag string, params []string) *Batch {
	b := &Batch{
		ReferenceTag:  tag,
		NestedBatches: map[string]*Batch{},
	}
	if len(params) > 0 {
		b.Type = params[0]
	}
	if len(params) > 1 {
		b.Parameters = params[1:]
	}
	return b
}

// CompletedUnit is one unit the batch framer has finished assembling:
// either a single un-batched Message, or a closed root Batch.
type CompletedUnit struct {
	Message *Message
	Batch   *Batch
}

// batchFramer implements the batch framing layer (C2): it buffers lines
// belonging to an open batch (possibly nested) until the *outermost*
// enclosing batch closes, at which point the whole tree surfaces as one
// CompletedUnit. Un-batched lines surface immediately, preserving their
// inter-se arrival order (§3 invariant 4, §8 property 2).
//
// Reference tags are unique only within the currently-open set (§3), so a
// single flat map from tag to Batch — regardless of nesting depth —
// correctly locates the batch any "batch" tag refers to, following the
// Open Question guidance in §9 to avoid the fragile parallel-sequence
// bookkeeping of the original implementation.
type batchFramer struct {
	open map[string]*Batch
}

func newBatchFramer() *batchFramer {
	return &batchFramer{open: map[string]*Batch{}}
}

// Feed processes one parsed message and returns the CompletedUnits (zero or
// one, in practice) it causes to surface.
func (f *batchFramer) Feed(msg Message) []CompletedUnit {
	if ref, tagged := msg.Tags["batch"]; tagged {
		parent, ok := f.open[ref]
		if !ok {
			// "batch" tag referencing an unknown/already-closed batch:
			// malformed framing. Pass the line through unbatched rather
			// than drop it silently.
			return []CompletedUnit{{Message: &msg}}
		}

		if msg.Command == "BATCH" {
			if opened, tag, ok := parseBatchOpen(msg); ok {
				nb := newBatch(tag, opened)
				parent.NestedBatches[tag] = nb
				parent.Entries = append(parent.Entries, batchEntry{Nested: nb})
				f.open[tag] = nb
				return nil
			}
			if tag, ok := parseBatchClose(msg); ok {
				if nb, ok := f.open[tag]; ok {
					nb.Closed = true
					delete(f.open, tag)
				}
				return nil
			}
		}

		parent.Lines = append(parent.Lines, msg)
		parent.Entries = append(parent.Entries, batchEntry{Message: &msg})
		return nil
	}

	if msg.Command == "BATCH" {
		if params, tag, ok := parseBatchOpen(msg); ok {
			f.open[tag] = newBatch(tag, params)
			return nil
		}
		if tag, ok := parseBatchClose(msg); ok {
			if b, ok := f.open[tag]; ok {
				b.Closed = true
				delete(f.open, tag)
				return []CompletedUnit{{Batch: b}}
			}
			return nil
		}
	}

	return []CompletedUnit{{Message: &msg}}
}

func parseBatchOpen(msg Message) (params []string, tag string, ok bool) {
	if len(msg.Params) == 0 || !strings.HasPrefix(msg.Params[0], "+") {
		return nil, "", false
	}
	return msg.Params[1:], msg.Params[0][1:], true
}

func parseBatchClose(msg Message) (tag string, ok bool) {
	if len(msg.Params) == 0 || !strings.HasPrefix(msg.Params[0], "-") {
		return "", false
	}
	return msg.Params[0][1:], true
}
