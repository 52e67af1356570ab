package irc

import "time"

// MetadataValue is one (visibility, value) pair stored against a
// (target, key) in the METADATA subsystem (§3, §4.10).
type MetadataValue struct {
	Visibility string
	Value      string
}

// metadataStore holds the two KV maps (user and channel metadata) plus the
// subscription set and server-declared limits described in §4.10. Target
// "*" addresses the self user, per spec.
type metadataStore struct {
	casemap CaseMapping

	userMetadata    map[string]map[string]MetadataValue // casefolded nick -> key -> value
	channelMetadata map[string]map[string]MetadataValue // casefolded channel -> key -> value

	subscriptions map[string]struct{}

	maxSub int // 0 = unbounded
	maxKey int // 0 = unbounded
}

func newMetadataStore(casemap CaseMapping) *metadataStore {
	return &metadataStore{
		casemap:         casemap,
		userMetadata:    map[string]map[string]MetadataValue{},
		channelMetadata: map[string]map[string]MetadataValue{},
		subscriptions:   map[string]struct{}{},
	}
}

// applyCapValue parses the draft/metadata-2 CAP value ("maxsub=50,maxkey=25,...")
// and records the server-declared limits (§4.10; default unbounded).
func (m *metadataStore) applyCapValue(value string) {
	for _, kv := range splitCommaKV(value) {
		switch kv.key {
		case "maxsub":
			m.maxSub = atoiDefault(kv.value, 0)
		case "maxkey":
			m.maxKey = atoiDefault(kv.value, 0)
		}
	}
}

type kvPair struct{ key, value string }

func splitCommaKV(s string) []kvPair {
	var out []kvPair
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			item := s[start:i]
			start = i + 1
			if item == "" {
				continue
			}
			k, v, _ := cutByte(item, '=')
			out = append(out, kvPair{k, v})
		}
	}
	return out
}

func cutByte(s string, b byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func (m *metadataStore) bucketForTarget(isChannel bool, target string) map[string]MetadataValue {
	key := m.casemap(target)
	var buckets map[string]map[string]MetadataValue
	if isChannel {
		buckets = m.channelMetadata
	} else {
		buckets = m.userMetadata
	}
	b, ok := buckets[key]
	if !ok {
		b = map[string]MetadataValue{}
		buckets[key] = b
	}
	return b
}

// set stores a key/value for the given target (a nil value means delete,
// matching the METADATA verb and RPL_KEYVALUE shapes of §4.10).
func (m *metadataStore) set(isChannel bool, target, key, visibility string, value *string) {
	b := m.bucketForTarget(isChannel, target)
	if value == nil {
		delete(b, key)
		return
	}
	b[key] = MetadataValue{Visibility: visibility, Value: *value}
}

// get looks up one metadata value.
func (m *metadataStore) get(isChannel bool, target, key string) (MetadataValue, bool) {
	buckets := m.userMetadata
	if isChannel {
		buckets = m.channelMetadata
	}
	b, ok := buckets[m.casemap(target)]
	if !ok {
		return MetadataValue{}, false
	}
	v, ok := b[key]
	return v, ok
}

// subscribe/unsubscribe update the local subscription set to mirror the
// server's RPL_METADATASUBOK/RPL_METADATAUNSUBOK acknowledgements.
func (m *metadataStore) subscribe(keys ...string) {
	for _, k := range keys {
		m.subscriptions[k] = struct{}{}
	}
}

func (m *metadataStore) unsubscribe(keys ...string) {
	for _, k := range keys {
		delete(m.subscriptions, k)
	}
}

func (m *metadataStore) subscribedKeys() []string {
	keys := make([]string, 0, len(m.subscriptions))
	for k := range m.subscriptions {
		keys = append(keys, k)
	}
	return keys
}

// MetadataRetry is carried by the waitAndRetry error kind when the server
// names a retry-after duration (§7, §4.10 ERR_METADATASYNCLATER).
type MetadataRetry struct {
	After time.Duration
}
