package irc

import "testing"

func TestMetadataApplyCapValue(t *testing.T) {
	m := newMetadataStore(CasemapRFC1459)
	m.applyCapValue("maxsub=50,maxkey=25")
	if m.maxSub != 50 || m.maxKey != 25 {
		t.Errorf("maxSub=%d maxKey=%d", m.maxSub, m.maxKey)
	}
}

func TestMetadataSetGetAndDelete(t *testing.T) {
	m := newMetadataStore(CasemapRFC1459)
	value := "dark"
	m.set(false, "someone", "theme", "*", &value)

	got, ok := m.get(false, "someone", "theme")
	if !ok || got.Value != "dark" || got.Visibility != "*" {
		t.Errorf("get = %+v, %v", got, ok)
	}

	m.set(false, "someone", "theme", "*", nil)
	if _, ok := m.get(false, "someone", "theme"); ok {
		t.Error("expected key to be deleted after a nil value")
	}
}

func TestMetadataChannelAndUserBucketsAreDistinct(t *testing.T) {
	m := newMetadataStore(CasemapRFC1459)
	uv, cv := "user-value", "chan-value"
	m.set(false, "target", "key", "*", &uv)
	m.set(true, "target", "key", "*", &cv)

	got, _ := m.get(false, "target", "key")
	if got.Value != "user-value" {
		t.Errorf("user bucket = %+v", got)
	}
	got, _ = m.get(true, "target", "key")
	if got.Value != "chan-value" {
		t.Errorf("channel bucket = %+v", got)
	}
}

func TestMetadataSubscriptionSet(t *testing.T) {
	m := newMetadataStore(CasemapRFC1459)
	m.subscribe("avatar", "website", "foo", "bar", "baz")

	keys := m.subscribedKeys()
	if len(keys) != 5 {
		t.Fatalf("subscribed = %#v", keys)
	}

	m.unsubscribe("foo", "bar")
	keys = m.subscribedKeys()
	if len(keys) != 3 {
		t.Fatalf("after unsubscribe: %#v", keys)
	}
	for _, k := range keys {
		if k == "foo" || k == "bar" {
			t.Errorf("key %q should have been unsubscribed", k)
		}
	}
}
