package metrics

import "testing"

func TestMemStore_SetGet(t *testing.T) {
	s := NewMemStore()
	s.SetBool(KeyEnvOn, true)

	v, ok := s.Get(KeyEnvOn)
	if !ok || !v.Bool {
		t.Errorf("expected (true, true), got (%+v, %v)", v, ok)
	}
}

func TestMemStore_SubscribeFiresOnChange(t *testing.T) {
	s := NewMemStore()
	var calls int
	s.Subscribe(KeyEnvOn, func(v Value) { calls++ })

	s.SetBool(KeyEnvOn, true)
	s.SetBool(KeyEnvOn, true) // no change, no fire
	s.SetBool(KeyEnvOn, false)

	if calls != 2 {
		t.Errorf("expected 2 notifications, got %d", calls)
	}
}

func TestMemStore_Unsubscribe(t *testing.T) {
	s := NewMemStore()
	var calls int
	unsub := s.Subscribe(KeyEnvOn, func(v Value) { calls++ })
	unsub()

	s.SetBool(KeyEnvOn, true)
	if calls != 0 {
		t.Errorf("expected no notifications after unsubscribe, got %d", calls)
	}
}

func TestEncodeDecodeValue_RoundTrip(t *testing.T) {
	cases := []Value{
		{Kind: KindString, String: "charging", Set: true},
		{Kind: KindFloat, Float: 230.5, Set: true},
		{Kind: KindInt, Int: 42, Set: true},
		{Kind: KindBool, Bool: true, Set: true},
		// Zero-valued float/int must not collapse onto the bool branch.
		{Kind: KindFloat, Float: 0, Set: true},
		{Kind: KindInt, Int: 0, Set: true},
		{Kind: KindBool, Bool: false, Set: true},
	}

	for _, v := range cases {
		encoded := encodeValue(v)
		decoded := decodeValue(encoded)
		if decoded != v {
			t.Errorf("round-trip mismatch: in=%+v encoded=%q out=%+v", v, encoded, decoded)
		}
	}
}
